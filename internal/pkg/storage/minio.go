package storage

import (
	"bytes"
	"context"
	"io/ioutil"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//MinIOStore keeps staged batches in a S3 compatible bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	log    *logrus.Logger
}

//NewMinIOStore creates a S3 backed store. It waits for the bucket
//to be reachable before returning
func NewMinIOStore(c *viper.Viper, log *logrus.Logger) (*MinIOStore, error) {
	endpoint := c.GetString("storage.s3.endpoint")
	if endpoint == "" {
		return nil, errors.New("No storage.s3.endpoint setting provided")
	}
	bucket := c.GetString("storage.s3.bucket")
	if bucket == "" {
		return nil, errors.New("No storage.s3.bucket setting provided")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.GetString("storage.s3.accessKey"), c.GetString("storage.s3.secretKey"), ""),
		Secure: c.GetBool("storage.s3.secure"),
	})
	if err != nil {
		return nil, errors.Wrap(err, "Can't init s3 client")
	}
	res := MinIOStore{client: client, bucket: bucket, log: log}
	op := func() error {
		ok, err := client.BucketExists(context.Background(), bucket)
		if err != nil {
			log.Warnf("Can't access bucket %s: %v", bucket, err)
			return err
		}
		if !ok {
			return backoff.Permanent(errors.New("No bucket " + bucket))
		}
		return nil
	}
	if err := backoff.Retry(op, newBackOff()); err != nil {
		return nil, errors.Wrap(err, "Can't access bucket "+bucket)
	}
	log.Infof("Init s3 storage at %s, bucket %s", endpoint, bucket)
	return &res, nil
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 45 * time.Second
	return b
}

//List returns entry names under a prefix
func (s *MinIOStore) List(prefix string) ([]string, error) {
	res := make([]string, 0)
	objCh := s.client.ListObjects(context.Background(), s.bucket,
		minio.ListObjectsOptions{Prefix: prefix + "/", Recursive: true})
	for obj := range objCh {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, "Can't list "+prefix)
		}
		name := obj.Key[len(prefix)+1:]
		if name != "" {
			res = append(res, name)
		}
	}
	return res, nil
}

//Get returns entry content
func (s *MinIOStore) Get(name string) ([]byte, error) {
	obj, err := s.client.GetObject(context.Background(), s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "Can't get "+name)
	}
	defer obj.Close()
	data, err := ioutil.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Wrap(ErrNotFound, name)
		}
		return nil, errors.Wrap(err, "Can't read "+name)
	}
	return data, nil
}

//GetMeta returns one user metadata value. A missing entry or key
//yields an empty string, not an error
func (s *MinIOStore) GetMeta(name string, key string) (string, error) {
	info, err := s.client.StatObject(context.Background(), s.bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", nil
		}
		return "", errors.Wrap(err, "Can't stat "+name)
	}
	// minio canonicalizes user metadata keys, match case insensitively
	for k, v := range info.UserMetadata {
		if strings.EqualFold(k, key) {
			return v, nil
		}
	}
	return "", nil
}

//Put writes entry content and user metadata
func (s *MinIOStore) Put(name string, data []byte, meta map[string]string) error {
	s.log.Infof("Writing s3://%s/%s", s.bucket, name)
	_, err := s.client.PutObject(context.Background(), s.bucket, name,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "text/csv", UserMetadata: meta})
	return errors.Wrap(err, "Can't put "+name)
}

//Delete removes an entry. Deleting a missing entry succeeds
func (s *MinIOStore) Delete(name string) error {
	s.log.Infof("Deleting s3://%s/%s", s.bucket, name)
	err := s.client.RemoveObject(context.Background(), s.bucket, name, minio.RemoveObjectOptions{})
	return errors.Wrap(err, "Can't delete "+name)
}

//Publish returns a presigned retrieval URL valid for seven days,
//the longest the S3 API allows
func (s *MinIOStore) Publish(name string) (string, error) {
	u, err := s.client.PresignedGetObject(context.Background(), s.bucket, name, 7*24*time.Hour, nil)
	if err != nil {
		return "", errors.Wrap(err, "Can't publish "+name)
	}
	return u.String(), nil
}
