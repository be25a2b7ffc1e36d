package storage

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/tribapps/geobatch/internal/pkg/utils"
)

const metaExt = ".meta"

//LocalStore keeps staged batches on the local filesystem.
//Metadata lives in a json sidecar next to each entry
type LocalStore struct {
	path    string
	urlBase string
	log     *logrus.Logger
}

//NewLocalStore creates a filesystem backed store
func NewLocalStore(c *viper.Viper, log *logrus.Logger) (*LocalStore, error) {
	res := LocalStore{log: log}
	res.path = c.GetString("storage.local.path")
	if res.path == "" {
		return nil, errors.New("No storage.local.path setting provided")
	}
	if err := os.MkdirAll(res.path, os.ModePerm); err != nil {
		return nil, errors.Wrap(err, "Can't init storage directory")
	}
	res.urlBase = c.GetString("storage.local.urlBase")
	log.Infof("Init local storage at: %s", res.path)
	return &res, nil
}

//List returns entry names under a prefix, sorted. A missing prefix
//directory means no entries, not an error
func (s *LocalStore) List(prefix string) ([]string, error) {
	dir := filepath.Join(s.path, prefix)
	files, err := ioutil.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't read directory "+dir)
	}
	res := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() || strings.HasSuffix(f.Name(), metaExt) {
			continue
		}
		res = append(res, f.Name())
	}
	sort.Strings(res)
	return res, nil
}

//Get returns entry content
func (s *LocalStore) Get(name string) ([]byte, error) {
	data, err := ioutil.ReadFile(filepath.Join(s.path, name))
	if os.IsNotExist(err) {
		return nil, errors.Wrap(ErrNotFound, name)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Can't read "+name)
	}
	return data, nil
}

//GetMeta returns one metadata value. A missing entry or key yields an
//empty string, not an error
func (s *LocalStore) GetMeta(name string, key string) (string, error) {
	data, err := ioutil.ReadFile(filepath.Join(s.path, name+metaExt))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "Can't read metadata of "+name)
	}
	meta := make(map[string]string)
	if err := json.Unmarshal(data, &meta); err != nil {
		return "", errors.Wrap(err, "Can't parse metadata of "+name)
	}
	return meta[key], nil
}

//Put writes entry content and metadata, overwriting an existing entry
func (s *LocalStore) Put(name string, data []byte, meta map[string]string) error {
	fp := filepath.Join(s.path, name)
	if err := os.MkdirAll(filepath.Dir(fp), os.ModePerm); err != nil {
		return errors.Wrap(err, "Can't create directory for "+name)
	}
	s.log.Infof("Writing %s", fp)
	if err := ioutil.WriteFile(fp, data, 0644); err != nil {
		return errors.Wrap(err, "Can't write "+name)
	}
	if len(meta) > 0 {
		mb, err := json.Marshal(meta)
		if err != nil {
			return errors.Wrap(err, "Can't marshal metadata of "+name)
		}
		if err := ioutil.WriteFile(fp+metaExt, mb, 0644); err != nil {
			return errors.Wrap(err, "Can't write metadata of "+name)
		}
	}
	return nil
}

//Delete removes an entry and its metadata. Deleting a missing entry
//succeeds
func (s *LocalStore) Delete(name string) error {
	fp := filepath.Join(s.path, name)
	s.log.Infof("Deleting %s", fp)
	if err := os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "Can't delete "+name)
	}
	if err := os.Remove(fp + metaExt); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "Can't delete metadata of "+name)
	}
	return nil
}

//Publish returns a retrieval URL for an entry. With no urlBase
//configured a file URL is returned
func (s *LocalStore) Publish(name string) (string, error) {
	if _, err := os.Stat(filepath.Join(s.path, name)); err != nil {
		return "", errors.Wrap(ErrNotFound, name)
	}
	if s.urlBase != "" {
		return utils.URLJoin(s.urlBase, name), nil
	}
	abs, err := filepath.Abs(filepath.Join(s.path, name))
	if err != nil {
		return "", errors.Wrap(err, "Can't resolve path of "+name)
	}
	return "file://" + abs, nil
}
