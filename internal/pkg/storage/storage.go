package storage

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//ErrNotFound indicates there is no entry with the requested name
var ErrNotFound = errors.New("No such entry")

//Store is the durable staging area for batches moving through the
//geocoding lifecycle. Names are '<prefix>/<name>' keys. Delete is
//idempotent - deleting a missing entry is not an error
type Store interface {
	List(prefix string) ([]string, error)
	Get(name string) ([]byte, error)
	GetMeta(name string, key string) (string, error)
	Put(name string, data []byte, meta map[string]string) error
	Delete(name string) error
	Publish(name string) (string, error)
}

//NewStore selects the store implementation from config:
//a MinIO/S3 store when storage.s3.endpoint is set, the local
//filesystem store otherwise
func NewStore(c *viper.Viper, log *logrus.Logger) (Store, error) {
	if c.GetString("storage.s3.endpoint") != "" {
		return NewMinIOStore(c, log)
	}
	return NewLocalStore(c, log)
}
