package service

import (
	"github.com/badoux/checkmail"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/tribapps/geobatch/internal/pkg/partition"
	"github.com/tribapps/geobatch/internal/pkg/storage"
)

//Deposit validates a raw batch and places it into the awaiting area.
//An empty name gets a generated one. Returns the name used
func Deposit(store storage.Store, log *logrus.Logger, name string, content []byte, address string) (string, error) {
	if store == nil {
		return "", errors.New("No store")
	}
	if len(content) == 0 {
		return "", errors.New("Empty batch content")
	}
	if address != "" {
		if err := checkmail.ValidateFormat(address); err != nil {
			return "", errors.Wrap(err, "Wrong email "+address)
		}
	}
	// reject malformed input before it reaches the provider
	if _, _, err := partition.Split(string(content)); err != nil {
		return "", errors.Wrap(err, "Invalid batch")
	}
	if name == "" {
		name = uuid.New().String() + ".csv"
	}
	meta := map[string]string{emailMetaKey: address}
	if err := store.Put(PrefixAwaiting+"/"+name, content, meta); err != nil {
		return "", err
	}
	log.Infof("Deposited %s for submission", name)
	return name, nil
}
