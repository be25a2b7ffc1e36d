package service

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func initDepositTest(t *testing.T) (*memStore, *logrus.Logger) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return newMemStore(), log
}

func TestDeposit(t *testing.T) {
	store, log := initDepositTest(t)
	name, err := Deposit(store, log, "a.csv", []byte(testBatch), "a@b.lt")
	assert.Nil(t, err)
	assert.Equal(t, "a.csv", name)

	raw, err := store.Get(PrefixAwaiting + "/a.csv")
	assert.Nil(t, err)
	assert.Equal(t, testBatch, string(raw))
	email, _ := store.GetMeta(PrefixAwaiting+"/a.csv", "email")
	assert.Equal(t, "a@b.lt", email)
}

func TestDeposit_GeneratesName(t *testing.T) {
	store, log := initDepositTest(t)
	name, err := Deposit(store, log, "", []byte(testBatch), "")
	assert.Nil(t, err)
	assert.NotEqual(t, "", name)
	assert.Contains(t, name, ".csv")
}

func TestDeposit_WrongEmail(t *testing.T) {
	store, log := initDepositTest(t)
	_, err := Deposit(store, log, "a.csv", []byte(testBatch), "olia")
	assert.NotNil(t, err)
}

func TestDeposit_InvalidBatch(t *testing.T) {
	store, log := initDepositTest(t)
	_, err := Deposit(store, log, "a.csv", []byte("olia,no,x\n1,2,3\n"), "")
	assert.NotNil(t, err)
	names, _ := store.List(PrefixAwaiting)
	assert.Equal(t, 0, len(names))
}

func TestDeposit_Empty(t *testing.T) {
	store, log := initDepositTest(t)
	_, err := Deposit(store, log, "a.csv", nil, "")
	assert.NotNil(t, err)
}
