package inform

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func initMakerConfig(t *testing.T) *viper.Viper {
	t.Helper()
	c := viper.New()
	c.Set("mail.url", "http://geo.tribapps.com/finished/{{NAME}}")
	c.Set("mail.finished.subject", "Geocoding done: {{NAME}}")
	c.Set("mail.finished.text", "Get results at {{URL}}. Processed: {{PROCESSED}}, failed: {{FAILED}}")
	c.Set("smtp.username", "geo@tribapps.com")
	return c
}

func TestNewEmailMaker(t *testing.T) {
	maker, err := newEmailMaker(initMakerConfig(t))
	assert.Nil(t, err)
	assert.NotNil(t, maker)
}

func TestNewEmailMaker_NoURL(t *testing.T) {
	c := initMakerConfig(t)
	c.Set("mail.url", "")
	_, err := newEmailMaker(c)
	assert.NotNil(t, err)
}

func TestMake(t *testing.T) {
	maker, _ := newEmailMaker(initMakerConfig(t))
	mail, err := maker.make("a@b.lt", EventFinished, "j1.csv", Stats{Failed: 2, Processed: 10})
	assert.Nil(t, err)
	assert.Equal(t, "Geocoding done: j1.csv", mail.Subject)
	assert.Equal(t, "Get results at http://geo.tribapps.com/finished/j1.csv. Processed: 10, failed: 2",
		string(mail.Text))
	assert.Equal(t, []string{"a@b.lt"}, mail.To)
	assert.Equal(t, "geo@tribapps.com", mail.From)
}

func TestMake_NoSubject(t *testing.T) {
	maker, _ := newEmailMaker(initMakerConfig(t))
	_, err := maker.make("a@b.lt", EventPending, "j1.csv", Stats{})
	assert.NotNil(t, err)
}

func TestMake_NoFrom(t *testing.T) {
	c := initMakerConfig(t)
	c.Set("smtp.username", "")
	maker, _ := newEmailMaker(c)
	_, err := maker.make("a@b.lt", EventFinished, "j1.csv", Stats{})
	assert.NotNil(t, err)
}
