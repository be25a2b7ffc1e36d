package inform

import (
	"strconv"
	"strings"

	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type emailMaker struct {
	url string
	c   *viper.Viper
}

func newEmailMaker(c *viper.Viper) (*emailMaker, error) {
	r := emailMaker{c: c}
	var err error
	r.url, err = getStringNonNil(c, "mail.url")
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (maker *emailMaker) make(address string, event Event, name string, stats Stats) (*email.Email, error) {
	r := email.NewEmail()
	var err error
	r.Subject, err = getStringNonNil(maker.c, "mail."+string(event)+".subject")
	if err != nil {
		return nil, err
	}
	r.Subject = maker.fill(r.Subject, name, stats)
	text, err := getStringNonNil(maker.c, "mail."+string(event)+".text")
	if err != nil {
		return nil, err
	}
	r.Text = []byte(maker.fill(text, name, stats))
	r.To = []string{address}
	r.From, err = getStringNonNil(maker.c, "smtp.username")
	return r, err
}

func (maker *emailMaker) fill(text, name string, stats Stats) string {
	url := strings.Replace(maker.url, "{{NAME}}", name, -1)
	r := strings.Replace(text, "{{NAME}}", name, -1)
	r = strings.Replace(r, "{{URL}}", url, -1)
	r = strings.Replace(r, "{{FAILED}}", strconv.Itoa(stats.Failed), -1)
	r = strings.Replace(r, "{{PROCESSED}}", strconv.Itoa(stats.Processed), -1)
	return r
}

func getStringNonNil(c *viper.Viper, key string) (string, error) {
	r := c.GetString(key)
	if r == "" {
		return "", errors.New("No setting " + key)
	}
	return r, nil
}
