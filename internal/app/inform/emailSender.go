package inform

import (
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/spf13/viper"
)

type emailSender struct {
	sendPool *email.Pool
}

func newEmailSender(c *viper.Viper) (*emailSender, error) {
	r := emailSender{}
	var err error
	r.sendPool, err = email.NewPool(c.GetString("smtp.host")+":"+c.GetString("smtp.port"), 1,
		smtp.PlainAuth("", c.GetString("smtp.username"), c.GetString("smtp.password"), c.GetString("smtp.host")))
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *emailSender) Send(email *email.Email) error {
	return s.sendPool.Send(email, 10*time.Second)
}
