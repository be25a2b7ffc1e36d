package inform

import (
	"github.com/badoux/checkmail"
	"github.com/jordan-wright/email"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

//Event names a batch lifecycle moment worth telling the user about
type Event string

const (
	//EventPending - the batch was submitted for geocoding
	EventPending Event = "pending"
	//EventFinished - results were retrieved and published
	EventFinished Event = "finished"
	//EventError - the provider rejected the batch
	EventError Event = "error"
)

//Stats carries per job entity counts for notification texts
type Stats struct {
	Failed    int
	Processed int
}

//Sink delivers lifecycle notifications. Sending is fire and forget -
//callers log failures and move on
type Sink interface {
	Notify(address string, event Event, name string, stats Stats) error
}

//NoopSink discards notifications. It is injected when no smtp
//server is configured
type NoopSink struct{}

//Notify does nothing
func (NoopSink) Notify(address string, event Event, name string, stats Stats) error {
	return nil
}

type sender interface {
	Send(email *email.Email) error
}

//EmailSink sends lifecycle notifications by email
type EmailSink struct {
	maker  *emailMaker
	sender sender
	log    *logrus.Logger
}

//NewSink selects the sink implementation from config: an email sink
//when smtp.host is set, a no-op sink otherwise. The choice is made
//once at startup
func NewSink(c *viper.Viper, log *logrus.Logger) (Sink, error) {
	if c.GetString("smtp.host") == "" {
		log.Info("No smtp.host configured - notifications disabled")
		return NoopSink{}, nil
	}
	maker, err := newEmailMaker(c)
	if err != nil {
		return nil, errors.Wrap(err, "Can't init email maker")
	}
	snd, err := newEmailSender(c)
	if err != nil {
		return nil, errors.Wrap(err, "Can't init email sender")
	}
	return &EmailSink{maker: maker, sender: snd, log: log}, nil
}

//Notify prepares and sends one notification email
func (s *EmailSink) Notify(address string, event Event, name string, stats Stats) error {
	if address == "" {
		return nil
	}
	if err := checkmail.ValidateFormat(address); err != nil {
		return errors.Wrap(err, "Wrong email "+address)
	}
	mail, err := s.maker.make(address, event, name, stats)
	if err != nil {
		return errors.Wrap(err, "Can't prepare email")
	}
	s.log.Infof("Sending '%s' notification for %s to %s", event, name, address)
	return errors.Wrap(s.sender.Send(mail), "Can't send email")
}
