package sms

import (
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"classroom/internal/config"
	"classroom/lib/sl"
)

// Twilio delivers one-time codes by SMS.
type Twilio struct {
	client *twilio.RestClient
	from   string
	log    *slog.Logger
}

func NewTwilio(conf *config.Config, log *slog.Logger) *Twilio {
	if conf.Twilio.AccountSid == "" || conf.Twilio.FromNumber == "" {
		return nil
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: conf.Twilio.AccountSid,
		Password: conf.Twilio.AuthToken,
	})
	return &Twilio{
		client: client,
		from:   conf.Twilio.FromNumber,
		log:    log.With(sl.Module("sms.twilio")),
	}
}

func (t *Twilio) SendAccessCode(phone, code string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(phone)
	params.SetFrom(t.from)
	params.SetBody(fmt.Sprintf("Your access code: %s", code))

	_, err := t.client.Api.CreateMessage(params)
	if err != nil {
		t.log.Error("send sms", slog.String("to", phone), sl.Err(err))
		return fmt.Errorf("twilio: %w", err)
	}
	t.log.Debug("sms sent", slog.String("to", phone))
	return nil
}
