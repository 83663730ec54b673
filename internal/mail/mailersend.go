package mail

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailersend/mailersend-go"

	"classroom/internal/config"
	"classroom/lib/sl"
)

const sendTimeout = 10 * time.Second

// MailerSend delivers one-time codes and invitation links by email.
type MailerSend struct {
	client *mailersend.Mailersend
	from   mailersend.From
	log    *slog.Logger
}

func NewMailerSend(conf *config.Config, log *slog.Logger) *MailerSend {
	if conf.MailerSend.APIKey == "" || conf.MailerSend.FromEmail == "" {
		return nil
	}
	return &MailerSend{
		client: mailersend.NewMailersend(conf.MailerSend.APIKey),
		from: mailersend.From{
			Name:  conf.MailerSend.FromName,
			Email: conf.MailerSend.FromEmail,
		},
		log: log.With(sl.Module("mail.mailersend")),
	}
}

func (m *MailerSend) SendAccessCode(email, code string) error {
	subject := "Your Login Code"
	text := fmt.Sprintf("Your access code is %s\n\nThe code expires in 5 minutes.", code)
	html := fmt.Sprintf(
		"<p>Your access code is: <strong>%s</strong></p><p>The code expires in 5 minutes.</p>",
		code)
	return m.send(email, "", subject, text, html)
}

func (m *MailerSend) SendInvitation(email, name, setupLink string) error {
	subject := "You are invited to Classroom"
	text := fmt.Sprintf(
		"Hi %s,\n\nYour instructor added you to Classroom. Set up your account here:\n%s\n\nThe link expires in 1 hour.",
		name, setupLink)
	html := fmt.Sprintf(
		"<p>Hi %s,</p><p>Your instructor added you to Classroom.</p><p><a href=%q>Set up your account</a></p><p>The link expires in 1 hour.</p>",
		name, setupLink)
	return m.send(email, name, subject, text, html)
}

func (m *MailerSend) send(toEmail, toName, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Name: toName, Email: toEmail}})
	msg.SetSubject(subject)
	msg.SetText(text)
	msg.SetHTML(html)

	_, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		m.log.Error("send email", slog.String("to", toEmail), sl.Err(err))
		return fmt.Errorf("mailersend: %w", err)
	}
	m.log.Debug("email sent", slog.String("to", toEmail), slog.String("subject", subject))
	return nil
}
