package mail

import (
	"log/slog"

	"classroom/lib/sl"
)

// Console logs messages instead of sending them, for local runs without
// MailerSend credentials.
type Console struct {
	log *slog.Logger
}

func NewConsole(log *slog.Logger) *Console {
	return &Console{log: log.With(sl.Module("mail.console"))}
}

func (c *Console) SendAccessCode(email, code string) error {
	c.log.Info("access code email",
		slog.String("to", email),
		slog.String("code", code),
	)
	return nil
}

func (c *Console) SendInvitation(email, name, setupLink string) error {
	c.log.Info("invitation email",
		slog.String("to", email),
		slog.String("name", name),
		slog.String("setup_link", setupLink),
	)
	return nil
}
