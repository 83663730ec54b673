// Package core holds the business rules: one-time-code issuance and
// validation, invitations, account setup, logins, lesson management and
// chat persistence. Handlers talk to Core through per-package interfaces;
// Core talks to collaborators through the interfaces below.
package core

import (
	"log/slog"
	"time"

	"classroom/entity"
	"classroom/lib/sl"
)

type Database interface {
	SaveAccessCode(code *entity.AccessCode) error
	GetAccessCode(identifier string) (*entity.AccessCode, error)
	DeleteAccessCode(identifier string) error

	InsertStudent(student *entity.Student) error
	GetStudent(phone string) (*entity.Student, error)
	GetStudentByEmail(email string) (*entity.Student, error)
	GetStudentByUsername(username string) (*entity.Student, error)
	GetStudentBySetupToken(token string) (*entity.Student, error)
	ListStudents() ([]*entity.Student, error)
	UpdateStudent(phone, name, email string) (bool, error)
	DeleteStudent(phone string) (bool, error)
	PushLesson(phone string, lesson *entity.Lesson) (bool, error)
	CompleteLesson(phone, lessonId string, at time.Time) (bool, error)
	ConsumeSetupToken(token, username, passwordHash string, now time.Time) (bool, error)

	GetUserRecord(identifier string) (*entity.User, error)
	SaveUserRecord(user *entity.User) error

	SaveMessage(message *entity.ChatMessage) error
	GetConversation(a, b string) ([]*entity.ChatMessage, error)
	MarkMessagesRead(ids []string) error
}

type MailSender interface {
	SendAccessCode(email, code string) error
	SendInvitation(email, name, setupLink string) error
}

type SmsSender interface {
	SendAccessCode(phone, code string) error
}

type SessionService interface {
	IssueToken(subject, name, email, userType string) (string, error)
	VerifyToken(token string) (*entity.Session, error)
}

// Publisher fans a chat event out to whatever realtime transport is
// attached. Delivery is best-effort.
type Publisher interface {
	Publish(subject string, data interface{}) error
}

type Options struct {
	CodeTTL      time.Duration
	InviteWindow time.Duration
	BaseUrl      string
}

type Core struct {
	db      Database
	mail    MailSender
	sms     SmsSender
	session SessionService
	bus     Publisher
	opts    Options
	log     *slog.Logger

	// overridable in tests
	now func() time.Time
}

func New(db Database, opts Options, log *slog.Logger) *Core {
	if db == nil {
		panic("database is nil")
	}
	if opts.CodeTTL == 0 {
		opts.CodeTTL = 5 * time.Minute
	}
	if opts.InviteWindow == 0 {
		opts.InviteWindow = time.Hour
	}
	return &Core{
		db:   db,
		opts: opts,
		log:  log.With(sl.Module("core")),
		now:  time.Now,
	}
}

func (c *Core) SetMailSender(mail MailSender) {
	c.mail = mail
}

func (c *Core) SetSmsSender(sms SmsSender) {
	c.sms = sms
}

func (c *Core) SetSessionService(session SessionService) {
	c.session = session
}

func (c *Core) SetPublisher(bus Publisher) {
	c.bus = bus
}

// AuthenticateByToken backs the bearer middleware.
func (c *Core) AuthenticateByToken(token string) (*entity.Session, error) {
	if c.session == nil {
		return nil, ErrUnavailable
	}
	session, err := c.session.VerifyToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return session, nil
}
