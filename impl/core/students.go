package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/alexedwards/argon2id"

	"classroom/entity"
	"classroom/lib/sl"
)

// AddStudent creates a pending profile with the invitation embedded and
// emails the setup link. The profile becomes active once SetupAccount
// consumes the token.
func (c *Core) AddStudent(name, phoneNumber, email string) error {
	if name == "" || phoneNumber == "" || email == "" {
		return ErrMissingFields
	}
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	email = normalizeEmail(email)
	if c.mail == nil {
		return ErrUnavailable
	}

	existing, err := c.db.GetStudent(phone)
	if err != nil {
		return fmt.Errorf("check student: %w", err)
	}
	if existing != nil {
		return ErrStudentExists
	}

	token, err := generateSetupToken()
	if err != nil {
		return err
	}
	now := c.now()
	student := &entity.Student{
		Phone:             phone,
		Name:              name,
		Email:             email,
		Role:              entity.RoleStudent,
		Lessons:           []entity.Lesson{},
		SetupToken:        token,
		SetupTokenExpires: now.Add(c.opts.InviteWindow),
		CreatedAt:         now,
	}
	if err = c.db.InsertStudent(student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}

	setupLink := fmt.Sprintf("%s/setup-account?token=%s", c.opts.BaseUrl, token)
	if err = c.mail.SendInvitation(email, name, setupLink); err != nil {
		return fmt.Errorf("deliver invitation: %w", err)
	}
	c.log.Info("student invited", sl.Secret("phone", phone), slog.String("name", name))
	return nil
}

// ValidateInvitation is read-only; the token is consumed by SetupAccount.
func (c *Core) ValidateInvitation(token string) (*entity.InvitationDetails, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	student, err := c.db.GetStudentBySetupToken(token)
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	if student == nil {
		return nil, ErrInvalidToken
	}
	if !c.now().Before(student.SetupTokenExpires) {
		return nil, ErrTokenExpired
	}
	return &entity.InvitationDetails{
		Email: student.Email,
		Name:  student.Name,
		Phone: student.Phone,
	}, nil
}

// SetupAccount binds credentials to the invited profile exactly once.
func (c *Core) SetupAccount(token, username, password string) error {
	if token == "" || username == "" || password == "" {
		return ErrMissingFields
	}
	if len(password) < 6 {
		return ErrPasswordTooShort
	}

	student, err := c.db.GetStudentBySetupToken(token)
	if err != nil {
		return fmt.Errorf("load invitation: %w", err)
	}
	if student == nil {
		return ErrInvalidToken
	}
	if !c.now().Before(student.SetupTokenExpires) {
		return ErrTokenExpired
	}

	taken, err := c.db.GetStudentByUsername(username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken != nil && taken.Phone != student.Phone {
		return ErrUsernameTaken
	}

	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	// the filtered update is the one-shot gate under concurrent setups; the
	// store reports ErrUsernameTaken when the unique index rejects a setup
	// that raced past the check above
	consumed, err := c.db.ConsumeSetupToken(token, username, hash, c.now())
	if errors.Is(err, ErrUsernameTaken) {
		return ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("consume invitation: %w", err)
	}
	if !consumed {
		return ErrInvalidToken
	}
	c.log.Info("account setup complete", sl.Secret("phone", student.Phone), slog.String("username", username))
	return nil
}

// LoginPassword accepts a username, phone number or email and returns a
// signed session token.
func (c *Core) LoginPassword(identifier, password string) (*entity.LoginResult, error) {
	if identifier == "" || password == "" {
		return nil, ErrMissingFields
	}
	if c.session == nil {
		return nil, ErrUnavailable
	}

	student, err := c.findProfile(identifier)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}
	if !student.HasPassword() {
		return nil, ErrPasswordNotSet
	}

	match, err := argon2id.ComparePasswordAndHash(password, student.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidPassword
	}

	token, err := c.session.IssueToken(student.Phone, student.Name, student.Email, entity.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	c.log.Info("password login", sl.Secret("phone", student.Phone))
	return &entity.LoginResult{
		Token:    token,
		Phone:    student.Phone,
		Email:    student.Email,
		Name:     student.Name,
		UserType: entity.RoleStudent,
	}, nil
}

func (c *Core) findProfile(identifier string) (*entity.Student, error) {
	if isEmail(identifier) {
		student, err := c.db.GetStudentByEmail(normalizeEmail(identifier))
		if err != nil {
			return nil, fmt.Errorf("find profile: %w", err)
		}
		return student, nil
	}
	student, err := c.db.GetStudentByUsername(identifier)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	if student != nil {
		return student, nil
	}
	phone, err := NormalizePhone(identifier)
	if err != nil {
		return nil, nil
	}
	student, err = c.db.GetStudent(phone)
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return student, nil
}

// --- instructor CRUD ---

func (c *Core) ListStudents() ([]*entity.Student, error) {
	students, err := c.db.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	if students == nil {
		students = []*entity.Student{}
	}
	return students, nil
}

func (c *Core) GetStudent(phoneNumber string) (*entity.Student, error) {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	student, err := c.db.GetStudent(phone)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if student == nil {
		return nil, ErrNotFound
	}
	return student, nil
}

func (c *Core) EditStudent(phoneNumber, name, email string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	matched, err := c.db.UpdateStudent(phone, name, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("edit student: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (c *Core) DeleteStudent(phoneNumber string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	deleted, err := c.db.DeleteStudent(phone)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	c.log.Info("student deleted", sl.Secret("phone", phone))
	return nil
}

// AssignLesson appends to the embedded list via the store's atomic push.
func (c *Core) AssignLesson(studentPhone, title, description string) (*entity.Lesson, error) {
	phone, err := NormalizePhone(studentPhone)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, ErrMissingFields
	}
	now := c.now()
	lesson := &entity.Lesson{
		Id:          strconv.FormatInt(now.UnixMilli(), 10),
		Title:       title,
		Description: description,
		Completed:   false,
		AssignedAt:  now,
	}
	matched, err := c.db.PushLesson(phone, lesson)
	if err != nil {
		return nil, fmt.Errorf("assign lesson: %w", err)
	}
	if !matched {
		return nil, ErrNotFound
	}
	c.log.Info("lesson assigned", sl.Secret("phone", phone), slog.String("lesson_id", lesson.Id))
	return lesson, nil
}

// --- student ---

func (c *Core) MyLessons(identifier string) (*entity.Student, error) {
	if identifier == "" {
		return nil, ErrMissingFields
	}
	student, err := c.findByContact(identifier)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}
	if student.Lessons == nil {
		student.Lessons = []entity.Lesson{}
	}
	return student, nil
}

func (c *Core) findByContact(identifier string) (*entity.Student, error) {
	if isEmail(identifier) {
		student, err := c.db.GetStudentByEmail(normalizeEmail(identifier))
		if err != nil {
			return nil, fmt.Errorf("find student: %w", err)
		}
		return student, nil
	}
	phone, err := NormalizePhone(identifier)
	if err != nil {
		return nil, err
	}
	student, err := c.db.GetStudent(phone)
	if err != nil {
		return nil, fmt.Errorf("find student: %w", err)
	}
	return student, nil
}

// MarkLessonDone is idempotent: once completed a lesson stays completed,
// and completedAt keeps its first value.
func (c *Core) MarkLessonDone(phoneNumber, lessonId string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	if lessonId == "" {
		return ErrMissingFields
	}
	matched, err := c.db.CompleteLesson(phone, lessonId, c.now())
	if err != nil {
		return fmt.Errorf("mark lesson done: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

func (c *Core) EditProfile(phoneNumber, name, email string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	if name == "" || email == "" {
		return ErrMissingFields
	}
	matched, err := c.db.UpdateStudent(phone, name, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("edit profile: %w", err)
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}
