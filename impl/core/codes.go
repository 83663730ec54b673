package core

import (
	"fmt"
	"log/slog"
	"strings"

	"classroom/entity"
	"classroom/lib/sl"
)

// IssuePhoneCode stores a fresh one-time code for the phone number and
// dispatches it by SMS. A previous live code for the same number is
// overwritten.
func (c *Core) IssuePhoneCode(phoneNumber string) error {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return err
	}
	if c.sms == nil {
		return ErrUnavailable
	}
	code, err := c.storeCode(phone)
	if err != nil {
		return err
	}
	if err = c.sms.SendAccessCode(phone, code); err != nil {
		// the orphaned record self-expires
		return fmt.Errorf("deliver code: %w", err)
	}
	c.log.Debug("access code issued", slog.String("channel", "sms"), sl.Secret("identifier", phone))
	return nil
}

// IssueEmailCode is the email counterpart of IssuePhoneCode.
func (c *Core) IssueEmailCode(email string) error {
	identifier := normalizeEmail(email)
	if identifier == "" {
		return ErrMissingFields
	}
	if c.mail == nil {
		return ErrUnavailable
	}
	code, err := c.storeCode(identifier)
	if err != nil {
		return err
	}
	if err = c.mail.SendAccessCode(identifier, code); err != nil {
		return fmt.Errorf("deliver code: %w", err)
	}
	c.log.Debug("access code issued", slog.String("channel", "email"), sl.Secret("identifier", identifier))
	return nil
}

func (c *Core) storeCode(identifier string) (string, error) {
	code, err := generateAccessCode()
	if err != nil {
		return "", err
	}
	now := c.now()
	record := &entity.AccessCode{
		Identifier: identifier,
		Code:       code,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.opts.CodeTTL),
	}
	if err = c.db.SaveAccessCode(record); err != nil {
		return "", fmt.Errorf("store code: %w", err)
	}
	return code, nil
}

// ValidatePhoneCode checks a submitted code, deletes it on success
// (single use) and resolves the caller's user type.
func (c *Core) ValidatePhoneCode(phoneNumber, submitted string) (*entity.CodeValidationResult, error) {
	phone, err := NormalizePhone(phoneNumber)
	if err != nil {
		return nil, err
	}
	return c.validateCode(phone, submitted)
}

func (c *Core) ValidateEmailCode(email, submitted string) (*entity.CodeValidationResult, error) {
	identifier := normalizeEmail(email)
	if identifier == "" {
		return nil, ErrMissingFields
	}
	return c.validateCode(identifier, submitted)
}

func (c *Core) validateCode(identifier, submitted string) (*entity.CodeValidationResult, error) {
	if c.session == nil {
		return nil, ErrUnavailable
	}
	record, err := c.db.GetAccessCode(identifier)
	if err != nil {
		return nil, fmt.Errorf("load code: %w", err)
	}
	if record == nil || record.Code == "" {
		return nil, ErrNotFound
	}
	if record.Code != submitted {
		return nil, ErrInvalidCode
	}
	if record.IsExpired(c.now()) {
		return nil, ErrCodeExpired
	}
	if err = c.db.DeleteAccessCode(identifier); err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	result, err := c.resolveIdentity(identifier)
	if err != nil {
		return nil, err
	}
	if err = c.registerFirstLogin(identifier, result.UserType); err != nil {
		return nil, err
	}

	// the code flow is a login in its own right: instructors have no other
	// way to obtain a session
	subject := identifier
	if result.Phone != "" {
		subject = result.Phone
	}
	result.Token, err = c.session.IssueToken(subject, result.Name, result.Email, result.UserType)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	c.log.Info("access code validated",
		sl.Secret("identifier", identifier),
		slog.String("user_type", result.UserType),
	)
	return result, nil
}

// CheckUserType resolves an identifier without touching any code.
func (c *Core) CheckUserType(identifier string) (string, error) {
	if isEmail(identifier) {
		identifier = normalizeEmail(identifier)
	} else {
		var err error
		identifier, err = NormalizePhone(identifier)
		if err != nil {
			return "", err
		}
	}
	result, err := c.resolveIdentity(identifier)
	if err != nil {
		return "", err
	}
	return result.UserType, nil
}

// resolveIdentity maps an identifier to a user type: student when a
// matching profile exists by phone or email, instructor otherwise.
func (c *Core) resolveIdentity(identifier string) (*entity.CodeValidationResult, error) {
	var student *entity.Student
	var err error
	if isEmail(identifier) {
		student, err = c.db.GetStudentByEmail(identifier)
	} else {
		student, err = c.db.GetStudent(identifier)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}
	if student == nil {
		return &entity.CodeValidationResult{UserType: entity.RoleInstructor}, nil
	}
	return &entity.CodeValidationResult{
		UserType: entity.RoleStudent,
		Phone:    student.Phone,
		Email:    student.Email,
		Name:     student.Name,
	}, nil
}

// registerFirstLogin records a bare identity on the first successful code
// validation. This is the explicit replacement for the implicit
// create-on-login side effect of earlier revisions.
func (c *Core) registerFirstLogin(identifier, userType string) error {
	existing, err := c.db.GetUserRecord(identifier)
	if err != nil {
		return fmt.Errorf("load user record: %w", err)
	}
	if existing != nil {
		return nil
	}
	user := &entity.User{
		Identifier: identifier,
		Role:       userType,
		CreatedAt:  c.now(),
	}
	if err = c.db.SaveUserRecord(user); err != nil {
		return fmt.Errorf("save user record: %w", err)
	}
	c.log.Info("first login registered", sl.Secret("identifier", identifier), slog.String("role", userType))
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
