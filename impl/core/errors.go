package core

import "errors"

// Sentinel errors returned to handlers, which map them to HTTP statuses.
// Collaborator failures are wrapped with %w and reach the handler as a
// plain error, rendered as an upstream failure.
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrNotFound         = errors.New("not found")
	ErrInvalidCode      = errors.New("invalid code")
	ErrCodeExpired      = errors.New("code expired")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrTokenExpired     = errors.New("token expired")
	ErrUsernameTaken    = errors.New("username already taken")
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordNotSet   = errors.New("password not set")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrStudentExists    = errors.New("student already exists")
	ErrUnavailable      = errors.New("service not available")
)
