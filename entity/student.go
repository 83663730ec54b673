// Package entity defines domain types shared across the application.
package entity

import (
	"net/http"
	"time"

	"classroom/lib/validate"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
)

// Student is a profile document in the students collection, keyed by phone.
// Invitation state is embedded: a non-empty SetupToken marks the profile as
// pending; once SetupAccount runs the token fields are cleared and
// AccountSetup flips to true.
type Student struct {
	Phone             string    `json:"phone" bson:"phone"`
	Name              string    `json:"name" bson:"name"`
	Email             string    `json:"email" bson:"email"`
	Role              string    `json:"role" bson:"role"`
	Lessons           []Lesson  `json:"lessons" bson:"lessons"`
	Username          string    `json:"username,omitempty" bson:"username,omitempty"`
	PasswordHash      string    `json:"-" bson:"password_hash,omitempty"`
	AccountSetup      bool      `json:"accountSetup" bson:"account_setup"`
	SetupToken        string    `json:"-" bson:"setup_token,omitempty"`
	SetupTokenExpires time.Time `json:"-" bson:"setup_token_expires,omitempty"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
}

func (s *Student) IsPending() bool {
	return s.SetupToken != ""
}

func (s *Student) IsActive() bool {
	return s.AccountSetup && s.SetupToken == ""
}

// HasPassword reports whether password login is possible for this profile.
func (s *Student) HasPassword() bool {
	return s.PasswordHash != ""
}

type AddStudentRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (r *AddStudentRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type EditStudentRequest struct {
	Name  string `json:"name,omitempty" validate:"omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

func (r *EditStudentRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type EditProfileRequest struct {
	Phone string `json:"phone" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

func (r *EditProfileRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
