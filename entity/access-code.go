package entity

import (
	"net/http"
	"time"

	"classroom/lib/validate"
)

// AccessCode is a one-time login code keyed by the contact identifier
// (phone number or email). Issuing a new code for the same identifier
// overwrites the previous one; validation deletes the record.
type AccessCode struct {
	Identifier string    `json:"identifier" bson:"identifier"`
	Code       string    `json:"-" bson:"code"`
	CreatedAt  time.Time `json:"createdAt" bson:"created_at"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expires_at"`
}

func (c *AccessCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

type CreateAccessCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
}

func (r *CreateAccessCodeRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type ValidateAccessCodeRequest struct {
	PhoneNumber string `json:"phoneNumber" validate:"required"`
	AccessCode  string `json:"accessCode" validate:"required,len=6,numeric"`
}

func (r *ValidateAccessCodeRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type LoginEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (r *LoginEmailRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type ValidateEmailCodeRequest struct {
	Email      string `json:"email" validate:"required,email"`
	AccessCode string `json:"accessCode" validate:"required,len=6,numeric"`
}

func (r *ValidateEmailCodeRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

// CheckUserTypeRequest accepts either identifier; at least one is required.
type CheckUserTypeRequest struct {
	Email       string `json:"email" validate:"required_without=PhoneNumber,omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required_without=Email"`
}

func (r *CheckUserTypeRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}
