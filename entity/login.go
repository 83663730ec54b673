package entity

import (
	"net/http"

	"classroom/lib/validate"
)

// LoginPasswordRequest carries either a username, a phone number or an
// email in Identifier; the lookup tries all three.
type LoginPasswordRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

func (r *LoginPasswordRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

type SetupAccountRequest struct {
	Token    string `json:"token" validate:"required"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

func (r *SetupAccountRequest) Bind(_ *http.Request) error {
	return validate.Struct(r)
}

// LoginResult is returned on successful password login.
type LoginResult struct {
	Token    string `json:"token"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	UserType string `json:"userType"`
}

// CodeValidationResult is returned on successful one-time-code validation.
// Token carries the session for the resolved identity; the code flow is a
// full login, not just a verification step.
type CodeValidationResult struct {
	Token    string `json:"token"`
	UserType string `json:"userType"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

// InvitationDetails are the identity fields shown on the setup form.
type InvitationDetails struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
