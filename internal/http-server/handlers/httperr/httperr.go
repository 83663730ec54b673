// Package httperr maps core sentinel errors onto HTTP status codes so
// every handler renders failures the same way.
package httperr

import (
	"errors"
	"net/http"

	"classroom/impl/core"
)

func Status(err error) int {
	switch {
	case errors.Is(err, core.ErrMissingFields),
		errors.Is(err, core.ErrPasswordTooShort):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrInvalidCode),
		errors.Is(err, core.ErrCodeExpired),
		errors.Is(err, core.ErrInvalidToken),
		errors.Is(err, core.ErrTokenExpired),
		errors.Is(err, core.ErrInvalidPassword),
		errors.Is(err, core.ErrPasswordNotSet):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUsernameTaken),
		errors.Is(err, core.ErrStudentExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Message hides internals on upstream failures; sentinel errors are safe
// to show as-is.
func Message(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "Request failed"
	}
	return err.Error()
}
