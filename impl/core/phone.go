package core

import (
	"strings"
)

// NormalizePhone reduces a phone number to a single canonical form so the
// same physical user never fragments across multiple documents. Formatting
// characters are stripped; a leading + is preserved or added for numbers
// long enough to carry a country code.
func NormalizePhone(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	plus := strings.HasPrefix(trimmed, "+")

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()
	if number == "" {
		return "", ErrMissingFields
	}
	if plus || len(number) >= 11 {
		return "+" + number, nil
	}
	return number, nil
}

// isEmail is a cheap channel discriminator; full address validation
// happens at the binding layer.
func isEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}
