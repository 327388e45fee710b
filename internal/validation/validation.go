// Package validation contains input validation rules enforced at the
// request boundary, before anything reaches the service layer.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
)

const (
	minPasswordLen = 12
	maxPasswordLen = 128
	maxEmailLen    = 254
	maxNameLen     = 50
	maxBioLen      = 500
)

// ValidatePassword enforces the password policy: 12-128 characters with at
// least one upper, one lower, one digit and one special character.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	if len(runes) > maxPasswordLen {
		return fmt.Errorf("password must be at most %d characters", maxPasswordLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return errors.New("password must contain an uppercase letter, a lowercase letter, a digit and a special character")
	}
	return nil
}

// ValidateEmail checks the address parses per RFC 5322 and fits length limits.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}
	if len(email) > maxEmailLen {
		return fmt.Errorf("email must be at most %d characters", maxEmailLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email address")
	}
	return nil
}

// ValidateName checks a display-name part (first or last name).
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%s is required", field)
	}
	if len([]rune(name)) > maxNameLen {
		return fmt.Errorf("%s must be at most %d characters", field, maxNameLen)
	}
	return nil
}

// ValidateBio caps biography length; an empty bio is fine.
func ValidateBio(bio string) error {
	if len([]rune(bio)) > maxBioLen {
		return fmt.Errorf("bio must be at most %d characters", maxBioLen)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address so email acts as a
// case-insensitive natural key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
