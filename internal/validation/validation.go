// Package validation provides input validation functions.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var (
	// ErrEmailEmpty is returned when the email is empty.
	ErrEmailEmpty = errors.New("email is required")
	// ErrEmailInvalid is returned when the email is not a plausible address.
	ErrEmailInvalid = errors.New("email is not a valid address")

	// ErrNameTooShort is returned when a display name is less than 2 characters.
	ErrNameTooShort = errors.New("name must be at least 2 characters")
	// ErrNameTooLong is returned when a display name exceeds 100 characters.
	ErrNameTooLong = errors.New("name must be at most 100 characters")

	// ErrPasswordTooShort is returned when a password is less than 8 characters.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	// ErrPasswordWeak is returned when a password lacks required character classes.
	ErrPasswordWeak = errors.New("password must contain an uppercase letter, a lowercase letter, and a digit")

	// ErrKeyNameTooShort is returned when an api key name is less than 3 characters.
	ErrKeyNameTooShort = errors.New("key name must be at least 3 characters")
	// ErrKeyNameTooLong is returned when an api key name exceeds 100 characters.
	ErrKeyNameTooLong = errors.New("key name must be at most 100 characters")

	// ErrKeySecretTooShort is returned when an api key secret is less than 32 characters.
	ErrKeySecretTooShort = errors.New("key secret must be at least 32 characters")
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email validates an email address.
func Email(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrEmailEmpty
	}
	if !emailRegex.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// Name validates a display name.
// Rules: 2-100 characters after trimming.
func Name(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return ErrNameTooShort
	}
	if len(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

// Password validates a registration password.
// Rules: at least 8 characters, with an uppercase letter, a lowercase
// letter, and a digit.
func Password(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return ErrPasswordWeak
	}
	return nil
}

// KeyName validates a stored api key's display name.
// Rules: 3-100 characters after trimming.
func KeyName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) < 3 {
		return ErrKeyNameTooShort
	}
	if len(name) > 100 {
		return ErrKeyNameTooLong
	}
	return nil
}

// KeySecret validates the secret material of a stored api key.
// Rules: at least 32 characters; real provider keys are never shorter.
func KeySecret(secret string) error {
	if len(secret) < 32 {
		return ErrKeySecretTooShort
	}
	return nil
}
