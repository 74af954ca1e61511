package utils

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxNameLength     = 50
	MaxTitleLength    = 200
	MaxMoodLength     = 16
)

// ValidationError represents a validation error.
// Key, when set, is the message key handlers render in the request's language.
type ValidationError struct {
	Field   string
	Message string
	Key     string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return &ValidationError{Field: "email", Message: "Email is required"}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &ValidationError{Field: "email", Message: "Email is not valid"}
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks a first or last name; empty is allowed only when required is false.
func ValidateName(field, name string, required bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		if required {
			return &ValidationError{Field: field, Message: field + " is required"}
		}
		return nil
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return &ValidationError{Field: field, Message: field + " must be at most 50 characters"}
	}
	return nil
}

// ValidateMood accepts a short free-form string, typically a single emoji.
func ValidateMood(mood string) error {
	mood = strings.TrimSpace(mood)
	if mood == "" {
		return &ValidationError{Field: "mood", Message: "Mood is required"}
	}
	if utf8.RuneCountInString(mood) > MaxMoodLength {
		return &ValidationError{Field: "mood", Message: "Mood must be at most 16 characters"}
	}
	return nil
}
