// Package validation provides input validation functions.
package validation

import (
	"errors"
	"strings"
)

var (
	// ErrSessionNameEmpty is returned when a session name is empty.
	ErrSessionNameEmpty = errors.New("session name is required")
	// ErrSessionNameTooLong is returned when a session name exceeds 100 characters.
	ErrSessionNameTooLong = errors.New("session name must be at most 100 characters")

	// ErrPasswordTooShort is returned when a password is under 8 characters.
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")

	// ErrCaptureTextEmpty is returned when no text was selected for capture.
	ErrCaptureTextEmpty = errors.New("capture text is required")

	// ErrSecretNameEmpty is returned when a secret name is empty.
	ErrSecretNameEmpty = errors.New("secret name is required")
)

// SessionName validates a session name. Rules: 1-100 characters after trimming.
func SessionName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrSessionNameEmpty
	}
	if len(name) > 100 {
		return ErrSessionNameTooLong
	}
	return nil
}

// Password validates a user-chosen password.
func Password(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	return nil
}

// CaptureText validates text selected for capture.
func CaptureText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrCaptureTextEmpty
	}
	return nil
}

// SecretName validates a logical secret name.
func SecretName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrSecretNameEmpty
	}
	return nil
}
