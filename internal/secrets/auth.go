package secrets

import (
	"errors"
	"fmt"

	"github.com/Priyank911/mapping/internal/store"
)

var (
	// ErrWrongPassword is returned when the password does not match.
	ErrWrongPassword = errors.New("wrong password")

	// ErrNotSetup is returned when no user profile has been stored yet.
	ErrNotSetup = errors.New("setup incomplete")
)

// Setup stores the user profile with a freshly hashed password and marks
// setup complete. The vault starts unlocked.
func (s *Service) Setup(password, name, email string) error {
	record, err := s.engine.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	profile := UserProfile{Name: name, Email: email, Password: record}
	if err := s.SetSecret(NameUserProfile, &profile); err != nil {
		return err
	}
	if err := s.SetPlain(store.StateSetupComplete, true); err != nil {
		return err
	}
	return s.SetPlain(store.StateLocked, false)
}

// Unlock verifies the password against the stored profile and clears the
// locked flag. A wrong password returns ErrWrongPassword; ErrNotSetup means
// no profile exists yet.
func (s *Service) Unlock(password string) error {
	var profile UserProfile
	found, err := s.GetSecret(NameUserProfile, &profile)
	if err != nil {
		return err
	}
	if !found {
		return ErrNotSetup
	}
	if !s.engine.VerifyPassword(password, profile.Password) {
		return ErrWrongPassword
	}
	return s.SetPlain(store.StateLocked, false)
}

// Lock sets the locked flag and drops the in-memory master key. In-flight
// operations are not corrupted; their next encrypt or decrypt call fails
// cleanly and the persisted key export remains for the next unlock.
func (s *Service) Lock() error {
	if err := s.SetPlain(store.StateLocked, true); err != nil {
		return err
	}
	s.engine.ClearKey()
	return nil
}

// IsSetup reports whether onboarding has completed.
func (s *Service) IsSetup() (bool, error) {
	var setup bool
	if _, err := s.GetPlain(store.StateSetupComplete, &setup); err != nil {
		return false, err
	}
	return setup, nil
}

// IsLocked reports whether the vault is locked.
func (s *Service) IsLocked() (bool, error) {
	var locked bool
	if _, err := s.GetPlain(store.StateLocked, &locked); err != nil {
		return false, err
	}
	return locked, nil
}
