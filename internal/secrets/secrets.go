// Package secrets provides the secret store: a key-value layer that routes
// sensitive entries through the encryption engine and keeps them namespaced
// away from plain state.
package secrets

import (
	"fmt"

	"github.com/Priyank911/mapping/internal/crypto"
	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/store"
)

// Logical names for the secrets the capture pipeline depends on.
const (
	NameGroqAPIKey        = "groq_api_key"
	NameNotionCredentials = "notion_credentials"
	NameUserProfile       = "user_profile"
)

// namespace prefixes every secret entry so plain and encrypted data can
// never collide on a key.
const namespace = "secure_"

// NotionCredentials holds the document-storage integration secrets.
type NotionCredentials struct {
	Token      string `json:"token"`
	DatabaseID string `json:"database_id"`
}

// UserProfile holds the local login identity, including the password record
// used to gate unlocking.
type UserProfile struct {
	Name     string         `json:"name,omitempty"`
	Email    string         `json:"email,omitempty"`
	Password *crypto.Record `json:"password"`
}

// Service is the secret store.
type Service struct {
	store  store.Store
	engine *keys.Engine
}

// NewService creates a secret store over the given persistence and engine.
func NewService(s store.Store, engine *keys.Engine) *Service {
	return &Service{store: s, engine: engine}
}

// GetPlain reads an unencrypted JSON value. The boolean reports presence.
func (s *Service) GetPlain(key string, out any) (bool, error) {
	return s.store.GetState(key, out)
}

// SetPlain stores an unencrypted JSON value.
func (s *Service) SetPlain(key string, value any) error {
	return s.store.SetState(key, value)
}

// GetSecret looks up a namespaced encrypted entry. An absent entry returns
// (false, nil); a present entry that fails to decrypt propagates the error,
// it is never converted to "not found".
func (s *Service) GetSecret(name string, out any) (bool, error) {
	blob, found, err := s.store.GetSecret(namespace + name)
	if err != nil {
		return false, fmt.Errorf("load secret %s: %w", name, err)
	}
	if !found {
		return false, nil
	}
	if err := s.engine.Decrypt(blob, out); err != nil {
		return false, fmt.Errorf("decrypt secret %s: %w", name, err)
	}
	return true, nil
}

// SetSecret encrypts the value and persists it under the namespaced name.
func (s *Service) SetSecret(name string, value any) error {
	blob, err := s.engine.Encrypt(value)
	if err != nil {
		return fmt.Errorf("encrypt secret %s: %w", name, err)
	}
	return s.store.SetSecret(namespace+name, blob)
}

// DeleteSecret removes a namespaced encrypted entry.
func (s *Service) DeleteSecret(name string) error {
	return s.store.DeleteSecret(namespace + name)
}

// ClearAll wipes all persisted state, including the master key export, and
// drops the in-memory key. A fresh key is generated on next use; everything
// encrypted before this call is permanently unrecoverable.
func (s *Service) ClearAll() error {
	if err := s.store.Reset(); err != nil {
		return fmt.Errorf("reset store: %w", err)
	}
	s.engine.ClearKey()
	return nil
}
