// Package store provides persistent local storage for Mapping.
package store

import "github.com/Priyank911/mapping/internal/crypto"

// Store defines the interface for local persistence. Plain state and
// encrypted secrets live in separate buckets so their key spaces never
// collide; session mutations are transactional with respect to the whole
// session list.
type Store interface {
	// Plain state (JSON values).
	GetState(key string, out any) (bool, error)
	SetState(key string, value any) error
	DeleteState(key string) error

	// Encrypted secrets.
	GetSecret(name string) (*crypto.Blob, bool, error)
	SetSecret(name string, blob *crypto.Blob) error
	DeleteSecret(name string) error

	// Sessions.
	PutSessionFront(session *Session) error
	GetSession(id string) (*Session, error)
	ListSessions() ([]*Session, error)
	UpdateSession(id string, mutate func(*Session) error) (*Session, error)
	DeleteSession(id string) error
	GetActiveSessionID() (string, bool, error)
	SetActiveSessionID(id string) error

	// Lifetime capture counter.
	IncrementCaptureCount() (int64, error)
	GetCaptureCount() (int64, error)

	// Reset wipes all persisted state, including the master key export.
	Reset() error

	// Lifecycle.
	Close() error
}

// Well-known plain state keys.
const (
	StateSetupComplete = "setup_complete"
	StateLocked        = "locked"
	StateMasterKey     = "master_key"
)
