// Package keys implements the encryption engine: it owns the master key
// lifecycle and performs authenticated encryption of JSON values on top of
// the crypto primitives.
package keys

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/Priyank911/mapping/internal/crypto"
	"github.com/Priyank911/mapping/internal/store"
)

// ErrKeyUnavailable is returned by Decrypt when no master key is cached and
// no persisted export exists. It is distinct from a "nothing stored" lookup.
var ErrKeyUnavailable = errors.New("master key unavailable")

const flightKey = "master_key"

// Engine holds the process-scoped master key with an explicit lifecycle.
// Exactly one master key exists per installation: the first use generates it
// and persists its exported form next to the secrets it protects.
type Engine struct {
	store store.Store

	mu    sync.RWMutex
	key   []byte // nil when locked or not yet resolved
	group singleflight.Group
}

// NewEngine creates an engine backed by the given store. The master key is
// resolved lazily on first use.
func NewEngine(s store.Store) *Engine {
	return &Engine{store: s}
}

// GetOrCreateKey returns the master key, loading a previously persisted
// export or generating and persisting a new key on first use. Overlapping
// calls before the key is resolved collapse into one creation path. Callers
// receive a private copy of the key material: a concurrent ClearKey zeroes
// only the engine's slice, never bytes an in-flight operation already holds.
func (e *Engine) GetOrCreateKey() ([]byte, error) {
	return e.resolveKey(true)
}

func (e *Engine) resolveKey(create bool) ([]byte, error) {
	if key := e.copyKey(); key != nil {
		return key, nil
	}

	v, err, _ := e.group.Do(flightKey, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have resolved it.
		if cached := e.copyKey(); cached != nil {
			return cached, nil
		}

		var encoded string
		found, err := e.store.GetState(store.StateMasterKey, &encoded)
		if err != nil {
			return nil, fmt.Errorf("load master key: %w", err)
		}

		var resolved []byte
		switch {
		case found:
			resolved, err = crypto.DecodeKey(encoded)
			if err != nil {
				return nil, fmt.Errorf("import master key: %w", err)
			}
		case create:
			resolved, err = crypto.GenerateKey()
			if err != nil {
				return nil, fmt.Errorf("generate master key: %w", err)
			}
			if err := e.store.SetState(store.StateMasterKey, crypto.EncodeKey(resolved)); err != nil {
				crypto.ZeroBytes(resolved)
				return nil, fmt.Errorf("persist master key: %w", err)
			}
		default:
			return nil, ErrKeyUnavailable
		}

		e.mu.Lock()
		e.key = resolved
		out := append([]byte(nil), resolved...)
		e.mu.Unlock()
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// copyKey returns a copy of the cached key, or nil when none is cached. The
// copy is taken under the lock so it can never observe a partial zeroing.
func (e *Engine) copyKey() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.key == nil {
		return nil
	}
	return append([]byte(nil), e.key...)
}

// Encrypt JSON-serializes the value and encrypts it under the master key
// with a fresh random IV.
func (e *Engine) Encrypt(value any) (*crypto.Blob, error) {
	key, err := e.GetOrCreateKey()
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("serialize value: %w", err)
	}
	return crypto.Encrypt(key, plaintext)
}

// Decrypt authenticates and decrypts a blob, unmarshaling the plaintext into
// out. It fails with ErrKeyUnavailable when no key exists and with
// crypto.ErrDecryptionFailed on tampering or a wrong key; it never creates a
// new master key.
func (e *Engine) Decrypt(blob *crypto.Blob, out any) error {
	key, err := e.resolveKey(false)
	if err != nil {
		return err
	}

	plaintext, err := crypto.Decrypt(key, blob)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("deserialize value: %w", err)
	}
	return nil
}

// HashPassword produces a salted PBKDF2 record for the password.
func (e *Engine) HashPassword(password string) (*crypto.Record, error) {
	return crypto.HashPassword(password)
}

// VerifyPassword reports whether the password matches the record.
func (e *Engine) VerifyPassword(password string, record *crypto.Record) bool {
	return crypto.VerifyPassword(password, record)
}

// ClearKey drops the in-memory key reference, e.g. on lock. The persisted
// export is untouched, so the next GetOrCreateKey reloads rather than
// regenerates.
func (e *Engine) ClearKey() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.key != nil {
		crypto.ZeroBytes(e.key)
		e.key = nil
	}
}

// GenerateID produces a collision-resistant opaque identifier with a
// time-ordered component (UUIDv7). Used for session ids; not
// security-sensitive.
func (e *Engine) GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		return uuid.New().String()
	}
	return id.String()
}
