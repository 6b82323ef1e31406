package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Priyank911/mapping/internal/crypto"
)

// Bucket names used in the bbolt database.
var (
	bucketState    = []byte("_state")
	bucketSecrets  = []byte("secrets")
	bucketSessions = []byte("sessions")
)

// Keys inside the state bucket that the bolt layer owns.
const (
	keySessionOrder  = "session_order"
	keyActiveSession = "active_session"
	keyCaptureCount  = "capture_count"
)

// Sentinel errors returned by store operations.
var (
	ErrNotFound        = errors.New("not found")
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
)

// BoltStore implements Store using bbolt.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) a bbolt database at the given path and
// ensures all required buckets exist. The file is created with 0600 permissions.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}

	if err = db.Update(createBuckets); err != nil {
		db.Close()
		return nil, fmt.Errorf("init buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func createBuckets(tx *bolt.Tx) error {
	for _, b := range [][]byte{bucketState, bucketSecrets, bucketSessions} {
		if _, err := tx.CreateBucketIfNotExists(b); err != nil {
			return fmt.Errorf("create bucket %s: %w", b, err)
		}
	}
	return nil
}

// Close closes the underlying bbolt database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Plain state
// ---------------------------------------------------------------------------

// GetState reads a plain JSON value. The boolean reports whether the key was
// present; an absent key is not an error.
func (s *BoltStore) GetState(key string, out any) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(key))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, out)
	})
	return found, err
}

// SetState stores a plain JSON value.
func (s *BoltStore) SetState(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal state %s: %w", key, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Put([]byte(key), data)
	})
}

// DeleteState removes a plain state key. Deleting an absent key is a no-op.
func (s *BoltStore) DeleteState(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketState).Delete([]byte(key))
	})
}

// ---------------------------------------------------------------------------
// Secrets
// ---------------------------------------------------------------------------

// GetSecret reads an encrypted blob by logical name. The boolean reports
// whether anything was stored under that name.
func (s *BoltStore) GetSecret(name string) (*crypto.Blob, bool, error) {
	var blob crypto.Blob
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketSecrets).Get([]byte(name))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &blob)
	})
	if err != nil || !found {
		return nil, found, err
	}
	return &blob, true, nil
}

// SetSecret stores an encrypted blob under a logical name.
func (s *BoltStore) SetSecret(name string, blob *crypto.Blob) error {
	data, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("marshal secret %s: %w", name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSecrets).Put([]byte(name), data)
	})
}

// DeleteSecret removes an encrypted blob by logical name.
func (s *BoltStore) DeleteSecret(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketSecrets).Delete([]byte(name))
	})
}

// ---------------------------------------------------------------------------
// Sessions
// ---------------------------------------------------------------------------

func readOrder(tx *bolt.Tx) ([]string, error) {
	v := tx.Bucket(bucketState).Get([]byte(keySessionOrder))
	if v == nil {
		return nil, nil
	}
	var order []string
	if err := json.Unmarshal(v, &order); err != nil {
		return nil, fmt.Errorf("unmarshal session order: %w", err)
	}
	return order, nil
}

func writeOrder(tx *bolt.Tx, order []string) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal session order: %w", err)
	}
	return tx.Bucket(bucketState).Put([]byte(keySessionOrder), data)
}

func putSession(tx *bolt.Tx, session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return tx.Bucket(bucketSessions).Put([]byte(session.ID), data)
}

func getSession(tx *bolt.Tx, id string) (*Session, error) {
	v := tx.Bucket(bucketSessions).Get([]byte(id))
	if v == nil {
		return nil, ErrSessionNotFound
	}
	var session Session
	if err := json.Unmarshal(v, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// PutSessionFront inserts a new session at the front of the list
// (most-recent-first ordering) and makes it the active session. The record,
// order index, and active pointer are written in one transaction.
func (s *BoltStore) PutSessionFront(session *Session) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := putSession(tx, session); err != nil {
			return err
		}
		order, err := readOrder(tx)
		if err != nil {
			return err
		}
		if err := writeOrder(tx, append([]string{session.ID}, order...)); err != nil {
			return err
		}
		return tx.Bucket(bucketState).Put([]byte(keyActiveSession), []byte(session.ID))
	})
}

// GetSession retrieves a session by id, or ErrSessionNotFound.
func (s *BoltStore) GetSession(id string) (*Session, error) {
	var session *Session
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		session, err = getSession(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessions returns all sessions in most-recent-first order.
func (s *BoltStore) ListSessions() ([]*Session, error) {
	var sessions []*Session
	err := s.db.View(func(tx *bolt.Tx) error {
		order, err := readOrder(tx)
		if err != nil {
			return err
		}
		for _, id := range order {
			session, err := getSession(tx, id)
			if err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return nil
	})
	return sessions, err
}

// UpdateSession applies mutate to the stored session inside a single
// transaction and returns the updated record. The read-modify-write cannot
// interleave with another writer.
func (s *BoltStore) UpdateSession(id string, mutate func(*Session) error) (*Session, error) {
	var updated *Session
	err := s.db.Update(func(tx *bolt.Tx) error {
		session, err := getSession(tx, id)
		if err != nil {
			return err
		}
		if err := mutate(session); err != nil {
			return err
		}
		updated = session
		return putSession(tx, session)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSession removes a session. If it was active, the active pointer is
// reassigned to the new first session, or cleared when none remain. The
// pointer can never be left referencing a deleted session.
func (s *BoltStore) DeleteSession(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		sessions := tx.Bucket(bucketSessions)
		if sessions.Get([]byte(id)) == nil {
			return ErrSessionNotFound
		}
		if err := sessions.Delete([]byte(id)); err != nil {
			return err
		}

		order, err := readOrder(tx)
		if err != nil {
			return err
		}
		remaining := make([]string, 0, len(order))
		for _, sid := range order {
			if sid != id {
				remaining = append(remaining, sid)
			}
		}
		if err := writeOrder(tx, remaining); err != nil {
			return err
		}

		state := tx.Bucket(bucketState)
		active := state.Get([]byte(keyActiveSession))
		if string(active) != id {
			return nil
		}
		if len(remaining) == 0 {
			return state.Delete([]byte(keyActiveSession))
		}
		return state.Put([]byte(keyActiveSession), []byte(remaining[0]))
	})
}

// GetActiveSessionID returns the active session id, or false when none is set.
func (s *BoltStore) GetActiveSessionID() (string, bool, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(keyActiveSession))
		id = string(v)
		return nil
	})
	return id, id != "", err
}

// SetActiveSessionID points the active pointer at an existing session. It
// returns ErrSessionNotFound for unknown ids rather than silently pointing
// at nothing.
func (s *BoltStore) SetActiveSessionID(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketSessions).Get([]byte(id)) == nil {
			return ErrSessionNotFound
		}
		return tx.Bucket(bucketState).Put([]byte(keyActiveSession), []byte(id))
	})
}

// ---------------------------------------------------------------------------
// Capture counter
// ---------------------------------------------------------------------------

// IncrementCaptureCount bumps the lifetime capture counter and returns the
// new value.
func (s *BoltStore) IncrementCaptureCount() (int64, error) {
	var count int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		state := tx.Bucket(bucketState)
		if v := state.Get([]byte(keyCaptureCount)); v != nil {
			parsed, err := strconv.ParseInt(string(v), 10, 64)
			if err != nil {
				return fmt.Errorf("parse capture count: %w", err)
			}
			count = parsed
		}
		count++
		return state.Put([]byte(keyCaptureCount), []byte(strconv.FormatInt(count, 10)))
	})
	return count, err
}

// GetCaptureCount returns the lifetime capture counter.
func (s *BoltStore) GetCaptureCount() (int64, error) {
	var count int64
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketState).Get([]byte(keyCaptureCount))
		if v == nil {
			return nil
		}
		parsed, err := strconv.ParseInt(string(v), 10, 64)
		if err != nil {
			return fmt.Errorf("parse capture count: %w", err)
		}
		count = parsed
		return nil
	})
	return count, err
}

// ---------------------------------------------------------------------------
// Reset
// ---------------------------------------------------------------------------

// Reset deletes every bucket and recreates them empty. The master key export
// is destroyed with the state bucket, so all previously encrypted material
// becomes permanently unrecoverable.
func (s *BoltStore) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketState, bucketSecrets, bucketSessions} {
			if err := tx.DeleteBucket(b); err != nil {
				return fmt.Errorf("delete bucket %s: %w", b, err)
			}
		}
		return createBuckets(tx)
	})
}
