// Package session manages knowledge sessions: ordered groupings of captures,
// each with a bounded rolling context and a link to one remote page.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/metrics"
	"github.com/Priyank911/mapping/internal/store"
)

const (
	// MaxContextEntries caps a session's rolling context. Older entries are
	// evicted first; the lifetime ContentCount is never capped.
	MaxContextEntries = 30

	// MaxSummaryLength bounds each stored content summary.
	MaxSummaryLength = 300
)

// ErrNotFound is returned for operations on unknown session ids.
var ErrNotFound = errors.New("session not found")

// Patch holds the fields Update may shallow-merge onto a session.
type Patch struct {
	Name         *string
	RemotePageID *string
}

// Context is the read-only projection used to build the structuring prompt.
type Context struct {
	SessionName  string               `json:"session_name"`
	RemotePageID string               `json:"remote_page_id,omitempty"`
	Contents     []store.ContentEntry `json:"contents"`
	ContentCount int                  `json:"content_count"`
}

// Service owns the session list and the active-session pointer. All
// mutations go through single store transactions; the service-level mutex
// serializes multi-step read-modify-write so concurrent captures cannot lose
// updates.
type Service struct {
	store  store.Store
	engine *keys.Engine
	mu     sync.Mutex
}

// NewService creates a session store. The sessions gauge is seeded from the
// stored count so it survives restarts.
func NewService(s store.Store, engine *keys.Engine) *Service {
	if sessions, err := s.ListSessions(); err == nil {
		metrics.SessionsTotal.Set(float64(len(sessions)))
	}
	return &Service{store: s, engine: engine}
}

// Create allocates an id, inserts the session at the front of the list, and
// makes it active.
func (s *Service) Create(name string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &store.Session{
		ID:        s.engine.GenerateID(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Contents:  []store.ContentEntry{},
	}
	if err := s.store.PutSessionFront(session); err != nil {
		return nil, err
	}
	metrics.SessionsTotal.Inc()
	return session, nil
}

// Get retrieves a session by id.
func (s *Service) Get(id string) (*store.Session, error) {
	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return session, nil
}

// List returns all sessions in most-recent-first order.
func (s *Service) List() ([]*store.Session, error) {
	return s.store.ListSessions()
}

// GetActive returns the active session, or nil when none is set.
func (s *Service) GetActive() (*store.Session, error) {
	id, ok, err := s.store.GetActiveSessionID()
	if err != nil || !ok {
		return nil, err
	}
	session, err := s.store.GetSession(id)
	if err != nil {
		return nil, mapStoreError(err)
	}
	return session, nil
}

// SetActive points the active pointer at an existing session. Unknown ids
// are rejected with ErrNotFound.
func (s *Service) SetActive(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return mapStoreError(s.store.SetActiveSessionID(id))
}

// Update shallow-merges the patch onto the session, e.g. setting the remote
// page id after the first capture creates a page.
func (s *Service) Update(id string, patch Patch) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.UpdateSession(id, func(session *store.Session) error {
		if patch.Name != nil {
			session.Name = *patch.Name
		}
		if patch.RemotePageID != nil {
			session.RemotePageID = *patch.RemotePageID
		}
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}
	return session, nil
}

// AddContent appends a content entry with the summary truncated to
// MaxSummaryLength, trims the rolling context to the most recent
// MaxContextEntries, and increments both the session's ContentCount and the
// process-wide lifetime capture counter.
func (s *Service) AddContent(id, title, summary string) (*store.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.store.UpdateSession(id, func(session *store.Session) error {
		session.Contents = append(session.Contents, store.ContentEntry{
			Title:     title,
			Summary:   Truncate(summary, MaxSummaryLength),
			Timestamp: time.Now().UTC(),
		})
		if len(session.Contents) > MaxContextEntries {
			session.Contents = session.Contents[len(session.Contents)-MaxContextEntries:]
		}
		session.ContentCount++
		return nil
	})
	if err != nil {
		return nil, mapStoreError(err)
	}

	if _, err := s.store.IncrementCaptureCount(); err != nil {
		return nil, err
	}
	return session, nil
}

// Context returns the prompt-building projection for a session. Unknown ids
// yield an empty default context rather than an error.
func (s *Service) Context(id string) (*Context, error) {
	session, err := s.store.GetSession(id)
	if errors.Is(err, store.ErrNotFound) {
		return &Context{Contents: []store.ContentEntry{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Context{
		SessionName:  session.Name,
		RemotePageID: session.RemotePageID,
		Contents:     session.Contents,
		ContentCount: session.ContentCount,
	}, nil
}

// Delete removes a session. The store reassigns the active pointer to the
// new first session, or clears it when none remain.
func (s *Service) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.DeleteSession(id); err != nil {
		return mapStoreError(err)
	}
	metrics.SessionsTotal.Dec()
	return nil
}

// LifetimeCaptures returns the process-wide total number of captures.
func (s *Service) LifetimeCaptures() (int64, error) {
	return s.store.GetCaptureCount()
}

// Truncate clamps a string to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// mapStoreError translates store sentinels to session-level errors.
func mapStoreError(err error) error {
	if errors.Is(err, store.ErrSessionNotFound) {
		return ErrNotFound
	}
	return err
}
