package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/Priyank911/mapping/internal/crypto"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	s, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newSession(id, name string) *Session {
	return &Session{
		ID:        id,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Contents:  []ContentEntry{},
	}
}

func TestStateRoundTrip(t *testing.T) {
	s := newTestStore(t)

	var out bool
	found, err := s.GetState("missing", &out)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if found {
		t.Error("GetState() reported a missing key as present")
	}

	if err := s.SetState(StateSetupComplete, true); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	found, err = s.GetState(StateSetupComplete, &out)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !found || !out {
		t.Errorf("GetState() = (%v, %v), want (true, true)", out, found)
	}

	if err := s.DeleteState(StateSetupComplete); err != nil {
		t.Fatalf("DeleteState() error = %v", err)
	}
	found, err = s.GetState(StateSetupComplete, &out)
	if err != nil {
		t.Fatalf("GetState() after delete error = %v", err)
	}
	if found {
		t.Error("GetState() found a deleted key")
	}
}

func TestSecretRoundTrip(t *testing.T) {
	s := newTestStore(t)

	_, found, err := s.GetSecret("secure_api_key")
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if found {
		t.Error("GetSecret() reported a missing secret as present")
	}

	blob := &crypto.Blob{IV: make([]byte, crypto.IVSize), Ciphertext: []byte("opaque")}
	if err := s.SetSecret("secure_api_key", blob); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}

	got, found, err := s.GetSecret("secure_api_key")
	if err != nil {
		t.Fatalf("GetSecret() error = %v", err)
	}
	if !found {
		t.Fatal("GetSecret() did not find the stored secret")
	}
	if string(got.Ciphertext) != "opaque" {
		t.Errorf("GetSecret() ciphertext = %q, want %q", got.Ciphertext, "opaque")
	}

	if err := s.DeleteSecret("secure_api_key"); err != nil {
		t.Fatalf("DeleteSecret() error = %v", err)
	}
	_, found, err = s.GetSecret("secure_api_key")
	if err != nil {
		t.Fatalf("GetSecret() after delete error = %v", err)
	}
	if found {
		t.Error("GetSecret() found a deleted secret")
	}
}

func TestPutSessionFrontOrderAndActive(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := s.PutSessionFront(newSession(id, "session "+id)); err != nil {
			t.Fatalf("PutSessionFront(%s) error = %v", id, err)
		}
	}

	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	want := []string{"c", "b", "a"}
	if len(sessions) != len(want) {
		t.Fatalf("ListSessions() returned %d sessions, want %d", len(sessions), len(want))
	}
	for i, id := range want {
		if sessions[i].ID != id {
			t.Errorf("ListSessions()[%d].ID = %s, want %s", i, sessions[i].ID, id)
		}
	}

	active, ok, err := s.GetActiveSessionID()
	if err != nil {
		t.Fatalf("GetActiveSessionID() error = %v", err)
	}
	if !ok || active != "c" {
		t.Errorf("GetActiveSessionID() = (%s, %v), want (c, true)", active, ok)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSession("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("GetSession() error = %v, want ErrSessionNotFound", err)
	}
	if !errors.Is(ErrSessionNotFound, ErrNotFound) {
		t.Error("ErrSessionNotFound does not wrap ErrNotFound")
	}
}

func TestUpdateSession(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutSessionFront(newSession("a", "before")); err != nil {
		t.Fatalf("PutSessionFront() error = %v", err)
	}

	updated, err := s.UpdateSession("a", func(session *Session) error {
		session.Name = "after"
		session.ContentCount = 7
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateSession() error = %v", err)
	}
	if updated.Name != "after" || updated.ContentCount != 7 {
		t.Errorf("UpdateSession() = %+v, want name=after count=7", updated)
	}

	stored, err := s.GetSession("a")
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if stored.Name != "after" {
		t.Errorf("GetSession() name = %s, mutation was not persisted", stored.Name)
	}

	if _, err := s.UpdateSession("missing", func(*Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("UpdateSession() unknown id error = %v, want ErrSessionNotFound", err)
	}
}

func TestDeleteSessionReassignsActive(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := s.PutSessionFront(newSession(id, id)); err != nil {
			t.Fatalf("PutSessionFront(%s) error = %v", id, err)
		}
	}

	// Active is "c". Deleting it must point the active pointer at the new
	// first session, "b".
	if err := s.DeleteSession("c"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	active, ok, err := s.GetActiveSessionID()
	if err != nil {
		t.Fatalf("GetActiveSessionID() error = %v", err)
	}
	if !ok || active != "b" {
		t.Errorf("GetActiveSessionID() = (%s, %v), want (b, true)", active, ok)
	}

	// Deleting a non-active session leaves the pointer alone.
	if err := s.DeleteSession("a"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	active, ok, _ = s.GetActiveSessionID()
	if !ok || active != "b" {
		t.Errorf("GetActiveSessionID() = (%s, %v), want (b, true)", active, ok)
	}

	// Deleting the last session clears the pointer entirely.
	if err := s.DeleteSession("b"); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	_, ok, _ = s.GetActiveSessionID()
	if ok {
		t.Error("GetActiveSessionID() still set after deleting every session")
	}

	if err := s.DeleteSession("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("DeleteSession() unknown id error = %v, want ErrSessionNotFound", err)
	}
}

func TestSetActiveSessionIDValidates(t *testing.T) {
	s := newTestStore(t)
	if err := s.PutSessionFront(newSession("a", "a")); err != nil {
		t.Fatalf("PutSessionFront() error = %v", err)
	}

	if err := s.SetActiveSessionID("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("SetActiveSessionID() unknown id error = %v, want ErrSessionNotFound", err)
	}

	// The pointer must still reference the existing session.
	active, ok, err := s.GetActiveSessionID()
	if err != nil {
		t.Fatalf("GetActiveSessionID() error = %v", err)
	}
	if !ok || active != "a" {
		t.Errorf("GetActiveSessionID() = (%s, %v), want (a, true)", active, ok)
	}
}

func TestCaptureCount(t *testing.T) {
	s := newTestStore(t)

	count, err := s.GetCaptureCount()
	if err != nil {
		t.Fatalf("GetCaptureCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("GetCaptureCount() = %d, want 0", count)
	}

	for i := int64(1); i <= 3; i++ {
		got, err := s.IncrementCaptureCount()
		if err != nil {
			t.Fatalf("IncrementCaptureCount() error = %v", err)
		}
		if got != i {
			t.Errorf("IncrementCaptureCount() = %d, want %d", got, i)
		}
	}
}

func TestReset(t *testing.T) {
	s := newTestStore(t)

	if err := s.SetState(StateMasterKey, "exported-key"); err != nil {
		t.Fatalf("SetState() error = %v", err)
	}
	if err := s.SetSecret("secure_x", &crypto.Blob{IV: make([]byte, crypto.IVSize), Ciphertext: []byte("c")}); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if err := s.PutSessionFront(newSession("a", "a")); err != nil {
		t.Fatalf("PutSessionFront() error = %v", err)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	var out string
	found, err := s.GetState(StateMasterKey, &out)
	if err != nil {
		t.Fatalf("GetState() after reset error = %v", err)
	}
	if found {
		t.Error("Reset() left the master key export behind")
	}
	_, found, _ = s.GetSecret("secure_x")
	if found {
		t.Error("Reset() left a secret behind")
	}
	sessions, err := s.ListSessions()
	if err != nil {
		t.Fatalf("ListSessions() after reset error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("Reset() left %d sessions behind", len(sessions))
	}

	// The store must stay usable after a reset.
	if err := s.SetState("fresh", 1); err != nil {
		t.Errorf("SetState() after reset error = %v", err)
	}
}
