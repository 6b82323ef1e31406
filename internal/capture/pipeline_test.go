package capture

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/llm"
	"github.com/Priyank911/mapping/internal/notion"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
	"github.com/Priyank911/mapping/internal/store"
)

// fakeStructurer returns a fixed result and records calls.
type fakeStructurer struct {
	result *llm.Result
	calls  int
}

func (f *fakeStructurer) Structure(_ context.Context, req llm.Request) *llm.Result {
	f.calls++
	if f.result != nil {
		return f.result
	}
	return llm.Fallback(req.Text)
}

// fakeStorage records calls and can fail any operation.
type fakeStorage struct {
	titleProperty string
	pageID        string

	failCreate bool
	failAppend bool

	createCalls int
	appendCalls int
	appended    []notion.Block
	created     []notion.Block
	pageTitle   string
}

func (f *fakeStorage) GetTitleProperty(context.Context, string) (string, error) {
	if f.titleProperty == "" {
		return "Name", nil
	}
	return f.titleProperty, nil
}

func (f *fakeStorage) CreatePage(_ context.Context, _, _, title string, children []notion.Block) (string, error) {
	f.createCalls++
	if f.failCreate {
		return "", &notion.APIError{Status: 400, Message: "body failed validation"}
	}
	f.pageTitle = title
	f.created = children
	if f.pageID == "" {
		f.pageID = "page-1"
	}
	return f.pageID, nil
}

func (f *fakeStorage) AppendBlocks(_ context.Context, _ string, blocks []notion.Block) error {
	f.appendCalls++
	if f.failAppend {
		return &notion.APIError{Status: 502, Message: "bad gateway"}
	}
	f.appended = blocks
	return nil
}

type fixture struct {
	pipeline   *Pipeline
	secrets    *secrets.Service
	sessions   *session.Service
	structurer *fakeStructurer
	storage    *fakeStorage
}

// newFixture builds a pipeline over a real bolt store with fake collaborators,
// fully provisioned: setup done, unlocked, credentials stored, one active
// session.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	boltStore, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { boltStore.Close() })

	engine := keys.NewEngine(boltStore)
	sec := secrets.NewService(boltStore, engine)
	sess := session.NewService(boltStore, engine)

	if err := sec.Setup("hunter2hunter2", "", ""); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := sec.SetSecret(secrets.NameGroqAPIKey, "gsk_test"); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if err := sec.SetSecret(secrets.NameNotionCredentials, &secrets.NotionCredentials{
		Token:      "secret_tok",
		DatabaseID: "db123",
	}); err != nil {
		t.Fatalf("SetSecret() error = %v", err)
	}
	if _, err := sess.Create("research"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	structurer := &fakeStructurer{}
	storage := &fakeStorage{}
	pipeline := NewPipeline(sec, sess,
		WithStructurerFactory(func(string) llm.Structurer { return structurer }),
		WithStorageFactory(func(string) notion.Storage { return storage }),
	)
	return &fixture{
		pipeline:   pipeline,
		secrets:    sec,
		sessions:   sess,
		structurer: structurer,
		storage:    storage,
	}
}

func TestCapturePreconditions(t *testing.T) {
	tests := []struct {
		name   string
		breakF func(*testing.T, *fixture)
		reason string
	}{
		{
			name: "not_setup",
			breakF: func(t *testing.T, f *fixture) {
				if err := f.secrets.SetPlain(store.StateSetupComplete, false); err != nil {
					t.Fatal(err)
				}
			},
			reason: ReasonSetupIncomplete,
		},
		{
			name: "locked",
			breakF: func(t *testing.T, f *fixture) {
				if err := f.secrets.Lock(); err != nil {
					t.Fatal(err)
				}
			},
			reason: ReasonLocked,
		},
		{
			name: "no_active_session",
			breakF: func(t *testing.T, f *fixture) {
				active, err := f.sessions.GetActive()
				if err != nil || active == nil {
					t.Fatal("fixture has no active session")
				}
				if err := f.sessions.Delete(active.ID); err != nil {
					t.Fatal(err)
				}
			},
			reason: ReasonNoActiveSession,
		},
		{
			name: "missing_ai_key",
			breakF: func(t *testing.T, f *fixture) {
				if err := f.secrets.DeleteSecret(secrets.NameGroqAPIKey); err != nil {
					t.Fatal(err)
				}
			},
			reason: ReasonMissingAIKey,
		},
		{
			name: "missing_storage_credentials",
			breakF: func(t *testing.T, f *fixture) {
				if err := f.secrets.DeleteSecret(secrets.NameNotionCredentials); err != nil {
					t.Fatal(err)
				}
			},
			reason: ReasonMissingStorageCred,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.breakF(t, f)

			_, err := f.pipeline.Capture(context.Background(), Request{Text: "some text"})
			var pe *PreconditionError
			if !errors.As(err, &pe) {
				t.Fatalf("Capture() error = %v, want *PreconditionError", err)
			}
			if pe.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", pe.Reason, tt.reason)
			}
			if !IsPrecondition(err) {
				t.Error("IsPrecondition() = false")
			}

			// Precondition failures must abort before any external call.
			if f.structurer.calls != 0 {
				t.Error("structuring collaborator was called despite a failed precondition")
			}
			if f.storage.createCalls != 0 || f.storage.appendCalls != 0 {
				t.Error("storage was called despite a failed precondition")
			}
		})
	}
}

func TestCaptureFirstCreatesPage(t *testing.T) {
	f := newFixture(t)
	f.structurer.result = &llm.Result{Title: "GC Tuning", Connections: []llm.Connection{}}

	result, err := f.pipeline.Capture(context.Background(), Request{
		Text:      "first paragraph\n\nsecond paragraph",
		SourceURL: "https://example.com/gc",
	})
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	if !result.PageCreated {
		t.Error("first capture did not create a page")
	}
	if result.PageID != "page-1" {
		t.Errorf("PageID = %q, want page-1", result.PageID)
	}
	if result.Title != "GC Tuning" {
		t.Errorf("Title = %q", result.Title)
	}
	if result.UsedFallback {
		t.Error("UsedFallback = true for a structured result")
	}
	if result.ContentCount != 1 {
		t.Errorf("ContentCount = %d, want 1", result.ContentCount)
	}

	if f.storage.pageTitle != "research" {
		t.Errorf("page created with title %q, want the session name", f.storage.pageTitle)
	}
	// Page scaffold: table of contents, divider, heading, two paragraphs,
	// source link, trailing divider.
	if len(f.storage.created) != 7 {
		t.Fatalf("created page with %d children, want 7", len(f.storage.created))
	}
	if f.storage.created[0]["type"] != "table_of_contents" {
		t.Error("page does not start with a table of contents")
	}

	// The session must remember the new remote page.
	active, err := f.sessions.GetActive()
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active.RemotePageID != "page-1" {
		t.Errorf("session RemotePageID = %q, want page-1", active.RemotePageID)
	}
}

func TestCaptureSecondAppends(t *testing.T) {
	f := newFixture(t)

	if _, err := f.pipeline.Capture(context.Background(), Request{Text: "first capture text"}); err != nil {
		t.Fatalf("first Capture() error = %v", err)
	}

	f.structurer.result = &llm.Result{
		Title: "Second Section",
		Connections: []llm.Connection{
			{Target: "First Section", Relationship: "expands on the same topic"},
		},
	}
	result, err := f.pipeline.Capture(context.Background(), Request{Text: "second capture text"})
	if err != nil {
		t.Fatalf("second Capture() error = %v", err)
	}

	if result.PageCreated {
		t.Error("second capture recreated the page")
	}
	if result.PageID != "page-1" {
		t.Errorf("PageID = %q, want page-1", result.PageID)
	}
	if result.ContentCount != 2 {
		t.Errorf("ContentCount = %d, want 2", result.ContentCount)
	}
	if f.storage.createCalls != 1 {
		t.Errorf("CreatePage called %d times, want 1", f.storage.createCalls)
	}
	if f.storage.appendCalls != 1 {
		t.Errorf("AppendBlocks called %d times, want 1", f.storage.appendCalls)
	}

	// Appended blocks: heading, paragraph, connections toggle, divider.
	var toggle notion.Block
	for _, b := range f.storage.appended {
		if b["type"] == "toggle" {
			toggle = b
		}
	}
	if toggle == nil {
		t.Fatal("append with connections is missing the toggle block")
	}

	items := toggle["toggle"].(map[string]any)["children"].([]notion.Block)
	if len(items) != 1 {
		t.Fatalf("toggle holds %d items, want 1", len(items))
	}
	item := items[0]["bulleted_list_item"].(map[string]any)
	text := item["rich_text"].([]map[string]any)[0]["text"].(map[string]any)["content"]
	if text != "First Section — expands on the same topic" {
		t.Errorf("connection line = %q, want the em-dash separated form", text)
	}
}

func TestCaptureStructuringFallbackStillStores(t *testing.T) {
	f := newFixture(t)
	// No fixed result: the fake degrades to the deterministic fallback, the
	// same behavior as a failed model call.

	result, err := f.pipeline.Capture(context.Background(), Request{Text: "unreachable model capture text"})
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}
	if !result.UsedFallback {
		t.Error("UsedFallback = false for a fallback result")
	}
	if result.Title != "unreachable model capture text" {
		t.Errorf("Title = %q, want the fallback title", result.Title)
	}
	if f.storage.createCalls != 1 {
		t.Error("fallback capture did not reach storage")
	}
	if result.ContentCount != 1 {
		t.Errorf("ContentCount = %d, want 1", result.ContentCount)
	}
}

func TestCaptureStorageFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.storage.failCreate = true

	_, err := f.pipeline.Capture(context.Background(), Request{Text: "doomed capture"})
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("Capture() error = %v, want *StorageError", err)
	}
	if se.Message != "body failed validation" {
		t.Errorf("StorageError message = %q, want the remote message", se.Message)
	}
	var apiErr *notion.APIError
	if !errors.As(err, &apiErr) {
		t.Error("StorageError does not wrap the underlying APIError")
	}

	// A failed capture records nothing.
	active, err := f.sessions.GetActive()
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active.ContentCount != 0 || active.RemotePageID != "" {
		t.Errorf("failed capture mutated the session: %+v", active)
	}
}

func TestCaptureAppendFailureKeepsPageID(t *testing.T) {
	f := newFixture(t)
	if _, err := f.pipeline.Capture(context.Background(), Request{Text: "first"}); err != nil {
		t.Fatalf("first Capture() error = %v", err)
	}

	f.storage.failAppend = true
	if _, err := f.pipeline.Capture(context.Background(), Request{Text: "second"}); err == nil {
		t.Fatal("Capture() succeeded despite a storage failure")
	}

	active, err := f.sessions.GetActive()
	if err != nil {
		t.Fatalf("GetActive() error = %v", err)
	}
	if active.RemotePageID != "page-1" {
		t.Error("append failure lost the remote page binding")
	}
	if active.ContentCount != 1 {
		t.Errorf("ContentCount = %d, want 1 after the failed append", active.ContentCount)
	}
}
