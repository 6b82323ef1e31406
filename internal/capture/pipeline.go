// Package capture implements the per-capture control flow: it validates
// preconditions, builds the session context, asks the structuring
// collaborator for a title and cross-links, writes blocks to the remote
// page, and records the capture into the session's rolling context.
package capture

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Priyank911/mapping/internal/llm"
	"github.com/Priyank911/mapping/internal/metrics"
	"github.com/Priyank911/mapping/internal/notion"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
	"github.com/Priyank911/mapping/internal/store"
)

// State identifies a step of the capture pipeline.
type State string

// Pipeline states. Failed is reachable from every step.
const (
	StateIdle            State = "idle"
	StateValidating      State = "validating"
	StateBuildingContext State = "building_context"
	StateStructuring     State = "structuring"
	StateStoring         State = "storing"
	StateUpdatingSession State = "updating_session"
	StateDone            State = "done"
	StateFailed          State = "failed"
)

// Request is one user-initiated capture.
type Request struct {
	Text      string
	SourceURL string
}

// Result describes a completed capture.
type Result struct {
	Title        string           `json:"title"`
	PageID       string           `json:"page_id"`
	PageCreated  bool             `json:"page_created"`
	Connections  []llm.Connection `json:"connections"`
	UsedFallback bool             `json:"used_fallback"`
	ContentCount int              `json:"content_count"`
}

// StructurerFactory builds a structuring client for the decrypted API key.
type StructurerFactory func(apiKey string) llm.Structurer

// StorageFactory builds a document-storage client for the decrypted token.
type StorageFactory func(token string) notion.Storage

// Pipeline orchestrates captures. Captures are serialized by a mutex so two
// concurrent captures against the same session cannot lose updates.
type Pipeline struct {
	secrets  *secrets.Service
	sessions *session.Service

	newStructurer StructurerFactory
	newStorage    StorageFactory
	logger        *slog.Logger

	mu sync.Mutex
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStructurerFactory overrides how structuring clients are built.
func WithStructurerFactory(f StructurerFactory) Option {
	return func(p *Pipeline) { p.newStructurer = f }
}

// WithStorageFactory overrides how storage clients are built.
func WithStorageFactory(f StorageFactory) Option {
	return func(p *Pipeline) { p.newStorage = f }
}

// WithLogger overrides the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// NewPipeline creates a capture pipeline over the secret and session stores.
func NewPipeline(sec *secrets.Service, sess *session.Service, opts ...Option) *Pipeline {
	p := &Pipeline{
		secrets:  sec,
		sessions: sess,
		newStructurer: func(apiKey string) llm.Structurer {
			return llm.New(apiKey)
		},
		newStorage: func(token string) notion.Storage {
			return notion.NewClient(token)
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Capture runs one capture event through the state machine. Structuring
// failures are absorbed into a deterministic fallback; precondition and
// storage failures abort with a human-readable reason.
func (p *Pipeline) Capture(ctx context.Context, req Request) (*Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	result, err := p.run(ctx, req)
	if err != nil {
		metrics.CapturesTotal.WithLabelValues(string(StateFailed)).Inc()
		p.logger.Error("capture failed", "error", err)
		return nil, err
	}

	metrics.CapturesTotal.WithLabelValues(string(StateDone)).Inc()
	metrics.CaptureDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("capture completed",
		"title", result.Title,
		"page_created", result.PageCreated,
		"connections", len(result.Connections),
		"used_fallback", result.UsedFallback,
	)
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, req Request) (*Result, error) {
	state := StateValidating
	p.logger.Debug("capture step", "state", string(state))

	var setup bool
	if _, err := p.secrets.GetPlain(store.StateSetupComplete, &setup); err != nil {
		return nil, err
	}
	if !setup {
		return nil, &PreconditionError{Reason: ReasonSetupIncomplete}
	}

	var locked bool
	if _, err := p.secrets.GetPlain(store.StateLocked, &locked); err != nil {
		return nil, err
	}
	if locked {
		return nil, &PreconditionError{Reason: ReasonLocked}
	}

	active, err := p.sessions.GetActive()
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, &PreconditionError{Reason: ReasonNoActiveSession}
	}

	var apiKey string
	found, err := p.secrets.GetSecret(secrets.NameGroqAPIKey, &apiKey)
	if err != nil {
		return nil, err
	}
	if !found || apiKey == "" {
		return nil, &PreconditionError{Reason: ReasonMissingAIKey}
	}

	var creds secrets.NotionCredentials
	found, err = p.secrets.GetSecret(secrets.NameNotionCredentials, &creds)
	if err != nil {
		return nil, err
	}
	if !found || creds.Token == "" || creds.DatabaseID == "" {
		return nil, &PreconditionError{Reason: ReasonMissingStorageCred}
	}

	state = StateBuildingContext
	p.logger.Debug("capture step", "state", string(state))
	sessionCtx, err := p.sessions.Context(active.ID)
	if err != nil {
		return nil, err
	}

	state = StateStructuring
	p.logger.Debug("capture step", "state", string(state))
	structured := p.newStructurer(apiKey).Structure(ctx, llm.Request{
		Text:    req.Text,
		Context: sessionCtx,
	})
	if structured.Fallback {
		metrics.StructuringFallbacks.Inc()
	}

	state = StateStoring
	p.logger.Debug("capture step", "state", string(state))
	storage := p.newStorage(creds.Token)

	result := &Result{
		Title:        structured.Title,
		Connections:  structured.Connections,
		UsedFallback: structured.Fallback,
	}

	if active.RemotePageID == "" {
		pageID, err := p.createPage(ctx, storage, creds.DatabaseID, active.Name, structured.Title, req)
		if err != nil {
			return nil, err
		}
		if _, err := p.sessions.Update(active.ID, session.Patch{RemotePageID: &pageID}); err != nil {
			return nil, err
		}
		result.PageID = pageID
		result.PageCreated = true
	} else {
		if err := p.appendSection(ctx, storage, active.RemotePageID, structured, req); err != nil {
			return nil, err
		}
		result.PageID = active.RemotePageID
	}

	state = StateUpdatingSession
	p.logger.Debug("capture step", "state", string(state))
	updated, err := p.sessions.AddContent(active.ID, structured.Title, req.Text)
	if err != nil {
		return nil, err
	}
	result.ContentCount = updated.ContentCount

	return result, nil
}

// createPage seeds a new remote page: table of contents, divider, the first
// section, an optional source link, and a trailing divider.
func (p *Pipeline) createPage(ctx context.Context, storage notion.Storage, databaseID, sessionName, title string, req Request) (string, error) {
	titleProp, err := storage.GetTitleProperty(ctx, databaseID)
	if err != nil {
		return "", storageError(err)
	}

	children := []notion.Block{
		notion.TableOfContents(),
		notion.Divider(),
	}
	children = append(children, notion.Section(title, req.Text)...)
	if req.SourceURL != "" {
		children = append(children, notion.SourceLink(req.SourceURL))
	}
	children = append(children, notion.Divider())

	pageID, err := storage.CreatePage(ctx, databaseID, titleProp, sessionName, children)
	if err != nil {
		return "", storageError(err)
	}
	return pageID, nil
}

// appendSection appends a new section to the existing page, followed by a
// collapsed block listing the connections, the source link, and a trailing
// divider.
func (p *Pipeline) appendSection(ctx context.Context, storage notion.Storage, pageID string, structured *llm.Result, req Request) error {
	blocks := notion.Section(structured.Title, req.Text)

	if len(structured.Connections) > 0 {
		items := make([]notion.Block, 0, len(structured.Connections))
		for _, conn := range structured.Connections {
			items = append(items, notion.BulletedItem(conn.Target+" — "+conn.Relationship))
		}
		blocks = append(blocks, notion.Toggle("Connected sections", items))
	}

	if req.SourceURL != "" {
		blocks = append(blocks, notion.SourceLink(req.SourceURL))
	}
	blocks = append(blocks, notion.Divider())

	if err := storage.AppendBlocks(ctx, pageID, blocks); err != nil {
		return storageError(err)
	}
	return nil
}

func storageError(err error) error {
	var apiErr *notion.APIError
	if errors.As(err, &apiErr) {
		return &StorageError{Message: apiErr.Message, Err: err}
	}
	return &StorageError{Err: err}
}
