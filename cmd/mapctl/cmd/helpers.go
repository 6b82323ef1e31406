package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/config"
	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/llm"
	"github.com/Priyank911/mapping/internal/notion"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
	"github.com/Priyank911/mapping/internal/store"
)

const defaultStoreDir = ".mapping"

// app bundles the services a command needs, with the store held open until
// Close.
type app struct {
	store    *store.BoltStore
	engine   *keys.Engine
	secrets  *secrets.Service
	sessions *session.Service
	config   *config.Config
}

// getStoreDir returns the store directory path.
// Priority: --store flag > MAPPING_STORE_DIR env > ~/.mapping
func getStoreDir() string {
	if storeDir != "" {
		return storeDir
	}
	if dir := os.Getenv("MAPPING_STORE_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultStoreDir
	}
	return filepath.Join(home, defaultStoreDir)
}

// openApp opens the local store and builds the core services.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	dir := getStoreDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	boltStore, err := store.NewBoltStore(filepath.Join(dir, "mapping.db"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	engine := keys.NewEngine(boltStore)
	return &app{
		store:    boltStore,
		engine:   engine,
		secrets:  secrets.NewService(boltStore, engine),
		sessions: session.NewService(boltStore, engine),
		config:   cfg,
	}, nil
}

// pipeline builds a capture pipeline wired to the configured endpoints.
func (a *app) pipeline() *capture.Pipeline {
	return capture.NewPipeline(a.secrets, a.sessions,
		capture.WithStructurerFactory(func(apiKey string) llm.Structurer {
			return llm.New(apiKey,
				llm.WithBaseURL(a.config.Groq.BaseURL),
				llm.WithModel(a.config.Groq.Model),
			)
		}),
		capture.WithStorageFactory(func(token string) notion.Storage {
			return notion.NewClient(token, notion.WithBaseURL(a.config.Notion.BaseURL))
		}),
	)
}

// Close closes the underlying store.
func (a *app) Close() error {
	return a.store.Close()
}

// promptPassword reads a password from the terminal with echo disabled.
func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// promptPasswordConfirm prompts for a password twice and ensures they match.
func promptPasswordConfirm() (string, error) {
	pass, err := promptPassword("Choose a password: ")
	if err != nil {
		return "", err
	}
	if pass == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	confirm, err := promptPassword("Confirm password: ")
	if err != nil {
		return "", err
	}
	if pass != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return pass, nil
}
