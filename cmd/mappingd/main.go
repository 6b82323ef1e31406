// Package main is the entry point for the Mapping daemon, the local
// companion service the browser extension talks to.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Priyank911/mapping/internal/capture"
	"github.com/Priyank911/mapping/internal/config"
	"github.com/Priyank911/mapping/internal/handlers"
	"github.com/Priyank911/mapping/internal/keys"
	"github.com/Priyank911/mapping/internal/llm"
	"github.com/Priyank911/mapping/internal/notion"
	"github.com/Priyank911/mapping/internal/secrets"
	"github.com/Priyank911/mapping/internal/session"
	"github.com/Priyank911/mapping/internal/store"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.Log.Level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("starting mappingd",
		"version", version,
		"store_dir", cfg.Store.Dir,
	)

	if err := os.MkdirAll(cfg.Store.Dir, 0o700); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	boltStore, err := store.NewBoltStore(filepath.Join(cfg.Store.Dir, "mapping.db"))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := boltStore.Close(); err != nil {
			logger.Error("close store", "error", err)
		}
	}()

	engine := keys.NewEngine(boltStore)
	secretService := secrets.NewService(boltStore, engine)
	sessionService := session.NewService(boltStore, engine)

	pipeline := capture.NewPipeline(secretService, sessionService,
		capture.WithStructurerFactory(func(apiKey string) llm.Structurer {
			return llm.New(apiKey,
				llm.WithBaseURL(cfg.Groq.BaseURL),
				llm.WithModel(cfg.Groq.Model),
			)
		}),
		capture.WithStorageFactory(func(token string) notion.Storage {
			return notion.NewClient(token, notion.WithBaseURL(cfg.Notion.BaseURL))
		}),
		capture.WithLogger(logger),
	)

	router := handlers.NewRouter(&handlers.Dependencies{
		Config:   cfg,
		Logger:   logger,
		Secrets:  secretService,
		Sessions: sessionService,
		Pipeline: pipeline,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("stopped")
	return nil
}
