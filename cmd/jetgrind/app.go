package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"jetgrind/internal/config"
	"jetgrind/internal/registry"
	"jetgrind/internal/scraper"
	"jetgrind/internal/storage"
	"jetgrind/internal/todo"
)

// app is the wired set of components shared by every subcommand.
type app struct {
	cfg   config.Config
	log   *logrus.Logger
	repo  storage.ListRepository
	store *todo.Store
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	// stdout is reserved for command output.
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	log.WithFields(logrus.Fields{
		"storage_backend": cfg.StorageBackend,
		"title_source":    cfg.TitleSource,
	}).Debug("Configuration loaded successfully")

	repo, err := openRepository(cfg, log)
	if err != nil {
		return nil, err
	}

	reg := registry.New()
	opts := scraper.Options{
		Timeout:         cfg.FetchTimeout,
		FaviconEndpoint: cfg.FaviconEndpoint,
	}
	if cfg.TitleSource == config.TitleSourceBrowser {
		opts.Titles = scraper.NewRodTitleSource(log)
	}
	fetcher := scraper.NewMetadataFetcher(reg, opts, log)

	store := todo.NewStore(repo, fetcher, reg, log)
	if err := store.Load(ctx); err != nil {
		_ = repo.Close()
		return nil, fmt.Errorf("loading items: %w", err)
	}
	return &app{cfg: cfg, log: log, repo: repo, store: store}, nil
}

func openRepository(cfg config.Config, log logrus.FieldLogger) (storage.ListRepository, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		repo, err := storage.OpenSQLite(cfg.SQLitePath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	default:
		repo, err := storage.NewBadgerRepository(cfg.BadgerDBPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return repo, nil
	}
}

// close stops background fetches and then closes the repository so late
// results still get saved.
func (a *app) close() {
	a.store.Close()
	if err := a.repo.Close(); err != nil {
		a.log.WithError(err).Error("Error closing database")
	}
}

// withApp runs fn against a freshly wired app and tears it down afterwards.
func withApp(ctx context.Context, fn func(a *app) error) error {
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	return fn(a)
}
