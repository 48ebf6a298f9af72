package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/foyerapp/calsync/internal/config"
	"github.com/foyerapp/calsync/internal/google"
	"github.com/foyerapp/calsync/internal/store"
	"github.com/foyerapp/calsync/internal/sync"
)

// app bundles the wired engine with the stores the commands need direct
// access to, plus the resource cleanup for the postgres pool.
type app struct {
	engine  *sync.Engine
	configs store.ConfigStore
	cfg     *config.Config
	close   func()
}

// newApp loads the configuration and wires the engine. The stores are
// postgres-backed when database_url is set, in-memory otherwise.
func newApp(ctx context.Context) (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	var (
		configs store.ConfigStore
		events  store.LocalEventRepository
		cleanup = func() {}
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		configs = store.NewPostgresConfigStore(pool)
		events = store.NewPostgresEventRepository(pool)
		cleanup = pool.Close
	} else {
		configs = store.NewMemoryConfigStore()
		events = store.NewMemoryEventRepository()
	}

	engine := sync.New(sync.Options{
		ConfigStore: configs,
		Events:      events,
		Tokens:      google.NewManager(cfg.Google, cfg.RequestTimeout(), logger),
		Logger:      logger,
		Timeout:     cfg.RequestTimeout(),
	})

	return &app{engine: engine, configs: configs, cfg: cfg, close: cleanup}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
