// Package factory opens the configured database backend and builds the
// repositories on top of it.
package factory

import (
	"context"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"

	"github.com/prn-tf/agora/internal/config"
	"github.com/prn-tf/agora/internal/repository"
	"github.com/prn-tf/agora/internal/repository/postgres"
	"github.com/prn-tf/agora/internal/repository/sqlite"
)

// Factory creates repositories based on configuration.
type Factory struct {
	cfg    config.DatabaseConfig
	logger zerolog.Logger
}

// NewFactory creates a new repository factory.
func NewFactory(cfg config.DatabaseConfig, logger zerolog.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// Driver returns the configured database driver.
func (f *Factory) Driver() string {
	return f.cfg.Driver
}

// IsEmbedded returns true if using embedded database.
func (f *Factory) IsEmbedded() bool {
	return f.cfg.IsEmbedded()
}

// Store is an open database together with its repositories.
type Store struct {
	Repos    *repository.Repositories
	Database repository.DatabaseHealth

	migrator func() (*goose.Provider, func() error, error)
	migrate  func(ctx context.Context) error
}

// Open connects to the configured backend. The schema is not migrated; call Migrate.
func (f *Factory) Open(ctx context.Context) (*Store, error) {
	switch f.cfg.Driver {
	case "postgres":
		return f.openPostgres(ctx)
	case "sqlite", "":
		return f.openSQLite(ctx)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", f.cfg.Driver)
	}
}

func (f *Factory) openPostgres(ctx context.Context) (*Store, error) {
	db, err := postgres.NewDB(ctx, f.cfg, f.logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos:    postgres.NewRepositories(db),
		Database: db,
		migrator: func() (*goose.Provider, func() error, error) {
			provider, sqlDB, err := db.Migrator()
			if err != nil {
				return nil, nil, err
			}
			return provider, sqlDB.Close, nil
		},
		migrate: db.Migrate,
	}, nil
}

func (f *Factory) openSQLite(ctx context.Context) (*Store, error) {
	cfg := sqlite.DefaultConfig(f.cfg.Path)
	if f.cfg.JournalMode != "" {
		cfg.JournalMode = f.cfg.JournalMode
	}
	if f.cfg.BusyTimeout > 0 {
		cfg.BusyTimeout = f.cfg.BusyTimeout
	}
	if f.cfg.SynchronousMode != "" {
		cfg.SynchronousMode = f.cfg.SynchronousMode
	}

	db, err := sqlite.NewDB(ctx, cfg, f.logger)
	if err != nil {
		return nil, err
	}

	return &Store{
		Repos:    sqlite.NewRepositories(db),
		Database: db,
		migrator: func() (*goose.Provider, func() error, error) {
			provider, err := db.Migrator()
			if err != nil {
				return nil, nil, err
			}
			return provider, func() error { return nil }, nil
		},
		migrate: db.Migrate,
	}, nil
}

// Migrate applies all pending migrations.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Migrator returns a goose provider for the store's migrations and a function
// releasing the resources it holds.
func (s *Store) Migrator() (*goose.Provider, func() error, error) {
	return s.migrator()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.Database.Close()
}
