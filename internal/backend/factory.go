package backend

import (
	"context"
	"fmt"
	"log/slog"

	"financas/internal/adapters"
	"financas/internal/core"
	"financas/internal/sheets/memory"
	"financas/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case MemoryBackend:
		return f.createMemoryBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case PostgresBackend:
		return f.createPostgresBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	if config.SnapshotFile == "" {
		f.logger.Info("Initialized memory backend", "persistent", false)
		return &BackendResult{Backend: memory.New(core.Snapshot{})}, nil
	}

	store, err := memory.NewFromFile(config.SnapshotFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}
	f.logger.Info("Initialized memory backend", "persistent", true, "snapshot_file", config.SnapshotFile)
	return &BackendResult{Backend: store}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: repo,
		Cleanup: repo.Close,
	}, nil
}

// createPostgresBackend keeps a SQLite copy next to Postgres. When Postgres
// cannot be reached at startup the local copy serves alone.
func (f *DefaultFactory) createPostgresBackend(ctx context.Context, config Config) (*BackendResult, error) {
	local, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize local SQLite copy: %w", err)
	}

	remote, err := storage.NewPostgresRepository(config.PostgresURL)
	if err != nil {
		f.logger.WarnContext(ctx, "Postgres unavailable, continuing with local SQLite only", "error", err)
		return &BackendResult{
			Backend: local,
			Cleanup: local.Close,
		}, nil
	}

	f.logger.Info("Initialized Postgres backend with local fallback", "db_path", config.SQLiteDBPath)

	return &BackendResult{
		Backend: adapters.NewFallbackStore(remote, local),
		Cleanup: func() error {
			remoteErr := remote.Close()
			if err := local.Close(); err != nil {
				return err
			}
			return remoteErr
		},
	}, nil
}
