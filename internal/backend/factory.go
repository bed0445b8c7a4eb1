package backend

import (
	"context"
	"fmt"

	"punti/internal/log"
	"punti/internal/storage"
	"punti/internal/storage/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.FromSlog(nil, log.ComponentStorage)
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentStorage),
	}
}

// Create implements Factory.Create
func (f *DefaultFactory) Create(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLite:
		return f.createSQLite(ctx, config)
	case Memory:
		return f.createMemory(ctx)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLite(ctx context.Context, config Config) (*Result, error) {
	kv, err := storage.NewSQLiteKV(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
	}

	f.logger.InfoContext(ctx, "Initialized SQLite backend",
		log.FieldOperation, log.OpStartup, "db_path", config.SQLiteDBPath)

	return &Result{KV: kv, Cleanup: kv.Close}, nil
}

func (f *DefaultFactory) createMemory(ctx context.Context) (*Result, error) {
	f.logger.InfoContext(ctx, "Initialized memory backend, changes last until exit",
		log.FieldOperation, log.OpStartup)

	return &Result{
		KV:      memory.New(),
		Cleanup: func() error { return nil },
	}, nil
}
