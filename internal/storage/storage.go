// Package storage selects the export record store backend.
package storage

import (
	"context"
	"fmt"

	"launchdash/internal/export"
	"launchdash/internal/infra/persistence/memory"
	"launchdash/internal/infra/persistence/postgres"
	"launchdash/internal/infra/persistence/sqlite"
)

// Driver identifies a concrete record store implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Config selects and configures a driver. An empty driver means sqlite.
type Config struct {
	Driver      Driver
	SQLitePath  string
	PostgresDSN string
}

// Store is an export record store that owns a resource to release.
type Store interface {
	export.RecordStore
	Close() error
}

type memoryStore struct{ *memory.Store }

func (memoryStore) Close() error { return nil }

// Open constructs the configured store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverMemory:
		return memoryStore{memory.NewStore()}, nil
	case "", DriverSQLite:
		s, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverPostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
