// Package kv holds the local key/value storage that scan history, scan
// snapshots and the auth session are written to.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/de-tools/entra-atlas/pkg/store/duckdb"
)

var ErrKeyNotFound = errors.New("key not found")

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys starting with prefix, in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

const (
	DriverBolt   = "bolt"
	DriverDuckDB = "duckdb"
	DriverMemory = "memory"
)

type Settings struct {
	Driver string
	Path   string
}

func Open(settings Settings) (Storage, error) {
	switch settings.Driver {
	case DriverBolt, "":
		return NewBoltStorage(settings.Path)
	case DriverDuckDB:
		db, err := duckdb.NewDB(duckdb.Settings{DbPath: settings.Path})
		if err != nil {
			return nil, fmt.Errorf("failed to open duckdb: %w", err)
		}
		return NewSQLStorage(db)
	case DriverMemory:
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", settings.Driver)
	}
}
