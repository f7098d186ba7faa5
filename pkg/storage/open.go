package storage

import (
	"context"
	"fmt"
	"strings"
)

// Driver names accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// OpenOptions selects and configures a KV backend.
type OpenOptions struct {
	Driver string
	// Path is the file or SQLite database location.
	Path  string
	Redis RedisOptions
}

// Open builds the KV named by opts.Driver.
func Open(ctx context.Context, opts OpenOptions) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverMemory:
		return NewMemoryKV(), nil
	case DriverFile, "":
		return NewFileKV(opts.Path)
	case DriverSQLite:
		return NewSQLiteKV(opts.Path)
	case DriverRedis:
		return OpenRedis(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}
