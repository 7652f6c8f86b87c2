// Package kv provides the key/value persistence backends the task store writes to.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Backend is an opaque key to string store.
type Backend interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Close releases resources held by the backend.
	Close() error
}

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Driver names accepted by Open.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// Options selects and configures a backend.
type Options struct {
	// Driver is one of the Driver* constants.
	Driver string

	// DSN is the data source name for SQL drivers.
	DSN string

	// Dir is the directory used by the file driver.
	Dir string
}

// Open returns the backend described by opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(opts.Driver))
	switch driver {
	case "", DriverFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file storage: directory required")
		}
		return NewDir(opts.Dir), nil
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite, DriverMySQL, DriverPostgres:
		b, err := OpenSQL(ctx, driver, opts.DSN)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}
