package kv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Dir stores each key as a file <key>.json inside a directory.
// Writes go to a temp file first and are renamed into place.
type Dir struct {
	mu   sync.Mutex
	base string
}

// NewDir creates a Dir backend rooted at base. The directory is created on
// first write.
func NewDir(base string) *Dir {
	return &Dir{base: base}
}

// Path returns the file backing key.
func (d *Dir) Path(key string) string {
	return filepath.Join(d.base, sanitizeKey(key)+".json")
}

// Get implements Backend.
func (d *Dir) Get(ctx context.Context, key string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, err := os.ReadFile(d.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Backend.
func (d *Dir) Set(ctx context.Context, key, value string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.base, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	path := d.Path(key)
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return fmt.Errorf("write %s tmp: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (d *Dir) Close() error { return nil }

// sanitizeKey keeps a key from escaping the base directory.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, key)
}
