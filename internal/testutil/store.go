package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"taskflow/internal/kv"
	"taskflow/internal/store"
)

// Epoch is the first instant returned by a fresh Clock.
var Epoch = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Clock is a fake time source that moves forward by Step on every call.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	Step time.Duration
}

// NewClock returns a Clock starting at Epoch and stepping one second per call.
func NewClock() *Clock {
	return &Clock{now: Epoch.Add(-time.Second), Step: time.Second}
}

// Now advances the clock and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.Step)
	return c.now
}

// Peek returns the current time without advancing.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// SequentialIDs returns a generator yielding t1, t2, t3...
func SequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("t%d", n)
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewStore returns a Store over a fresh Memory backend with a fake clock and
// sequential IDs. The backend and clock are returned for inspection.
func NewStore() (*store.Store, *kv.Memory, *Clock) {
	mem := kv.NewMemory()
	clock := NewClock()
	st := store.New(mem,
		store.WithClock(clock.Now),
		store.WithIDGenerator(SequentialIDs()),
		store.WithLogger(DiscardLogger()),
	)
	return st, mem, clock
}
