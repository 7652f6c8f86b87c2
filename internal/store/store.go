// Package store owns the persisted task collection.
//
// The collection is read from a kv.Backend on first successful use and kept
// in memory.
// Every mutation rewrites the whole collection under a single key. Storage
// failures never abort an operation: they are logged and reported through
// Status, and the in-memory collection keeps the change for the rest of the
// session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"taskflow/internal/kv"
	"taskflow/internal/task"
)

// DefaultKey is the backend key holding the serialized collection.
const DefaultKey = "taskflow_tasks"

// ErrCorrupt wraps stored content that could not be decoded.
var ErrCorrupt = errors.New("stored tasks are corrupt")

// Status reports a storage failure absorbed by an operation.
type Status struct {
	// Err is nil when the backend read or write succeeded.
	Err error
}

// OK reports whether the operation reached the backend without error.
func (s Status) OK() bool { return s.Err == nil }

// Store is the single source of truth for tasks.
type Store struct {
	mu      sync.Mutex
	backend kv.Backend
	key     string
	now     func() time.Time
	newID   func() string
	log     *slog.Logger

	tasks  []task.Task
	loaded bool
}

// Option configures a Store.
type Option func(*Store)

// WithKey sets the backend key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithClock sets the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the function producing new task IDs.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the logger used for absorbed storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store over backend. Nothing is read until the first call.
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		now:     time.Now,
		newID:   task.NewID,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tasks returns a copy of the collection in stored order (newest first).
// A missing key yields an empty collection. Unreadable content also yields
// an empty collection and is reported in Status.
func (s *Store) Tasks(ctx context.Context) ([]task.Task, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ensureLoaded(ctx)
	return cloneAll(s.tasks), Status{Err: err}
}

// Reload drops the in-memory collection and reads it again from the backend.
func (s *Store) Reload(ctx context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = false
	return Status{Err: s.ensureLoaded(ctx)}
}

// Find returns the task with the given id, or nil.
func (s *Store) Find(ctx context.Context, id string) (*task.Task, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		return nil, Status{Err: err}
	}
	t := s.tasks[i].Clone()
	return &t, Status{Err: err}
}

// Create builds a task from d, prepends it and persists the collection.
// Callers validate d first; Create does not reject an empty title.
func (s *Store) Create(ctx context.Context, d task.Draft) (task.Task, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadErr := s.ensureLoaded(ctx)

	t := d.Build(s.uniqueID(), s.now().UTC())
	s.tasks = slices.Insert(s.tasks, 0, t)

	err := errors.Join(loadErr, s.save(ctx))
	return t.Clone(), Status{Err: err}
}

// Update merges p over the task with the given id and persists.
// It returns nil and writes nothing when the id is unknown.
func (s *Store) Update(ctx context.Context, id string, p task.Patch) (*task.Task, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadErr := s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		return nil, Status{Err: loadErr}
	}

	prev := s.tasks[i]
	t := p.Apply(prev)
	t.UpdatedAt = s.stamp(prev.UpdatedAt)
	s.tasks[i] = t

	err := errors.Join(loadErr, s.save(ctx))
	out := t.Clone()
	return &out, Status{Err: err}
}

// Delete removes the task with the given id if present and persists the
// collection either way. Deleting an unknown id is not an error, so the
// result is always true.
func (s *Store) Delete(ctx context.Context, id string) (bool, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadErr := s.ensureLoaded(ctx)
	s.tasks = slices.DeleteFunc(s.tasks, func(t task.Task) bool { return t.ID == id })

	err := errors.Join(loadErr, s.save(ctx))
	return true, Status{Err: err}
}

// ToggleComplete flips the completed flag of the task with the given id and
// persists. It returns nil and writes nothing when the id is unknown.
func (s *Store) ToggleComplete(ctx context.Context, id string) (*task.Task, Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadErr := s.ensureLoaded(ctx)
	i := s.indexOf(id)
	if i < 0 {
		return nil, Status{Err: loadErr}
	}

	t := &s.tasks[i]
	t.Completed = !t.Completed
	t.UpdatedAt = s.stamp(t.UpdatedAt)

	err := errors.Join(loadErr, s.save(ctx))
	out := t.Clone()
	return &out, Status{Err: err}
}

// ensureLoaded reads the collection on first use. A failed backend read
// leaves the store unloaded so the next call tries again; missing or
// corrupt content counts as loaded. Must hold s.mu.
func (s *Store) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	s.tasks = []task.Task{}

	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.log.Warn("load tasks failed", "key", s.key, "error", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	s.loaded = true
	if !ok || raw == "" {
		return nil
	}

	var tasks []task.Task
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		s.log.Warn("stored tasks unreadable, starting empty", "key", s.key, "error", err)
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for _, t := range tasks {
		s.tasks = append(s.tasks, t.Clone())
	}
	s.log.Debug("tasks loaded", "key", s.key, "count", len(s.tasks))
	return nil
}

// save rewrites the whole collection. Must hold s.mu.
func (s *Store) save(ctx context.Context) error {
	data, err := json.Marshal(s.tasks)
	if err != nil {
		s.log.Warn("encode tasks failed", "key", s.key, "error", err)
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := s.backend.Set(ctx, s.key, string(data)); err != nil {
		s.log.Warn("save tasks failed", "key", s.key, "error", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	s.log.Debug("tasks saved", "key", s.key, "count", len(s.tasks))
	return nil
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.tasks, func(t task.Task) bool { return t.ID == id })
}

// uniqueID draws IDs until one is unused. Must hold s.mu.
func (s *Store) uniqueID() string {
	for range 8 {
		id := s.newID()
		if s.indexOf(id) < 0 {
			return id
		}
	}
	return task.NewID()
}

// stamp returns the current time, never earlier than prev.
func (s *Store) stamp(prev time.Time) time.Time {
	now := s.now().UTC()
	if now.Before(prev) {
		return prev
	}
	return now
}

func cloneAll(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
