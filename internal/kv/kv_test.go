package kv_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"taskflow/internal/kv"
)

// exerciseBackend runs the contract every Backend must satisfy.
func exerciseBackend(t *testing.T, b kv.Backend) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := b.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want absent", ok, err)
	}

	if err := b.Set(ctx, "taskflow_tasks", `[{"id":"1"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := b.Get(ctx, "taskflow_tasks")
	if err != nil || !ok {
		t.Fatalf("Get after Set = ok %v, err %v", ok, err)
	}
	if got != `[{"id":"1"}]` {
		t.Errorf("Get = %q", got)
	}

	if err := b.Set(ctx, "taskflow_tasks", `[]`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, _, _ = b.Get(ctx, "taskflow_tasks")
	if got != `[]` {
		t.Errorf("expected overwritten value, got %q", got)
	}
}

func TestMemoryBackend(t *testing.T) {
	m := kv.NewMemory()
	exerciseBackend(t, m)
	if m.Writes() != 2 {
		t.Errorf("expected 2 writes, got %d", m.Writes())
	}
}

func TestMemoryBackend_ErrorInjection(t *testing.T) {
	m := kv.NewMemory()
	m.SetErr = errors.New("quota exceeded")
	if err := m.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("expected injected error")
	}
	if m.Writes() != 0 {
		t.Error("failed write must not count")
	}
}

func TestDirBackend(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	d := kv.NewDir(dir)
	exerciseBackend(t, d)

	if _, err := os.Stat(d.Path("taskflow_tasks")); err != nil {
		t.Errorf("expected backing file: %v", err)
	}
	if _, err := os.Stat(d.Path("taskflow_tasks") + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file should not be left behind")
	}
}

func TestDirBackend_KeyCannotEscape(t *testing.T) {
	dir := t.TempDir()
	d := kv.NewDir(dir)
	if filepath.Dir(d.Path("../../etc/passwd")) != dir {
		t.Errorf("key escaped base dir: %s", d.Path("../../etc/passwd"))
	}
}

func TestSQLiteBackend(t *testing.T) {
	b, err := kv.OpenSQL(context.Background(), kv.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	defer b.Close()
	exerciseBackend(t, b)
}

func TestSQLiteBackend_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "taskflow.db")

	b, err := kv.OpenSQL(ctx, kv.DriverSQLite, path)
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	if err := b.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	b.Close()

	b, err = kv.OpenSQL(ctx, kv.DriverSQLite, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, ok, err := b.Get(ctx, "k")
	if err != nil || !ok || got != "v1" {
		t.Errorf("Get after reopen = %q, %v, %v", got, ok, err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	b, err := kv.Open(ctx, kv.Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open default: %v", err)
	}
	if _, ok := b.(*kv.Dir); !ok {
		t.Errorf("expected file backend by default, got %T", b)
	}

	if _, err := kv.Open(ctx, kv.Options{Driver: "redis"}); !errors.Is(err, kv.ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}

	if _, err := kv.Open(ctx, kv.Options{Driver: kv.DriverMySQL}); err == nil {
		t.Error("expected error for mysql without dsn")
	}

	m, err := kv.Open(ctx, kv.Options{Driver: "Memory"})
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := m.(*kv.Memory); !ok {
		t.Errorf("expected memory backend, got %T", m)
	}
}
