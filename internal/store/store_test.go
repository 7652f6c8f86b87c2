package store_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"taskflow/internal/kv"
	"taskflow/internal/store"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

func TestCreate_PrependsAndPersists(t *testing.T) {
	ctx := context.Background()
	st, mem, _ := testutil.NewStore()

	first, status := st.Create(ctx, task.Draft{Title: "First"})
	if !status.OK() {
		t.Fatalf("unexpected status: %v", status.Err)
	}
	second, _ := st.Create(ctx, task.Draft{Title: "Second", Priority: task.PriorityHigh})

	tasks, _ := st.Tasks(ctx)
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != second.ID || tasks[1].ID != first.ID {
		t.Errorf("expected newest first, got %s, %s", tasks[0].ID, tasks[1].ID)
	}
	if tasks[0].Completed {
		t.Error("expected new task to be open")
	}
	if tasks[0].Priority != task.PriorityHigh || tasks[1].Priority != task.PriorityMedium {
		t.Errorf("unexpected priorities: %q, %q", tasks[0].Priority, tasks[1].Priority)
	}
	if mem.Writes() != 2 {
		t.Errorf("expected 2 writes, got %d", mem.Writes())
	}
}

func TestCreate_IDsUniqueAndStableAcrossReads(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	st := store.New(mem, store.WithLogger(testutil.DiscardLogger()))

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		created, _ := st.Create(ctx, task.Draft{Title: "task"})
		if ids[created.ID] {
			t.Fatalf("duplicate id %s", created.ID)
		}
		ids[created.ID] = true
	}

	// A second store over the same backend sees the same ids.
	reread, status := store.New(mem, store.WithLogger(testutil.DiscardLogger())).Tasks(ctx)
	if !status.OK() {
		t.Fatalf("reload failed: %v", status.Err)
	}
	if len(reread) != 50 {
		t.Fatalf("expected 50 tasks, got %d", len(reread))
	}
	for _, tk := range reread {
		if !ids[tk.ID] {
			t.Errorf("id %s changed across reads", tk.ID)
		}
	}
}

func TestCreate_RetriesCollidingIDs(t *testing.T) {
	ctx := context.Background()
	ids := []string{"dup", "dup", "other"}
	st := store.New(kv.NewMemory(),
		store.WithLogger(testutil.DiscardLogger()),
		store.WithIDGenerator(func() string {
			id := ids[0]
			ids = ids[1:]
			return id
		}),
	)

	a, _ := st.Create(ctx, task.Draft{Title: "a"})
	b, _ := st.Create(ctx, task.Draft{Title: "b"})
	if a.ID != "dup" || b.ID != "other" {
		t.Errorf("expected dup/other, got %s/%s", a.ID, b.ID)
	}
}

func TestUpdate_OnlyPatchedFields(t *testing.T) {
	ctx := context.Background()
	st, _, _ := testutil.NewStore()

	other, _ := st.Create(ctx, task.Draft{Title: "Other"})
	target, _ := st.Create(ctx, task.Draft{Title: "Old", Description: "desc", Tags: []string{"home"}})

	title := "X"
	updated, status := st.Update(ctx, target.ID, task.Patch{Title: &title})
	if !status.OK() {
		t.Fatalf("unexpected status: %v", status.Err)
	}
	if updated == nil {
		t.Fatal("expected updated task")
	}
	if updated.Title != "X" {
		t.Errorf("expected title X, got %q", updated.Title)
	}
	if updated.Description != "desc" || len(updated.Tags) != 1 || updated.Priority != task.PriorityMedium {
		t.Errorf("unpatched fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(target.CreatedAt) {
		t.Error("createdAt must not change")
	}
	if updated.UpdatedAt.Before(target.UpdatedAt) {
		t.Errorf("updatedAt went backwards: %v < %v", updated.UpdatedAt, target.UpdatedAt)
	}

	found, _ := st.Find(ctx, other.ID)
	if found == nil || found.Title != "Other" || !found.UpdatedAt.Equal(other.UpdatedAt) {
		t.Errorf("other task was modified: %+v", found)
	}
}

func TestUpdate_UnknownIDNoWrite(t *testing.T) {
	ctx := context.Background()
	st, mem, _ := testutil.NewStore()
	st.Create(ctx, task.Draft{Title: "a"})
	before := mem.Writes()

	title := "x"
	got, status := st.Update(ctx, "nope", task.Patch{Title: &title})
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
	if !status.OK() {
		t.Errorf("unexpected status: %v", status.Err)
	}
	if mem.Writes() != before {
		t.Error("unknown id must not trigger a write")
	}
}

func TestUpdate_ClockGoingBackwards(t *testing.T) {
	ctx := context.Background()
	st, _, clock := testutil.NewStore()
	created, _ := st.Create(ctx, task.Draft{Title: "a"})

	clock.Step = -time.Hour
	title := "b"
	updated, _ := st.Update(ctx, created.ID, task.Patch{Title: &title})
	if updated.UpdatedAt.Before(updated.CreatedAt) {
		t.Errorf("updatedAt %v before createdAt %v", updated.UpdatedAt, updated.CreatedAt)
	}
}

func TestToggleComplete_IsItsOwnInverse(t *testing.T) {
	ctx := context.Background()
	st, _, _ := testutil.NewStore()
	created, _ := st.Create(ctx, task.Draft{Title: "a"})

	once, _ := st.ToggleComplete(ctx, created.ID)
	if once == nil || !once.Completed {
		t.Fatalf("expected completed after first toggle, got %+v", once)
	}
	if !once.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected updatedAt to advance on first toggle")
	}

	twice, _ := st.ToggleComplete(ctx, created.ID)
	if twice.Completed {
		t.Error("expected open after second toggle")
	}
	if !twice.UpdatedAt.After(once.UpdatedAt) {
		t.Error("expected updatedAt to advance on second toggle")
	}

	if got, _ := st.ToggleComplete(ctx, "missing"); got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	ctx := context.Background()
	st, mem, _ := testutil.NewStore()
	a, _ := st.Create(ctx, task.Draft{Title: "a"})
	b, _ := st.Create(ctx, task.Draft{Title: "b"})

	ok, _ := st.Delete(ctx, a.ID)
	if !ok {
		t.Error("expected true")
	}
	tasks, _ := st.Tasks(ctx)
	if len(tasks) != 1 || tasks[0].ID != b.ID {
		t.Errorf("expected only b left, got %+v", tasks)
	}

	writes := mem.Writes()
	ok, _ = st.Delete(ctx, a.ID)
	if !ok {
		t.Error("expected true on second delete")
	}
	tasks, _ = st.Tasks(ctx)
	if len(tasks) != 1 {
		t.Errorf("second delete removed something: %+v", tasks)
	}
	if mem.Writes() != writes+1 {
		t.Error("delete persists even when nothing was removed")
	}
}

func TestTasks_MissingKeyIsEmpty(t *testing.T) {
	st, _, _ := testutil.NewStore()
	tasks, status := st.Tasks(context.Background())
	if !status.OK() {
		t.Errorf("missing key is not an error: %v", status.Err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", tasks)
	}
}

func TestTasks_CorruptContentResetsToEmpty(t *testing.T) {
	ctx := context.Background()
	for _, raw := range []string{`not json`, `{"id":"x"}`, `[{"id":1}]`} {
		mem := kv.NewMemory()
		mem.Set(ctx, store.DefaultKey, raw)

		var logs bytes.Buffer
		st := store.New(mem, store.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		tasks, status := st.Tasks(ctx)
		if len(tasks) != 0 {
			t.Errorf("%s: expected empty collection, got %d", raw, len(tasks))
		}
		if !errors.Is(status.Err, store.ErrCorrupt) {
			t.Errorf("%s: expected ErrCorrupt, got %v", raw, status.Err)
		}
		if !strings.Contains(logs.String(), "unreadable") {
			t.Errorf("%s: expected warning logged, got %q", raw, logs.String())
		}
	}
}

func TestTasks_ReadFailureIsAbsorbed(t *testing.T) {
	mem := kv.NewMemory()
	mem.GetErr = errors.New("disk on fire")
	st := store.New(mem, store.WithLogger(testutil.DiscardLogger()))

	tasks, status := st.Tasks(context.Background())
	if len(tasks) != 0 {
		t.Errorf("expected empty, got %d", len(tasks))
	}
	if status.OK() {
		t.Error("expected status to carry the read error")
	}
}

func TestTasks_RetriesAfterReadFailure(t *testing.T) {
	ctx := context.Background()
	seed, mem, _ := testutil.NewStore()
	seed.Create(ctx, task.Draft{Title: "first"})
	seed.Create(ctx, task.Draft{Title: "second"})

	st := store.New(mem, store.WithLogger(testutil.DiscardLogger()))
	mem.GetErr = errors.New("transient")
	if _, status := st.Tasks(ctx); status.OK() {
		t.Fatal("expected read error in status")
	}

	mem.GetErr = nil
	tasks, status := st.Tasks(ctx)
	if !status.OK() {
		t.Fatalf("expected recovered read, got %v", status.Err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks after recovery, got %d", len(tasks))
	}

	if _, status := st.Create(ctx, task.Draft{Title: "third"}); !status.OK() {
		t.Fatalf("create: %v", status.Err)
	}
	persisted, _ := store.New(mem, store.WithLogger(testutil.DiscardLogger())).Tasks(ctx)
	if len(persisted) != 3 {
		t.Errorf("expected 3 persisted tasks, got %d", len(persisted))
	}
}

func TestWriteFailure_KeepsInMemoryChange(t *testing.T) {
	ctx := context.Background()
	st, mem, _ := testutil.NewStore()
	kept, _ := st.Create(ctx, task.Draft{Title: "persisted"})

	mem.SetErr = errors.New("quota exceeded")
	created, status := st.Create(ctx, task.Draft{Title: "session only"})
	if status.OK() {
		t.Fatal("expected write failure in status")
	}
	if created.Title != "session only" {
		t.Errorf("expected created task returned, got %+v", created)
	}

	tasks, _ := st.Tasks(ctx)
	if len(tasks) != 2 {
		t.Errorf("expected in-memory collection to keep the change, got %d", len(tasks))
	}

	// The backend still holds the earlier state.
	persisted, _ := store.New(mem, store.WithLogger(testutil.DiscardLogger())).Tasks(ctx)
	if len(persisted) != 1 || persisted[0].ID != kept.ID {
		t.Errorf("expected persisted state unchanged, got %+v", persisted)
	}
}

func TestTasks_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st, _, _ := testutil.NewStore()
	st.Create(ctx, task.Draft{Title: "a", Tags: []string{"x"}})

	tasks, _ := st.Tasks(ctx)
	tasks[0].Title = "mutated"
	tasks[0].Tags[0] = "mutated"

	again, _ := st.Tasks(ctx)
	if again[0].Title != "a" || again[0].Tags[0] != "x" {
		t.Errorf("store state leaked: %+v", again[0])
	}
}

func TestReload(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	a := store.New(mem, store.WithLogger(testutil.DiscardLogger()))
	b := store.New(mem, store.WithLogger(testutil.DiscardLogger()))

	b.Tasks(ctx)
	a.Create(ctx, task.Draft{Title: "from a"})

	if tasks, _ := b.Tasks(ctx); len(tasks) != 0 {
		t.Fatalf("expected cached empty view, got %d", len(tasks))
	}
	if status := b.Reload(ctx); !status.OK() {
		t.Fatalf("reload: %v", status.Err)
	}
	if tasks, _ := b.Tasks(ctx); len(tasks) != 1 {
		t.Errorf("expected reload to pick up new task, got %d", len(tasks))
	}
}

func TestWithKey(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	st := store.New(mem, store.WithKey("other_key"), store.WithLogger(testutil.DiscardLogger()))
	st.Create(ctx, task.Draft{Title: "a"})

	if _, ok, _ := mem.Get(ctx, "other_key"); !ok {
		t.Error("expected value under custom key")
	}
	if _, ok, _ := mem.Get(ctx, store.DefaultKey); ok {
		t.Error("default key should be untouched")
	}
}
