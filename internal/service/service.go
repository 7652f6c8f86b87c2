// Package service defines the backend-agnostic interface for remote task
// sources that can be imported into the local store.
package service

import "context"

// Service defines the interface for remote task backend operations.
// Commands never import the Google SDK directly.
type Service interface {
	// DefaultList returns the user's default task list.
	DefaultList(ctx context.Context) (TaskList, error)

	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListTasks returns every task of a list in API order.
	// Completed tasks are included only when includeCompleted is set.
	ListTasks(ctx context.Context, listID string, includeCompleted bool) ([]Task, error)
}
