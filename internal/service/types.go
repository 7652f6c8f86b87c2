package service

import (
	"strings"

	"taskflow/internal/task"
)

// Remote task status values.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task represents a single remote task item.
type Task struct {
	ID     string
	Title  string
	Notes  string
	Status string // "needsAction" or "completed"

	// Due is the remote due date. Only the calendar day is meaningful.
	Due task.Date
}

// Completed reports whether the remote task is done.
func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Draft converts the remote task into a local draft. The list title becomes
// a tag so imported tasks can be found by search.
func (t Task) Draft(listTitle string) task.Draft {
	d := task.Draft{
		Title:       strings.TrimSpace(strings.ReplaceAll(t.Title, "\n", " ")),
		Description: t.Notes,
		DueDate:     t.Due,
		Tags:        []string{},
	}
	if tag := strings.TrimSpace(listTitle); tag != "" {
		d.Tags = append(d.Tags, tag)
	}
	return d
}

// TaskList represents a task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
