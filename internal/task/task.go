// Package task defines the task entity and the inputs used to create and patch it.
package task

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Priority ranks how urgent a task is.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists the valid priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank returns 3 for high, 2 for medium, 1 for low and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// ParsePriority parses a priority name (case-insensitive, trimmed).
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid priority: %s", s)
	}
	return p, nil
}

// Category classifies a task.
type Category string

const (
	CategoryPersonal  Category = "personal"
	CategoryWork      Category = "work"
	CategoryHealth    Category = "health"
	CategoryEducation Category = "education"
	CategoryFinance   Category = "finance"
	CategoryOther     Category = "other"
)

// Categories lists the valid categories.
var Categories = []Category{
	CategoryPersonal,
	CategoryWork,
	CategoryHealth,
	CategoryEducation,
	CategoryFinance,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// ParseCategory parses a category name (case-insensitive, trimmed).
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid category: %s", s)
	}
	return c, nil
}

// Task is a single unit of work.
type Task struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Priority    Priority  `json:"priority" yaml:"priority"`
	Category    Category  `json:"category" yaml:"category"`
	DueDate     Date      `json:"dueDate,omitzero" yaml:"dueDate,omitempty"`
	Tags        []string  `json:"tags" yaml:"tags"`
	Completed   bool      `json:"completed" yaml:"completed"`
	CreatedAt   time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	t.Tags = slices.Clone(t.Tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// Overdue reports whether t is open and its due day started before now.
// The due day is interpreted in now's location.
func (t Task) Overdue(now time.Time) bool {
	if t.Completed || t.DueDate.IsZero() {
		return false
	}
	return t.DueDate.Time(now.Location()).Before(now)
}

// NewID returns a fresh task ID: a version 7 UUID, which combines a
// millisecond timestamp with random bits.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
