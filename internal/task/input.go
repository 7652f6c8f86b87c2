package task

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrTitleRequired is returned when a task would end up without a title.
var ErrTitleRequired = errors.New("title required")

// Draft holds the user-supplied fields of a task that does not exist yet.
// Empty fields take their defaults when the task is built.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Category    Category `json:"category"`
	DueDate     Date     `json:"dueDate"`
	Tags        []string `json:"tags"`
}

// Validate checks the draft before it is handed to the store.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return fmt.Errorf("invalid priority: %s", d.Priority)
	}
	if d.Category != "" && !d.Category.Valid() {
		return fmt.Errorf("invalid category: %s", d.Category)
	}
	return nil
}

// Build turns the draft into a new, open task stamped with now.
func (d Draft) Build(id string, now time.Time) Task {
	t := Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Category:    d.Category,
		DueDate:     d.DueDate,
		Tags:        slices.Clone(d.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Category == "" {
		t.Category = CategoryPersonal
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return t
}

// Patch lists the fields of an existing task to overwrite. Nil fields are
// left alone. A non-nil DueDate pointing at the zero Date clears the due
// date, and a non-nil Tags slice (even an empty one) replaces the tags.
type Patch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Category    *Category `json:"category,omitempty"`
	DueDate     *Date     `json:"dueDate,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Completed   *bool     `json:"completed,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Category == nil && p.DueDate == nil && p.Tags == nil && p.Completed == nil
}

// Validate rejects patches that would break a task.
func (p Patch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return fmt.Errorf("invalid priority: %s", *p.Priority)
	}
	if p.Category != nil && !p.Category.Valid() {
		return fmt.Errorf("invalid category: %s", *p.Category)
	}
	return nil
}

// Apply returns a copy of t with the patch fields merged over it.
// ID and timestamps are never touched.
func (p Patch) Apply(t Task) Task {
	t = t.Clone()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Tags != nil {
		t.Tags = slices.Clone(p.Tags)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	return t
}

// ParseTags splits a comma-separated tag list, trimming each tag and
// dropping empty ones.
func ParseTags(s string) []string {
	tags := []string{}
	for _, tag := range strings.Split(s, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
