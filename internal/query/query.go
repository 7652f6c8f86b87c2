// Package query derives the displayed view of a task collection: search,
// status filter and sort. Everything here is pure and never mutates its input.
package query

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"taskflow/internal/task"
)

// Filter selects tasks by completion or overdue status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterPending   Filter = "pending"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
)

// Filters lists the accepted filters.
var Filters = []Filter{FilterAll, FilterPending, FilterCompleted, FilterOverdue}

// ParseFilter parses a filter name. An empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	f := Filter(s)
	if !slices.Contains(Filters, f) {
		return "", fmt.Errorf("invalid filter: %s", s)
	}
	return f, nil
}

// SortKey orders the result.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortDueDate  SortKey = "dueDate"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortCreated, SortDueDate, SortPriority, SortTitle}

// ParseSort parses a sort key, ignoring case ("duedate" and "due" are
// accepted for dueDate). An empty string means SortCreated.
func ParseSort(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "created":
		return SortCreated, nil
	case "duedate", "due":
		return SortDueDate, nil
	case "priority":
		return SortPriority, nil
	case "title":
		return SortTitle, nil
	default:
		return "", fmt.Errorf("invalid sort key: %s", s)
	}
}

// Params are the view parameters chosen by the user.
type Params struct {
	Filter Filter
	Search string
	SortBy SortKey

	// Language selects the collation used for title sorting.
	// The zero value uses the root collation.
	Language language.Tag
}

// Apply returns a new slice holding the tasks that match p, in display order.
// Search runs first, then the status filter, then a stable sort.
// An unknown filter keeps everything; an unknown sort key sorts by creation.
func Apply(tasks []task.Task, p Params, now time.Time) []task.Task {
	out := make([]task.Task, 0, len(tasks))
	term := normalizeTerm(p.Search)
	for _, t := range tasks {
		if !matchesSearch(t, term) || !matchesFilter(t, p.Filter, now) {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, comparator(p))
	return out
}

func normalizeTerm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchesSearch reports whether the lower-cased term occurs in the title,
// description, category or any tag. An empty term matches everything.
func matchesSearch(t task.Task, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term) ||
		strings.Contains(strings.ToLower(string(t.Category)), term) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func matchesFilter(t task.Task, f Filter, now time.Time) bool {
	switch f {
	case FilterPending:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return t.Overdue(now)
	default:
		return true
	}
}

func comparator(p Params) func(a, b task.Task) int {
	switch p.SortBy {
	case SortDueDate:
		return compareDueDate
	case SortPriority:
		return func(a, b task.Task) int {
			return cmp.Compare(b.Priority.Rank(), a.Priority.Rank())
		}
	case SortTitle:
		// Collators keep internal buffers, so each Apply gets its own.
		c := collate.New(p.Language)
		return func(a, b task.Task) int {
			return c.CompareString(a.Title, b.Title)
		}
	default:
		return func(a, b task.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

// compareDueDate orders by due date ascending; tasks without one go last.
func compareDueDate(a, b task.Task) int {
	switch {
	case a.DueDate.IsZero() && b.DueDate.IsZero():
		return 0
	case a.DueDate.IsZero():
		return 1
	case b.DueDate.IsZero():
		return -1
	default:
		return a.DueDate.Compare(b.DueDate)
	}
}
