package query

import (
	"math"
	"time"

	"taskflow/internal/task"
)

// Stats summarizes a collection.
type Stats struct {
	Total          int `json:"total" yaml:"total"`
	Completed      int `json:"completed" yaml:"completed"`
	Pending        int `json:"pending" yaml:"pending"`
	Overdue        int `json:"overdue" yaml:"overdue"`
	CompletionRate int `json:"completionRate" yaml:"completionRate"` // percent, rounded
}

// Summarize counts tasks by status.
func Summarize(tasks []task.Task, now time.Time) Stats {
	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.Overdue(now) {
			s.Overdue++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = int(math.Round(float64(s.Completed) / float64(s.Total) * 100))
	}
	return s
}
