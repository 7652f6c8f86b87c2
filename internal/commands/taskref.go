package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"taskflow/internal/task"
)

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrTaskNotFound indicates the reference matched no task.
	ErrTaskNotFound = errors.New("task not found")

	// ErrAmbiguousRef indicates an id prefix matched several tasks.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// ResolveTaskRef finds the task named by the first argument.
// tasks must be in stored order, the order list numbers refer to.
//
// Resolution order:
//  1. all digits within 1..len(tasks): position as printed by list
//  2. exact task id
//  3. unique id prefix
func ResolveTaskRef(tasks []task.Task, args []string) (task.Task, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return task.Task{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return task.Task{}, fmt.Errorf("unexpected argument: %s", args[1])
	}
	ref := strings.TrimSpace(args[0])

	if isAllDigits(ref) {
		if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) {
			return tasks[n-1], nil
		}
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return task.Task{}, fmt.Errorf("%w: %s", ErrAmbiguousRef, ref)
	}
}

// positions maps task IDs to their 1-based list number.
func positions(tasks []task.Task) map[string]int {
	pos := make(map[string]int, len(tasks))
	for i, t := range tasks {
		pos[t.ID] = i + 1
	}
	return pos
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
