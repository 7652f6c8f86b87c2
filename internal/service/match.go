package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a list or task does not exist remotely.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a list name matches more than one list.
	ErrAmbiguous = errors.New("ambiguous")

	// ErrAuth is returned when the remote rejects the stored credentials.
	ErrAuth = errors.New("authentication failed")
)

// MatchList picks the list whose title equals name, ignoring case and
// surrounding whitespace.
func MatchList(lists []TaskList, name string) (TaskList, error) {
	name = strings.TrimSpace(name)
	want := strings.ToLower(name)

	var matches []TaskList
	for _, l := range lists {
		if strings.ToLower(strings.TrimSpace(l.Title)) == want {
			matches = append(matches, l)
		}
	}

	switch len(matches) {
	case 0:
		return TaskList{}, fmt.Errorf("%w: list %s", ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return TaskList{}, fmt.Errorf("%w: list name %s", ErrAmbiguous, name)
	}
}
