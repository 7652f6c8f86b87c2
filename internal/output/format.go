// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskflow/internal/query"
	"taskflow/internal/task"
)

const (
	// DueLayout is the due date layout for dates other than today and tomorrow.
	DueLayout = "Jan 02, 2006"

	// NoDue is shown in the due column when a task has no due date.
	NoDue = "-"

	// PastDueMark is appended to the due label of an open task whose day has passed.
	PastDueMark = "!"

	priorityWidth = 6
	dueWidth      = len(DueLayout) + len(PastDueMark)
)

// DueLabel returns Today, Tomorrow or the formatted date, relative to now's
// calendar day.
func DueLabel(d task.Date, now time.Time) string {
	if d.IsZero() {
		return NoDue
	}
	today := task.DateOf(now)
	switch d {
	case today:
		return "Today"
	case today.AddDays(1):
		return "Tomorrow"
	}
	return d.Time(time.UTC).Format(DueLayout)
}

// pastDue reports whether the due day of an open task lies before today.
// A task due today is not marked even though it may already be overdue.
func pastDue(t task.Task, now time.Time) bool {
	return !t.Completed && !t.DueDate.IsZero() && t.DueDate.Compare(task.DateOf(now)) < 0
}

// FormatTask formats a task row for the list command.
// Format: "{N:>4}  [x] {priority}  {due}  {title}  #tag #tag\n"
func FormatTask(w io.Writer, num int, t task.Task, now time.Time, s Styles) {
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}

	prio := fmt.Sprintf("%-*s", priorityWidth, t.Priority)

	label := DueLabel(t.DueDate, now)
	if pastDue(t, now) {
		label += PastDueMark
	}
	due := fmt.Sprintf("%-*s", dueWidth, label)
	switch {
	case pastDue(t, now):
		due = s.render(s.Overdue, due)
	case !t.Completed && t.DueDate == task.DateOf(now):
		due = s.render(s.DueToday, due)
	}

	title := normalizeTitle(t.Title)
	if t.Completed {
		title = s.render(s.Done, title)
	}

	fmt.Fprintf(w, "%4d  %s %s  %s  %s%s\n", num, check, s.priority(t.Priority, prio), due, title, s.tags(t.Tags))
}

// FormatTaskDetail prints every field of a task, one per line.
func FormatTaskDetail(w io.Writer, t task.Task, now time.Time) {
	status := "open"
	if t.Completed {
		status = "completed"
	} else if t.Overdue(now) {
		status = "overdue"
	}

	due := NoDue
	if !t.DueDate.IsZero() {
		due = fmt.Sprintf("%s (%s)", t.DueDate, DueLabel(t.DueDate, now))
	}

	tags := NoDue
	if len(t.Tags) > 0 {
		tags = strings.Join(t.Tags, ", ")
	}

	fmt.Fprintf(w, "id:          %s\n", t.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(t.Title))
	if t.Description != "" {
		fmt.Fprintf(w, "description: %s\n", t.Description)
	}
	fmt.Fprintf(w, "status:      %s\n", status)
	fmt.Fprintf(w, "priority:    %s\n", t.Priority)
	fmt.Fprintf(w, "category:    %s\n", t.Category)
	fmt.Fprintf(w, "due:         %s\n", due)
	fmt.Fprintf(w, "tags:        %s\n", tags)
	fmt.Fprintf(w, "created:     %s\n", t.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "updated:     %s\n", t.UpdatedAt.Format(time.RFC3339))
}

// FormatStats prints the collection summary.
func FormatStats(w io.Writer, st query.Stats, s Styles) {
	overdue := fmt.Sprintf("%d", st.Overdue)
	if st.Overdue > 0 {
		overdue = s.render(s.Overdue, overdue)
	}
	fmt.Fprintf(w, "total:       %d\n", st.Total)
	fmt.Fprintf(w, "completed:   %d\n", st.Completed)
	fmt.Fprintf(w, "pending:     %d\n", st.Pending)
	fmt.Fprintf(w, "overdue:     %s\n", overdue)
	fmt.Fprintf(w, "progress:    %d%%\n", st.CompletionRate)
}

// normalizeTitle flattens a title onto one line. Blank titles show as
// "(untitled)".
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// FormatListName formats a remote list name for the lists command.
func FormatListName(w io.Writer, title string, isDefault bool) {
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if isDefault {
		title += " [default]"
	}
	fmt.Fprintln(w, title)
}
