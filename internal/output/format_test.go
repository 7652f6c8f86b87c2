package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"taskflow/internal/output"
	"taskflow/internal/query"
	"taskflow/internal/task"
	"taskflow/internal/testutil"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func mk(title string, p task.Priority, due task.Date, tags ...string) task.Task {
	t := task.Draft{Title: title, Priority: p, DueDate: due, Tags: tags}.Build(title, now)
	return t
}

func TestDueLabel(t *testing.T) {
	today := task.DateOf(now)
	tests := []struct {
		d    task.Date
		want string
	}{
		{task.Date{}, output.NoDue},
		{today, "Today"},
		{today.AddDays(1), "Tomorrow"},
		{today.AddDays(-1), "Jun 14, 2024"},
		{task.NewDate(2025, 1, 2), "Jan 02, 2025"},
	}
	for _, tt := range tests {
		if got := output.DueLabel(tt.d, now); got != tt.want {
			t.Errorf("DueLabel(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTask_Rows(t *testing.T) {
	walk := mk("Walk dog", task.PriorityLow, task.Date{})
	walk.Completed = true

	rows := []struct {
		num int
		t   task.Task
	}{
		{1, mk("Buy milk", task.PriorityMedium, task.NewDate(2024, 6, 15), "errands")},
		{2, mk("Pay rent", task.PriorityHigh, task.NewDate(2024, 6, 10))},
		{3, walk},
		{4, mk("Dentist", task.PriorityMedium, task.NewDate(2024, 6, 16), "health", "Urgent")},
		{10, mk(" \n", task.PriorityLow, task.NewDate(2024, 7, 4))},
	}

	var buf bytes.Buffer
	for _, r := range rows {
		output.FormatTask(&buf, r.num, r.t, now, output.NewStyles(false))
	}
	testutil.Golden(t, "task_rows", buf.Bytes())
}

func TestFormatTask_ColorOnlyWhenEnabled(t *testing.T) {
	overdue := mk("Pay rent", task.PriorityHigh, task.NewDate(2024, 6, 10), "home")

	var plain, colored bytes.Buffer
	output.FormatTask(&plain, 1, overdue, now, output.NewStyles(false))
	output.FormatTask(&colored, 1, overdue, now, output.NewStyles(true))

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output contains escape codes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escape codes: %q", colored.String())
	}
	if !strings.Contains(colored.String(), "Pay rent") {
		t.Errorf("colored output lost the title: %q", colored.String())
	}
}

func TestFormatTaskDetail(t *testing.T) {
	rent := task.Task{
		ID:          "t1",
		Title:       "Pay rent",
		Description: "landlord wants cash",
		Priority:    task.PriorityHigh,
		Category:    task.CategoryFinance,
		DueDate:     task.NewDate(2024, 6, 10),
		Tags:        []string{"home", "monthly"},
		CreatedAt:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2024, 6, 2, 10, 30, 0, 0, time.UTC),
	}

	var buf bytes.Buffer
	output.FormatTaskDetail(&buf, rent, now)
	testutil.Golden(t, "task_detail", buf.Bytes())
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	st := query.Stats{Total: 3, Completed: 1, Pending: 2, Overdue: 1, CompletionRate: 33}
	output.FormatStats(&buf, st, output.NewStyles(false))
	testutil.Golden(t, "stats", buf.Bytes())
}
