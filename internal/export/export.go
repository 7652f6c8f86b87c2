// Package export renders the task collection as a document for download.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"taskflow/internal/query"
	"taskflow/internal/task"
)

// Format selects the document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "csv":
		return FormatCSV, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("unknown export format: %s", s)
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/yaml"
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Document is the structured export payload.
type Document struct {
	ExportedAt time.Time   `json:"exportedAt" yaml:"exportedAt"`
	Stats      query.Stats `json:"stats" yaml:"stats"`
	Tasks      []task.Task `json:"tasks" yaml:"tasks"`
}

// NewDocument wraps tasks with their summary.
func NewDocument(tasks []task.Task, now time.Time) Document {
	if tasks == nil {
		tasks = []task.Task{}
	}
	return Document{
		ExportedAt: now.UTC(),
		Stats:      query.Summarize(tasks, now),
		Tasks:      tasks,
	}
}

// Write encodes tasks to w in format f.
func Write(w io.Writer, f Format, tasks []task.Task, now time.Time) error {
	doc := NewDocument(tasks, now)
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeCSV(w, doc)
	case FormatPDF:
		return writePDF(w, doc, now)
	default:
		return fmt.Errorf("unknown export format: %s", f)
	}
}

var csvHeader = []string{"id", "title", "description", "priority", "category", "due_date", "tags", "completed", "created_at", "updated_at"}

func writeCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range doc.Tasks {
		due := ""
		if !t.DueDate.IsZero() {
			due = t.DueDate.String()
		}
		record := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Priority),
			string(t.Category),
			due,
			strings.Join(t.Tags, ";"),
			strconv.FormatBool(t.Completed),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writePDF(w io.Writer, doc Document, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(now)
	pdf.SetTitle("TaskFlow export", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "TaskFlow Tasks")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	st := doc.Stats
	pdf.Cell(0, 6, fmt.Sprintf("%d tasks, %d completed, %d pending, %d overdue (%d%% done)",
		st.Total, st.Completed, st.Pending, st.Overdue, st.CompletionRate))
	pdf.Ln(10)

	for _, t := range doc.Tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		line := fmt.Sprintf("%s %s  (%s, %s)", check, t.Title, t.Priority, t.Category)
		if !t.DueDate.IsZero() {
			line += "  due " + t.DueDate.String()
		}
		if len(t.Tags) > 0 {
			line += "  #" + strings.Join(t.Tags, " #")
		}
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
		if t.Description != "" {
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, tr("    "+t.Description), "0", "L", false)
			pdf.SetFont("Arial", "", 10)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
