package output

import (
	"strings"

	"charm.land/lipgloss/v2"

	"taskflow/internal/task"
)

// Palette
var (
	colorHigh    = lipgloss.Color("#EF4444")
	colorMedium  = lipgloss.Color("#F59E0B")
	colorLow     = lipgloss.Color("#10B981")
	colorOverdue = lipgloss.Color("#EF4444")
	colorToday   = lipgloss.Color("#F97316")
	colorTag     = lipgloss.Color("#60A5FA")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Styles decorates output. The zero value prints plain text.
type Styles struct {
	Enabled bool

	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Overdue  lipgloss.Style
	DueToday lipgloss.Style
	Done     lipgloss.Style
	Tag      lipgloss.Style
}

// NewStyles returns the default styles, active only when enabled is set.
func NewStyles(enabled bool) Styles {
	return Styles{
		Enabled:  enabled,
		High:     lipgloss.NewStyle().Foreground(colorHigh).Bold(true),
		Medium:   lipgloss.NewStyle().Foreground(colorMedium),
		Low:      lipgloss.NewStyle().Foreground(colorLow),
		Overdue:  lipgloss.NewStyle().Foreground(colorOverdue).Bold(true),
		DueToday: lipgloss.NewStyle().Foreground(colorToday),
		Done:     lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true),
		Tag:      lipgloss.NewStyle().Foreground(colorTag),
	}
}

func (s Styles) render(st lipgloss.Style, text string) string {
	if !s.Enabled {
		return text
	}
	return st.Render(text)
}

func (s Styles) priority(p task.Priority, text string) string {
	switch p {
	case task.PriorityHigh:
		return s.render(s.High, text)
	case task.PriorityMedium:
		return s.render(s.Medium, text)
	case task.PriorityLow:
		return s.render(s.Low, text)
	}
	return text
}

// tags renders "  #a #b", or "" when there are none.
func (s Styles) tags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = s.render(s.Tag, "#"+tag)
	}
	return "  " + strings.Join(parts, " ")
}
