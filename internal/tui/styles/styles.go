// ABOUTME: Shared lipgloss styles for consistent terminal output
// ABOUTME: Defines colors, panels, and the executor memory allocation bar

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	// Colors - Core palette
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Danger    = lipgloss.Color("#EF4444") // Red
	Muted     = lipgloss.Color("#6B7280") // Gray
	Text      = lipgloss.Color("#F9FAFB") // Light

	// Colors - memory segments
	Heap     = lipgloss.Color("#8B5CF6") // Lighter purple
	Overhead = lipgloss.Color("#F59E0B") // Amber
	Pinned   = lipgloss.Color("#3B82F6") // Blue
	Pageable = lipgloss.Color("#06B6D4") // Cyan
	Free     = lipgloss.Color("#374151") // Surface

	// Base styles
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			MarginBottom(1)

	// Status indicators
	StatusOK = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	StatusWarning = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	StatusCritical = lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true)

	// Panels
	Panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(0, 1)

	// Help text
	Help = lipgloss.NewStyle().
		Foreground(Muted).
		MarginTop(1)

	// Label style for field names
	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// Key style for property names
	KeyStyle = lipgloss.NewStyle().
			Foreground(Heap).
			Bold(true)

	// Value style for emphasized data
	ValueStyle = lipgloss.NewStyle().
			Foreground(Text).
			Bold(true)
)

// Segment is one slice of an allocation bar
type Segment struct {
	MB    int
	Color lipgloss.Color
}

// AllocationBar renders segments proportionally to totalMB across width cells.
// Memory not covered by any segment is drawn as free space.
func AllocationBar(totalMB int, width int, segments ...Segment) string {
	if totalMB <= 0 || width <= 0 {
		return ""
	}

	var sb strings.Builder
	used := 0
	for _, s := range segments {
		cells := s.MB * width / totalMB
		if used+cells > width {
			cells = width - used
		}
		if cells <= 0 {
			continue
		}
		sb.WriteString(lipgloss.NewStyle().Foreground(s.Color).Render(strings.Repeat("█", cells)))
		used += cells
	}
	if used < width {
		sb.WriteString(lipgloss.NewStyle().Foreground(Free).Render(strings.Repeat("░", width-used)))
	}
	return sb.String()
}
