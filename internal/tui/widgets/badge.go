// ABOUTME: Status badge widgets for quick visual status indication
// ABOUTME: Colored inline badges for workload type, allocation, and compatibility

package widgets

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/spark-sizing-advisor/internal/tui/styles"
)

// StatusLevel represents the severity of a status
type StatusLevel int

const (
	StatusOK StatusLevel = iota
	StatusWarning
	StatusCritical
	StatusInfo
	StatusNeutral
)

// Badge renders a colored status badge
func Badge(text string, level StatusLevel) string {
	var bg, fg lipgloss.Color

	switch level {
	case StatusOK:
		bg, fg = styles.Secondary, lipgloss.Color("#FFFFFF")
	case StatusWarning:
		bg, fg = styles.Warning, lipgloss.Color("#000000")
	case StatusCritical:
		bg, fg = styles.Danger, lipgloss.Color("#FFFFFF")
	case StatusInfo:
		bg, fg = styles.Pinned, lipgloss.Color("#FFFFFF")
	default:
		bg, fg = styles.Muted, lipgloss.Color("#FFFFFF")
	}

	style := lipgloss.NewStyle().
		Background(bg).
		Foreground(fg).
		Padding(0, 1).
		Bold(true)

	return style.Render(text)
}

// StatusFromPercent returns the status level for a percentage value
func StatusFromPercent(percent, warnThreshold, critThreshold float64) StatusLevel {
	if percent >= critThreshold {
		return StatusCritical
	}
	if percent >= warnThreshold {
		return StatusWarning
	}
	return StatusOK
}

// WorkloadBadge labels a node as GPU or CPU-only
func WorkloadBadge(concurrentGPUTasks int) string {
	if concurrentGPUTasks > 0 {
		return Badge(fmt.Sprintf("GPU x%d tasks", concurrentGPUTasks), StatusInfo)
	}
	return Badge("CPU", StatusNeutral)
}

// AllocationBadge shows how much of the usable memory the executor claims
func AllocationBadge(allocatedMB, usableMB int) string {
	if usableMB <= 0 {
		return Badge("--", StatusNeutral)
	}
	percent := float64(allocatedMB) / float64(usableMB) * 100
	return Badge(fmt.Sprintf("%.0f%% allocated", percent), StatusFromPercent(percent, 95, 100))
}

// CompatibilityBadge summarizes GPU compatibility findings
func CompatibilityBadge(findings int) string {
	if findings == 0 {
		return Badge("GPU READY", StatusOK)
	}
	return Badge(fmt.Sprintf("%d FINDINGS", findings), StatusWarning)
}
