// ABOUTME: Side-by-side comparison of node recommendations as a bubbletea model
// ABOUTME: Table of nodes with a detail panel for the selected row

package compare

import (
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/spark-sizing-advisor/internal/tui/report"
	"github.com/markalston/spark-sizing-advisor/internal/tui/styles"
	"github.com/markalston/spark-sizing-advisor/models"
)

// Model displays node recommendations in a navigable table
type Model struct {
	results []models.NodeRecommendation
	table   table.Model
	width   int
	height  int
}

var columns = []table.Column{
	{Title: "Node", Width: 28},
	{Title: "Cores", Width: 6},
	{Title: "Memory", Width: 9},
	{Title: "Heap", Width: 9},
	{Title: "Off-heap", Width: 9},
	{Title: "GPU tasks", Width: 9},
}

// New creates a comparison model for results
func New(results []models.NodeRecommendation) Model {
	rows := make([]table.Row, len(results))
	for i, r := range results {
		rows[i] = table.Row(report.BatchRow(r))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(len(rows), 10)+2),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.Primary).
		Bold(false)
	t.SetStyles(s)

	return Model{results: results, table: t, width: 80, height: 24}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected returns the result under the cursor
func (m Model) Selected() (models.NodeRecommendation, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.results) {
		return models.NodeRecommendation{}, false
	}
	return m.results[i], true
}

// View implements tea.Model
func (m Model) View() string {
	if len(m.results) == 0 {
		return "No nodes to compare\n"
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Node comparison"))
	sb.WriteString("\n")
	sb.WriteString(styles.Panel.Render(m.table.View()))
	sb.WriteString("\n")
	sb.WriteString(m.renderDetail())
	sb.WriteString(styles.Help.Render("↑/↓ select • q quit"))
	return sb.String()
}

func (m Model) renderDetail() string {
	r, ok := m.Selected()
	if !ok {
		return ""
	}
	if r.Recommendation == nil {
		return styles.StatusCritical.Render(r.Node.Label()+": "+r.Error) + "\n"
	}
	return styles.Subtitle.Render(r.Node.Label()) + "\n" + report.Properties(r.SparkProperties)
}

// Run starts the comparison TUI
func Run(results []models.NodeRecommendation) error {
	p := tea.NewProgram(New(results), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
