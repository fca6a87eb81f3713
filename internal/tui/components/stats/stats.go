package stats

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitual/internal/metrics"
)

var columns = []table.Column{
	{Title: "Habit", Width: 22},
	{Title: "7d", Width: 7},
	{Title: "30d", Width: 7},
	{Title: "Week", Width: 7},
	{Title: "Streak", Width: 7},
	{Title: "Best", Width: 6},
	{Title: "Total", Width: 9},
}

type Model struct {
	table table.Model
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)
	t.SetWidth(width)
	return Model{table: t}
}

func (m *Model) SetSnapshot(snap metrics.Snapshot) {
	m.table.SetRows(Rows(snap))
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

// Rows converts per-habit stats into table rows in snapshot order.
func Rows(snap metrics.Snapshot) []table.Row {
	rows := make([]table.Row, 0, len(snap.Habits))
	for _, s := range snap.Habits {
		rows = append(rows, table.Row{
			s.Habit.Title,
			percent(s.Week),
			percent(s.Month),
			percent(s.CalendarWeek),
			strconv.Itoa(s.CurrentStreak),
			strconv.Itoa(s.BestStreak),
			strconv.FormatFloat(s.Cumulative, 'f', -1, 64),
		})
	}
	return rows
}

func percent(a metrics.Aggregate) string {
	if a.Scheduled == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", a.Percent)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.table.Rows()) == 0 {
		return "\n  No habits yet."
	}
	return m.table.View()
}
