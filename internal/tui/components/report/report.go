package report

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/momentum/internal/analytics"
)

var summaryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

type Model struct {
	table   table.Model
	summary string
}

func columns(width int) []table.Column {
	name := 24
	if width > 80 {
		name = width - 56
	}
	return []table.Column{
		{Title: "Habit", Width: name},
		{Title: "Cadence", Width: 8},
		{Title: "Streak", Width: 7},
		{Title: "Longest", Width: 8},
		{Title: "Rate", Width: 6},
		{Title: "Goal", Width: 12},
	}
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns(width)),
		table.WithFocused(true),
		table.WithHeight(max(height-3, 3)),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	s.Selected = s.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	t.SetStyles(s)
	return Model{table: t}
}

// SetReport replaces the rows with one line per analysed habit.
func (m *Model) SetReport(r analytics.Report) {
	rows := make([]table.Row, 0, len(r.Habits))
	for _, a := range r.Habits {
		p := a.GoalProgress
		goal := fmt.Sprintf("%d/%d", p.Count, p.Total)
		if p.Achieved {
			goal += " ✓"
		}
		rows = append(rows, table.Row{
			a.HabitName,
			string(a.Frequency),
			fmt.Sprint(a.CurrentStreak),
			fmt.Sprint(a.LongestStreak),
			fmt.Sprintf("%.0f%%", a.CompletionRate*100),
			goal,
		})
	}
	m.table.SetRows(rows)

	m.summary = "No habit has a running streak yet."
	if r.Best != nil {
		m.summary = fmt.Sprintf("Best streak: %s (%d)", r.Best.HabitName, r.Best.Streak)
	}
	if r.Longest != nil {
		m.summary += fmt.Sprintf("  ·  Longest ever: %s (%d)", r.Longest.HabitName, r.Longest.Streak)
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.table.Rows()) == 0 {
		return "\n  Nothing to report yet."
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.table.View(), summaryStyle.Render(m.summary))
}

func (m *Model) SetSize(width, height int) {
	m.table.SetColumns(columns(width))
	m.table.SetHeight(max(height-3, 3))
}
