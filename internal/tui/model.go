package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/momentum/internal/analytics"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/tracker"
	"github.com/julianstephens/momentum/internal/tui/components/habitlist"
	"github.com/julianstephens/momentum/internal/tui/components/report"
)

type SessionState int

const (
	StateHabits SessionState = iota
	StateReport
	StateAddHabit
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 2

type HabitFormModel struct {
	Name      string
	Frequency models.Frequency
	Notes     string
}

type Model struct {
	store       storage.Provider
	tracker     *tracker.Tracker
	now         func() time.Time
	state       SessionState
	keys        KeyMap
	help        help.Model
	habitList   habitlist.Model
	reportModel report.Model
	form        *huh.Form
	habitForm   *HabitFormModel
	pending     *models.Habit
	status      string
	statusErr   bool
	quitting    bool
	width       int
	height      int
}

func NewModel(store storage.Provider, t *tracker.Tracker, now func() time.Time) Model {
	if now == nil {
		now = time.Now
	}
	m := Model{
		store:       store,
		tracker:     t,
		now:         now,
		state:       StateHabits,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		habitList:   habitlist.New(nil, 0, 0),
		reportModel: report.New(0, 0),
	}
	m.refresh()
	return m
}

// refresh reloads habits and the report from the store.
func (m *Model) refresh() {
	habits, err := m.store.GetAllHabits(true)
	if err != nil {
		m.setError(err)
		return
	}
	m.habitList.SetHabits(habits)

	r, err := analytics.BuildReport(context.Background(), m.store, m.now())
	if err != nil {
		m.setError(err)
		return
	}
	m.reportModel.SetReport(r)
}

func (m *Model) setStatus(s string) {
	m.status, m.statusErr = s, false
}

func (m *Model) setError(err error) {
	m.status, m.statusErr = err.Error(), true
}

func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return nil
}
