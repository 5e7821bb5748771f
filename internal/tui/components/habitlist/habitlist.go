package habitlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/models"
)

type AddHabitMsg struct{}

type CompleteHabitMsg struct {
	Habit models.Habit
}

type DeleteHabitMsg struct {
	Habit models.Habit
}

type ReactivateHabitMsg struct {
	Habit models.Habit
}

type Item struct {
	Habit models.Habit
}

func (i Item) Title() string {
	if !i.Habit.IsActive() {
		return i.Habit.Name + " (deleted)"
	}
	return i.Habit.Name
}

func (i Item) Description() string {
	desc := fmt.Sprintf("%s | streak %d", i.Habit.Frequency, i.Habit.Streak)
	if i.Habit.LastCompleted != nil {
		desc += " | last " + i.Habit.LastCompleted.Format(constants.DateFormat)
	}
	if !i.Habit.IsActive() {
		desc += " | reactivate with 'r'"
	}
	return desc
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add        key.Binding
	Complete   key.Binding
	Delete     key.Binding
	Reactivate key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Complete: key.NewBinding(
			key.WithKeys("enter", "c"),
			key.WithHelp("enter/c", "complete"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Reactivate: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reactivate"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(habits []models.Habit, width, height int) Model {
	l := list.New(items(habits), list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false) // help is rendered by the parent model

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Complete, keys.Delete, keys.Reactivate}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

func items(habits []models.Habit) []list.Item {
	out := make([]list.Item, len(habits))
	for i, h := range habits {
		out[i] = Item{Habit: h}
	}
	return out
}

func (m *Model) SetHabits(habits []models.Habit) {
	m.list.SetItems(items(habits))
}

func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && !m.Filtering() {
		selected, hasSelection := m.list.SelectedItem().(Item)
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Complete) && hasSelection && selected.Habit.IsActive():
			return m, func() tea.Msg { return CompleteHabitMsg(selected) }
		case key.Matches(msg, m.keys.Delete) && hasSelection && selected.Habit.IsActive():
			return m, func() tea.Msg { return DeleteHabitMsg(selected) }
		case key.Matches(msg, m.keys.Reactivate) && hasSelection && !selected.Habit.IsActive():
			return m, func() tea.Msg { return ReactivateHabitMsg(selected) }
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
