package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/momentum/internal/encourage"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/tui/components/habitlist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.habitList.SetSize(msg.Width-4, msg.Height-6)
		m.reportModel.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if handled, cmd := m.handleHabitMessages(msg); handled {
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.habitList.Filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateHabits:
		m.habitList, cmd = m.habitList.Update(msg)
	case StateReport:
		m.reportModel, cmd = m.reportModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleHabitMessages(msg tea.Msg) (bool, tea.Cmd) {
	switch msg := msg.(type) {
	case habitlist.AddHabitMsg:
		m.habitForm = &HabitFormModel{Frequency: models.FrequencyDaily}
		m.form = newHabitForm(m.habitForm)
		m.state = StateAddHabit
		return true, m.form.Init()

	case habitlist.CompleteHabitMsg:
		updated, err := m.tracker.Complete(msg.Habit.ID, m.now())
		switch {
		case errors.Is(err, apperrors.ErrDuplicatePeriod):
			m.setStatus(fmt.Sprintf("%s is already done for this period.", msg.Habit.Name))
		case err != nil:
			m.setError(err)
		default:
			status := fmt.Sprintf("%s: %s", updated.Name, encourage.New(m.now().UnixNano()).Completion())
			if s := encourage.Streak(updated.Streak, updated.Frequency); s != "" {
				status += " " + s
			}
			m.setStatus(status)
		}
		m.refresh()
		return true, nil

	case habitlist.DeleteHabitMsg:
		h := msg.Habit
		m.pending = &h
		m.state = StateConfirmDelete
		return true, nil

	case habitlist.ReactivateHabitMsg:
		if err := m.tracker.Reactivate(msg.Habit.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Reactivated %s with a fresh streak.", msg.Habit.Name))
		}
		m.refresh()
		return true, nil
	}
	return false, nil
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateHabits
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.addHabit(*m.habitForm)
		m.state = StateHabits
	case huh.StateAborted:
		m.state = StateHabits
	}
	return m, cmd
}

func (m *Model) addHabit(fm HabitFormModel) {
	h, err := storage.CreateHabit(m.store, storage.HabitInput{
		Name:      fm.Name,
		Frequency: fm.Frequency,
		Notes:     fm.Notes,
	}, m.now())
	if err != nil {
		m.setError(err)
	} else {
		m.setStatus("Added " + h.Name)
	}
	m.refresh()
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(keyMsg.String()) {
	case "y":
		if err := m.tracker.SoftDelete(m.pending.ID); err != nil {
			m.setError(err)
		} else {
			m.setStatus(fmt.Sprintf("Deleted %s (history kept).", m.pending.Name))
		}
		m.refresh()
	case "n", "esc", "q":
	default:
		return m, nil
	}
	m.pending = nil
	m.state = StateHabits
	return m, nil
}

func newHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}
