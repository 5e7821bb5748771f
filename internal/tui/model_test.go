package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage/sqlite"
	"github.com/julianstephens/momentum/internal/tracker"
	"github.com/julianstephens/momentum/internal/tui/components/habitlist"
)

func setupTestModel(t *testing.T) (Model, *sqlite.Store, models.Habit) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	h := models.Habit{ID: "h1", Name: "Read", Frequency: models.FrequencyDaily, State: models.StateActive, CreatedAt: now}
	if err := store.AddHabit(h); err != nil {
		t.Fatalf("failed to add habit: %v", err)
	}
	return NewModel(store, tracker.New(store, tracker.WithClock(clock)), clock), store, h
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestTabCyclesViews(t *testing.T) {
	m, _, _ := setupTestModel(t)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateReport {
		t.Errorf("expected report view after tab, got %d", m.state)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StateHabits {
		t.Errorf("expected habits view after second tab, got %d", m.state)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.state != StateReport {
		t.Errorf("expected shift+tab to wrap to report, got %d", m.state)
	}
}

func TestCompleteHabit(t *testing.T) {
	m, store, h := setupTestModel(t)

	m = update(t, m, habitlist.CompleteHabitMsg{Habit: h})
	if m.statusErr {
		t.Fatalf("unexpected error status: %s", m.status)
	}
	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("GetHabit() failed: %v", err)
	}
	if got.Streak != 1 {
		t.Errorf("expected streak 1, got %d", got.Streak)
	}

	m = update(t, m, habitlist.CompleteHabitMsg{Habit: h})
	if !strings.Contains(m.status, "already done") {
		t.Errorf("expected duplicate status, got %q", m.status)
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	m, store, h := setupTestModel(t)

	m = update(t, m, habitlist.DeleteHabitMsg{Habit: h})
	if m.state != StateConfirmDelete {
		t.Fatalf("expected confirm state, got %d", m.state)
	}
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("n")})
	if m.state != StateHabits {
		t.Errorf("expected to return to habits after declining, got %d", m.state)
	}
	if got, _ := store.GetHabit(h.ID); !got.IsActive() {
		t.Fatal("habit deleted without confirmation")
	}

	m = update(t, m, habitlist.DeleteHabitMsg{Habit: h})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if got, _ := store.GetHabit(h.ID); got.IsActive() {
		t.Error("expected habit to be inactive after confirming")
	}

	m = update(t, m, habitlist.ReactivateHabitMsg{Habit: h})
	got, _ := store.GetHabit(h.ID)
	if !got.IsActive() || got.ReactivatedAt == nil {
		t.Errorf("expected reactivated habit with an epoch, got %+v", got)
	}
	if m.statusErr {
		t.Errorf("unexpected error status: %s", m.status)
	}
}

func TestAddHabitFromForm(t *testing.T) {
	m, store, _ := setupTestModel(t)

	m.addHabit(HabitFormModel{Name: "  Stretch ", Frequency: models.FrequencyWeekly})
	if m.statusErr {
		t.Fatalf("unexpected error status: %s", m.status)
	}
	got, err := store.GetHabitByName("Stretch")
	if err != nil {
		t.Fatalf("GetHabitByName() failed: %v", err)
	}
	if got.Frequency != models.FrequencyWeekly || !got.IsActive() {
		t.Errorf("unexpected habit stored: %+v", got)
	}

	m.addHabit(HabitFormModel{Name: "read", Frequency: models.FrequencyDaily})
	if !m.statusErr || !strings.Contains(m.status, "already exists") {
		t.Errorf("expected duplicate name error, got %q", m.status)
	}

	m.addHabit(HabitFormModel{Name: "Run", Frequency: models.Frequency("monthly")})
	if !m.statusErr || !strings.Contains(m.status, "unsupported frequency") {
		t.Errorf("expected frequency error, got %q", m.status)
	}
	habits, err := store.GetAllHabits(true)
	if err != nil {
		t.Fatalf("GetAllHabits() failed: %v", err)
	}
	if len(habits) != 2 {
		t.Errorf("expected 2 habits, got %d", len(habits))
	}
}
