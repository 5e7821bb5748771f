package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/momentum/internal/models"
)

// HabitInput carries the user-supplied fields of a new habit.
type HabitInput struct {
	Name       string
	Frequency  models.Frequency
	Notes      string
	CategoryID *string
}

// CreateHabit validates in and stores it as a new active habit created at
// now. Names are unique among active habits, compared case-insensitively.
func CreateHabit(p Provider, in HabitInput, now time.Time) (models.Habit, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Habit{}, errors.New("habit name cannot be empty")
	}
	if !in.Frequency.Valid() {
		return models.Habit{}, fmt.Errorf("unsupported frequency %q (use daily or weekly)", in.Frequency)
	}
	if existing, err := p.GetHabitByName(name); err == nil && existing.IsActive() {
		return models.Habit{}, fmt.Errorf("habit with name %q already exists", existing.Name)
	}

	h := models.Habit{
		ID:         uuid.New().String(),
		Name:       name,
		Frequency:  in.Frequency,
		Notes:      strings.TrimSpace(in.Notes),
		CreatedAt:  now,
		State:      models.StateActive,
		CategoryID: in.CategoryID,
	}
	if err := p.AddHabit(h); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}
