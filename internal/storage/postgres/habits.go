package postgres

import (
	"fmt"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AddHabit(h models.Habit) error {
	_, err := s.db.Exec(`
INSERT INTO habits (`+storage.HabitColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		h.ID, h.Name, string(h.Frequency), h.Notes, h.Streak, storage.FormatTime(h.CreatedAt),
		storage.FormatNullTime(h.LastCompleted), h.IsActive(), storage.FormatNullTime(h.ReactivatedAt),
		storage.NullString(h.CategoryID))
	if err != nil {
		return fmt.Errorf("failed to add habit: %w", err)
	}
	return nil
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	row := s.db.QueryRow(`SELECT `+storage.HabitColumns+` FROM habits WHERE id = $1`, id)
	h, err := storage.ScanHabit(row)
	if err != nil {
		return models.Habit{}, storage.NotFound(err, "habit", id)
	}
	return h, nil
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	row := s.db.QueryRow(`
SELECT `+storage.HabitColumns+` FROM habits
WHERE lower(name) = lower($1)
ORDER BY is_active DESC, created_at DESC
LIMIT 1`, name)
	h, err := storage.ScanHabit(row)
	if err != nil {
		return models.Habit{}, storage.NotFound(err, "habit", name)
	}
	return h, nil
}

func (s *Store) GetAllHabits(includeInactive bool) ([]models.Habit, error) {
	query := `SELECT ` + storage.HabitColumns + ` FROM habits`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at, name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return storage.CollectRows(rows, storage.ScanHabit)
}

func (s *Store) SaveHabit(h models.Habit) error {
	res, err := s.db.Exec(`
UPDATE habits SET
	name = $1, frequency = $2, notes = $3, streak = $4, last_completed = $5,
	is_active = $6, reactivated_at = $7, category_id = $8
WHERE id = $9`,
		h.Name, string(h.Frequency), h.Notes, h.Streak, storage.FormatNullTime(h.LastCompleted),
		h.IsActive(), storage.FormatNullTime(h.ReactivatedAt), storage.NullString(h.CategoryID), h.ID)
	if err != nil {
		return fmt.Errorf("failed to save habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("habit %q: %w", h.ID, apperrors.ErrNotFound)
	}
	return nil
}
