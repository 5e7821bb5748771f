package sqlite

import (
	"fmt"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AddGoal(g models.Goal) error {
	_, err := s.db.Exec(`
		INSERT INTO goals (`+storage.GoalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.HabitID, g.TargetPeriodDays, storage.NullInt(g.TargetCompletions),
		storage.FormatNullTime(g.StartDate), storage.FormatNullTime(g.EndDate), g.Active,
		storage.FormatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(id string) (models.Goal, error) {
	row := s.db.QueryRow(`SELECT `+storage.GoalColumns+` FROM goals WHERE id = ?`, id)
	g, err := storage.ScanGoal(row)
	if err != nil {
		return models.Goal{}, storage.NotFound(err, "goal", id)
	}
	return g, nil
}

func (s *Store) GetAllGoals(includeInactive bool) ([]models.Goal, error) {
	query := `SELECT ` + storage.GoalColumns + ` FROM goals`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return storage.CollectRows(rows, storage.ScanGoal)
}

// DeleteGoal deactivates the goal; it stays readable by id.
func (s *Store) DeleteGoal(id string) error {
	res, err := s.db.Exec(`UPDATE goals SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("goal %q: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
