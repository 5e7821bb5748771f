package postgres

import (
	"database/sql"
	"fmt"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AddGoal(g models.Goal) error {
	_, err := s.db.Exec(`
INSERT INTO goals (`+storage.GoalColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.HabitID, g.TargetPeriodDays, storage.NullInt(g.TargetCompletions),
		storage.FormatNullTime(g.StartDate), storage.FormatNullTime(g.EndDate), g.Active,
		storage.FormatTime(g.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add goal: %w", err)
	}
	return nil
}

func (s *Store) GetGoal(id string) (models.Goal, error) {
	row := s.db.QueryRow(`SELECT `+storage.GoalColumns+` FROM goals WHERE id = $1`, id)
	g, err := storage.ScanGoal(row)
	if err != nil {
		return models.Goal{}, storage.NotFound(err, "goal", id)
	}
	return g, nil
}

func (s *Store) GetAllGoals(includeInactive bool) ([]models.Goal, error) {
	query := `SELECT ` + storage.GoalColumns + ` FROM goals`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return storage.CollectRows(rows, storage.ScanGoal)
}

func (s *Store) DeleteGoal(id string) error {
	res, err := s.db.Exec(`UPDATE goals SET is_active = FALSE WHERE id = $1`, id)
	return checkAffected(res, err, "goal", id)
}

func checkAffected(res sql.Result, err error, kind, id string) error {
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", kind, id, apperrors.ErrNotFound)
	}
	return nil
}
