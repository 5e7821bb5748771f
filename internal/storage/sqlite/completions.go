package sqlite

import (
	"fmt"

	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AppendCompletion(c models.Completion) error {
	_, err := s.db.Exec(`INSERT INTO completions (`+storage.CompletionColumns+`) VALUES (?, ?, ?)`,
		c.ID, c.HabitID, storage.FormatTime(c.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to append completion: %w", err)
	}
	return nil
}

func (s *Store) ListCompletions(habitID string) ([]models.Completion, error) {
	rows, err := s.db.Query(`SELECT `+storage.CompletionColumns+` FROM completions WHERE habit_id = ?`, habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	cs, err := storage.CollectRows(rows, storage.ScanCompletion)
	if err != nil {
		return nil, err
	}
	storage.SortCompletions(cs)
	return cs, nil
}
