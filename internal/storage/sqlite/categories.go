package sqlite

import (
	"fmt"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AddCategory(c models.Category) error {
	_, err := s.db.Exec(`
		INSERT INTO categories (`+storage.CategoryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Description, c.Color, c.Active, storage.FormatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow(`SELECT `+storage.CategoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := storage.ScanCategory(row)
	if err != nil {
		return models.Category{}, storage.NotFound(err, "category", id)
	}
	return c, nil
}

func (s *Store) GetCategoryByName(name string) (models.Category, error) {
	row := s.db.QueryRow(`
		SELECT `+storage.CategoryColumns+` FROM categories
		WHERE name = ? COLLATE NOCASE
		ORDER BY is_active DESC, created_at DESC
		LIMIT 1`, name)
	c, err := storage.ScanCategory(row)
	if err != nil {
		return models.Category{}, storage.NotFound(err, "category", name)
	}
	return c, nil
}

func (s *Store) GetAllCategories(includeInactive bool) ([]models.Category, error) {
	query := `SELECT ` + storage.CategoryColumns + ` FROM categories`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return storage.CollectRows(rows, storage.ScanCategory)
}

// DeleteCategory deactivates the category. Habits keep their reference and
// are reported as uncategorized.
func (s *Store) DeleteCategory(id string) error {
	res, err := s.db.Exec(`UPDATE categories SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %q: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
