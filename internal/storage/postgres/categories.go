package postgres

import (
	"fmt"

	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

func (s *Store) AddCategory(c models.Category) error {
	_, err := s.db.Exec(`
INSERT INTO categories (`+storage.CategoryColumns+`)
VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.Color, c.Active, storage.FormatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to add category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(id string) (models.Category, error) {
	row := s.db.QueryRow(`SELECT `+storage.CategoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := storage.ScanCategory(row)
	if err != nil {
		return models.Category{}, storage.NotFound(err, "category", id)
	}
	return c, nil
}

func (s *Store) GetCategoryByName(name string) (models.Category, error) {
	row := s.db.QueryRow(`
SELECT `+storage.CategoryColumns+` FROM categories
WHERE lower(name) = lower($1)
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
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return storage.CollectRows(rows, storage.ScanCategory)
}

func (s *Store) DeleteCategory(id string) error {
	res, err := s.db.Exec(`UPDATE categories SET is_active = FALSE WHERE id = $1`, id)
	return checkAffected(res, err, "category", id)
}
