package storage

import (
	"github.com/julianstephens/momentum/internal/migration"
	"github.com/julianstephens/momentum/internal/models"
)

// Provider is implemented by each storage backend. Lookups of unknown ids
// return an error wrapping errors.ErrNotFound. Completion lists are ordered
// by completion time, oldest first.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Habits
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeInactive bool) ([]models.Habit, error)
	SaveHabit(models.Habit) error

	// Completions (append-only)
	AppendCompletion(models.Completion) error
	ListCompletions(habitID string) ([]models.Completion, error)

	// Goals
	AddGoal(models.Goal) error
	GetGoal(id string) (models.Goal, error)
	GetAllGoals(includeInactive bool) ([]models.Goal, error)
	DeleteGoal(id string) error

	// Categories
	AddCategory(models.Category) error
	GetCategory(id string) (models.Category, error)
	GetCategoryByName(name string) (models.Category, error)
	GetAllCategories(includeInactive bool) ([]models.Category, error)
	DeleteCategory(id string) error

	// Utils
	SchemaStatus() (migration.Status, error)
	GetConfigPath() string
}
