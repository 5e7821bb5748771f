package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
)

// Column lists shared by the SQL backends; the scan helpers below expect
// exactly this order.
const (
	HabitColumns      = "id, name, frequency, notes, streak, created_at, last_completed, is_active, reactivated_at, category_id"
	CompletionColumns = "id, habit_id, completed_at"
	GoalColumns       = "id, habit_id, target_period_days, target_completions, start_date, end_date, is_active, created_at"
	CategoryColumns   = "id, name, description, color, is_active, created_at"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// FormatTime encodes a timestamp for storage. The offset is kept so the
// recorded wall-clock date survives a round trip.
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// FormatNullTime encodes an optional timestamp.
func FormatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

func parseTime(s, field string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

func parseNullTime(ns sql.NullString, field string) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := parseTime(ns.String, field)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// NullString maps an optional id onto a nullable column.
func NullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// NullInt maps an optional count onto a nullable column.
func NullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

// NotFound translates sql.ErrNoRows into errors.ErrNotFound.
func NotFound(err error, kind, key string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %q: %w", kind, key, apperrors.ErrNotFound)
	}
	return fmt.Errorf("failed to load %s %q: %w", kind, key, err)
}

// ScanHabit reads a row selected with HabitColumns.
func ScanHabit(sc Scanner) (models.Habit, error) {
	var (
		h                          models.Habit
		frequency, createdAt       string
		active                     bool
		lastCompleted, reactivated sql.NullString
		categoryID                 sql.NullString
	)
	if err := sc.Scan(&h.ID, &h.Name, &frequency, &h.Notes, &h.Streak, &createdAt,
		&lastCompleted, &active, &reactivated, &categoryID); err != nil {
		return models.Habit{}, err
	}

	var err error
	h.Frequency = models.Frequency(frequency)
	if h.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Habit{}, err
	}
	if h.LastCompleted, err = parseNullTime(lastCompleted, "last_completed"); err != nil {
		return models.Habit{}, err
	}
	if h.ReactivatedAt, err = parseNullTime(reactivated, "reactivated_at"); err != nil {
		return models.Habit{}, err
	}
	h.State = models.StateActive
	if !active {
		h.State = models.StateInactive
	}
	if categoryID.Valid {
		h.CategoryID = &categoryID.String
	}
	return h, nil
}

// ScanCompletion reads a row selected with CompletionColumns.
func ScanCompletion(sc Scanner) (models.Completion, error) {
	var (
		c           models.Completion
		completedAt string
	)
	if err := sc.Scan(&c.ID, &c.HabitID, &completedAt); err != nil {
		return models.Completion{}, err
	}
	var err error
	if c.CompletedAt, err = parseTime(completedAt, "completed_at"); err != nil {
		return models.Completion{}, err
	}
	return c, nil
}

// SortCompletions orders completions by instant. Stored strings keep their
// offsets, so lexical order from SQL is not enough.
func SortCompletions(cs []models.Completion) {
	sort.SliceStable(cs, func(i, j int) bool { return cs[i].CompletedAt.Before(cs[j].CompletedAt) })
}

// ScanGoal reads a row selected with GoalColumns.
func ScanGoal(sc Scanner) (models.Goal, error) {
	var (
		g                  models.Goal
		target             sql.NullInt64
		startDate, endDate sql.NullString
		createdAt          string
	)
	if err := sc.Scan(&g.ID, &g.HabitID, &g.TargetPeriodDays, &target, &startDate, &endDate, &g.Active, &createdAt); err != nil {
		return models.Goal{}, err
	}

	var err error
	if target.Valid {
		v := int(target.Int64)
		g.TargetCompletions = &v
	}
	if g.StartDate, err = parseNullTime(startDate, "start_date"); err != nil {
		return models.Goal{}, err
	}
	if g.EndDate, err = parseNullTime(endDate, "end_date"); err != nil {
		return models.Goal{}, err
	}
	if g.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Goal{}, err
	}
	return g, nil
}

// ScanCategory reads a row selected with CategoryColumns.
func ScanCategory(sc Scanner) (models.Category, error) {
	var (
		c         models.Category
		createdAt string
	)
	if err := sc.Scan(&c.ID, &c.Name, &c.Description, &c.Color, &c.Active, &createdAt); err != nil {
		return models.Category{}, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return models.Category{}, err
	}
	return c, nil
}

// CollectRows drains rows through scan, closing rows when done.
func CollectRows[T any](rows *sql.Rows, scan func(Scanner) (T, error)) ([]T, error) {
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
