package models

import "time"

// Frequency is the cadence a habit is tracked at.
// Only FrequencyDaily and FrequencyWeekly carry streak semantics; any other
// stored value is kept verbatim and yields zero-valued analytics.
type Frequency string

const (
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
)

// Valid reports whether f is a supported cadence.
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// LifecycleState is the soft-delete state of a habit.
type LifecycleState string

const (
	StateActive   LifecycleState = "active"
	StateInactive LifecycleState = "inactive"
)

// Habit represents a recurring practice to track
type Habit struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Frequency     Frequency      `json:"frequency"`
	Notes         string         `json:"notes,omitempty"`
	Streak        int            `json:"streak"`
	CreatedAt     time.Time      `json:"created_at"`
	LastCompleted *time.Time     `json:"last_completed,omitempty"`
	State         LifecycleState `json:"state"`
	ReactivatedAt *time.Time     `json:"reactivated_at,omitempty"`
	CategoryID    *string        `json:"category_id,omitempty"`
}

// IsActive reports whether the habit is in the active state.
func (h Habit) IsActive() bool {
	return h.State != StateInactive
}

// EpochStart returns the lower bound for streak and duplicate checks.
// A nil result means every completion belongs to the current epoch.
func (h Habit) EpochStart() *time.Time {
	return h.ReactivatedAt
}

// Completion is a single append-only ledger entry for a habit
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// Timestamps extracts the completion times, preserving order.
func Timestamps(completions []Completion) []time.Time {
	ts := make([]time.Time, len(completions))
	for i, c := range completions {
		ts[i] = c.CompletedAt
	}
	return ts
}
