package models

import "time"

// Goal is a completion target for a habit over a period
type Goal struct {
	ID                string     `json:"id"`
	HabitID           string     `json:"habit_id"`
	TargetPeriodDays  int        `json:"target_period_days"`
	TargetCompletions *int       `json:"target_completions,omitempty"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	Active            bool       `json:"active"`
	CreatedAt         time.Time  `json:"created_at"`
}

// Expired reports whether the goal's end date has passed.
func (g Goal) Expired(now time.Time) bool {
	if g.EndDate == nil {
		return false
	}
	return now.After(*g.EndDate)
}

// Category groups habits for reporting
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
