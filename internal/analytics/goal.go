package analytics

import (
	"time"

	"github.com/julianstephens/momentum/internal/models"
)

// Progress is the outcome of evaluating a goal, or the default window when a
// habit has no active goal.
type Progress struct {
	Count    int     `json:"count"`
	Total    int     `json:"total"`
	Percent  float64 `json:"percent"`
	Achieved bool    `json:"achieved"`
	// GoalID is empty when the default window was used
	GoalID string `json:"goal_id,omitempty"`
}

// GoalTarget returns the number of completions needed to achieve g.
// An explicit positive target wins; otherwise it is derived from the period
// length and cadence. Unknown cadences use the daily rule.
func GoalTarget(g models.Goal, freq models.Frequency) int {
	if g.TargetCompletions != nil && *g.TargetCompletions > 0 {
		return *g.TargetCompletions
	}
	if freq == models.FrequencyWeekly {
		return max(1, g.TargetPeriodDays/7)
	}
	return g.TargetPeriodDays
}

// EvaluateGoal counts the completions inside the goal's date bounds against
// its target. Missing bounds are open.
func EvaluateGoal(g models.Goal, freq models.Frequency, ts []time.Time) Progress {
	count := 0
	for _, t := range ts {
		if g.StartDate != nil && t.Before(*g.StartDate) {
			continue
		}
		if g.EndDate != nil && t.After(*g.EndDate) {
			continue
		}
		count++
	}

	total := GoalTarget(g, freq)
	p := Progress{
		Count:    count,
		Total:    total,
		Achieved: count >= total,
		GoalID:   g.ID,
	}
	if total > 0 {
		p.Percent = float64(count) / float64(total) * 100
	}
	return p
}

// DefaultProgress measures the habit against the rate window when it has no
// goal. It is never marked achieved.
func DefaultProgress(freq models.Frequency, ts []time.Time, ref time.Time) Progress {
	count, total := windowCount(ts, freq, ref)
	p := Progress{Count: count, Total: total}
	if total > 0 {
		p.Percent = float64(count) / float64(total) * 100
	}
	return p
}

// CurrentGoal picks the most recently created active goal for habitID.
func CurrentGoal(goals []models.Goal, habitID string) (models.Goal, bool) {
	var (
		best  models.Goal
		found bool
	)
	for _, g := range goals {
		if g.HabitID != habitID || !g.Active {
			continue
		}
		if !found || g.CreatedAt.After(best.CreatedAt) {
			best, found = g, true
		}
	}
	return best, found
}

// HabitGoalProgress evaluates the habit's current goal, falling back to the
// default window.
func HabitGoalProgress(h models.Habit, goals []models.Goal, ts []time.Time, ref time.Time) Progress {
	if g, ok := CurrentGoal(goals, h.ID); ok {
		return EvaluateGoal(g, h.Frequency, ts)
	}
	return DefaultProgress(h.Frequency, ts, ref)
}
