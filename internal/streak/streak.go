// Package streak computes longest and trailing streaks from a habit's
// completion timestamps.
package streak

import (
	"time"

	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/period"
)

// Longest returns the longest run of consecutive periods ever completed.
// Unsupported cadences yield 0.
func Longest(freq models.Frequency, ts []time.Time) int {
	keys := period.Unique(freq, ts)
	if len(keys) == 0 {
		return 0
	}
	step := period.Step(freq)

	longest, run := 1, 1
	for i := 1; i < len(keys); i++ {
		if period.DaysBetween(keys[i-1], keys[i]) == step {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

// Current returns the run of consecutive periods ending at the most recent
// completion. It is not relative to today: a habit last completed a month ago
// still reports the streak it ended on until it is recomputed with new data.
func Current(freq models.Frequency, ts []time.Time) int {
	keys := period.Unique(freq, ts)
	if len(keys) == 0 {
		return 0
	}
	step := period.Step(freq)

	current := 1
	for i := len(keys) - 1; i > 0; i-- {
		if period.DaysBetween(keys[i-1], keys[i]) != step {
			break
		}
		current++
	}
	return current
}

// Since drops timestamps strictly before epoch. A nil epoch keeps everything.
func Since(ts []time.Time, epoch *time.Time) []time.Time {
	if epoch == nil {
		return ts
	}
	kept := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		if !t.Before(*epoch) {
			kept = append(kept, t)
		}
	}
	return kept
}

// Latest returns the most recent timestamp, or nil when ts is empty.
func Latest(ts []time.Time) *time.Time {
	if len(ts) == 0 {
		return nil
	}
	latest := ts[0]
	for _, t := range ts[1:] {
		if t.After(latest) {
			latest = t
		}
	}
	return &latest
}

// Result is the recomputed cached streak state for a habit.
type Result struct {
	Streak        int
	LastCompleted *time.Time
}

// Recompute derives the cached streak fields of h from its full ledger,
// honouring the habit's epoch. LastCompleted falls back to the habit's
// existing value when the current epoch has no completions yet.
func Recompute(h models.Habit, ts []time.Time) Result {
	inEpoch := Since(ts, h.EpochStart())
	res := Result{
		Streak:        Current(h.Frequency, inEpoch),
		LastCompleted: Latest(inEpoch),
	}
	if res.LastCompleted == nil {
		// Reactivate keeps last_completed while resetting the streak; a
		// recompute in the fresh epoch must not erase it either.
		res.LastCompleted = h.LastCompleted
	}
	return res
}
