// Package analytics evaluates completion rates, goal progress and
// cross-habit reports from a habit's completion ledger.
//
// Everything here is read-only: functions take timestamps and return values,
// and the report builder only reads through the Source interface.
package analytics

import (
	"time"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/period"
)

// CompletionRate returns the share of the trailing window that was completed,
// in [0, 1]. Daily habits look at the 28 dates ending at ref; weekly habits
// at the 4 weeks ending at the week containing ref. Completions after ref
// fall outside the window.
func CompletionRate(ts []time.Time, freq models.Frequency, ref time.Time) float64 {
	count, total := windowCount(ts, freq, ref)
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}

// windowCount returns how many distinct periods inside the rate window hold a
// completion, and how many periods the window spans.
func windowCount(ts []time.Time, freq models.Frequency, ref time.Time) (count, total int) {
	anchor, ok := period.Key(freq, ref)
	if !ok {
		return 0, 0
	}

	switch freq {
	case models.FrequencyWeekly:
		total = constants.RateWindowWeeks
	default:
		total = constants.RateWindowDays
	}
	span := total * period.Step(freq)

	for _, k := range period.Unique(freq, ts) {
		if d := period.DaysBetween(k, anchor); d >= 0 && d < span {
			count++
		}
	}
	return count, total
}
