// Package period maps completion timestamps onto the calendar periods that
// streaks, rates and duplicate checks are compared by.
//
// Keys are calendar dates carried as UTC midnights so they can be compared
// with == and subtracted without daylight-saving drift. The wall-clock date
// of the input timestamp is used as-is; no timezone conversion happens.
package period

import (
	"sort"
	"time"

	"github.com/julianstephens/momentum/internal/models"
)

// Day returns the calendar date of t with the time of day discarded.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday on or before the date of t.
func WeekStart(t time.Time) time.Time {
	d := Day(t)
	for d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

// Key returns the period key of t for the given cadence.
// ok is false for cadences without period semantics.
func Key(freq models.Frequency, t time.Time) (key time.Time, ok bool) {
	switch freq {
	case models.FrequencyDaily:
		return Day(t), true
	case models.FrequencyWeekly:
		return WeekStart(t), true
	default:
		return time.Time{}, false
	}
}

// Step returns the number of days between two consecutive periods.
func Step(freq models.Frequency) int {
	switch freq {
	case models.FrequencyDaily:
		return 1
	case models.FrequencyWeekly:
		return 7
	default:
		return 0
	}
}

// DaysBetween returns the whole number of days from a to b.
// Both arguments are expected to be period keys.
func DaysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

// SameKey reports whether a and b fall in the same period.
func SameKey(freq models.Frequency, a, b time.Time) bool {
	ka, ok := Key(freq, a)
	if !ok {
		return false
	}
	kb, _ := Key(freq, b)
	return ka.Equal(kb)
}

// Unique collapses timestamps to their distinct period keys, sorted ascending.
// Returns nil for unsupported cadences.
func Unique(freq models.Frequency, ts []time.Time) []time.Time {
	if !freq.Valid() {
		return nil
	}

	seen := make(map[time.Time]struct{}, len(ts))
	keys := make([]time.Time, 0, len(ts))
	for _, t := range ts {
		k, _ := Key(freq, t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// Duplicates returns, in ascending order, the period keys that more than one
// timestamp maps to. Returns nil for unsupported cadences.
func Duplicates(freq models.Frequency, ts []time.Time) []time.Time {
	if !freq.Valid() {
		return nil
	}

	counts := make(map[time.Time]int, len(ts))
	for _, t := range ts {
		k, _ := Key(freq, t)
		counts[k]++
	}

	var dups []time.Time
	for k, n := range counts {
		if n > 1 {
			dups = append(dups, k)
		}
	}
	sort.Slice(dups, func(i, j int) bool { return dups[i].Before(dups[j]) })
	return dups
}
