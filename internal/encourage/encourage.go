// Package encourage picks the short messages shown after a habit is completed.
package encourage

import (
	"fmt"
	"math/rand"

	"github.com/julianstephens/momentum/internal/models"
)

var completionMessages = []string{
	"Nice work, one more in the books.",
	"Done! Small steps add up.",
	"Great job showing up today.",
	"That's momentum.",
	"Checked off. Keep it rolling.",
	"Consistency beats intensity. Well done.",
}

// milestone is a streak length with its own message.
type milestone struct {
	length int
	format string
}

// Milestones are checked from the largest down; the first one reached wins.
var (
	dailyMilestones = []milestone{
		{100, "%d days in a row. That's a habit for life."},
		{30, "%d-day streak! A full month of showing up."},
		{7, "%d-day streak! A whole week without a miss."},
	}
	weeklyMilestones = []milestone{
		{52, "%d weeks straight. A full year!"},
		{12, "%d-week streak. A whole quarter of consistency."},
		{4, "%d-week streak. A month of weeks done."},
	}
)

// Rate tiers for CompletionRate.
const (
	highRate   = 0.9
	mediumRate = 0.75
)

// Picker chooses messages. The zero value is not usable; call New.
type Picker struct {
	rng *rand.Rand
}

// New returns a Picker seeded with seed.
func New(seed int64) *Picker {
	return &Picker{rng: rand.New(rand.NewSource(seed))}
}

// Completion returns a random completion message.
func (p *Picker) Completion() string {
	return completionMessages[p.rng.Intn(len(completionMessages))]
}

// Streak returns a message for the current streak. Streaks below the first
// milestone get a plain progress line; unknown cadences get none.
func Streak(streak int, freq models.Frequency) string {
	var ms []milestone
	unit, next := "day", "tomorrow"
	switch freq {
	case models.FrequencyDaily:
		ms = dailyMilestones
	case models.FrequencyWeekly:
		ms = weeklyMilestones
		unit, next = "week", "next week"
	default:
		return ""
	}
	if streak <= 0 {
		return ""
	}

	for _, m := range ms {
		if streak >= m.length {
			return fmt.Sprintf(m.format, streak)
		}
	}
	if streak == 1 {
		return fmt.Sprintf("1 %s down. Come back %s to build a streak.", unit, next)
	}
	return fmt.Sprintf("%d %ss in a row. Keep going!", streak, unit)
}

// CompletionRate returns feedback for a completion rate in [0, 1].
func CompletionRate(rate float64) string {
	pct := int(rate*100 + 0.5)
	switch {
	case rate >= highRate:
		return fmt.Sprintf("Outstanding: %d%% completion over the last four weeks.", pct)
	case rate >= mediumRate:
		return fmt.Sprintf("Solid: %d%% completion. You're close to the top tier.", pct)
	default:
		return "Every completion counts. Aim for one more this week."
	}
}
