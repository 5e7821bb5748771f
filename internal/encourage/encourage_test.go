package encourage

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/julianstephens/momentum/internal/models"
)

func TestCompletionVaries(t *testing.T) {
	p := New(1)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		msg := p.Completion()
		assert.NotEmpty(t, msg)
		seen[msg] = true
	}
	assert.Greater(t, len(seen), 1)
}

func TestStreak(t *testing.T) {
	tests := []struct {
		streak   int
		freq     models.Frequency
		contains string
	}{
		{1, models.FrequencyDaily, "1 day"},
		{3, models.FrequencyDaily, "3 days"},
		{7, models.FrequencyDaily, "7-day"},
		{30, models.FrequencyDaily, "30-day"},
		{45, models.FrequencyDaily, "45-day"},
		{100, models.FrequencyDaily, "100 days"},
		{2, models.FrequencyWeekly, "2 weeks"},
		{4, models.FrequencyWeekly, "4-week"},
		{12, models.FrequencyWeekly, "12-week"},
		{52, models.FrequencyWeekly, "52 weeks"},
	}

	for _, tt := range tests {
		t.Run(string(tt.freq)+"-"+strconv.Itoa(tt.streak), func(t *testing.T) {
			msg := Streak(tt.streak, tt.freq)
			assert.Contains(t, msg, tt.contains)
			assert.Contains(t, msg, strconv.Itoa(tt.streak))
		})
	}
}

func TestStreakEmpty(t *testing.T) {
	assert.Empty(t, Streak(0, models.FrequencyDaily))
	assert.Empty(t, Streak(5, models.Frequency("monthly")))
}

func TestCompletionRate(t *testing.T) {
	assert.Contains(t, CompletionRate(0.95), "95%")
	assert.Contains(t, CompletionRate(1.0), "100%")
	assert.Contains(t, CompletionRate(0.8), "80%")
	assert.NotContains(t, CompletionRate(0.5), "%")
	assert.NotContains(t, CompletionRate(0), "%")
}
