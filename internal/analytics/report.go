package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/streak"
)

// reportConcurrency bounds the number of ledgers read at once.
const reportConcurrency = 4

// Source is the read side of storage the report needs.
type Source interface {
	GetAllHabits(includeInactive bool) ([]models.Habit, error)
	ListCompletions(habitID string) ([]models.Completion, error)
	GetAllGoals(includeInactive bool) ([]models.Goal, error)
	GetAllCategories(includeInactive bool) ([]models.Category, error)
}

// HabitAnalysis is the per-habit summary shown by analyze and the dashboard.
type HabitAnalysis struct {
	HabitID          string           `json:"habit_id"`
	HabitName        string           `json:"habit_name"`
	Frequency        models.Frequency `json:"frequency"`
	CompletionRate   float64          `json:"completion_rate"`
	LongestStreak    int              `json:"longest_streak"`
	CurrentStreak    int              `json:"current_streak"`
	GoalProgress     Progress         `json:"goal_progress"`
	TotalCompletions int              `json:"total_completions"`
}

// Analyze summarises one habit. Rate and longest streak span the full
// ledger; the current streak is the cached epoch-aware value on h.
func Analyze(h models.Habit, goals []models.Goal, ts []time.Time, ref time.Time) HabitAnalysis {
	return HabitAnalysis{
		HabitID:          h.ID,
		HabitName:        h.Name,
		Frequency:        h.Frequency,
		CompletionRate:   CompletionRate(ts, h.Frequency, ref),
		LongestStreak:    streak.Longest(h.Frequency, ts),
		CurrentStreak:    h.Streak,
		GoalProgress:     HabitGoalProgress(h, goals, ts, ref),
		TotalCompletions: len(ts),
	}
}

// Leader names the habit holding a streak record.
type Leader struct {
	HabitName string `json:"habit_name"`
	Streak    int    `json:"streak"`
}

// CategoryGroup is the analysis of the habits filed under one category.
type CategoryGroup struct {
	Name   string          `json:"name"`
	Habits []HabitAnalysis `json:"habits"`
}

// Report covers every active habit.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Habits      []HabitAnalysis `json:"habits"`
	// Longest is the best longest-ever streak; nil when nothing was completed
	Longest *Leader `json:"longest,omitempty"`
	// Best and Worst rank habits with a running streak by current streak
	Best       *Leader         `json:"best,omitempty"`
	Worst      *Leader         `json:"worst,omitempty"`
	ByCategory []CategoryGroup `json:"by_category"`
}

// BuildReport analyses all active habits, reading their ledgers concurrently.
func BuildReport(ctx context.Context, src Source, ref time.Time) (Report, error) {
	habits, err := src.GetAllHabits(false)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list habits: %w", err)
	}
	goals, err := src.GetAllGoals(false)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list goals: %w", err)
	}
	categories, err := src.GetAllCategories(false)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list categories: %w", err)
	}

	results := make([]HabitAnalysis, len(habits))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(reportConcurrency)
	for i, h := range habits {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			completions, err := src.ListCompletions(h.ID)
			if err != nil {
				return fmt.Errorf("failed to load completions for %q: %w", h.Name, err)
			}
			results[i] = Analyze(h, goals, models.Timestamps(completions), ref)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	r := Report{
		GeneratedAt: ref,
		Habits:      results,
		ByCategory:  groupByCategory(habits, results, categories),
	}
	for _, a := range results {
		if a.LongestStreak > 0 && (r.Longest == nil || a.LongestStreak > r.Longest.Streak) {
			r.Longest = &Leader{HabitName: a.HabitName, Streak: a.LongestStreak}
		}
		if a.CurrentStreak <= 0 {
			continue
		}
		if r.Best == nil || a.CurrentStreak > r.Best.Streak {
			r.Best = &Leader{HabitName: a.HabitName, Streak: a.CurrentStreak}
		}
		if r.Worst == nil || a.CurrentStreak < r.Worst.Streak {
			r.Worst = &Leader{HabitName: a.HabitName, Streak: a.CurrentStreak}
		}
	}
	return r, nil
}

func groupByCategory(habits []models.Habit, results []HabitAnalysis, categories []models.Category) []CategoryGroup {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	buckets := make(map[string][]HabitAnalysis)
	var uncategorized []HabitAnalysis
	for i, h := range habits {
		if h.CategoryID != nil {
			if _, ok := names[*h.CategoryID]; ok {
				buckets[*h.CategoryID] = append(buckets[*h.CategoryID], results[i])
				continue
			}
		}
		uncategorized = append(uncategorized, results[i])
	}

	groups := make([]CategoryGroup, 0, len(categories)+1)
	for _, c := range categories {
		groups = append(groups, CategoryGroup{Name: c.Name, Habits: buckets[c.ID]})
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	if len(uncategorized) > 0 {
		groups = append(groups, CategoryGroup{Name: constants.UncategorizedTag, Habits: uncategorized})
	}
	return groups
}
