package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/momentum/internal/analytics"
	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/encourage"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/storage"
)

type HabitCmd struct {
	Add        HabitAddCmd        `cmd:"" help:"Add a new habit."`
	List       HabitListCmd       `cmd:"" help:"List habits."`
	Update     HabitUpdateCmd     `cmd:"" help:"Rename or re-file a habit, or change its cadence."`
	Complete   HabitCompleteCmd   `cmd:"" help:"Mark a habit as completed."`
	Delete     HabitDeleteCmd     `cmd:"" help:"Deactivate a habit (soft delete)."`
	Reactivate HabitReactivateCmd `cmd:"" help:"Reactivate a deleted habit with a fresh streak."`
	Streak     HabitStreakCmd     `cmd:"" help:"Show current and longest streak."`
	Show       HabitShowCmd       `cmd:"" help:"Show habit details and analytics."`
	History    HabitHistoryCmd    `cmd:"" help:"Show a habit's completion history."`
}

type HabitAddCmd struct {
	Name      string `arg:"" help:"Habit name."`
	Frequency string `help:"Tracking cadence." enum:"daily,weekly" default:"daily" short:"f"`
	Notes     string `help:"Optional notes."`
	Category  string `help:"Category name to file the habit under."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	h, err := AddHabit(ctx, c.Name, models.Frequency(c.Frequency), c.Notes, c.Category)
	if err != nil {
		return err
	}
	cli.Success("Added %s habit: %s", h.Frequency, h.Name)
	return nil
}

// AddHabit validates and stores a new active habit, resolving category by
// name first.
func AddHabit(ctx *cli.Context, name string, freq models.Frequency, notes, category string) (models.Habit, error) {
	in := storage.HabitInput{Name: name, Frequency: freq, Notes: notes}
	if category != "" {
		cat, err := ctx.FindCategory(category)
		if err != nil {
			return models.Habit{}, err
		}
		in.CategoryID = &cat.ID
	}
	return storage.CreateHabit(ctx.Store, in, ctx.Now())
}

type HabitListCmd struct {
	All bool `help:"Include deleted habits." short:"a"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.All)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	fmt.Println(cli.Header(fmt.Sprintf("%-24s %-8s %-7s %s", "NAME", "CADENCE", "STREAK", "LAST")))
	for _, h := range habits {
		status := ""
		if !h.IsActive() {
			status = cli.Muted(" [DELETED]")
		}
		fmt.Printf("%-24s %-8s %-7d %s%s\n", h.Name, h.Frequency, h.Streak, cli.Date(h.LastCompleted), status)
	}
	return nil
}

type HabitUpdateCmd struct {
	Name      string `arg:"" help:"Habit name or id."`
	Rename    string `help:"New name."`
	Frequency string `help:"New cadence (daily or weekly)." short:"f"`
	Notes     string `help:"Replace the notes."`
	Category  string `help:"Category name to file the habit under (\"none\" to clear)."`
}

func (c *HabitUpdateCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	h, err = UpdateHabit(ctx, h, c.Rename, models.Frequency(c.Frequency), c.Notes, c.Category)
	if err != nil {
		return err
	}
	cli.Success("Updated habit: %s (%s, streak %d)", h.Name, h.Frequency, h.Streak)
	return nil
}

// UpdateHabit applies the non-empty fields to h. A cadence change
// recomputes the cached streak under the new period rules.
func UpdateHabit(ctx *cli.Context, h models.Habit, name string, freq models.Frequency, notes, category string) (models.Habit, error) {
	if name = strings.TrimSpace(name); name != "" && !strings.EqualFold(name, h.Name) {
		if existing, err := ctx.Store.GetHabitByName(name); err == nil && existing.IsActive() && existing.ID != h.ID {
			return h, fmt.Errorf("habit with name %q already exists", existing.Name)
		}
	}
	if name != "" {
		h.Name = name
	}
	if notes != "" {
		h.Notes = strings.TrimSpace(notes)
	}
	switch {
	case category == "none":
		h.CategoryID = nil
	case category != "":
		cat, err := ctx.FindCategory(category)
		if err != nil {
			return h, err
		}
		h.CategoryID = &cat.ID
	}

	if freq != "" && freq != h.Frequency {
		if !freq.Valid() {
			return h, fmt.Errorf("unsupported frequency %q (use daily or weekly)", freq)
		}
		h.Frequency = freq
	}

	return ctx.Tracker.UpdateHabit(h)
}

type HabitCompleteCmd struct {
	Name string `arg:"" help:"Habit name or id."`
	At   string `help:"When it was completed: YYYY-MM-DD or \"YYYY-MM-DD HH:MM\" (default: now)."`
}

func (c *HabitCompleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	at, err := ctx.ParseWhen(c.At)
	if err != nil {
		return err
	}

	msg, err := Complete(ctx, h, at)
	if errors.Is(err, apperrors.ErrDuplicatePeriod) {
		cli.Warn("%s", msg)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println(msg)
	return nil
}

// Complete records a completion and returns the message to show. On a
// duplicate period the message explains the rejection and err wraps
// errors.ErrDuplicatePeriod.
func Complete(ctx *cli.Context, h models.Habit, at time.Time) (string, error) {
	updated, err := ctx.Tracker.Complete(h.ID, at)
	if errors.Is(err, apperrors.ErrDuplicatePeriod) {
		period := "today"
		if h.Frequency == models.FrequencyWeekly {
			period = "this week"
		}
		if !at.IsZero() && at.Format(constants.DateFormat) != ctx.Now().Format(constants.DateFormat) {
			period = "for " + at.Format(constants.DateFormat)
			if h.Frequency == models.FrequencyWeekly {
				period = "in the week of " + at.Format(constants.DateFormat)
			}
		}
		return fmt.Sprintf("%s is already completed %s.", h.Name, period), err
	}
	if err != nil {
		return "", err
	}

	lines := []string{
		fmt.Sprintf("✓ %s completed. %s", updated.Name, encourage.New(ctx.Now().UnixNano()).Completion()),
	}
	if s := encourage.Streak(updated.Streak, updated.Frequency); s != "" {
		lines = append(lines, "  "+s)
	}
	return strings.Join(lines, "\n"), nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name or id."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Tracker.SoftDelete(h.ID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			return fmt.Errorf("habit %q is already deleted", h.Name)
		}
		return err
	}
	cli.Success("Deleted habit: %s (history kept; use 'habit reactivate' to bring it back)", h.Name)
	return nil
}

type HabitReactivateCmd struct {
	Name string `arg:"" help:"Habit name or id."`
}

func (c *HabitReactivateCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	ctx.PerformAutomaticBackup()
	if err := ctx.Tracker.Reactivate(h.ID); err != nil {
		if errors.Is(err, apperrors.ErrInvalidTransition) {
			return fmt.Errorf("habit %q is already active", h.Name)
		}
		return err
	}
	cli.Success("Reactivated habit: %s (streak starts fresh)", h.Name)
	return nil
}

type HabitStreakCmd struct {
	Name string `arg:"" help:"Habit name or id."`
}

func (c *HabitStreakCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	longest, err := ctx.Tracker.LongestStreak(h.ID)
	if err != nil {
		return err
	}

	unit := "day(s)"
	if h.Frequency == models.FrequencyWeekly {
		unit = "week(s)"
	}
	fmt.Printf("%s\n", cli.Header(h.Name))
	fmt.Printf("  Current streak: %d %s\n", h.Streak, unit)
	fmt.Printf("  Longest streak: %d %s\n", longest, unit)
	return nil
}

type HabitShowCmd struct {
	Name string `arg:"" help:"Habit name or id."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	completions, err := ctx.Store.ListCompletions(h.ID)
	if err != nil {
		return err
	}
	goals, err := ctx.Store.GetAllGoals(false)
	if err != nil {
		return err
	}

	a := analytics.Analyze(h, goals, models.Timestamps(completions), ctx.Now())

	fmt.Println(cli.Header(h.Name))
	fmt.Printf("  Cadence:         %s\n", h.Frequency)
	fmt.Printf("  State:           %s\n", h.State)
	if h.Notes != "" {
		fmt.Printf("  Notes:           %s\n", h.Notes)
	}
	if h.CategoryID != nil {
		if cat, err := ctx.Store.GetCategory(*h.CategoryID); err == nil {
			fmt.Printf("  Category:        %s\n", cat.Name)
		}
	}
	fmt.Printf("  Created:         %s\n", h.CreatedAt.Format(constants.DateFormat))
	fmt.Printf("  Last completed:  %s\n", cli.Date(h.LastCompleted))
	if h.ReactivatedAt != nil {
		fmt.Printf("  Reactivated:     %s\n", cli.Date(h.ReactivatedAt))
	}
	fmt.Printf("  Completions:     %d\n", a.TotalCompletions)
	fmt.Printf("  Current streak:  %d\n", a.CurrentStreak)
	fmt.Printf("  Longest streak:  %d\n", a.LongestStreak)
	fmt.Printf("  Completion rate: %s\n", cli.Percent(a.CompletionRate))
	printProgress(a.GoalProgress)
	fmt.Printf("\n  %s\n", encourage.CompletionRate(a.CompletionRate))
	return nil
}

func printProgress(p analytics.Progress) {
	label := "default window"
	if p.GoalID != "" {
		label = "goal"
	}
	status := ""
	if p.Achieved {
		status = " (achieved)"
	}
	fmt.Printf("  Progress (%s): %d/%d, %.0f%%%s\n", label, p.Count, p.Total, p.Percent, status)
}

type HabitHistoryCmd struct {
	Name  string `arg:"" help:"Habit name or id."`
	Limit int    `help:"Show only the most recent N completions (0 = all)." default:"0"`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Name)
	if err != nil {
		return err
	}
	completions, err := ctx.Store.ListCompletions(h.ID)
	if err != nil {
		return err
	}
	if len(completions) == 0 {
		fmt.Printf("No completions recorded for %s.\n", h.Name)
		return nil
	}

	if c.Limit > 0 && len(completions) > c.Limit {
		completions = completions[len(completions)-c.Limit:]
	}

	fmt.Println(cli.Header(h.Name + " history"))
	epoch := h.EpochStart()
	for _, comp := range completions {
		line := comp.CompletedAt.Format(constants.DateTimeFormat)
		if epoch != nil && comp.CompletedAt.Before(*epoch) {
			line += cli.Muted("  (before reactivation)")
		}
		fmt.Println("  " + line)
	}
	return nil
}
