package goals

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/momentum/internal/analytics"
	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/models"
)

type GoalCmd struct {
	Add      GoalAddCmd      `cmd:"" help:"Set a completion goal for a habit."`
	List     GoalListCmd     `cmd:"" help:"List goals."`
	Progress GoalProgressCmd `cmd:"" help:"Show progress toward a habit's goal."`
	Delete   GoalDeleteCmd   `cmd:"" help:"Deactivate a goal."`
}

type GoalAddCmd struct {
	Habit  string `arg:"" help:"Habit name or id."`
	Days   int    `help:"Goal period in days." default:"28"`
	Target int    `help:"Explicit number of completions (default: derived from period and cadence)."`
	Start  string `help:"Start date YYYY-MM-DD (inclusive)."`
	End    string `help:"End date YYYY-MM-DD (inclusive)."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if c.Days <= 0 {
		return errors.New("goal period must be a positive number of days")
	}
	if c.Target < 0 {
		return errors.New("target cannot be negative")
	}

	start, err := cli.ParseDate(c.Start)
	if err != nil {
		return err
	}
	end, err := cli.ParseDate(c.End)
	if err != nil {
		return err
	}
	end = cli.EndOfDay(end)
	if start != nil && end != nil && end.Before(*start) {
		return errors.New("end date is before start date")
	}

	g := models.Goal{
		ID:               uuid.New().String(),
		HabitID:          h.ID,
		TargetPeriodDays: c.Days,
		StartDate:        start,
		EndDate:          end,
		Active:           true,
		CreatedAt:        ctx.Now(),
	}
	if c.Target > 0 {
		target := c.Target
		g.TargetCompletions = &target
	}

	if err := ctx.Store.AddGoal(g); err != nil {
		return err
	}
	cli.Success("Goal set for %s: %d completion(s) (id %s)", h.Name, analytics.GoalTarget(g, h.Frequency), g.ID)
	return nil
}

type GoalListCmd struct {
	All bool `help:"Include inactive goals." short:"a"`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	goals, err := ctx.Store.GetAllGoals(c.All)
	if err != nil {
		return err
	}
	if len(goals) == 0 {
		fmt.Println("No goals found.")
		return nil
	}

	now := ctx.Now()
	fmt.Println(cli.Header(fmt.Sprintf("%-36s %-20s %-7s %-10s %-10s", "ID", "HABIT", "TARGET", "START", "END")))
	for _, g := range goals {
		name := g.HabitID
		freq := models.FrequencyDaily
		if h, err := ctx.Store.GetHabit(g.HabitID); err == nil {
			name, freq = h.Name, h.Frequency
		}
		status := ""
		switch {
		case !g.Active:
			status = cli.Muted(" [INACTIVE]")
		case g.Expired(now):
			status = cli.Muted(" [EXPIRED]")
		}
		fmt.Printf("%-36s %-20s %-7d %-10s %-10s%s\n",
			g.ID, name, analytics.GoalTarget(g, freq), bound(g.StartDate), bound(g.EndDate), status)
	}
	return nil
}

func bound(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(constants.DateFormat)
}

type GoalProgressCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *GoalProgressCmd) Run(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	goals, err := ctx.Store.GetAllGoals(false)
	if err != nil {
		return err
	}

	var p analytics.Progress
	if g, ok := analytics.CurrentGoal(goals, h.ID); ok {
		p, err = ctx.Tracker.GoalProgress(g.ID)
		if err != nil {
			return err
		}
	} else {
		completions, err := ctx.Store.ListCompletions(h.ID)
		if err != nil {
			return err
		}
		p = analytics.DefaultProgress(h.Frequency, models.Timestamps(completions), ctx.Now())
		fmt.Println(cli.Muted("No active goal; showing the default window."))
	}

	fmt.Println(cli.Header(h.Name))
	fmt.Printf("  %d/%d completions (%.0f%%)\n", p.Count, p.Total, p.Percent)
	if p.Achieved {
		cli.Success("Goal achieved!")
	}
	return nil
}

type GoalDeleteCmd struct {
	ID string `arg:"" help:"Goal id."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.DeleteGoal(c.ID); err != nil {
		return err
	}
	cli.Success("Goal %s deactivated", c.ID)
	return nil
}
