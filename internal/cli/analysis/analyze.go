package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/julianstephens/momentum/internal/analytics"
	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/encourage"
	"github.com/julianstephens/momentum/internal/models"
)

type AnalyzeCmd struct {
	Habit string `help:"Analyze a single habit by name or id."`
	JSON  bool   `help:"Print the report as JSON." name:"json"`
}

func (c *AnalyzeCmd) Run(ctx *cli.Context) error {
	if c.Habit != "" {
		return c.runSingle(ctx)
	}

	report, err := analytics.BuildReport(context.Background(), ctx.Store, ctx.Now())
	if err != nil {
		return err
	}
	if c.JSON {
		return writeJSON(report)
	}
	if len(report.Habits) == 0 {
		fmt.Println("No active habits to analyze.")
		return nil
	}

	for _, group := range report.ByCategory {
		fmt.Println(cli.Header(group.Name))
		for _, a := range group.Habits {
			printAnalysis(a)
		}
		fmt.Println()
	}

	fmt.Println(cli.Header("Summary"))
	if report.Longest != nil {
		fmt.Printf("  Longest streak ever: %s (%d)\n", report.Longest.HabitName, report.Longest.Streak)
	}
	if report.Best != nil {
		fmt.Printf("  Strongest current streak: %s (%d)\n", report.Best.HabitName, report.Best.Streak)
	}
	if report.Worst != nil && report.Worst.HabitName != report.Best.HabitName {
		fmt.Printf("  Weakest current streak: %s (%d)\n", report.Worst.HabitName, report.Worst.Streak)
	}
	if report.Best == nil {
		fmt.Println(cli.Muted("  No habit has a running streak yet."))
	}
	return nil
}

func (c *AnalyzeCmd) runSingle(ctx *cli.Context) error {
	h, err := ctx.FindHabit(c.Habit)
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
	if c.JSON {
		return writeJSON(a)
	}
	printAnalysis(a)
	fmt.Printf("    %s\n", encourage.CompletionRate(a.CompletionRate))
	return nil
}

func printAnalysis(a analytics.HabitAnalysis) {
	fmt.Printf("  %s (%s)\n", a.HabitName, a.Frequency)
	fmt.Printf("    streak %d, longest %d, rate %s, %d completion(s)\n",
		a.CurrentStreak, a.LongestStreak, cli.Percent(a.CompletionRate), a.TotalCompletions)
	p := a.GoalProgress
	label := "window"
	if p.GoalID != "" {
		label = "goal"
	}
	line := fmt.Sprintf("    %s %d/%d (%.0f%%)", label, p.Count, p.Total, p.Percent)
	if p.Achieved {
		line += " achieved"
	}
	fmt.Println(line)
}

func writeJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
