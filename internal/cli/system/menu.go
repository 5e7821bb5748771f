package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/cli/analysis"
	"github.com/julianstephens/momentum/internal/cli/categories"
	"github.com/julianstephens/momentum/internal/cli/goals"
	"github.com/julianstephens/momentum/internal/cli/habits"
	apperrors "github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/models"
)

type menuAction string

const (
	actionCreate     menuAction = "Create a new habit"
	actionComplete   menuAction = "Mark a habit as completed"
	actionView       menuAction = "View habits"
	actionUpdate     menuAction = "Update a habit"
	actionAnalyze    menuAction = "Analyze habits"
	actionGoals      menuAction = "Manage goals"
	actionCategories menuAction = "Manage categories"
	actionDelete     menuAction = "Delete a habit"
	actionReactivate menuAction = "Reactivate a habit"
	actionExit       menuAction = "Exit"
)

var menuActions = []menuAction{
	actionCreate, actionComplete, actionView, actionUpdate, actionAnalyze,
	actionGoals, actionCategories, actionDelete, actionReactivate, actionExit,
}

// MenuCmd runs the interactive text menu until the user exits.
type MenuCmd struct{}

func (c *MenuCmd) Run(ctx *cli.Context) error {
	fmt.Println(cli.Header("Welcome to momentum! Choose an action to begin."))
	for {
		var choice menuAction
		options := make([]huh.Option[menuAction], len(menuActions))
		for i, a := range menuActions {
			options[i] = huh.NewOption(string(a), a)
		}
		err := huh.NewSelect[menuAction]().
			Title("What would you like to do?").
			Options(options...).
			Value(&choice).
			Run()
		if errors.Is(err, huh.ErrUserAborted) || choice == actionExit {
			fmt.Println("Keep up the great work!")
			return nil
		}
		if err != nil {
			return err
		}

		if err := runAction(ctx, choice); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			cli.Fail("%v", err)
		}
		fmt.Println()
	}
}

func runAction(ctx *cli.Context, action menuAction) error {
	switch action {
	case actionCreate:
		return menuCreate(ctx)
	case actionComplete:
		h, err := pickHabit(ctx, "Which habit did you complete?", true)
		if err != nil {
			return err
		}
		msg, err := habits.Complete(ctx, h, ctx.Now())
		if errors.Is(err, apperrors.ErrDuplicatePeriod) {
			cli.Warn("%s", msg)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Println(msg)
		return nil
	case actionView:
		return (&habits.HabitListCmd{All: true}).Run(ctx)
	case actionUpdate:
		return menuUpdate(ctx)
	case actionAnalyze:
		return (&analysis.AnalyzeCmd{}).Run(ctx)
	case actionGoals:
		return menuGoals(ctx)
	case actionCategories:
		return menuCategories(ctx)
	case actionDelete:
		h, err := pickHabit(ctx, "Which habit should be deleted?", true)
		if err != nil {
			return err
		}
		confirmed := false
		if err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s? Its history is kept.", h.Name)).
			Value(&confirmed).
			Run(); err != nil {
			return err
		}
		if !confirmed {
			return nil
		}
		return (&habits.HabitDeleteCmd{Name: h.ID}).Run(ctx)
	case actionReactivate:
		h, err := pickHabit(ctx, "Which habit should be reactivated?", false)
		if err != nil {
			return err
		}
		return (&habits.HabitReactivateCmd{Name: h.ID}).Run(ctx)
	}
	return nil
}

// pickHabit offers the active (or, when active is false, deleted) habits.
func pickHabit(ctx *cli.Context, title string, active bool) (models.Habit, error) {
	all, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return models.Habit{}, err
	}
	var options []huh.Option[string]
	byID := make(map[string]models.Habit)
	for _, h := range all {
		if h.IsActive() != active {
			continue
		}
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", h.Name, h.Frequency), h.ID))
		byID[h.ID] = h
	}
	if len(options) == 0 {
		if active {
			return models.Habit{}, errors.New("no active habits")
		}
		return models.Habit{}, errors.New("no deleted habits")
	}

	var id string
	if err := huh.NewSelect[string]().Title(title).Options(options...).Value(&id).Run(); err != nil {
		return models.Habit{}, err
	}
	return byID[id], nil
}

func menuCreate(ctx *cli.Context) error {
	var (
		name  string
		notes string
		freq  = models.FrequencyDaily
	)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("habit name cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&freq),
			huh.NewInput().Title("Notes (optional)").Value(&notes),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	h, err := habits.AddHabit(ctx, name, freq, notes, "")
	if err != nil {
		return err
	}
	cli.Success("Added %s habit: %s", h.Frequency, h.Name)
	return nil
}

func menuUpdate(ctx *cli.Context) error {
	h, err := pickHabit(ctx, "Which habit should be updated?", true)
	if err != nil {
		return err
	}
	name, notes, freq := h.Name, h.Notes, h.Frequency
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&name),
			huh.NewSelect[models.Frequency]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", models.FrequencyDaily),
					huh.NewOption("Weekly", models.FrequencyWeekly),
				).
				Value(&freq),
			huh.NewInput().Title("Notes").Value(&notes),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	h, err = habits.UpdateHabit(ctx, h, name, freq, notes, "")
	if err != nil {
		return err
	}
	cli.Success("Updated habit: %s", h.Name)
	return nil
}

func menuGoals(ctx *cli.Context) error {
	var choice string
	if err := huh.NewSelect[string]().
		Title("Goals").
		Options(huh.NewOptions("Set a goal", "List goals", "Show progress")...).
		Value(&choice).
		Run(); err != nil {
		return err
	}

	switch choice {
	case "List goals":
		return (&goals.GoalListCmd{}).Run(ctx)
	case "Show progress":
		h, err := pickHabit(ctx, "Progress for which habit?", true)
		if err != nil {
			return err
		}
		return (&goals.GoalProgressCmd{Habit: h.ID}).Run(ctx)
	}

	h, err := pickHabit(ctx, "Set a goal for which habit?", true)
	if err != nil {
		return err
	}
	days, target := "28", ""
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Period (days)").Value(&days).Validate(positiveInt),
			huh.NewInput().Title("Target completions (blank = derive)").Value(&target).Validate(optionalPositiveInt),
		),
	).Run(); err != nil {
		return err
	}
	cmd := &goals.GoalAddCmd{Habit: h.ID}
	fmt.Sscan(days, &cmd.Days)
	if target != "" {
		fmt.Sscan(target, &cmd.Target)
	}
	return cmd.Run(ctx)
}

func menuCategories(ctx *cli.Context) error {
	var choice string
	if err := huh.NewSelect[string]().
		Title("Categories").
		Options(huh.NewOptions("Add a category", "List categories", "Habits by category")...).
		Value(&choice).
		Run(); err != nil {
		return err
	}

	switch choice {
	case "List categories":
		return (&categories.CategoryListCmd{}).Run(ctx)
	case "Habits by category":
		return (&categories.CategoryHabitsCmd{}).Run(ctx)
	}

	var name, description string
	if err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category name").Value(&name),
			huh.NewInput().Title("Description (optional)").Value(&description),
		),
	).Run(); err != nil {
		return err
	}
	return (&categories.CategoryAddCmd{Name: name, Description: description}).Run(ctx)
}

func positiveInt(s string) error {
	var n int
	if _, err := fmt.Sscan(strings.TrimSpace(s), &n); err != nil || n <= 0 {
		return errors.New("enter a positive whole number")
	}
	return nil
}

func optionalPositiveInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return positiveInt(s)
}
