package categories

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/models"
)

type CategoryCmd struct {
	Add    CategoryAddCmd    `cmd:"" help:"Add a category."`
	List   CategoryListCmd   `cmd:"" help:"List categories."`
	Delete CategoryDeleteCmd `cmd:"" help:"Deactivate a category."`
	Habits CategoryHabitsCmd `cmd:"" help:"List active habits grouped by category."`
}

type CategoryAddCmd struct {
	Name        string `arg:"" help:"Category name."`
	Description string `help:"Optional description."`
	Color       string `help:"Display color (name or hex)."`
}

func (c *CategoryAddCmd) Run(ctx *cli.Context) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return errors.New("category name cannot be empty")
	}
	if existing, err := ctx.Store.GetCategoryByName(name); err == nil && existing.Active {
		return fmt.Errorf("category with name %q already exists", existing.Name)
	}

	cat := models.Category{
		ID:          uuid.New().String(),
		Name:        name,
		Description: c.Description,
		Color:       c.Color,
		Active:      true,
		CreatedAt:   ctx.Now(),
	}
	if err := ctx.Store.AddCategory(cat); err != nil {
		return err
	}
	cli.Success("Added category: %s", cat.Name)
	return nil
}

type CategoryListCmd struct {
	All bool `help:"Include inactive categories." short:"a"`
}

func (c *CategoryListCmd) Run(ctx *cli.Context) error {
	cats, err := ctx.Store.GetAllCategories(c.All)
	if err != nil {
		return err
	}
	if len(cats) == 0 {
		fmt.Println("No categories found.")
		return nil
	}
	for _, cat := range cats {
		line := cat.Name
		if cat.Description != "" {
			line += cli.Muted(" - " + cat.Description)
		}
		if !cat.Active {
			line += cli.Muted(" [INACTIVE]")
		}
		fmt.Println(line)
	}
	return nil
}

type CategoryDeleteCmd struct {
	Name string `arg:"" help:"Category name or id."`
}

func (c *CategoryDeleteCmd) Run(ctx *cli.Context) error {
	cat, err := ctx.FindCategory(c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteCategory(cat.ID); err != nil {
		return err
	}
	cli.Success("Deactivated category: %s (its habits are now uncategorized)", cat.Name)
	return nil
}

type CategoryHabitsCmd struct{}

func (c *CategoryHabitsCmd) Run(ctx *cli.Context) error {
	groups, err := GroupHabits(ctx)
	if err != nil {
		return err
	}
	if len(groups) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	for _, g := range groups {
		fmt.Println(cli.Header(g.Name))
		for _, h := range g.Habits {
			fmt.Printf("  %s (%s)\n", h.Name, h.Frequency)
		}
	}
	return nil
}

// Group is the set of active habits filed under one category.
type Group struct {
	Name   string
	Habits []models.Habit
}

// GroupHabits buckets active habits by active category in category name
// order, with uncategorized habits last.
func GroupHabits(ctx *cli.Context) ([]Group, error) {
	habits, err := ctx.Store.GetAllHabits(false)
	if err != nil {
		return nil, err
	}
	cats, err := ctx.Store.GetAllCategories(false)
	if err != nil {
		return nil, err
	}

	byID := make(map[string][]models.Habit)
	var loose []models.Habit
	known := make(map[string]bool, len(cats))
	for _, cat := range cats {
		known[cat.ID] = true
	}
	for _, h := range habits {
		if h.CategoryID != nil && known[*h.CategoryID] {
			byID[*h.CategoryID] = append(byID[*h.CategoryID], h)
			continue
		}
		loose = append(loose, h)
	}

	var groups []Group
	for _, cat := range cats {
		if hs := byID[cat.ID]; len(hs) > 0 {
			groups = append(groups, Group{Name: cat.Name, Habits: hs})
		}
	}
	if len(loose) > 0 {
		groups = append(groups, Group{Name: constants.UncategorizedTag, Habits: loose})
	}
	return groups, nil
}
