package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/storage/postgres"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing SQLite database before initialization."`
	Source string `help:"Source database path or connection string to copy data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized momentum storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		fmt.Printf("Copying data from: %s\n", c.Source)
		source, err := cli.OpenStore(c.Source)
		if err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return fmt.Errorf("source connection string contains embedded credentials; use .pgpass or the keyring instead")
			}
			return err
		}
		if err := source.Load(); err != nil {
			return fmt.Errorf("failed to load source database: %w", err)
		}
		defer source.Close()

		if err := CopyData(source, ctx.Store, func(msg string) { fmt.Println(msg) }); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		fmt.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return errors.New("--force only applies to SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if c.Source != "" {
		absDB, errDB := filepath.Abs(dbPath)
		absSrc, errSrc := filepath.Abs(c.Source)
		if errDB == nil && errSrc == nil && absDB == absSrc {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err == nil {
		if err := ctx.Store.Close(); err != nil {
			return fmt.Errorf("failed to close existing database: %w", err)
		}
		if err := os.Remove(dbPath); err != nil {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
		fmt.Printf("Deleted existing database at: %s\n", dbPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	return nil
}

// CopyData copies categories, habits, completions and goals, including
// inactive ones, from src into dst. Cached streaks are copied as stored.
func CopyData(src, dst storage.Provider, logFn func(string)) error {
	cats, err := src.GetAllCategories(true)
	if err != nil {
		return fmt.Errorf("failed to get categories from source: %w", err)
	}
	for _, cat := range cats {
		if err := dst.AddCategory(cat); err != nil {
			return fmt.Errorf("failed to add category %s: %w", cat.ID, err)
		}
	}
	logFn(fmt.Sprintf("  Copied %d categories", len(cats)))

	habits, err := src.GetAllHabits(true)
	if err != nil {
		return fmt.Errorf("failed to get habits from source: %w", err)
	}
	completions := 0
	for _, h := range habits {
		if err := dst.AddHabit(h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
		cs, err := src.ListCompletions(h.ID)
		if err != nil {
			return fmt.Errorf("failed to get completions for habit %s: %w", h.ID, err)
		}
		for _, comp := range cs {
			if err := dst.AppendCompletion(comp); err != nil {
				return fmt.Errorf("failed to add completion %s: %w", comp.ID, err)
			}
		}
		completions += len(cs)
	}
	logFn(fmt.Sprintf("  Copied %d habits and %d completions", len(habits), completions))

	goals, err := src.GetAllGoals(true)
	if err != nil {
		return fmt.Errorf("failed to get goals from source: %w", err)
	}
	for _, g := range goals {
		if err := dst.AddGoal(g); err != nil {
			return fmt.Errorf("failed to add goal %s: %w", g.ID, err)
		}
	}
	logFn(fmt.Sprintf("  Copied %d goals", len(goals)))
	return nil
}
