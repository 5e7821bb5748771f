package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/cli/analysis"
	"github.com/julianstephens/momentum/internal/cli/backups"
	"github.com/julianstephens/momentum/internal/cli/categories"
	"github.com/julianstephens/momentum/internal/cli/goals"
	"github.com/julianstephens/momentum/internal/cli/habits"
	"github.com/julianstephens/momentum/internal/cli/system"
	"github.com/julianstephens/momentum/internal/config"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/errors"
	"github.com/julianstephens/momentum/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Path to config.yaml (default: ~/.config/momentum/config.yaml)." type:"path"`
	Database string `help:"SQLite path, PostgreSQL connection string, or \"keyring\". Overrides the config file. PostgreSQL passwords must NOT be embedded; use .pgpass or the OS keyring."`
	Debug    bool   `help:"Enable debug logging to stderr."`

	Init     system.InitCmd         `cmd:"" help:"Initialize momentum storage."`
	Migrate  system.MigrateCmd      `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Menu     system.MenuCmd         `cmd:"" help:"Interactive text menu." default:"1"`
	Tui      system.TuiCmd          `cmd:"" help:"Launch the dashboard."`
	Habit    habits.HabitCmd        `cmd:"" help:"Manage habits and completions."`
	Goal     goals.GoalCmd          `cmd:"" help:"Manage goals."`
	Category categories.CategoryCmd `cmd:"" help:"Manage categories."`
	Analyze  analysis.AnalyzeCmd    `cmd:"" help:"Analyze streaks, rates and goals."`
	Backup   backups.BackupCmd      `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd      `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, completion rates and goals"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		errors.Fatalf("failed to load config: %v", err)
	}
	if CLI.Database != "" {
		cfg.Database = CLI.Database
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: config.Dir()}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	selected := ctx.Selected()
	if selected != nil && selected.Parent != nil && selected.Parent.Name == "keyring" {
		// keyring commands manage the credentials the store would need
		if err := ctx.Run(&cli.Context{Config: cfg, Now: time.Now}); err != nil {
			errors.Fatal(err)
		}
		return
	}

	appCtx, err := cli.NewContext(cfg)
	if err != nil {
		errors.Fatal(err)
	}

	// init and doctor load the store themselves
	if selected == nil || (selected.Name != "init" && selected.Name != "doctor") {
		if err := appCtx.Store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	appCtx.Store.Close()
	if err != nil {
		errors.Fatal(err)
	}
}
