package system

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/momentum/internal/cli"
	"github.com/julianstephens/momentum/internal/constants"
	"github.com/julianstephens/momentum/internal/lockfile"
	"github.com/julianstephens/momentum/internal/models"
	"github.com/julianstephens/momentum/internal/period"
	"github.com/julianstephens/momentum/internal/storage"
	"github.com/julianstephens/momentum/internal/streak"
)

type DoctorCmd struct{}

type check struct {
	name     string
	run      func(*cli.Context) error
	needsDB  bool
	warnOnly bool
}

var checks = []check{
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Lockfile", run: checkLockfile, warnOnly: true},
	{name: "Duplicate completions", run: func(ctx *cli.Context) error { return checkDuplicatePeriods(ctx.Store) }, needsDB: true},
	{name: "Streak cache", run: func(ctx *cli.Context) error { return checkStreakCache(ctx.Store) }, needsDB: true},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := true
	if err := ctx.Store.Load(); err != nil {
		cli.Fail("Database reachable: FAIL")
		fmt.Printf("   Error: %v\n", err)
		hasError, dbReachable = true, false
	} else {
		cli.Success("Database reachable: OK")
	}

	for _, c := range checks {
		if c.needsDB && !dbReachable {
			fmt.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			cli.Success("%s: OK", c.name)
		case c.warnOnly:
			cli.Warn("%s: WARNING", c.name)
			fmt.Printf("   %v\n", err)
		default:
			cli.Fail("%s: FAIL", c.name)
			fmt.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	fmt.Println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	st, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if !st.UpToDate() {
		return fmt.Errorf("schema at version %d, %d migration(s) pending; run '%s migrate'", st.Current, len(st.Pending), constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if !ctx.IsSQLite() {
		return nil
	}
	backups, err := ctx.BackupManager().List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found; run '%s backup create'", constants.AppName)
	}
	return nil
}

func checkLockfile(ctx *cli.Context) error {
	if ctx.Lock == nil {
		return nil
	}
	st, err := lockfile.Inspect(ctx.Lock.Path())
	if err != nil {
		return err
	}
	switch {
	case !st.Present:
		return nil
	case st.Running:
		return fmt.Errorf("held by pid %d (%s)", st.PID, st.Executable)
	default:
		return fmt.Errorf("stale lockfile from pid %d at %s; it will be cleared on the next write", st.PID, st.Path)
	}
}

// checkDuplicatePeriods reports habits whose current epoch holds more than
// one completion in a single day or week.
func checkDuplicatePeriods(store storage.Provider) error {
	habits, err := store.GetAllHabits(true)
	if err != nil {
		return err
	}

	var problems []string
	for _, h := range habits {
		completions, err := store.ListCompletions(h.ID)
		if err != nil {
			return err
		}
		ts := streak.Since(models.Timestamps(completions), h.EpochStart())
		for _, k := range period.Duplicates(h.Frequency, ts) {
			problems = append(problems, fmt.Sprintf("%s: %s %s", h.Name, h.Frequency, k.Format(constants.DateFormat)))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d duplicate period(s):\n     %s", len(problems), strings.Join(problems, "\n     "))
	}
	return nil
}

// checkStreakCache reports habits whose stored streak disagrees with their ledger.
func checkStreakCache(store storage.Provider) error {
	habits, err := store.GetAllHabits(true)
	if err != nil {
		return err
	}

	var problems []string
	for _, h := range habits {
		completions, err := store.ListCompletions(h.ID)
		if err != nil {
			return err
		}
		want := streak.Recompute(h, models.Timestamps(completions)).Streak
		if want != h.Streak {
			problems = append(problems, fmt.Sprintf("%s: stored %d, ledger %d", h.Name, h.Streak, want))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d stale streak(s):\n     %s", len(problems), strings.Join(problems, "\n     "))
	}
	return nil
}
