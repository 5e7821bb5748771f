package system

import (
	"fmt"

	"github.com/julianstephens/momentum/internal/cli"
)

type MigrateCmd struct {
	Status bool `help:"Only report the schema version; do not apply migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	before, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema status: %w", err)
	}

	if c.Status {
		fmt.Printf("Schema version %d (latest %d)\n", before.Current, before.Latest)
		for _, m := range before.Pending {
			fmt.Printf("  pending: %d %s\n", m.Version, m.Name)
		}
		return nil
	}

	if before.UpToDate() {
		fmt.Println("No migrations to apply. Database is up to date.")
		return nil
	}

	ctx.PerformAutomaticBackup()
	if err := ctx.Store.Init(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Printf("\nSuccessfully applied %d migration(s).\n", len(before.Pending))
	return nil
}
