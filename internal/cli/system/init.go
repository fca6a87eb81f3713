package system

import (
	"fmt"
	"os"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

type InitCmd struct {
	Force bool `help:"Force reset by deleting existing database before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		s, ok := ctx.Store.(*sqlite.Store)
		if !ok {
			return fmt.Errorf("--force is only supported for SQLite storage")
		}
		dbPath := s.GetConfigPath()
		if _, err := os.Stat(dbPath); err == nil {
			ctx.PerformAutomaticBackup()
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
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized habitual storage at: %s\n", ctx.Store.GetConfigPath())
	return nil
}

type MigrateCmd struct {
	Status bool `help:"Show the schema version without applying anything."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	if c.Status {
		st, err := ctx.Store.MigrationStatus()
		if err != nil {
			return err
		}
		fmt.Printf("Schema version: %d (latest %d)\n", st.Current, st.Latest)
		if len(st.Pending) > 0 {
			fmt.Printf("Pending migrations: %d\n", len(st.Pending))
		}
		return nil
	}

	count, err := ctx.Store.Migrate(func(msg string) { fmt.Println(msg) })
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
