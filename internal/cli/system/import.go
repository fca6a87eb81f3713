package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/legacy"
)

type ImportCmd struct {
	File   string `arg:"" help:"JSON export of the browser app's saved state." type:"existingfile"`
	DryRun bool   `help:"Show what would be imported without writing anything."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	export, err := legacy.Load(c.File)
	if err != nil {
		return err
	}
	today, err := ctx.Tracker.Today()
	if err != nil {
		return err
	}
	res := export.Convert(today, time.Now())

	for _, note := range res.Skipped {
		fmt.Printf("  skipped: %s\n", note)
	}
	if c.DryRun {
		fmt.Printf("Would import %d habit(s), %d entr(ies), %d week(s) of history.\n",
			len(res.Habits), len(res.Entries), len(res.WeeklyHistory))
		return nil
	}

	if err := ctx.Backup(); err != nil {
		return fmt.Errorf("backup before import failed: %w", err)
	}
	sum, err := legacy.Apply(ctx.Store, res, time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("✓ Imported %d habit(s), %d entr(ies), %d week(s) of history, %d milestone set(s).\n",
		sum.Habits, sum.Entries, sum.Weeks, sum.Milestones)
	return nil
}
