package system

import (
	"fmt"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/validation"
)

type ValidateCmd struct{}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true, false)
	if err != nil {
		return err
	}
	result := validation.New().ValidateHabits(habits)
	if !result.HasConflicts() {
		fmt.Printf("✓ %d habit(s) checked, no problems found.\n", len(habits))
		return nil
	}
	fmt.Print(result.FormatReport())
	return result.Err()
}
