package logs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/tracker"
)

type LogCmd struct {
	Habit    string `arg:"" help:"Habit title or ID."`
	Date     string `help:"Day to log (YYYY-MM-DD, today or yesterday)." default:"today"`
	Progress string `short:"p" help:"Amount done, for progress habits."`
	Feeling  int    `short:"f" help:"How it felt, 1-5." default:"3"`
	Notes    string `short:"n" help:"Optional notes."`
	Missed   bool   `help:"Record the day as not completed."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	h, day, err := resolve(ctx, c.Habit, c.Date)
	if err != nil {
		return err
	}
	res, err := ctx.Tracker.LogEntry(h.ID, tracker.EntryInput{
		Day:       day,
		Completed: !c.Missed,
		Feeling:   c.Feeling,
		Progress:  c.Progress,
		Notes:     c.Notes,
	})
	if errors.Is(err, storage.ErrDuplicateEntry) {
		return fmt.Errorf("%w (use 'habitual entry edit' to change it)", err)
	}
	if err != nil {
		return err
	}
	fmt.Printf("✓ Logged %s for %s\n", h.Title, day)
	printResult(h, res)
	return nil
}

type EntryCmd struct {
	Edit   EntryEditCmd   `cmd:"" help:"Edit a logged entry."`
	Remove EntryRemoveCmd `cmd:"" help:"Remove a logged entry."`
	List   EntryListCmd   `cmd:"" help:"List entries with feeling and notes."`
}

type EntryEditCmd struct {
	Habit     string  `arg:"" help:"Habit title or ID."`
	Date      string  `help:"Day of the entry." default:"today"`
	Progress  *string `short:"p" help:"New amount done."`
	Feeling   *int    `short:"f" help:"New feeling, 1-5."`
	Notes     *string `short:"n" help:"New notes."`
	Completed *bool   `help:"Set whether the day counts as completed."`
}

func (c *EntryEditCmd) Run(ctx *cli.Context) error {
	h, day, err := resolve(ctx, c.Habit, c.Date)
	if err != nil {
		return err
	}

	in := tracker.EntryInput{Day: day, Completed: true}
	existing, err := ctx.Store.GetEntry(h.ID, day)
	switch {
	case err == nil:
		in.Completed = existing.Completed
		in.Feeling = existing.Feeling
		in.Progress = existing.Progress
		in.Notes = existing.Notes
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}
	if c.Progress != nil {
		in.Progress = *c.Progress
	}
	if c.Feeling != nil {
		in.Feeling = *c.Feeling
	}
	if c.Notes != nil {
		in.Notes = *c.Notes
	}
	if c.Completed != nil {
		in.Completed = *c.Completed
	}

	res, err := ctx.Tracker.EditEntry(h.ID, in)
	if err != nil {
		return err
	}
	fmt.Printf("✓ Updated %s for %s\n", h.Title, day)
	printResult(h, res)
	return nil
}

type EntryRemoveCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
	Date  string `help:"Day of the entry." default:"today"`
}

func (c *EntryRemoveCmd) Run(ctx *cli.Context) error {
	h, day, err := resolve(ctx, c.Habit, c.Date)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.RemoveEntry(h.ID, day); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("no entry for %s on %s", h.Title, day)
		}
		return err
	}
	fmt.Printf("Removed %s entry for %s\n", h.Title, day)
	return nil
}

type ToggleCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
	Date  string `help:"Day to toggle." default:"today"`
}

func (c *ToggleCmd) Run(ctx *cli.Context) error {
	h, day, err := resolve(ctx, c.Habit, c.Date)
	if err != nil {
		return err
	}
	marked, err := ctx.Tracker.Toggle(h.ID, day)
	if err != nil {
		return err
	}
	if marked {
		fmt.Printf("Marked %s for %s\n", h.Title, day)
	} else {
		fmt.Printf("Unmarked %s for %s\n", h.Title, day)
	}
	return nil
}

func resolve(ctx *cli.Context, ref, date string) (models.Habit, string, error) {
	h, err := ctx.Tracker.FindHabit(ref)
	if err != nil {
		return models.Habit{}, "", err
	}
	day, err := ctx.ResolveDay(date)
	if err != nil {
		return models.Habit{}, "", err
	}
	return h, day, nil
}

func printResult(h models.Habit, res tracker.LogResult) {
	unit := "completions"
	if h.IsProgress() {
		unit = h.Units
	}
	for _, m := range res.NewMilestones {
		fmt.Printf("🏆 Milestone reached: %s %s\n", strconv.FormatFloat(m, 'f', -1, 64), unit)
	}
	if res.WeekStart != "" {
		fmt.Printf("Week of %s: %.1f%%\n", res.WeekStart, res.WeekRate)
	}
}
