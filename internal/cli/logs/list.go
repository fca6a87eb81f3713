package logs

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type EntryListCmd struct {
	Habit string `help:"Only show entries for this habit."`
	Days  int    `help:"Number of days to show." default:"14"`
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	habits, start, end, err := window(ctx, c.Habit, c.Days)
	if err != nil {
		return err
	}
	entries, err := ctx.Store.GetEntriesInRange(utils.DayKey(start), utils.DayKey(end))
	if err != nil {
		return err
	}

	titles := make(map[string]string, len(habits))
	for _, h := range habits {
		titles[h.ID] = h.Title
	}
	shown := 0
	for _, e := range entries {
		title, ok := titles[e.HabitID]
		if !ok {
			continue
		}
		status := "✓"
		if !e.Completed {
			status = "✗"
		}
		line := fmt.Sprintf("%s %s  %-20s feeling %d", e.Day, status, title, e.Feeling)
		if e.Progress != "" {
			line += "  progress " + e.Progress
		}
		if e.Notes != "" {
			line += "  " + e.Notes
		}
		fmt.Println(line)
		shown++
	}
	if shown == 0 {
		fmt.Println("No entries found.")
	}
	return nil
}

type GridCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

func (c *GridCmd) Run(ctx *cli.Context) error {
	habits, start, end, err := window(ctx, c.Habit, c.Days)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}
	entries, err := ctx.Store.GetEntriesInRange(utils.DayKey(start), utils.DayKey(end))
	if err != nil {
		return err
	}
	fmt.Printf("Habit log (last %d days):\n\n", c.Days)
	fmt.Print(Grid(habits, models.NewLog(entries), start, end))
	fmt.Println("\nx done  o logged, target not met  . missed  - not scheduled")
	return nil
}

const nameWidth = 20

// Grid renders one row per habit and one column per day in [start, end].
func Grid(habits []models.Habit, log models.Log, start, end time.Time) string {
	var b strings.Builder
	w := metrics.Window{Start: start, End: end}

	b.WriteString(strings.Repeat(" ", nameWidth))
	w.Each(func(day time.Time) { fmt.Fprintf(&b, " %5s", day.Format("01/02")) })
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", nameWidth+6*w.Len()))
	b.WriteString("\n")

	for _, h := range habits {
		b.WriteString(padName(h.Title))
		w.Each(func(day time.Time) {
			fmt.Fprintf(&b, "  %s   ", cell(h, log, day))
		})
		b.WriteString("\n")
	}
	return b.String()
}

func cell(h models.Habit, log models.Log, day time.Time) string {
	switch {
	case !metrics.IsScheduled(h, day):
		return "-"
	case metrics.IsHit(h, log, day):
		return "x"
	}
	if e, ok := log.Get(utils.DayKey(day), h.ID); ok && e.Completed {
		return "o"
	}
	return "."
}

func padName(name string) string {
	r := []rune(name)
	if len(r) > nameWidth {
		return string(r[:nameWidth-3]) + "..."
	}
	return name + strings.Repeat(" ", nameWidth-len(r))
}

func window(ctx *cli.Context, ref string, days int) ([]models.Habit, time.Time, time.Time, error) {
	if days < 1 {
		return nil, time.Time{}, time.Time{}, fmt.Errorf("days must be at least 1")
	}
	today, err := ctx.Tracker.Today()
	if err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	w := metrics.TrailingWindow(today, days)

	var habits []models.Habit
	if ref != "" {
		h, err := ctx.Tracker.FindHabit(ref)
		if err != nil {
			return nil, time.Time{}, time.Time{}, err
		}
		habits = []models.Habit{h}
	} else if habits, err = ctx.Tracker.ActiveHabits(); err != nil {
		return nil, time.Time{}, time.Time{}, err
	}
	return habits, w.Start, w.End, nil
}
