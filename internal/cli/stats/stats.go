package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/utils"
)

type StatsCmd struct {
	Show         StatsShowCmd         `cmd:"" help:"Show discipline score, momentum and per-habit stats." default:"1"`
	Milestones   StatsMilestonesCmd   `cmd:"" help:"Show milestone progress."`
	RebuildWeeks StatsRebuildWeeksCmd `cmd:"" help:"Recompute weekly history from the log."`
}

type StatsShowCmd struct {
	JSON bool `help:"Print the snapshot as JSON." name:"json"`
}

func (c *StatsShowCmd) Run(ctx *cli.Context) error {
	snap, err := ctx.Tracker.Snapshot()
	if err != nil {
		return err
	}
	if c.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	fmt.Print(Render(snap))
	return nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// Render formats a snapshot as a summary block followed by a habit table.
func Render(snap metrics.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Stats for %s\n\n", utils.DayKey(snap.Today))
	if len(snap.Habits) == 0 {
		b.WriteString("No habits found.\n")
		return b.String()
	}

	d := snap.Discipline
	fmt.Fprintf(&b, "Discipline score: %.1f  (week rate %.1f%%, %d qualifying week(s))\n", d.Score, d.WeekRate, d.QualifyingWeeks)
	fmt.Fprintf(&b, "Momentum:         %s\n", signed(snap.Momentum))
	if snap.ShowGaps {
		fmt.Fprintf(&b, "Gaps:             %d of %d scheduled day(s) missed this week\n", snap.Gaps.MissedDays, snap.Gaps.ScheduledDays)
	}
	writeRanked(&b, "Best this week:  ", snap.WeekBest, "%")
	writeRanked(&b, "Worst this week: ", snap.WeekWorst, "%")
	writeRanked(&b, "Best this month: ", snap.MonthBest, "%")
	writeRanked(&b, "Worst this month:", snap.MonthWorst, "%")
	writeRanked(&b, "Longest streak:  ", snap.BestStreak, " day(s)")
	writeRanked(&b, "Needs attention: ", snap.NeedsImprovement, " day(s)")
	b.WriteString("\n")

	rows := make([][]string, 0, len(snap.Habits))
	for _, s := range snap.Habits {
		rows = append(rows, []string{
			s.Habit.Title,
			percent(s.Week),
			percent(s.Month),
			percent(s.CalendarWeek),
			strconv.Itoa(s.CurrentStreak),
			strconv.Itoa(s.BestStreak),
			milestone(s),
		})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers("Habit", "7d", "30d", "Week", "Streak", "Best", "Milestone").
		Rows(rows...)
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func writeRanked(b *strings.Builder, label string, r *metrics.Ranked, suffix string) {
	if r == nil {
		return
	}
	fmt.Fprintf(b, "%s %s (%s%s)\n", label, r.Title, strconv.FormatFloat(r.Value, 'f', -1, 64), suffix)
}

func percent(a metrics.Aggregate) string {
	if a.Scheduled == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", a.Percent)
}

func signed(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.1f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func milestone(s metrics.HabitStats) string {
	cur := "-"
	if s.Milestone > 0 {
		cur = strconv.FormatFloat(s.Milestone, 'f', -1, 64)
	}
	if s.NextMilestone > 0 {
		return fmt.Sprintf("%s → %s", cur, strconv.FormatFloat(s.NextMilestone, 'f', -1, 64))
	}
	return cur
}

type StatsMilestonesCmd struct {
	Rederive bool `help:"Rebuild milestone state from the full log first."`
}

func (c *StatsMilestonesCmd) Run(ctx *cli.Context) error {
	if c.Rederive {
		n, err := ctx.Tracker.RederiveMilestones()
		if err != nil {
			return err
		}
		fmt.Printf("Rederived milestones for %d habit(s).\n\n", n)
	}
	snap, err := ctx.Tracker.Snapshot()
	if err != nil {
		return err
	}
	states, err := ctx.Store.GetAllMilestoneStates()
	if err != nil {
		return err
	}
	if len(snap.Habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, s := range snap.Habits {
		unit := "completions"
		if s.Habit.IsProgress() {
			unit = s.Habit.Units
		}
		fmt.Printf("%s: %s %s\n", s.Habit.Title, strconv.FormatFloat(s.Cumulative, 'f', -1, 64), unit)
		achieved := states[s.Habit.ID].Achieved
		if len(achieved) == 0 {
			fmt.Println("  no milestones yet")
		} else {
			parts := make([]string, len(achieved))
			for i, a := range achieved {
				parts[i] = strconv.FormatFloat(a, 'f', -1, 64)
			}
			fmt.Printf("  reached: %s\n", strings.Join(parts, ", "))
		}
		if s.NextMilestone > 0 {
			fmt.Printf("  next:    %s (%s to go)\n",
				strconv.FormatFloat(s.NextMilestone, 'f', -1, 64),
				strconv.FormatFloat(s.NextMilestone-s.Cumulative, 'f', -1, 64))
		}
	}
	return nil
}

type StatsRebuildWeeksCmd struct{}

func (c *StatsRebuildWeeksCmd) Run(ctx *cli.Context) error {
	history, err := ctx.Tracker.RebuildWeeklyHistory()
	if err != nil {
		return err
	}
	fmt.Printf("Rebuilt weekly history: %d week(s).\n", len(history))
	return nil
}
