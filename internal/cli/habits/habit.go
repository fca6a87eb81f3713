package habits

import (
	"fmt"
	"strings"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit an existing habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Unarchive a habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit (soft delete)."`
	Restore   HabitRestoreCmd   `cmd:"" help:"Restore a deleted habit."`
	Purge     HabitPurgeCmd     `cmd:"" help:"Permanently delete a habit and its history."`
}

type HabitAddCmd struct {
	Title       string  `arg:"" help:"Habit title."`
	Description string  `help:"Optional description."`
	Days        string  `help:"Weekdays for a weekly habit, e.g. mon,wed,fri. Daily when omitted."`
	Target      float64 `help:"Per-day goal; makes this a progress habit."`
	Units       string  `help:"Units for the target, e.g. pages or km."`
	At          string  `help:"Reminder time (HH:MM)."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	h := models.Habit{
		Title:        c.Title,
		Description:  c.Description,
		Frequency:    constants.FrequencyDaily,
		TrackingType: constants.TrackingCompletion,
		StartTime:    c.At,
	}
	if c.Days != "" {
		days, err := cli.ParseWeekdays(c.Days)
		if err != nil {
			return err
		}
		h.Frequency = constants.FrequencyWeekly
		h.WeeklyDays = days
	}
	if c.Target != 0 || c.Units != "" {
		h.TrackingType = constants.TrackingProgress
		h.Target = c.Target
		h.Units = c.Units
	}

	added, err := ctx.Tracker.AddHabit(h)
	if err != nil {
		return err
	}
	fmt.Printf("Added habit: %s (%s, %s)\n", added.Title, cli.FormatSchedule(added), cli.FormatTracking(added))
	return nil
}

type HabitEditCmd struct {
	Habit       string   `arg:"" help:"Habit title or ID."`
	Title       *string  `help:"New title."`
	Description *string  `help:"New description."`
	Days        *string  `help:"Weekdays for a weekly habit."`
	Daily       bool     `help:"Make the habit daily." xor:"schedule"`
	Target      *float64 `help:"New per-day goal (progress habits)."`
	Units       *string  `help:"New units (progress habits)."`
	Completion  bool     `help:"Make the habit completion-based." xor:"tracking"`
	At          *string  `help:"New reminder time (HH:MM)."`
	NoReminder  bool     `help:"Remove the reminder time."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(c.Habit)
	if err != nil {
		return err
	}

	if c.Title != nil {
		h.Title = *c.Title
	}
	if c.Description != nil {
		h.Description = *c.Description
	}
	if c.Days != nil {
		days, err := cli.ParseWeekdays(*c.Days)
		if err != nil {
			return err
		}
		h.Frequency = constants.FrequencyWeekly
		h.WeeklyDays = days
	}
	if c.Daily {
		h.Frequency = constants.FrequencyDaily
	}
	if c.Target != nil || c.Units != nil {
		h.TrackingType = constants.TrackingProgress
		if c.Target != nil {
			h.Target = *c.Target
		}
		if c.Units != nil {
			h.Units = *c.Units
		}
	}
	if c.Completion {
		h.TrackingType = constants.TrackingCompletion
	}
	if c.At != nil {
		h.StartTime = *c.At
	}
	if c.NoReminder {
		h.StartTime = ""
	}

	updated, err := ctx.Tracker.EditHabit(h)
	if err != nil {
		return err
	}
	fmt.Printf("Updated habit: %s\n", updated.Title)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
	Deleted  bool `help:"Include deleted habits."`
	IDs      bool `help:"Show habit IDs." name:"ids"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(c.Archived, c.Deleted)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		status := ""
		if h.DeletedAt != nil {
			status = " [DELETED]"
		} else if h.ArchivedAt != nil {
			status = " [ARCHIVED]"
		}
		parts := []string{cli.FormatSchedule(h), cli.FormatTracking(h)}
		if h.HasReminder() {
			parts = append(parts, "reminder "+h.StartTime)
		}
		id := ""
		if c.IDs {
			id = h.ID + "  "
		}
		fmt.Printf("%s%s%s  (%s)\n", id, h.Title, status, strings.Join(parts, ", "))
		if h.Description != "" {
			fmt.Printf("    %s\n", h.Description)
		}
	}
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.ArchiveHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Archived habit: %s\n", h.Title)
	return nil
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.UnarchiveHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Unarchived habit: %s\n", h.Title)
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	if err := ctx.Tracker.DeleteHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted habit: %s\n", h.Title)
	fmt.Println("(This is a soft delete. Use 'habitual habit restore' to undo)")
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindAnyHabit(c.Habit)
	if err != nil {
		return err
	}
	if h.DeletedAt == nil {
		return fmt.Errorf("habit %q is not deleted", h.Title)
	}
	if err := ctx.Tracker.RestoreHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Restored habit: %s\n", h.Title)
	return nil
}

type HabitPurgeCmd struct {
	Habit string `arg:"" help:"Habit title or ID."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *HabitPurgeCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindAnyHabit(c.Habit)
	if err != nil {
		return err
	}
	if !c.Yes {
		fmt.Printf("⚠️  This permanently deletes %q with all of its entries and milestones.\n", h.Title)
		ok, err := cli.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Purge cancelled.")
			return nil
		}
	}
	if err := ctx.Tracker.PurgeHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Purged habit: %s\n", h.Title)
	return nil
}
