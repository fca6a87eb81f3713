package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/utils"
)

// HabitFormModel holds the raw values of the add habit form
type HabitFormModel struct {
	Title     string
	Frequency constants.FrequencyType
	Days      string
	Tracking  constants.TrackingType
	Target    string
	Units     string
	At        string
}

func newHabitFormModel() *HabitFormModel {
	return &HabitFormModel{
		Frequency: constants.FrequencyDaily,
		Tracking:  constants.TrackingCompletion,
	}
}

// Habit converts the form values into a habit ready for the tracker.
func (fm *HabitFormModel) Habit() (models.Habit, error) {
	h := models.Habit{
		Title:        strings.TrimSpace(fm.Title),
		Frequency:    fm.Frequency,
		TrackingType: fm.Tracking,
		StartTime:    strings.TrimSpace(fm.At),
	}
	if h.IsWeekly() {
		days, err := cli.ParseWeekdays(fm.Days)
		if err != nil {
			return models.Habit{}, err
		}
		h.WeeklyDays = days
	}
	if h.IsProgress() {
		target, err := strconv.ParseFloat(strings.TrimSpace(fm.Target), 64)
		if err != nil {
			return models.Habit{}, fmt.Errorf("invalid target %q", fm.Target)
		}
		h.Target = target
		h.Units = strings.TrimSpace(fm.Units)
	}
	return h, nil
}

// NewHabitForm creates a new form for adding habits
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Habit").
				Value(&fm.Title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[constants.FrequencyType]().
				Title("Schedule").
				Options(
					huh.NewOption("Daily", constants.FrequencyDaily),
					huh.NewOption("Weekly", constants.FrequencyWeekly),
				).
				Value(&fm.Frequency),
			huh.NewInput().
				Title("Weekdays").
				Description("For weekly: comma-separated (mon,wed,fri)").
				Value(&fm.Days).
				Validate(func(s string) error {
					if fm.Frequency != constants.FrequencyWeekly {
						return nil
					}
					_, err := cli.ParseWeekdays(s)
					return err
				}),
		),
		huh.NewGroup(
			huh.NewSelect[constants.TrackingType]().
				Title("Tracking").
				Options(
					huh.NewOption("Done / not done", constants.TrackingCompletion),
					huh.NewOption("Progress toward a target", constants.TrackingProgress),
				).
				Value(&fm.Tracking),
			huh.NewInput().
				Title("Target").
				Description("For progress habits").
				Value(&fm.Target).
				Validate(func(s string) error {
					if fm.Tracking != constants.TrackingProgress {
						return nil
					}
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v <= 0 {
						return fmt.Errorf("target must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Units").
				Description("For progress habits, e.g. pages").
				Value(&fm.Units),
			huh.NewInput().
				Title("Reminder (HH:MM)").
				Description("Leave empty for no reminder").
				Value(&fm.At).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" || utils.ValidateTimeFormat(strings.TrimSpace(s)) {
						return nil
					}
					return fmt.Errorf("invalid time format, use HH:MM")
				}),
		),
	).WithTheme(huh.ThemeDracula())
}

// ProgressFormModel holds the amount entered for a progress habit
type ProgressFormModel struct {
	Habit  models.Habit
	Amount string
	// base carries feeling and notes over from an existing entry
	base   *models.Entry
}

func newProgressFormModel(h models.Habit, e *models.Entry) *ProgressFormModel {
	fm := &ProgressFormModel{Habit: h, base: e}
	if e != nil {
		fm.Amount = e.Progress
	}
	return fm
}

// Input builds the entry written for day, keeping feeling and notes.
func (fm *ProgressFormModel) Input(day string) tracker.EntryInput {
	in := tracker.EntryInput{Day: day, Completed: true, Progress: strings.TrimSpace(fm.Amount)}
	if fm.base != nil {
		in.Feeling = fm.base.Feeling
		in.Notes = fm.base.Notes
	}
	return in
}

// NewProgressForm creates a one-field form for today's amount
func NewProgressForm(fm *ProgressFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("%s (%s)", fm.Habit.Title, fm.Habit.Units)).
				Description(fmt.Sprintf("Target %s", strconv.FormatFloat(fm.Habit.Target, 'f', -1, 64))).
				Value(&fm.Amount).
				Validate(func(s string) error {
					v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || v < 0 {
						return fmt.Errorf("amount must be a non-negative number")
					}
					return nil
				}),
		),
	).WithTheme(huh.ThemeDracula())
}
