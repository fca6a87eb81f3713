package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/reminder"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/utils"
)

type RemindCmd struct {
	Run  RemindRunCmd  `cmd:"" help:"Run the reminder daemon until interrupted." default:"1"`
	List RemindListCmd `cmd:"" help:"List scheduled reminders and their next run."`
	Test RemindTestCmd `cmd:"" help:"Send one reminder now."`
}

// RemindFlags are shared by the remind subcommands
type RemindFlags struct {
	File    string `help:"Reminder config file (YAML). Defaults to reminders.yaml next to the database." type:"path"`
	Channel string `help:"Delivery channel (tray, command or email), overriding the stored setting."`
	DryRun  bool   `help:"Print reminders instead of delivering them."`
}

type remindSetup struct {
	cfg     *config.Config
	channel string
	loc     *time.Location
}

func (f RemindFlags) load(ctx *cli.Context) (remindSetup, error) {
	settings, err := ctx.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return remindSetup{}, err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return remindSetup{}, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}

	dir := cli.ConfigDir(ctx.Store)
	path := f.File
	if path == "" {
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return remindSetup{}, err
	}
	if err := cfg.LoadSecrets(filepath.Dir(path)); err != nil {
		return remindSetup{}, err
	}

	channel := f.Channel
	if channel == "" {
		channel = settings.ReminderChannel
	}
	if !f.DryRun && !settings.RemindersEnabled {
		return remindSetup{}, errors.New("reminders are disabled; enable them with 'habitual settings --reminders-enabled'")
	}
	return remindSetup{cfg: cfg, channel: channel, loc: loc}, nil
}

func (s remindSetup) sender(dryRun bool) (reminder.Sender, error) {
	if dryRun {
		return reminder.NewDryRunSender(os.Stdout), nil
	}
	return reminder.NewSender(s.channel, s.cfg)
}

// skipLogged suppresses reminders for habits already logged today.
func skipLogged(ctx *cli.Context) reminder.SkipFunc {
	return func(habitID string) (bool, error) {
		day, err := ctx.ResolveDay("")
		if err != nil {
			return false, err
		}
		_, err = ctx.Store.GetEntry(habitID, day)
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return err == nil, err
	}
}

type RemindRunCmd struct {
	RemindFlags `embed:""`

	Refresh time.Duration `help:"How often to reload habits." default:"5m"`
	Always  bool          `help:"Remind even when the habit is already logged today."`
}

func (c *RemindRunCmd) Run(ctx *cli.Context) error {
	setup, err := c.load(ctx)
	if err != nil {
		return err
	}
	sender, err := setup.sender(c.DryRun)
	if err != nil {
		return err
	}

	opts := []reminder.Option{reminder.WithMessage(setup.cfg.Message)}
	if !c.Always {
		opts = append(opts, reminder.WithSkip(skipLogged(ctx)))
	}
	sched := reminder.NewScheduler(sender, setup.loc, opts...)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Reminder daemon running (channel %s). Press Ctrl+C to stop.\n", channelLabel(setup.channel, c.DryRun))
	return sched.Run(sigCtx, ctx.Tracker.ActiveHabits, c.Refresh)
}

type RemindListCmd struct{}

func (c *RemindListCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return err
	}
	habits, err := ctx.Tracker.ActiveHabits()
	if err != nil {
		return err
	}

	sched := reminder.NewScheduler(reminder.NewDryRunSender(os.Stdout), loc)
	if _, err := sched.Sync(habits); err != nil {
		fmt.Printf("⚠️  %v\n", err)
	}
	entries := sched.Entries(time.Now())
	if len(entries) == 0 {
		fmt.Println("No habits have a reminder time. Set one with 'habitual habit edit <habit> --at HH:MM'.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%-20s %-16s next %s\n", e.Title, e.Spec, e.Next.Format("Mon 2006-01-02 15:04"))
	}
	return nil
}

type RemindTestCmd struct {
	RemindFlags `embed:""`

	Habit string `arg:"" help:"Habit title or ID."`
}

func (c *RemindTestCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.FindHabit(c.Habit)
	if err != nil {
		return err
	}
	setup, err := c.load(ctx)
	if err != nil {
		return err
	}
	sender, err := setup.sender(c.DryRun)
	if err != nil {
		return err
	}
	sched := reminder.NewScheduler(sender, setup.loc, reminder.WithMessage(setup.cfg.Message))
	if _, err := sched.Fire(context.Background(), h); err != nil {
		return err
	}
	fmt.Printf("✓ Reminder for %s sent via %s\n", h.Title, channelLabel(setup.channel, c.DryRun))
	return nil
}

func channelLabel(channel string, dryRun bool) string {
	if dryRun {
		return "dry-run"
	}
	return channel
}

