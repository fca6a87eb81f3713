package main

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/cli/backups"
	"github.com/julianstephens/habitual/internal/cli/habits"
	"github.com/julianstephens/habitual/internal/cli/logs"
	"github.com/julianstephens/habitual/internal/cli/settings"
	"github.com/julianstephens/habitual/internal/cli/stats"
	"github.com/julianstephens/habitual/internal/cli/system"
	"github.com/julianstephens/habitual/internal/constants"
	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite path or PostgreSQL connection string. Falls back to HABITUAL_DB_CONNECTION, the OS keyring, then ~/.config/habitual/habitual.db. Credentials must NOT be embedded in PostgreSQL connection strings." env:"HABITUAL_CONFIG"`
	Debug   bool   `help:"Log debug output to stderr."`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitual storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Habit    habits.HabitCmd      `cmd:"" help:"Manage habits."`
	Log      logs.LogCmd          `cmd:"" help:"Log a habit for a day."`
	Toggle   logs.ToggleCmd       `cmd:"" help:"Toggle a completion for a day."`
	Entry    logs.EntryCmd        `cmd:"" help:"Edit, remove or list logged entries."`
	Grid     logs.GridCmd         `cmd:"" help:"Show a day-by-day completion grid."`
	Stats    stats.StatsCmd       `cmd:"" help:"Show scores, streaks and milestones."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Backup   struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage credentials stored in the OS keyring."`
	Import   system.ImportCmd   `cmd:"" help:"Import a legacy JSON export."`
	Remind   system.RemindCmd   `cmd:"" help:"Send habit reminders."`
	Validate system.ValidateCmd `cmd:"" help:"Check habits for conflicts."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, scores and milestones"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	store, err := cli.NewProvider(CLI.Config)
	if err != nil {
		apperrors.Fatal(err)
	}

	command := ctx.Command()
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: cli.ConfigDir(store),
		Console:   strings.HasPrefix(command, "remind"),
	}); err != nil {
		apperrors.Fatal(err)
	}

	// Init handles its own loading
	if !strings.HasPrefix(command, "init") {
		if err := store.Load(); err != nil {
			apperrors.Fatal(apperrors.WithHint(err, "run 'habitual init' to create the database"))
		}
	}
	defer store.Close()

	appCtx := cli.NewContext(store)
	if err := ctx.Run(appCtx); err != nil {
		store.Close()
		apperrors.Fatal(err)
	}
}
