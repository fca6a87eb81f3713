package settings

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/habitual/internal/cli"
	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) *cli.Context {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return cli.NewContext(store)
}

func TestSettingsCmd_List(t *testing.T) {
	ctx := setupTestDB(t)
	if err := (&SettingsCmd{List: true}).Run(ctx); err != nil {
		t.Errorf("settings list failed: %v", err)
	}
}

func TestSettingsCmd_Update(t *testing.T) {
	ctx := setupTestDB(t)

	tz := "America/New_York"
	enabled := false
	channel := constants.ChannelEmail
	gaps := false
	cmd := &SettingsCmd{Timezone: &tz, RemindersEnabled: &enabled, ReminderChannel: &channel, ShowGaps: &gaps}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("settings update failed: %v", err)
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Timezone != tz || got.RemindersEnabled || got.ReminderChannel != channel || got.ShowGaps {
		t.Errorf("settings not saved: %+v", got)
	}
}

func TestSettingsCmd_RejectsInvalid(t *testing.T) {
	ctx := setupTestDB(t)

	badTZ := "Mars/Olympus_Mons"
	if err := (&SettingsCmd{Timezone: &badTZ}).Run(ctx); err == nil {
		t.Error("expected error for invalid timezone")
	}
	badChannel := "pigeon"
	if err := (&SettingsCmd{ReminderChannel: &badChannel}).Run(ctx); err == nil {
		t.Error("expected error for unknown channel")
	}

	got, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if got.Timezone != constants.DefaultTimezone || got.ReminderChannel != constants.DefaultReminderChannel {
		t.Errorf("invalid input changed settings: %+v", got)
	}
}
