package tracker

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/storage/sqlite"
	"github.com/julianstephens/habitual/internal/validation"
)

// 2024-03-13 is a Wednesday.
var fixedNow = time.Date(2024, 3, 13, 12, 0, 0, 0, time.UTC)

func setupTestService(t *testing.T, opts ...Option) (*Service, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	settings := models.DefaultSettings()
	settings.Timezone = "UTC"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("failed to save settings: %v", err)
	}

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(store, opts...), store
}

func mustAddDaily(t *testing.T, s *Service, title string) models.Habit {
	t.Helper()
	h, err := s.AddHabit(models.Habit{
		Title:        title,
		Frequency:    constants.FrequencyDaily,
		TrackingType: constants.TrackingCompletion,
	})
	if err != nil {
		t.Fatalf("failed to add habit %q: %v", title, err)
	}
	return h
}

func TestToday(t *testing.T) {
	s, _ := setupTestService(t)
	today, err := s.Today()
	if err != nil {
		t.Fatalf("Today() error: %v", err)
	}
	if got := today.Format(constants.DateFormat); got != "2024-03-13" {
		t.Errorf("Today() = %s, want 2024-03-13", got)
	}
}

func TestAddHabit(t *testing.T) {
	s, store := setupTestService(t)

	first := mustAddDaily(t, s, "  Meditate ")
	if first.ID == "" {
		t.Fatal("expected an ID to be assigned")
	}
	if first.Title != "Meditate" {
		t.Errorf("expected trimmed title, got %q", first.Title)
	}
	second := mustAddDaily(t, s, "Read")
	if second.Position != first.Position+1 {
		t.Errorf("expected positions to increase, got %d then %d", first.Position, second.Position)
	}

	_, err := s.AddHabit(models.Habit{Title: "meditate", Frequency: constants.FrequencyDaily, TrackingType: constants.TrackingCompletion})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("expected duplicate title to be rejected, got %v", err)
	}

	_, err = s.AddHabit(models.Habit{Title: "Run", Frequency: constants.FrequencyDaily, TrackingType: constants.TrackingProgress})
	if !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("expected progress habit without target to be rejected, got %v", err)
	}

	habits, _ := store.GetAllHabits(true, true)
	if len(habits) != 2 {
		t.Errorf("expected rejected habits not to be stored, got %d habits", len(habits))
	}
}

func TestEditHabitKeepsIdentity(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Walk")

	h.Title = "Evening walk"
	h.Frequency = constants.FrequencyWeekly
	h.WeeklyDays = []time.Weekday{time.Friday, time.Monday, time.Monday}
	h.Position = 99
	if _, err := s.EditHabit(h); err != nil {
		t.Fatalf("EditHabit() error: %v", err)
	}

	got, err := store.GetHabit(h.ID)
	if err != nil {
		t.Fatalf("failed to get habit: %v", err)
	}
	if got.Title != "Evening walk" || got.Position != 0 {
		t.Errorf("unexpected habit after edit: %+v", got)
	}
	if len(got.WeeklyDays) != 2 || got.WeeklyDays[0] != time.Monday {
		t.Errorf("expected normalized weekdays, got %v", got.WeeklyDays)
	}
}

func TestFindHabit(t *testing.T) {
	s, _ := setupTestService(t)
	h := mustAddDaily(t, s, "Journal")

	for _, ref := range []string{h.ID, "journal", " JOURNAL "} {
		got, err := s.FindHabit(ref)
		if err != nil {
			t.Errorf("FindHabit(%q) error: %v", ref, err)
			continue
		}
		if got.ID != h.ID {
			t.Errorf("FindHabit(%q) = %s, want %s", ref, got.ID, h.ID)
		}
	}
	if _, err := s.FindHabit("nope"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
}

func TestFindAnyHabitIncludesDeleted(t *testing.T) {
	s, _ := setupTestService(t)
	h := mustAddDaily(t, s, "Stretch")
	if err := s.DeleteHabit(h.ID); err != nil {
		t.Fatalf("DeleteHabit() error: %v", err)
	}

	if _, err := s.FindHabit("stretch"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("FindHabit() on deleted title: expected ErrHabitNotFound, got %v", err)
	}
	got, err := s.FindAnyHabit("stretch")
	if err != nil {
		t.Fatalf("FindAnyHabit() error: %v", err)
	}
	if got.ID != h.ID || got.DeletedAt == nil {
		t.Errorf("FindAnyHabit() = %+v, want deleted habit %s", got, h.ID)
	}
	if _, err := s.FindAnyHabit("nope"); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("FindAnyHabit(nope): expected ErrHabitNotFound, got %v", err)
	}
}

func TestLogEntry(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Stretch")

	res, err := s.LogEntry(h.ID, EntryInput{Completed: true})
	if err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	if res.Entry.Day != "2024-03-13" || res.Entry.Feeling != constants.DefaultFeeling {
		t.Errorf("expected defaults to be applied, got %+v", res.Entry)
	}
	if res.WeekStart != "2024-03-10" {
		t.Errorf("expected week start 2024-03-10, got %s", res.WeekStart)
	}

	if _, err := s.LogEntry(h.ID, EntryInput{Completed: true}); !errors.Is(err, storage.ErrDuplicateEntry) {
		t.Errorf("expected ErrDuplicateEntry, got %v", err)
	}

	if _, err := s.LogEntry(h.ID, EntryInput{Day: "2024-03-14", Completed: true}); !errors.Is(err, ErrFutureDate) {
		t.Errorf("expected ErrFutureDate, got %v", err)
	}

	if _, err := s.LogEntry("missing", EntryInput{Completed: true}); !errors.Is(err, ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}

	history, _ := store.GetWeeklyHistory()
	if _, ok := history["2024-03-10"]; !ok {
		t.Error("expected the week rate to be recorded")
	}
}

func TestLogEntryRejectsInactiveHabit(t *testing.T) {
	s, _ := setupTestService(t)
	h := mustAddDaily(t, s, "Floss")
	if err := s.ArchiveHabit(h.ID); err != nil {
		t.Fatalf("ArchiveHabit() error: %v", err)
	}
	if _, err := s.LogEntry(h.ID, EntryInput{Completed: true}); !errors.Is(err, ErrHabitInactive) {
		t.Errorf("expected ErrHabitInactive, got %v", err)
	}
}

func TestEditEntryOverwrites(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Piano")

	first, err := s.LogEntry(h.ID, EntryInput{Day: "2024-03-12", Completed: true, Feeling: 2})
	if err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	if _, err := s.EditEntry(h.ID, EntryInput{Day: "2024-03-12", Completed: true, Feeling: 5, Notes: "better"}); err != nil {
		t.Fatalf("EditEntry() error: %v", err)
	}

	got, err := store.GetEntry(h.ID, "2024-03-12")
	if err != nil {
		t.Fatalf("GetEntry() error: %v", err)
	}
	if got.ID != first.Entry.ID {
		t.Errorf("expected edit to keep entry ID %s, got %s", first.Entry.ID, got.ID)
	}
	if got.Feeling != 5 || got.Notes != "better" {
		t.Errorf("expected edited fields, got %+v", got)
	}
}

func TestMilestonesReachedOnLog(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Pushups")

	var crossed []float64
	for i := 4; i >= 0; i-- {
		day := fixedNow.AddDate(0, 0, -i).Format(constants.DateFormat)
		res, err := s.LogEntry(h.ID, EntryInput{Day: day, Completed: true})
		if err != nil {
			t.Fatalf("LogEntry(%s) error: %v", day, err)
		}
		crossed = append(crossed, res.NewMilestones...)
	}
	if len(crossed) != 1 || crossed[0] != 5 {
		t.Fatalf("expected milestone 5 exactly once, got %v", crossed)
	}

	// Removing an entry drops the count but never the achieved milestone.
	if err := s.RemoveEntry(h.ID, "2024-03-13"); err != nil {
		t.Fatalf("RemoveEntry() error: %v", err)
	}
	state, err := store.GetMilestoneState(h.ID)
	if err != nil {
		t.Fatalf("GetMilestoneState() error: %v", err)
	}
	if !state.HasAchieved(5) || state.LastCount != 4 {
		t.Errorf("unexpected state after removal: %+v", state)
	}

	res, err := s.LogEntry(h.ID, EntryInput{Day: "2024-03-13", Completed: true})
	if err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	if len(res.NewMilestones) != 0 {
		t.Errorf("expected no repeat milestone, got %v", res.NewMilestones)
	}
}

func TestCorruptMilestoneStateIsRederived(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Water")
	for i := 0; i < 5; i++ {
		day := fixedNow.AddDate(0, 0, -i-1).Format(constants.DateFormat)
		if _, err := s.LogEntry(h.ID, EntryInput{Day: day, Completed: true}); err != nil {
			t.Fatalf("LogEntry() error: %v", err)
		}
	}

	if _, err := store.GetDB().Exec("UPDATE milestones SET achieved = 'garbage' WHERE habit_id = ?", h.ID); err != nil {
		t.Fatalf("failed to corrupt state: %v", err)
	}

	res, err := s.LogEntry(h.ID, EntryInput{Completed: true})
	if err != nil {
		t.Fatalf("LogEntry() should recover from corrupt state, got %v", err)
	}
	if len(res.NewMilestones) != 0 {
		t.Errorf("rederive should be silent, got %v", res.NewMilestones)
	}
	state, err := store.GetMilestoneState(h.ID)
	if err != nil {
		t.Fatalf("GetMilestoneState() error: %v", err)
	}
	if !state.HasAchieved(5) || state.LastCount != 6 {
		t.Errorf("unexpected rederived state: %+v", state)
	}
}

func TestToggle(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Vitamins")

	done, err := s.Toggle(h.ID, "2024-03-13")
	if err != nil || !done {
		t.Fatalf("first Toggle() = %v, %v; want true, nil", done, err)
	}
	done, err = s.Toggle(h.ID, "2024-03-13")
	if err != nil || done {
		t.Fatalf("second Toggle() = %v, %v; want false, nil", done, err)
	}
	if _, err := store.GetEntry(h.ID, "2024-03-13"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected entry to be removed, got %v", err)
	}
}

func TestToggleProgressHabitNeedsAmount(t *testing.T) {
	s, store := setupTestService(t)
	h, err := s.AddHabit(models.Habit{
		Title:        "Walk",
		Frequency:    constants.FrequencyDaily,
		TrackingType: constants.TrackingProgress,
		Target:       2,
		Units:        "miles",
	})
	if err != nil {
		t.Fatalf("AddHabit() error: %v", err)
	}

	done, err := s.Toggle(h.ID, "2024-03-13")
	if !errors.Is(err, ErrNeedsAmount) || done {
		t.Fatalf("Toggle() = %v, %v; want false, ErrNeedsAmount", done, err)
	}
	if _, err := store.GetEntry(h.ID, "2024-03-13"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected no entry to be created, got %v", err)
	}

	if _, err := s.LogEntry(h.ID, EntryInput{Day: "2024-03-13", Progress: "1"}); err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	done, err = s.Toggle(h.ID, "2024-03-13")
	if err != nil || !done {
		t.Fatalf("Toggle() with progress = %v, %v; want true, nil", done, err)
	}
}

func TestDeleteRestorePurge(t *testing.T) {
	backups := 0
	s, store := setupTestService(t, WithBackup(func() error {
		backups++
		return nil
	}))
	h := mustAddDaily(t, s, "Yoga")
	if _, err := s.LogEntry(h.ID, EntryInput{Completed: true}); err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}

	if err := s.DeleteHabit(h.ID); err != nil {
		t.Fatalf("DeleteHabit() error: %v", err)
	}
	// The title is free again while the habit is deleted.
	other := mustAddDaily(t, s, "Yoga")
	if err := s.RestoreHabit(h.ID); !errors.Is(err, validation.ErrInvalid) {
		t.Errorf("expected restore to fail on title clash, got %v", err)
	}
	if err := s.DeleteHabit(other.ID); err != nil {
		t.Fatalf("DeleteHabit() error: %v", err)
	}
	if err := s.RestoreHabit(h.ID); err != nil {
		t.Fatalf("RestoreHabit() error: %v", err)
	}

	if err := s.PurgeHabit(h.ID); err != nil {
		t.Fatalf("PurgeHabit() error: %v", err)
	}
	if backups != 1 {
		t.Errorf("expected one backup before purge, got %d", backups)
	}
	if _, err := store.GetHabit(h.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected habit to be purged, got %v", err)
	}
}

func TestPurgeAbortsWhenBackupFails(t *testing.T) {
	s, store := setupTestService(t, WithBackup(func() error { return errors.New("disk full") }))
	h := mustAddDaily(t, s, "Cook")

	if err := s.PurgeHabit(h.ID); err == nil {
		t.Fatal("expected purge to fail")
	}
	if _, err := store.GetHabit(h.ID); err != nil {
		t.Errorf("habit should survive a failed backup, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	s, store := setupTestService(t)
	run := mustAddDaily(t, s, "Run")
	mustAddDaily(t, s, "Read")

	for i := 0; i < 3; i++ {
		day := fixedNow.AddDate(0, 0, -i).Format(constants.DateFormat)
		if _, err := s.LogEntry(run.ID, EntryInput{Day: day, Completed: true}); err != nil {
			t.Fatalf("LogEntry() error: %v", err)
		}
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if len(snap.Habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(snap.Habits))
	}
	if snap.Habits[0].CurrentStreak != 3 {
		t.Errorf("expected streak 3 for Run, got %d", snap.Habits[0].CurrentStreak)
	}
	if snap.BestStreak == nil || snap.BestStreak.HabitID != run.ID {
		t.Errorf("expected Run to lead streaks, got %+v", snap.BestStreak)
	}
	if snap.NeedsImprovement == nil || snap.NeedsImprovement.HabitID == run.ID {
		t.Errorf("needs improvement must not be the best habit, got %+v", snap.NeedsImprovement)
	}

	history, _ := store.GetWeeklyHistory()
	if _, ok := history["2024-03-10"]; !ok {
		t.Error("expected snapshot to record the current week")
	}
}

func TestSnapshotSettlesLastWeek(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Stretch")
	if _, err := s.LogEntry(h.ID, EntryInput{Day: "2024-03-04", Completed: true}); err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	// a figure written mid-week, before the rest of the days had passed
	if err := store.SaveWeekRate("2024-03-03", 100); err != nil {
		t.Fatalf("SaveWeekRate() error: %v", err)
	}

	if _, err := s.Snapshot(); err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	history, err := store.GetWeeklyHistory()
	if err != nil {
		t.Fatalf("GetWeeklyHistory() error: %v", err)
	}
	if got := history["2024-03-03"]; got != 14.3 {
		t.Errorf("last week rate = %v, want 14.3 (one of seven days)", got)
	}
}

func TestSnapshotHonorsShowGapsSetting(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Sleep")
	if _, err := s.LogEntry(h.ID, EntryInput{Completed: true}); err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error: %v", err)
	}
	if !snap.ShowGaps {
		t.Error("expected gaps to be shown with activity and the default setting")
	}

	settings, _ := store.GetSettings()
	settings.ShowGaps = false
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings() error: %v", err)
	}
	snap, _ = s.Snapshot()
	if snap.ShowGaps {
		t.Error("expected show_gaps=false to hide gaps")
	}
}

func TestRebuildWeeklyHistory(t *testing.T) {
	s, store := setupTestService(t)
	h := mustAddDaily(t, s, "Walk")
	if _, err := s.LogEntry(h.ID, EntryInput{Day: "2024-02-26", Completed: true}); err != nil {
		t.Fatalf("LogEntry() error: %v", err)
	}
	if err := store.SaveWeekRate("2020-01-05", 100); err != nil {
		t.Fatalf("SaveWeekRate() error: %v", err)
	}

	history, err := s.RebuildWeeklyHistory()
	if err != nil {
		t.Fatalf("RebuildWeeklyHistory() error: %v", err)
	}
	// Weeks of 2024-02-25, 03-03 and 03-10.
	if len(history) != 3 {
		t.Errorf("expected 3 weeks, got %v", history)
	}
	stored, _ := store.GetWeeklyHistory()
	if _, ok := stored["2020-01-05"]; ok {
		t.Error("expected stale weeks to be replaced")
	}
}
