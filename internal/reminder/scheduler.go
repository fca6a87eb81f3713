package reminder

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/habitual/internal/config"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/models"
)

// SkipFunc reports whether a reminder should be suppressed, e.g. because
// the habit has already been logged today.
type SkipFunc func(habitID string) (bool, error)

// Scheduled describes one registered reminder
type Scheduled struct {
	HabitID string
	Title   string
	Spec    string
	Next    time.Time
}

type job struct {
	habit    models.Habit
	spec     string
	schedule cron.Schedule
	id       cron.EntryID
}

// Scheduler keeps one cron entry per habit with a reminder time
type Scheduler struct {
	cron    *cron.Cron
	sender  Sender
	message string
	loc     *time.Location
	skip    SkipFunc
	log     *log.Logger

	mu   sync.Mutex
	ctx  context.Context
	jobs map[string]job
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithSkip installs a check run before every delivery.
func WithSkip(fn SkipFunc) Option {
	return func(s *Scheduler) { s.skip = fn }
}

// WithMessage overrides the message template.
func WithMessage(tmpl string) Option {
	return func(s *Scheduler) { s.message = tmpl }
}

// NewScheduler creates a scheduler that fires in loc.
func NewScheduler(sender Sender, loc *time.Location, opts ...Option) *Scheduler {
	s := &Scheduler{
		sender:  sender,
		message: config.DefaultMessage,
		loc:     loc,
		log:     logger.Component("reminder"),
		ctx:     context.Background(),
		jobs:    make(map[string]job),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(cron.WithLocation(loc), cron.WithParser(parser))
	return s
}

// Sync replaces the registered reminders with those of habits. Habits
// without a start time are ignored; invalid ones are skipped and reported.
func (s *Scheduler) Sync(habits []models.Habit) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, j := range s.jobs {
		s.cron.Remove(j.id)
		delete(s.jobs, id)
	}

	var errs []error
	for _, h := range habits {
		if !h.HasReminder() {
			continue
		}
		spec, err := Spec(h)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Title, err))
			continue
		}
		sched, err := parser.Parse(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.Title, err))
			continue
		}
		id := s.cron.Schedule(sched, cron.FuncJob(func() { s.fire(h) }))
		s.jobs[h.ID] = job{habit: h, spec: spec, schedule: sched, id: id}
	}
	return len(s.jobs), errors.Join(errs...)
}

// Entries lists registered reminders ordered by their next run after now.
func (s *Scheduler) Entries(now time.Time) []Scheduled {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Scheduled, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, Scheduled{
			HabitID: j.habit.ID,
			Title:   j.habit.Title,
			Spec:    j.spec,
			Next:    j.schedule.Next(now.In(s.loc)),
		})
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Next.Equal(out[k].Next) {
			return out[i].Title < out[k].Title
		}
		return out[i].Next.Before(out[k].Next)
	})
	return out
}

// Fire delivers the reminder for a habit immediately, honoring the skip
// check.
func (s *Scheduler) Fire(ctx context.Context, h models.Habit) (bool, error) {
	if s.skip != nil {
		skip, err := s.skip(h.ID)
		if err != nil {
			return false, fmt.Errorf("checking whether to skip %s: %w", h.Title, err)
		}
		if skip {
			return false, nil
		}
	}
	if err := s.sender.Send(ctx, newReminder(s.message, h)); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Scheduler) fire(h models.Habit) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	sent, err := s.Fire(ctx, h)
	switch {
	case err != nil:
		s.log.Error("reminder failed", "habit", h.Title, "error", err)
	case sent:
		s.log.Info("reminder sent", "habit", h.Title)
	default:
		s.log.Debug("reminder skipped", "habit", h.Title)
	}
}

// Run starts the cron clock and blocks until ctx is cancelled. Habits are
// loaded through reload at start and again every refresh interval so
// edits made while the daemon runs are picked up.
func (s *Scheduler) Run(ctx context.Context, reload func() ([]models.Habit, error), refresh time.Duration) error {
	s.sync(reload)
	n := len(s.Entries(time.Now()))
	if n == 0 {
		s.log.Warn("no habits have a reminder time")
	}

	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info("reminder daemon started", "reminders", n)

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			<-s.cron.Stop().Done()
			s.log.Info("reminder daemon stopped")
			return nil
		case <-ticker.C:
			s.sync(reload)
		}
	}
}

func (s *Scheduler) sync(reload func() ([]models.Habit, error)) {
	habits, err := reload()
	if err != nil {
		s.log.Error("failed to load habits", "error", err)
		return
	}
	if _, err := s.Sync(habits); err != nil {
		s.log.Warn("some reminders were not scheduled", "error", err)
	}
}
