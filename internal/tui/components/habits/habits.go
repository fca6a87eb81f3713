package habits

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/utils"
)

type AddHabitMsg struct{}

type ToggleHabitMsg struct {
	ID string
}

type ArchiveHabitMsg struct {
	ID string
}

type ProgressHabitMsg struct {
	Habit models.Habit
	Entry *models.Entry
}

type Item struct {
	Habit  models.Habit
	Done   bool
	Entry  *models.Entry
	Streak int
}

func (i Item) Title() string {
	if i.Done {
		return "✓ " + i.Habit.Title
	}
	return "○ " + i.Habit.Title
}

func (i Item) Description() string {
	parts := []string{}
	if i.Habit.IsWeekly() {
		days := make([]string, len(i.Habit.WeeklyDays))
		for n, d := range i.Habit.WeeklyDays {
			days[n] = d.String()[:3]
		}
		parts = append(parts, "weekly on "+strings.Join(days, ","))
	} else {
		parts = append(parts, "daily")
	}
	if i.Habit.IsProgress() {
		done := "0"
		if i.Entry != nil && i.Entry.Progress != "" {
			done = i.Entry.Progress
		}
		parts = append(parts, fmt.Sprintf("%s/%g %s", done, i.Habit.Target, i.Habit.Units))
	}
	if i.Streak > 0 {
		parts = append(parts, fmt.Sprintf("🔥 %d", i.Streak))
	}
	return strings.Join(parts, " | ")
}

func (i Item) FilterValue() string { return i.Habit.Title }

type KeyMap struct {
	Add      key.Binding
	Toggle   key.Binding
	Progress key.Binding
	Archive  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "m"),
			key.WithHelp("space", "toggle today"),
		),
		Progress: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "enter progress"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Today"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Toggle, keys.Progress, keys.Add, keys.Archive}
	}
	l.AdditionalFullHelpKeys = l.AdditionalShortHelpKeys

	return Model{list: l, keys: keys}
}

// SetHabits rebuilds the list from the snapshot and today's entries.
// Habits not scheduled today are left out.
func (m *Model) SetHabits(snap metrics.Snapshot, today models.Log) {
	day := snap.Today
	items := make([]list.Item, 0, len(snap.Habits))
	for _, s := range snap.Habits {
		if !metrics.IsScheduled(s.Habit, day) {
			continue
		}
		item := Item{
			Habit:  s.Habit,
			Done:   metrics.IsHit(s.Habit, today, day),
			Streak: s.CurrentStreak,
		}
		if e, ok := today.Get(utils.DayKey(day), s.Habit.ID); ok {
			item.Entry = &e
		}
		items = append(items, item)
	}
	m.list.SetItems(items)
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

func (m Model) Items() []list.Item {
	return m.list.Items()
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Toggle):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ToggleHabitMsg{ID: i.Habit.ID} }
			}
		case key.Matches(msg, m.keys.Progress):
			if i, ok := m.list.SelectedItem().(Item); ok && i.Habit.IsProgress() {
				return m, func() tea.Msg { return ProgressHabitMsg{Habit: i.Habit, Entry: i.Entry} }
			}
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  Nothing scheduled today.\n  Press 'a' to add a habit."
	}
	return m.list.View()
}
