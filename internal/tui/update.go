package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/utils"
)

// chromeHeight is the space taken by tabs, status and help.
const chromeHeight = 6

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.state == StateAddHabit || m.state == StateProgress {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.today.SetSize(msg.Width-4, msg.Height-chromeHeight)
		m.stats.SetSize(msg.Width-4, msg.Height-chromeHeight)
		return m, nil

	case dataMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.snap = msg.snap
		m.milestones = msg.states
		m.today.SetHabits(msg.snap, msg.today)
		m.stats.SetSnapshot(msg.snap)
		return m, nil

	case actionMsg:
		m.status = msg.status
		m.err = msg.err
		return m, m.load

	case habits.AddHabitMsg:
		m.habitForm = newHabitFormModel()
		m.form = NewHabitForm(m.habitForm)
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.ProgressHabitMsg:
		m.progress = newProgressFormModel(msg.Habit, msg.Entry)
		m.form = NewProgressForm(m.progress)
		m.state = StateProgress
		return m, m.form.Init()

	case habits.ToggleHabitMsg:
		return m, m.toggle(msg.ID)

	case habits.ArchiveHabitMsg:
		return m, m.archive(msg.ID)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
			return m, nil
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.today, cmd = m.today.Update(msg)
	case StateStats:
		m.stats, cmd = m.stats.Update(msg)
	}
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = StateToday
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		var submit tea.Cmd
		if m.state == StateProgress {
			submit = m.saveProgress(*m.progress)
		} else {
			submit = m.addHabit(*m.habitForm)
		}
		m.state = StateToday
		return m, tea.Batch(cmd, submit)
	case huh.StateAborted:
		m.state = StateToday
	}
	return m, cmd
}

func (m Model) addHabit(fm HabitFormModel) tea.Cmd {
	return func() tea.Msg {
		h, err := fm.Habit()
		if err != nil {
			return actionMsg{err: err}
		}
		added, err := m.tracker.AddHabit(h)
		if err != nil {
			return actionMsg{err: err}
		}
		return actionMsg{status: "Added " + added.Title}
	}
}

func (m Model) saveProgress(fm ProgressFormModel) tea.Cmd {
	in := fm.Input(utils.DayKey(m.snap.Today))
	return func() tea.Msg {
		res, err := m.tracker.EditEntry(fm.Habit.ID, in)
		if err != nil {
			return actionMsg{err: err}
		}
		status := fmt.Sprintf("Logged %s %s", res.Entry.Progress, fm.Habit.Units)
		if n := len(res.NewMilestones); n > 0 {
			status += fmt.Sprintf(", 🏆 %d milestone(s) reached", n)
		}
		return actionMsg{status: status}
	}
}

func (m Model) toggle(id string) tea.Cmd {
	day := utils.DayKey(m.snap.Today)
	return func() tea.Msg {
		marked, err := m.tracker.Toggle(id, day)
		if err != nil {
			return actionMsg{err: err}
		}
		if marked {
			return actionMsg{status: "Marked done for " + day}
		}
		return actionMsg{status: "Unmarked " + day}
	}
}

func (m Model) archive(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.tracker.ArchiveHabit(id); err != nil {
			return actionMsg{err: fmt.Errorf("archive failed: %w", err)}
		}
		return actionMsg{status: "Habit archived"}
	}
}
