package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateToday:
		content = docStyle.Render(m.today.View())
	case StateStats:
		content = docStyle.Render(m.viewStats())
	case StateMilestones:
		content = docStyle.Render(m.viewMilestones())
	case StateAddHabit, StateProgress:
		content = docStyle.Render(m.form.View())
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	active := m.state
	if active >= tabCount {
		active = StateToday
	}
	var tabs []string
	for i, title := range []string{"Today", "Stats", "Milestones"} {
		if active == SessionState(i) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.err != nil {
		return dangerStyle.Render("⚠ " + m.err.Error())
	}
	if m.status != "" {
		return successStyle.Render(m.status)
	}
	return ""
}

func (m Model) viewStats() string {
	d := m.snap.Discipline
	var b strings.Builder
	fmt.Fprintf(&b, "Discipline %s   Momentum %s\n",
		scoreStyle.Render(fmt.Sprintf("%.1f", d.Score)),
		scoreStyle.Render(fmt.Sprintf("%+.1f", m.snap.Momentum)))
	if m.snap.ShowGaps {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d of %d day(s) missed this week",
			m.snap.Gaps.MissedDays, m.snap.Gaps.ScheduledDays)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.stats.View())
	return b.String()
}

func (m Model) viewMilestones() string {
	if len(m.snap.Habits) == 0 {
		return "\n  No habits yet."
	}
	var b strings.Builder
	for _, s := range m.snap.Habits {
		unit := "completions"
		if s.Habit.IsProgress() {
			unit = s.Habit.Units
		}
		fmt.Fprintf(&b, "%s  %s %s\n", s.Habit.Title, formatNum(s.Cumulative), unit)

		achieved := m.milestones[s.Habit.ID].Achieved
		marks := make([]string, len(achieved))
		for i, a := range achieved {
			marks[i] = "🏆 " + formatNum(a)
		}
		if len(marks) > 0 {
			b.WriteString("  " + strings.Join(marks, "  ") + "\n")
		}
		if s.NextMilestone > 0 {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  next %s, %s to go",
				formatNum(s.NextMilestone), formatNum(s.NextMilestone-s.Cumulative))))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
