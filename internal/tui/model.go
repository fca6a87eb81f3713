package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitual/internal/metrics"
	"github.com/julianstephens/habitual/internal/models"
	"github.com/julianstephens/habitual/internal/storage"
	"github.com/julianstephens/habitual/internal/tracker"
	"github.com/julianstephens/habitual/internal/tui/components/habits"
	"github.com/julianstephens/habitual/internal/tui/components/stats"
	"github.com/julianstephens/habitual/internal/utils"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateStats
	StateMilestones
	StateAddHabit
	StateProgress
)

// tabCount is the number of states reachable with tab
const tabCount = 3

// dataMsg carries a fresh read of everything the views render.
type dataMsg struct {
	snap   metrics.Snapshot
	today  models.Log
	states map[string]models.MilestoneState
	err    error
}

// actionMsg reports the outcome of a write; the model reloads after it.
type actionMsg struct {
	status string
	err    error
}

type Model struct {
	store      storage.Provider
	tracker    *tracker.Service
	state      SessionState
	keys       KeyMap
	help       help.Model
	today      habits.Model
	stats      stats.Model
	form       *huh.Form
	habitForm  *HabitFormModel
	progress   *ProgressFormModel
	snap       metrics.Snapshot
	milestones map[string]models.MilestoneState
	status     string
	err        error
	quitting   bool
	width      int
	height     int
}

func NewModel(store storage.Provider, svc *tracker.Service) Model {
	return Model{
		store:   store,
		tracker: svc,
		state:   StateToday,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		today:   habits.New(0, 0),
		stats:   stats.New(0, 0),
	}
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return m.load
}

// load reads the snapshot, today's entries and milestone states.
func (m Model) load() tea.Msg {
	snap, err := m.tracker.Snapshot()
	if err != nil {
		return dataMsg{err: err}
	}
	day := utils.DayKey(snap.Today)
	entries, err := m.store.GetEntriesInRange(day, day)
	if err != nil {
		return dataMsg{err: err}
	}
	states, err := m.store.GetAllMilestoneStates()
	if err != nil {
		return dataMsg{err: err}
	}
	return dataMsg{snap: snap, today: models.NewLog(entries), states: states}
}
