package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/task"
	"github.com/javiermolinar/daybook/internal/tui/commands"
	"github.com/javiermolinar/daybook/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModePrompt
)

// statusTimeout is how long transient status messages stay visible.
const statusTimeout = 4 * time.Second

// Options configures a Model.
type Options struct {
	Session commands.Session
	// Location is the user's effective timezone; it decides what "today" is.
	Location *time.Location
	Theme    string
	Now      func() time.Time
	// Date is the first day shown. Zero means today.
	Date time.Time
}

// row is one drawn block of a task. Hosts split by guests have several.
type row struct {
	tl    layout.TaskLayout
	block layout.Block
}

// Model is the main TUI model.
type Model struct {
	session commands.Session
	styles  *Styles
	now     func() time.Time
	loc     *time.Location

	date   time.Time
	day    layout.DayLayout
	groups []*task.Group
	rows   []row
	cursor int
	// moved holds the tasks placed by the last scheduling run.
	moved map[string]bool

	mode   Mode
	prompt textinput.Model

	width   int
	height  int
	loading bool
	status  string
	err     error
}

// New creates a TUI model. Nothing is loaded until Init runs.
func New(opts Options) (Model, error) {
	if opts.Session.Planner == nil {
		return Model{}, fmt.Errorf("tui: planner is required")
	}
	th, err := theme.Load(opts.Theme)
	if err != nil {
		return Model{}, err
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	date := opts.Date
	if date.IsZero() {
		date = now()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "/pull <group>, /auto [group], /goto <date>"
	ti.CharLimit = 200

	return Model{
		session: opts.Session,
		styles:  NewStyles(th),
		now:     now,
		loc:     loc,
		date:    dateutil.DayOf(date, loc),
		moved:   map[string]bool{},
		prompt:  ti,
		loading: true,
	}, nil
}

// Init loads the first day.
func (m Model) Init() tea.Cmd {
	return commands.LoadDay(m.session, m.date)
}

// Run starts the TUI.
func Run(opts Options) error {
	model, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

// selected returns the task under the cursor, or nil for an empty day.
func (m Model) selected() *task.Task {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].tl.Task
}

// setDay replaces the shown layout and keeps the cursor on the same task when possible.
func (m *Model) setDay(day layout.DayLayout) {
	var current string
	if t := m.selected(); t != nil {
		current = t.ID
	}

	m.day = day
	m.rows = nil
	for _, tl := range day.Tasks {
		for _, b := range tl.Blocks {
			m.rows = append(m.rows, row{tl: tl, block: b})
		}
	}

	m.cursor = min(m.cursor, max(len(m.rows)-1, 0))
	for i, r := range m.rows {
		if r.tl.Task.ID == current {
			m.cursor = i
			break
		}
	}
}

// groupByName finds a group by id or case-insensitive name.
func (m Model) groupByName(name string) (*task.Group, error) {
	if g := task.FindGroup(m.groups, name); g != nil {
		return g, nil
	}
	for _, g := range m.groups {
		if equalFold(g.Name, name) {
			return g, nil
		}
	}
	return nil, fmt.Errorf("unknown group %q", name)
}
