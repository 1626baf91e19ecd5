package tui

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/task"
	"github.com/javiermolinar/daybook/internal/tui/commands"
	"github.com/javiermolinar/daybook/internal/tui/input"
)

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.mode == ModePrompt {
		return m.handlePromptKeys(msg)
	}
	return m.handleNormalKeys(msg)
}

// handleNormalKeys handles keys in normal mode.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "j", "down":
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "g", "home":
		m.cursor = 0
	case "G", "end":
		m.cursor = max(len(m.rows)-1, 0)

	case "h", "left":
		return m.gotoDate(m.date.AddDate(0, 0, -1))
	case "l", "right":
		return m.gotoDate(m.date.AddDate(0, 0, 1))
	case "t":
		return m.gotoDate(dateutil.DayOf(m.now(), m.loc))
	case "r":
		m.loading = true
		return m, commands.LoadDay(m.session, m.date)

	case "d":
		return m.setSelectedStatus(task.StatusCompleted)
	case "s":
		return m.setSelectedStatus(task.StatusInProgress)
	case "x":
		return m.setSelectedStatus(task.StatusCancelled)
	case "u":
		return m.setSelectedStatus(task.StatusPending)

	case "a":
		m.loading = true
		return m, commands.AutoSchedule(m.session, m.date, "")
	case "p":
		return m.openPrompt("/pull ")
	case "/", ":":
		return m.openPrompt("/")

	case "y":
		text, lines := agendaText(m.day, m.groups, m.loc)
		if lines == 0 {
			m.status = "Nothing to copy"
			return m, commands.ClearStatusAfter(statusTimeout)
		}
		return m, commands.CopyToClipboard(text, lines)
	}
	return m, nil
}

// handlePromptKeys handles keys while the command prompt is open.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		return m, nil
	case "tab":
		if value, ok := input.PromptAutocomplete(m.prompt.Value(), input.Commands); ok {
			m.prompt.SetValue(value)
			m.prompt.CursorEnd()
		}
		return m, nil
	case "enter":
		line := m.prompt.Value()
		m.closePrompt()
		return m.runPrompt(line)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m Model) openPrompt(value string) (tea.Model, tea.Cmd) {
	m.mode = ModePrompt
	m.err = nil
	m.prompt.SetValue(value)
	m.prompt.CursorEnd()
	return m, m.prompt.Focus()
}

func (m *Model) closePrompt() {
	m.mode = ModeNormal
	m.prompt.Blur()
	m.prompt.Reset()
}

// runPrompt executes a prompt line.
func (m Model) runPrompt(line string) (tea.Model, tea.Cmd) {
	action, err := input.Parse(line)
	if errors.Is(err, input.ErrEmptyPrompt) {
		return m, nil
	}
	if err != nil {
		m.err = err
		return m, nil
	}

	switch action.Command {
	case "pull":
		g, err := m.groupByName(action.Arg)
		if err != nil {
			m.err = err
			return m, nil
		}
		m.loading = true
		return m, commands.PullForward(m.session, m.date, g.ID)

	case "auto":
		groupID := ""
		if action.Arg != "" {
			g, err := m.groupByName(action.Arg)
			if err != nil {
				m.err = err
				return m, nil
			}
			groupID = g.ID
		}
		m.loading = true
		return m, commands.AutoSchedule(m.session, m.date, groupID)

	case "goto":
		date, err := m.parseDate(action.Arg)
		if err != nil {
			m.err = err
			return m, nil
		}
		return m.gotoDate(date)

	case "today":
		return m.gotoDate(dateutil.DayOf(m.now(), m.loc))

	case "quit":
		return m, tea.Quit
	}
	m.err = fmt.Errorf("unknown command %q", action.Command)
	return m, nil
}

// parseDate accepts relative dates and, for browsing, past absolute dates.
func (m Model) parseDate(s string) (time.Time, error) {
	d, err := dateutil.ParseRelativeDate(s, m.now().In(m.loc))
	if errors.Is(err, dateutil.ErrDateInPast) {
		return dateutil.ParseDateIn(s, m.loc)
	}
	return d, err
}

func (m Model) gotoDate(date time.Time) (tea.Model, tea.Cmd) {
	m.date = date
	m.cursor = 0
	m.moved = map[string]bool{}
	m.err = nil
	m.loading = true
	return m, commands.LoadDay(m.session, date)
}

func (m Model) setSelectedStatus(status task.Status) (tea.Model, tea.Cmd) {
	t := m.selected()
	if t == nil || t.Status == status {
		return m, nil
	}
	return m, commands.SetStatus(m.session, t.ID, status)
}
