package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case commands.DayLoadedMsg:
		// A slower load for a day we already navigated away from.
		if !msg.Date.Equal(m.date) {
			return m, nil
		}
		m.loading = false
		m.groups = msg.Groups
		if loc, err := availability.LoadLocation(msg.Day.Timezone); err == nil {
			m.loc = loc
		}
		m.setDay(msg.Day)
		return m, nil

	case commands.ScheduledMsg:
		m.loading = false
		m.err = nil
		m.moved = make(map[string]bool, len(msg.Result.Moved))
		for _, mv := range msg.Result.Moved {
			m.moved[mv.TaskID] = true
		}
		m.status = fmt.Sprintf("%s: %d moved", msg.Op, len(msg.Result.Moved))
		if n := len(msg.Result.Skipped); n > 0 {
			m.status += fmt.Sprintf(", %d skipped", n)
		}
		return m, tea.Batch(commands.LoadDay(m.session, m.date), commands.ClearStatusAfter(statusTimeout))

	case commands.StatusChangedMsg:
		m.status = fmt.Sprintf("Marked %s", msg.Status)
		return m, tea.Batch(commands.LoadDay(m.session, m.date), commands.ClearStatusAfter(statusTimeout))

	case commands.CopiedMsg:
		m.status = fmt.Sprintf("Copied %d tasks to clipboard", msg.Lines)
		return m, commands.ClearStatusAfter(statusTimeout)

	case commands.StatusMsgCmd:
		m.status = msg.Msg
		return m, commands.ClearStatusAfter(statusTimeout)

	case commands.ClearStatusMsg:
		m.status = ""
		return m, nil

	case commands.ErrMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}
