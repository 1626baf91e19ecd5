package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/task"
	"github.com/javiermolinar/daybook/internal/tui/input"
)

const helpLine = "←/→ day  t today  j/k move  d done  s start  x cancel  u reopen  p pull  a auto  y copy  / prompt  q quit"

// View renders the model.
func (m Model) View() string {
	lines := []string{m.renderHeader(), m.renderRule()}
	lines = append(lines, m.renderRows()...)
	lines = append(lines, m.renderRule(), m.renderTotals())
	lines = append(lines, m.renderFooter()...)

	if m.width > 0 {
		for i, line := range lines {
			lines[i] = ansi.Truncate(line, m.width, "…")
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderHeader() string {
	date := m.date.Format("Monday, Jan 2 2006")
	header := m.styles.TitleStyle.Render("daybook") + "  " + m.styles.DateStyle.Render(date)
	header += "  " + m.styles.MutedStyle.Render("("+m.loc.String()+")")
	if dateutil.SameDay(m.date, m.now(), m.loc) {
		header += "  " + m.styles.MovedStyle.Render("today")
	}
	if m.loading {
		header += "  " + m.styles.MutedStyle.Render("loading…")
	}
	return header
}

func (m Model) renderRule() string {
	width := m.width
	if width <= 0 {
		width = 40
	}
	return m.styles.RuleStyle.Render(strings.Repeat("─", width))
}

// renderRows draws one line per block, with guests indented under their
// host and conflicts with completed work flagged after the task.
func (m Model) renderRows() []string {
	if len(m.rows) == 0 {
		if m.loading {
			return []string{""}
		}
		return []string{m.styles.MutedStyle.Render("  No time blocks scheduled for this day.")}
	}

	groups := groupNames(m.groups)
	titles := make(map[string]string, len(m.day.Tasks))
	for _, tl := range m.day.Tasks {
		titles[tl.Task.ID] = tl.Task.Title
	}

	lines := make([]string, 0, len(m.rows))
	for i, r := range m.rows {
		t := r.tl.Task
		indent := "  "
		if r.tl.HostID != "" {
			indent = "    └ "
		}

		label := t.Title
		if r.block.TotalSegments > 1 {
			label = fmt.Sprintf("%s (%d/%d)", t.Title, r.block.Index+1, r.block.TotalSegments)
		}
		var g *task.Group
		if t.GroupID != nil {
			g = groups[*t.GroupID]
		}

		titleStyle := m.styles.groupStyle("")
		if g != nil {
			titleStyle = m.styles.groupStyle(g.Color)
		}
		switch {
		case r.tl.Completed:
			titleStyle = m.styles.CompletedStyle
		case m.moved[t.ID]:
			titleStyle = m.styles.MovedStyle.Bold(true)
		}

		clock := formatRange(r.block.Start, r.block.End, m.loc)
		line := fmt.Sprintf("%s%s %s  %s", indent, statusSymbol(t.Status), clock, titleStyle.Render(label))
		if g != nil {
			line += "  " + m.styles.MutedStyle.Render(g.Name)
		}
		if t.Locked {
			line += "  " + m.styles.MutedStyle.Render("locked")
		}
		if r.block.IsLast && len(r.tl.Conflicts) > 0 {
			names := make([]string, len(r.tl.Conflicts))
			for j, id := range r.tl.Conflicts {
				names[j] = titles[id]
			}
			line += "  " + m.styles.ConflictStyle.Render("! overlaps "+strings.Join(names, ", "))
		}

		if i == m.cursor {
			line = m.styles.SelectedStyle.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return lines
}

func (m Model) renderTotals() string {
	planned, done := dayTotals(m.day)
	return m.styles.MutedStyle.Render(fmt.Sprintf("Planned: %s   Done: %d", formatMinutes(planned), done))
}

func (m Model) renderFooter() []string {
	var lines []string
	switch {
	case m.err != nil:
		lines = append(lines, m.styles.WarningStyle.Render("Error: "+m.err.Error()))
	case m.status != "":
		lines = append(lines, m.styles.MovedStyle.Render(m.status))
	default:
		lines = append(lines, "")
	}

	if m.mode == ModePrompt {
		lines = append(lines, m.styles.PromptStyle.Render(m.prompt.View()))
		for _, cmd := range input.PromptMatchingCommands(m.prompt.Value(), input.Commands) {
			lines = append(lines, m.styles.MutedStyle.Render(fmt.Sprintf("  %-7s %s", cmd.Name, cmd.Description)))
		}
		return lines
	}
	return append(lines, m.styles.MutedStyle.Render(helpLine))
}
