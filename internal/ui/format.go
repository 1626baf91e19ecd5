package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/task"
)

const clockLayout = "15:04"

// FormatDuration formats minutes as a human-readable duration.
func FormatDuration(minutes int) string {
	if minutes == 0 {
		return "0m"
	}
	hours := minutes / 60
	mins := minutes % 60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh%dm", hours, mins)
}

// truncate shortens s to at most width terminal columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "...")
}

// formatRange formats a time range as HH:MM-HH:MM in loc.
func formatRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format(clockLayout) + "-" + end.In(loc).Format(clockLayout)
}

// statusSymbol returns the status indicator for a task.
func statusSymbol(s task.Status) string {
	switch s {
	case task.StatusPending:
		return "○"
	case task.StatusInProgress:
		return "◐"
	case task.StatusCompleted:
		return "●"
	case task.StatusCancelled:
		return "✗"
	case task.StatusRescheduled:
		return "→"
	default:
		return "?"
	}
}

// printResult prints the moves, skips and feedback of a scheduling call.
func printResult(w io.Writer, result *scheduler.Result, loc *time.Location, width int) {
	for _, m := range result.Moved {
		line := fmt.Sprintf("  + %s  %s", formatRange(m.NewStart, m.NewEnd, loc), m.Title)
		fmt.Fprintln(w, formatMoved(truncate(line, width)))
	}
	for _, s := range result.Skipped {
		line := fmt.Sprintf("  - %s (%s)", s.Title, s.Detail)
		fmt.Fprintln(w, formatSkipped(truncate(line, width)))
	}
	if len(result.Moved)+len(result.Skipped) > 0 {
		fmt.Fprintln(w)
	}
	for _, f := range result.Feedback {
		fmt.Fprintln(w, f)
	}
}

// printTaskRow prints one task of a listing.
func printTaskRow(w io.Writer, t *task.Task, groupName string, loc *time.Location, width int) {
	when := strings.Repeat(" ", len("00:00-00:00"))
	if t.IsScheduled() {
		when = formatRange(*t.ScheduledStart, *t.ScheduledEnd, loc)
	}
	dur := ""
	if t.Duration != nil {
		dur = formatMuted(FormatDuration(*t.Duration))
	}
	group := ""
	if groupName != "" {
		group = formatMuted("[" + groupName + "]")
	}

	prefix := fmt.Sprintf("  %s P%d %s  ", statusSymbol(t.Status), t.Priority, when)
	title := truncate(t.Title, width-runewidth.StringWidth(prefix)-20)
	fmt.Fprintf(w, "%s%s  %s  %s  %s\n", prefix, title, group, dur, formatMuted(t.ID))
}

// groupStyle returns the style used to draw tasks of a group.
func groupStyle(color string) lipgloss.Style {
	style := lipgloss.NewStyle()
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style
}

// renderDay draws a day layout, one line per segment. Guests are indented
// under their host and conflicts with completed work are flagged.
func renderDay(w io.Writer, day layout.DayLayout, groups []*task.Group, loc *time.Location, width int) {
	fmt.Fprintf(w, "=== %s (%s) ===\n\n", formatHeader(day.Date), day.Timezone)
	if len(day.Tasks) == 0 {
		fmt.Fprintln(w, "No time blocks scheduled for this day.")
		return
	}

	colors := make(map[string]string, len(groups))
	for _, g := range groups {
		colors[g.ID] = g.Color
	}

	total := 0
	for _, tl := range day.Tasks {
		t := tl.Task
		color := ""
		if t.GroupID != nil {
			color = colors[*t.GroupID]
		}
		style := groupStyle(color).Bold(!tl.Completed)

		indent := "  "
		if tl.HostID != "" {
			indent = "    └ "
		}
		for _, b := range tl.Blocks {
			label := t.Title
			if b.TotalSegments > 1 {
				label = fmt.Sprintf("%s (%d/%d)", t.Title, b.Index+1, b.TotalSegments)
			}
			prefix := fmt.Sprintf("%s%s %s  ", indent, statusSymbol(t.Status), formatRange(b.Start, b.End, loc))
			label = truncate(label, width-runewidth.StringWidth(prefix))
			fmt.Fprintln(w, prefix+style.Render(label))
		}
		if len(tl.Conflicts) > 0 {
			fmt.Fprintf(w, "%s  %s\n", indent, formatConflict(fmt.Sprintf("overlaps completed: %s", strings.Join(tl.Conflicts, ", "))))
		}
		if !tl.Completed && tl.HostID == "" {
			total += int(t.ScheduledEnd.Sub(*t.ScheduledStart) / time.Minute)
		}
	}

	fmt.Fprintf(w, "\n%s\n", formatMuted(fmt.Sprintf("Planned: %s", FormatDuration(total))))
}
