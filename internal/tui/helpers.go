package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/task"
)

const clockLayout = "15:04"

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// formatMinutes formats minutes as 1h30m.
func formatMinutes(minutes int) string {
	hours, mins := minutes/60, minutes%60
	switch {
	case hours == 0:
		return fmt.Sprintf("%dm", mins)
	case mins == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%dm", hours, mins)
	}
}

func formatRange(start, end time.Time, loc *time.Location) string {
	return start.In(loc).Format(clockLayout) + "-" + end.In(loc).Format(clockLayout)
}

func statusSymbol(s task.Status) string {
	switch s {
	case task.StatusInProgress:
		return "◐"
	case task.StatusCompleted:
		return "●"
	case task.StatusCancelled:
		return "✗"
	case task.StatusRescheduled:
		return "→"
	default:
		return "○"
	}
}

func groupNames(groups []*task.Group) map[string]*task.Group {
	byID := make(map[string]*task.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
	}
	return byID
}

// dayTotals returns the planned minutes of open top-level blocks and the
// number of completed tasks.
func dayTotals(day layout.DayLayout) (planned, done int) {
	for _, tl := range day.Tasks {
		if tl.Completed {
			done++
			continue
		}
		if t := tl.Task; tl.HostID == "" && t.IsScheduled() {
			planned += int(t.ScheduledEnd.Sub(*t.ScheduledStart) / time.Minute)
		}
	}
	return planned, done
}

// agendaText renders the day as plain text for the clipboard.
func agendaText(day layout.DayLayout, groups []*task.Group, loc *time.Location) (string, int) {
	byID := groupNames(groups)
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", day.Date, day.Timezone)
	lines := 0
	for _, tl := range day.Tasks {
		t := tl.Task
		if t.ScheduledStart == nil || t.ScheduledEnd == nil {
			continue
		}
		line := fmt.Sprintf("%s %s %s", formatRange(*t.ScheduledStart, *t.ScheduledEnd, loc), statusSymbol(t.Status), t.Title)
		if t.GroupID != nil {
			if g := byID[*t.GroupID]; g != nil {
				line += " [" + g.Name + "]"
			}
		}
		if tl.HostID != "" {
			line = "  " + line
		}
		b.WriteString(line + "\n")
		lines++
	}
	return b.String(), lines
}
