// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/planner"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/task"
)

// Planner is the part of the planning service the TUI drives.
type Planner interface {
	DayLayout(ctx context.Context, userID string, date time.Time, tz string) (layout.DayLayout, error)
	ListGroups(ctx context.Context, userID string) ([]*task.Group, error)
	PullForward(ctx context.Context, userID string, in planner.PullForwardInput) (*planner.Output, error)
	AutoSchedule(ctx context.Context, userID string, in planner.AutoScheduleInput) (*planner.Output, error)
	SetStatus(ctx context.Context, userID, id string, status task.Status) error
}

// Session identifies whose day is shown and in which timezone.
type Session struct {
	Planner Planner
	UserID  string
	// Timezone overrides the stored setting when set.
	Timezone string
}

// DayLoadedMsg is sent when a day layout is loaded.
type DayLoadedMsg struct {
	Date   time.Time
	Day    layout.DayLayout
	Groups []*task.Group
}

// ScheduledMsg is sent when a pull-forward or auto-schedule run completes.
type ScheduledMsg struct {
	Op     string
	Result *scheduler.Result
}

// StatusChangedMsg is sent when a task status was saved.
type StatusChangedMsg struct {
	TaskID string
	Status task.Status
}

// CopiedMsg is sent when the agenda was copied to the clipboard.
type CopiedMsg struct {
	Lines int
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadDay loads the layout of date and the user's groups.
func LoadDay(s Session, date time.Time) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		day, err := s.Planner.DayLayout(ctx, s.UserID, date, s.Timezone)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading day: %w", err)}
		}
		groups, err := s.Planner.ListGroups(ctx, s.UserID)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading groups: %w", err)}
		}

		return DayLoadedMsg{Date: date, Day: day, Groups: groups}
	}
}

// PullForward pulls future tasks of groupID onto date.
func PullForward(s Session, date time.Time, groupID string) tea.Cmd {
	return func() tea.Msg {
		out, err := s.Planner.PullForward(context.Background(), s.UserID, planner.PullForwardInput{
			TargetDate: date,
			GroupID:    groupID,
			Timezone:   s.Timezone,
		})
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("pull forward: %w", err)}
		}
		return ScheduledMsg{Op: "pull forward", Result: out.Result}
	}
}

// AutoSchedule places unscheduled tasks on date. An empty groupID
// schedules every auto-scheduling group.
func AutoSchedule(s Session, date time.Time, groupID string) tea.Cmd {
	return func() tea.Msg {
		out, err := s.Planner.AutoSchedule(context.Background(), s.UserID, planner.AutoScheduleInput{
			Date:     date,
			GroupID:  groupID,
			Timezone: s.Timezone,
		})
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("auto schedule: %w", err)}
		}
		return ScheduledMsg{Op: "auto schedule", Result: out.Result}
	}
}

// SetStatus saves a new status for a task.
func SetStatus(s Session, taskID string, status task.Status) tea.Cmd {
	return func() tea.Msg {
		if err := s.Planner.SetStatus(context.Background(), s.UserID, taskID, status); err != nil {
			return ErrMsg{Err: fmt.Errorf("updating status: %w", err)}
		}
		return StatusChangedMsg{TaskID: taskID, Status: status}
	}
}

// CopyToClipboard writes text to the system clipboard.
func CopyToClipboard(text string, lines int) tea.Cmd {
	return func() tea.Msg {
		if err := clipboard.WriteAll(text); err != nil {
			return ErrMsg{Err: fmt.Errorf("copying to clipboard: %w", err)}
		}
		return CopiedMsg{Lines: lines}
	}
}

// ClearStatusAfter clears the status line after d.
func ClearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}
