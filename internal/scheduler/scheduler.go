// Package scheduler places tasks into free time.
//
// The scheduler is pure: it receives a snapshot of a user's tasks and groups
// and returns a plan. Persisting the plan is the caller's job.
package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/interval"
	"github.com/javiermolinar/daybook/internal/task"
)

// Request is the input of PullForward.
type Request struct {
	// TargetDate is the calendar date to fill. Only its year, month and day are
	// used; they are read in Timezone.
	TargetDate time.Time
	GroupID    string
	Tasks      []*task.Task
	Groups     []*task.Group
	AwakeHours availability.AwakeHours
	Timezone   string
	// Now, when set, keeps placements out of the already elapsed part of the day.
	Now time.Time
}

// PullForward moves future-dated open tasks of a group onto TargetDate.
//
// Candidates are tasks that are not completed or cancelled, not locked,
// belong to the group (or its direct leaf children when the group is a
// parent), and start on a date strictly after TargetDate. They are ordered
// by priority, due date and current start, and placed first-fit into the
// free time of their own group's window on the target date: the group's
// auto-schedule hours when it has them, the user's awake hours otherwise.
//
// A missing group or a day without awake hours fails the whole call with an
// *Error. Candidates that cannot be placed are reported in Result.Skipped.
func PullForward(req Request) (*Result, error) {
	loc, err := availability.LoadLocation(req.Timezone)
	if err != nil {
		return nil, newError(KindInvalidRequest, err, "unknown timezone %q", req.Timezone)
	}
	y, m, d := req.TargetDate.Date()
	target := time.Date(y, m, d, 0, 0, 0, 0, loc)

	leaves, err := task.ResolveLeafGroups(req.Groups, req.GroupID)
	if err != nil {
		if errors.Is(err, task.ErrNoLeafGroups) {
			return nil, newError(KindNotFound, err, "group %q has no schedulable sub-groups", req.GroupID)
		}
		return nil, newError(KindNotFound, err, "group %q does not exist", req.GroupID)
	}

	windows, err := leafWindows(req.Groups, leaves, req.AwakeHours, target, loc, req.Now)
	if err != nil {
		return nil, err
	}

	candidates := pullCandidates(req.Tasks, task.GroupSet(leaves), target, loc)
	result := newResult()
	if len(candidates) == 0 {
		result.Feedback = []string{"No future tasks to pull forward"}
		return result, nil
	}

	exclude := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		exclude[c.ID] = true
	}
	busy := occupied(req.Tasks, exclude, span(windows))

	sortCandidates(candidates)
	for _, c := range candidates {
		window, ok := windows[*c.GroupID]
		if !ok {
			result.skipped(c, ReasonNoWindow, fmt.Sprintf("its group has no hours left on %s",
				target.Format(dateutil.DateLayout)))
			continue
		}
		busy = placeInWindow(result, c, window, busy, target, loc)
	}
	result.summarize(len(candidates), target)
	return result, nil
}

// leafWindows resolves the window of every leaf group on target. A group
// with auto-schedule hours uses them; any other group uses the user's awake
// hours. Windows are clamped to now and dropped once fully elapsed.
func leafWindows(groups []*task.Group, leaves []string, user availability.AwakeHours, target time.Time, loc *time.Location, now time.Time) (map[string]interval.Interval, error) {
	windows := make(map[string]interval.Interval, len(leaves))
	resolved := 0
	for _, id := range leaves {
		var hours availability.AwakeHours
		if g := task.FindGroup(groups, id); g != nil {
			hours = g.ScheduleHours()
		}
		w, ok := availability.ResolveForGroup(hours, user, target, loc)
		if !ok {
			continue
		}
		resolved++
		if w = clampToNow(w, now); w.Valid() {
			windows[id] = w
		}
	}
	if resolved == 0 {
		return nil, newError(KindNoAvailability, nil, "no awake hours configured for %s",
			target.Weekday().String())
	}
	if len(windows) == 0 {
		return nil, newError(KindNoAvailability, nil, "the awake hours of %s have already passed",
			target.Format(dateutil.DateLayout))
	}
	return windows, nil
}

// pullCandidates returns the tasks eligible to be pulled onto target.
func pullCandidates(tasks []*task.Task, groups map[string]bool, target time.Time, loc *time.Location) []*task.Task {
	parents := task.ParentIDs(tasks)
	var out []*task.Task
	for _, t := range tasks {
		if !t.IsOpen() || t.Locked || parents[t.ID] {
			continue
		}
		if !t.InGroups(groups) || t.ScheduledStart == nil {
			continue
		}
		if dateutil.DayOf(*t.ScheduledStart, loc).After(target) {
			out = append(out, t)
		}
	}
	return out
}

// occupied returns the blocks inside bounds that are taken by tasks other
// than those in exclude. Parents of subtasks never take time.
func occupied(tasks []*task.Task, exclude map[string]bool, bounds interval.Interval) []interval.Interval {
	parents := task.ParentIDs(tasks)
	var out []interval.Interval
	for _, t := range tasks {
		if exclude[t.ID] || parents[t.ID] || !t.OccupiesTime() {
			continue
		}
		if c, ok := interval.Clamp(t.Interval(), bounds); ok {
			out = append(out, c)
		}
	}
	return out
}
