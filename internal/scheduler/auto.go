package scheduler

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/interval"
	"github.com/javiermolinar/daybook/internal/task"
)

// AutoRequest is the input of AutoSchedule.
type AutoRequest struct {
	Date time.Time
	// GroupID restricts the run to one group (or its leaf children). Empty means all groups.
	GroupID    string
	Tasks      []*task.Task
	Groups     []*task.Group
	AwakeHours availability.AwakeHours
	Timezone   string
	Now        time.Time
}

// AutoSchedule places unscheduled open tasks of auto-scheduling groups on Date.
//
// Each task goes into its group's auto-schedule window for that weekday. When
// the user has awake hours configured, the window is also bounded by them.
// Locked, ignored and parent tasks are never placed. Ordering matches
// PullForward, with the group's priority as an extra tie-break after the
// task priority.
func AutoSchedule(req AutoRequest) (*Result, error) {
	loc, err := availability.LoadLocation(req.Timezone)
	if err != nil {
		return nil, newError(KindInvalidRequest, err, "unknown timezone %q", req.Timezone)
	}
	y, m, d := req.Date.Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)

	scope := make(map[string]bool)
	if req.GroupID != "" {
		leaves, err := task.ResolveLeafGroups(req.Groups, req.GroupID)
		if err != nil {
			return nil, newError(KindNotFound, err, "group %q cannot be auto-scheduled", req.GroupID)
		}
		scope = task.GroupSet(leaves)
	}

	windows := make(map[string]interval.Interval)
	enabled := 0
	for _, g := range req.Groups {
		hours := g.ScheduleHours()
		if hours == nil || (req.GroupID != "" && !scope[g.ID]) {
			continue
		}
		enabled++
		w, ok := groupWindow(hours, req.AwakeHours, date, loc)
		if !ok {
			continue
		}
		if w = clampToNow(w, req.Now); w.Valid() {
			windows[g.ID] = w
		}
	}
	if enabled == 0 {
		return nil, newError(KindNotFound, nil, "no groups have auto-scheduling enabled")
	}
	if len(windows) == 0 {
		return nil, newError(KindNoAvailability, nil, "no auto-schedule hours available on %s",
			date.Weekday().String())
	}

	candidates := autoCandidates(req.Tasks, windows)
	result := newResult()
	if len(candidates) == 0 {
		result.Feedback = []string{"No unscheduled tasks to place"}
		return result, nil
	}

	groupPriority := make(map[string]int, len(req.Groups))
	for _, g := range req.Groups {
		groupPriority[g.ID] = g.PriorityOr(math.MaxInt)
	}
	slices.SortStableFunc(candidates, func(a, b *task.Task) int {
		if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
			return c
		}
		if c := cmp.Compare(groupPriority[*a.GroupID], groupPriority[*b.GroupID]); c != 0 {
			return c
		}
		return compareCandidates(a, b)
	})

	// Busy time spans the union of all group windows; placements extend it.
	busy := occupied(req.Tasks, nil, span(windows))
	for _, c := range candidates {
		busy = placeInWindow(result, c, windows[*c.GroupID], busy, date, loc)
	}
	result.summarize(len(candidates), date)
	return result, nil
}

// groupWindow resolves a group's hours for date, bounded by the user's
// awake hours when any are configured.
func groupWindow(group, user availability.AwakeHours, date time.Time, loc *time.Location) (interval.Interval, bool) {
	w, ok := availability.Resolve(group, date, loc)
	if !ok {
		return interval.Interval{}, false
	}
	if user == nil {
		return w, true
	}
	uw, ok := availability.Resolve(user, date, loc)
	if !ok {
		return interval.Interval{}, false
	}
	return interval.Clamp(w, uw)
}

// autoCandidates returns unscheduled open tasks whose group has a window.
func autoCandidates(tasks []*task.Task, windows map[string]interval.Interval) []*task.Task {
	parents := task.ParentIDs(tasks)
	var out []*task.Task
	for _, t := range tasks {
		if !t.IsOpen() || t.Locked || t.Ignored || parents[t.ID] || t.IsScheduled() {
			continue
		}
		if t.GroupID == nil {
			continue
		}
		if _, ok := windows[*t.GroupID]; ok {
			out = append(out, t)
		}
	}
	return out
}
