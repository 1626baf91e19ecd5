package task

import (
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/dateutil"
)

// Day holds the scheduled tasks whose start falls on one calendar date.
type Day struct {
	Date     time.Time // midnight in Location
	Location *time.Location
	tasks    []*Task // sorted by ScheduledStart
}

// NewDay collects the scheduled tasks of date, resolved in loc.
// Unscheduled tasks and tasks on other dates are ignored.
func NewDay(date time.Time, loc *time.Location, tasks []*Task) *Day {
	if loc == nil {
		loc = time.UTC
	}
	d := &Day{
		Date:     dateutil.DayOf(date, loc),
		Location: loc,
	}
	for _, t := range tasks {
		if t.ScheduledStart == nil {
			continue
		}
		if dateutil.DayOf(*t.ScheduledStart, loc).Equal(d.Date) {
			d.tasks = append(d.tasks, t)
		}
	}
	slices.SortStableFunc(d.tasks, compareByStart)
	return d
}

// Tasks returns a copy of the task slice.
func (d *Day) Tasks() []*Task {
	result := make([]*Task, len(d.tasks))
	copy(result, d.tasks)
	return result
}

// Len returns the number of tasks in the day.
func (d *Day) Len() int {
	return len(d.tasks)
}

// compareByStart orders tasks by scheduled start, then by id.
// Unscheduled tasks sort last.
func compareByStart(a, b *Task) int {
	switch {
	case a.ScheduledStart == nil && b.ScheduledStart == nil:
		return strings.Compare(a.ID, b.ID)
	case a.ScheduledStart == nil:
		return 1
	case b.ScheduledStart == nil:
		return -1
	}
	if c := a.ScheduledStart.Compare(*b.ScheduledStart); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// SortByStart sorts tasks by scheduled start, then id.
func SortByStart(tasks []*Task) {
	slices.SortStableFunc(tasks, compareByStart)
}
