package layout

import (
	"time"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/interval"
	"github.com/javiermolinar/daybook/internal/task"
)

// TaskLayout is the rendering metadata of one task on a day.
type TaskLayout struct {
	Task      *task.Task `json:"task"`
	Completed bool       `json:"completed"`
	Blocks    []Block    `json:"blocks"`
	HostID    string     `json:"host_id,omitempty"`
	GuestIDs  []string   `json:"guest_ids,omitempty"`
	Conflicts []string   `json:"conflicts,omitempty"` // completed tasks overlapping this one
}

// DayLayout is the segmentation of every visible task on one date.
type DayLayout struct {
	Date     string       `json:"date"`
	Timezone string       `json:"timezone"`
	Tasks    []TaskLayout `json:"tasks"`
}

// BuildDay lays out the tasks scheduled on date (in loc).
// Open tasks are checked for overlaps against completed ones and nested among
// themselves; completed tasks are drawn whole. Cancelled tasks are omitted.
func BuildDay(tasks []*task.Task, date time.Time, loc *time.Location) DayLayout {
	day := task.NewDay(date, loc, tasks)
	out := DayLayout{
		Date:     day.Date.Format(dateutil.DateLayout),
		Timezone: day.Location.String(),
		Tasks:    make([]TaskLayout, 0, day.Len()),
	}

	var active, completed []*task.Task
	for _, t := range day.Tasks() {
		switch {
		case t.IsCancelled():
		case t.IsCompleted():
			completed = append(completed, t)
		default:
			active = append(active, t)
		}
	}

	conflicts := DetectOverlaps(active, completed)
	nesting := DetectNestedTasks(active)

	for _, t := range day.Tasks() {
		if t.IsCancelled() {
			continue
		}
		tl := TaskLayout{
			Task:      t,
			Completed: t.IsCompleted(),
			HostID:    nesting.HostOf[t.ID],
		}
		guests := nesting.Hosts[t.ID]
		for _, g := range guests {
			tl.GuestIDs = append(tl.GuestIDs, g.ID)
		}
		for _, c := range conflicts[t.ID] {
			tl.Conflicts = append(tl.Conflicts, c.ID)
		}
		if len(guests) > 0 {
			tl.Blocks = blocksFromSegments(CalculateHostSegments(t, guests))
		} else {
			tl.Blocks = blocksFromSegments(interval.SplitBySubIntervals(t.Interval(), nil))
		}
		out.Tasks = append(out.Tasks, tl)
	}
	return out
}
