// Package summary aggregates planned and completed time over a week.
package summary

import (
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/task"
)

// DayStats holds the totals of one calendar day.
type DayStats struct {
	Date              time.Time `json:"date"`
	AvailableMinutes  int       `json:"available_minutes"`
	PlannedMinutes    int       `json:"planned_minutes"`
	CompletedMinutes  int       `json:"completed_minutes"`
	TotalBlocks       int       `json:"total_blocks"`
	CancelledBlocks   int       `json:"cancelled_blocks"`
	RescheduledBlocks int       `json:"rescheduled_blocks"`
}

// FreeMinutes returns the awake time not taken by planned or completed work.
func (d DayStats) FreeMinutes() int {
	return max(0, d.AvailableMinutes-d.PlannedMinutes-d.CompletedMinutes)
}

// WeekStats holds aggregated statistics for the week, Monday first.
type WeekStats struct {
	AvailableMinutes  int            `json:"available_minutes"`
	PlannedMinutes    int            `json:"planned_minutes"`
	CompletedMinutes  int            `json:"completed_minutes"`
	TotalBlocks       int            `json:"total_blocks"`
	CancelledBlocks   int            `json:"cancelled_blocks"`
	RescheduledBlocks int            `json:"rescheduled_blocks"`
	GroupMinutes      map[string]int `json:"group_minutes"` // by group id, "" for ungrouped
	Days              [7]DayStats    `json:"days"`
}

// TotalMinutes returns planned plus completed minutes.
func (s WeekStats) TotalMinutes() int {
	return s.PlannedMinutes + s.CompletedMinutes
}

// CompletedPercent returns the share of scheduled time already completed.
func (s WeekStats) CompletedPercent() int {
	if s.TotalMinutes() == 0 {
		return 0
	}
	return (s.CompletedMinutes * 100) / s.TotalMinutes()
}

// LoadPercent returns scheduled time as a percentage of awake time.
func (s WeekStats) LoadPercent() int {
	if s.AvailableMinutes == 0 {
		return 0
	}
	return (s.TotalMinutes() * 100) / s.AvailableMinutes
}

// BusiestDay returns the day index (0=Monday) with the most scheduled minutes.
// It returns -1 for an empty week.
func (s WeekStats) BusiestDay() (day int, minutes int) {
	day = -1
	for i, ds := range s.Days {
		if m := ds.PlannedMinutes + ds.CompletedMinutes; m > minutes {
			minutes = m
			day = i
		}
	}
	return day, minutes
}

// WeekSummary holds the tasks and statistics of one ISO week.
type WeekSummary struct {
	Start    time.Time    `json:"start"`
	End      time.Time    `json:"end"`
	Timezone string       `json:"timezone"`
	Tasks    []*task.Task `json:"tasks"`
	Stats    WeekStats    `json:"stats"`
}

// SummarizeWeek builds the summary of the week containing date, with days
// read in loc. Parents of subtasks are left out since their subtasks carry
// the time.
func SummarizeWeek(date time.Time, loc *time.Location, tasks []*task.Task, hours availability.AwakeHours) *WeekSummary {
	if loc == nil {
		loc = time.UTC
	}
	start, end := dateutil.WeekRange(dateutil.DayOf(date, loc))

	parents := task.ParentIDs(tasks)
	var leaves []*task.Task
	for _, t := range tasks {
		if !parents[t.ID] {
			leaves = append(leaves, t)
		}
	}

	summary := &WeekSummary{
		Start:    start,
		End:      end,
		Timezone: loc.String(),
		Tasks:    []*task.Task{},
		Stats:    WeekStats{GroupMinutes: map[string]int{}},
	}
	for i := range summary.Stats.Days {
		day := task.NewDay(start.AddDate(0, 0, i), loc, leaves)
		ds := dayStats(day, hours, summary.Stats.GroupMinutes)
		summary.Stats.Days[i] = ds
		summary.Stats.AvailableMinutes += ds.AvailableMinutes
		summary.Stats.PlannedMinutes += ds.PlannedMinutes
		summary.Stats.CompletedMinutes += ds.CompletedMinutes
		summary.Stats.TotalBlocks += ds.TotalBlocks
		summary.Stats.CancelledBlocks += ds.CancelledBlocks
		summary.Stats.RescheduledBlocks += ds.RescheduledBlocks
		summary.Tasks = append(summary.Tasks, day.Tasks()...)
	}
	return summary
}

func dayStats(day *task.Day, hours availability.AwakeHours, groupMinutes map[string]int) DayStats {
	ds := DayStats{Date: day.Date}
	if w, ok := availability.Resolve(hours, day.Date, day.Location); ok {
		ds.AvailableMinutes = int(w.Duration().Minutes())
	}
	for _, t := range day.Tasks() {
		ds.TotalBlocks++
		minutes := int(t.Interval().Duration().Minutes())
		switch t.Status {
		case task.StatusCancelled:
			ds.CancelledBlocks++
			continue
		case task.StatusRescheduled:
			ds.RescheduledBlocks++
			continue
		case task.StatusCompleted:
			ds.CompletedMinutes += minutes
		default:
			ds.PlannedMinutes += minutes
		}
		groupID := ""
		if t.GroupID != nil {
			groupID = *t.GroupID
		}
		groupMinutes[groupID] += minutes
	}
	return ds
}
