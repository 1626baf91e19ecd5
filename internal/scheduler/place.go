package scheduler

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/interval"
	"github.com/javiermolinar/daybook/internal/task"
)

// Move is a new block for a task.
type Move struct {
	TaskID   string    `json:"taskId"`
	Title    string    `json:"title"`
	NewStart time.Time `json:"newStart"`
	NewEnd   time.Time `json:"newEnd"`
}

// SkipReason explains why a candidate was not placed.
type SkipReason string

const (
	ReasonNoDuration SkipReason = "no_duration"
	ReasonNoFit      SkipReason = "no_fit"
	// ReasonNoWindow marks a task whose group has no hours left on the day.
	ReasonNoWindow SkipReason = "no_window"
)

// Skip is a candidate that could not be placed.
type Skip struct {
	TaskID string     `json:"taskId"`
	Title  string     `json:"title"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail"`
}

// Result is the plan produced by a scheduling call. Nothing is persisted.
type Result struct {
	Moved    []Move   `json:"movedTasks"`
	Skipped  []Skip   `json:"skipped"`
	Feedback []string `json:"feedback"`
}

// newResult returns an empty plan whose lists encode as [] rather than null.
func newResult() *Result {
	return &Result{Moved: []Move{}, Skipped: []Skip{}, Feedback: []string{}}
}

// TimeUpdates converts the moves into repository updates.
func (r *Result) TimeUpdates() []task.TimeUpdate {
	updates := make([]task.TimeUpdate, len(r.Moved))
	for i, m := range r.Moved {
		updates[i] = task.TimeUpdate{ID: m.TaskID, NewStart: m.NewStart, NewEnd: m.NewEnd}
	}
	return updates
}

func (r *Result) moved(t *task.Task, slot interval.Interval, loc *time.Location) {
	r.Moved = append(r.Moved, Move{TaskID: t.ID, Title: t.Title, NewStart: slot.Start, NewEnd: slot.End})
	r.Feedback = append(r.Feedback, fmt.Sprintf("Moved %q to %s-%s",
		t.Title, slot.Start.In(loc).Format("15:04"), slot.End.In(loc).Format("15:04")))
}

func (r *Result) skipped(t *task.Task, reason SkipReason, detail string) {
	r.Skipped = append(r.Skipped, Skip{TaskID: t.ID, Title: t.Title, Reason: reason, Detail: detail})
	r.Feedback = append(r.Feedback, fmt.Sprintf("Could not place %q: %s", t.Title, detail))
}

func (r *Result) summarize(total int, date time.Time) {
	summary := fmt.Sprintf("Placed %d of %d tasks on %s", len(r.Moved), total, date.Format(dateutil.DateLayout))
	r.Feedback = append([]string{summary}, r.Feedback...)
}

// freeTime returns the parts of window not covered by busy.
func freeTime(window interval.Interval, busy []interval.Interval) []interval.Interval {
	free := []interval.Interval{window}
	for _, b := range busy {
		free = interval.Subtract(free, b)
	}
	return free
}

// firstFit returns the earliest slot of length d inside free.
func firstFit(free []interval.Interval, d time.Duration) (interval.Interval, bool) {
	for _, f := range free {
		if f.Duration() >= d {
			return interval.New(f.Start, f.Start.Add(d)), true
		}
	}
	return interval.Interval{}, false
}

// place tries to put t into free. On success the slot is removed from free.
func place(r *Result, t *task.Task, free []interval.Interval, date time.Time, loc *time.Location) []interval.Interval {
	minutes := t.DurationMinutes()
	if minutes <= 0 {
		r.skipped(t, ReasonNoDuration, "no duration set")
		return free
	}
	slot, ok := firstFit(free, time.Duration(minutes)*time.Minute)
	if !ok {
		r.skipped(t, ReasonNoFit, fmt.Sprintf("no free slot of %d minutes left on %s",
			minutes, date.Format(dateutil.DateLayout)))
		return free
	}
	r.moved(t, slot, loc)
	return interval.Subtract(free, slot)
}

// placeInWindow places t into the part of window not covered by busy and
// returns busy extended with the new block.
func placeInWindow(r *Result, t *task.Task, window interval.Interval, busy []interval.Interval, date time.Time, loc *time.Location) []interval.Interval {
	before := len(r.Moved)
	place(r, t, freeTime(window, busy), date, loc)
	if len(r.Moved) > before {
		last := r.Moved[len(r.Moved)-1]
		busy = append(busy, interval.New(last.NewStart, last.NewEnd))
	}
	return busy
}

// span returns the smallest interval covering every window.
func span(windows map[string]interval.Interval) interval.Interval {
	var bounds interval.Interval
	for _, w := range windows {
		if bounds.Start.IsZero() || w.Start.Before(bounds.Start) {
			bounds.Start = w.Start
		}
		if w.End.After(bounds.End) {
			bounds.End = w.End
		}
	}
	return bounds
}

// compareCandidates orders by priority (1 first), due date (unset last),
// then current start (unset last), then id.
func compareCandidates(a, b *task.Task) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}
	if c := compareOptionalTime(a.DueDate, b.DueDate); c != 0 {
		return c
	}
	if c := compareOptionalTime(a.ScheduledStart, b.ScheduledStart); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return a.Compare(*b)
}

func sortCandidates(tasks []*task.Task) {
	slices.SortStableFunc(tasks, compareCandidates)
}

// clampToNow moves the window start to now, rounded up to the next 15 minutes,
// when now falls inside the window. A zero now leaves the window unchanged.
func clampToNow(window interval.Interval, now time.Time) interval.Interval {
	if now.IsZero() || !now.After(window.Start) {
		return window
	}
	start := roundUpTo15Min(now.In(window.Start.Location()))
	if !start.Before(window.End) {
		return interval.New(window.End, window.End)
	}
	return interval.New(start, window.End)
}

// roundUpTo15Min rounds a time up to the next 15-minute boundary.
func roundUpTo15Min(t time.Time) time.Time {
	remainder := t.Minute() % 15
	if remainder == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t
	}
	return t.Truncate(time.Minute).Add(time.Duration(15-remainder) * time.Minute)
}
