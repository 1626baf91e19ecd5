package summary

import (
	"testing"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/task"
)

func scheduled(id, groupID string, status task.Status, start time.Time, minutes int) *task.Task {
	t := &task.Task{ID: id, UserID: "u1", Title: id, Status: status, Priority: 3}
	if groupID != "" {
		t.GroupID = &groupID
	}
	t.Schedule(start, start.Add(time.Duration(minutes)*time.Minute))
	return t
}

func TestSummarizeWeek(t *testing.T) {
	monday := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC)
	at := func(day, hour int) time.Time { return monday.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour) }

	parent := &task.Task{ID: "launch", UserID: "u1", Title: "Launch", Status: task.StatusPending, Priority: 1}
	sub := scheduled("draft", "deep", task.StatusPending, at(0, 13), 30)
	sub.ParentTaskID = &parent.ID

	tasks := []*task.Task{
		parent,
		sub,
		scheduled("write", "deep", task.StatusPending, at(0, 9), 60),
		scheduled("mail", "admin", task.StatusCompleted, at(1, 10), 30),
		scheduled("call", "admin", task.StatusCancelled, at(1, 11), 60),
		scheduled("gym", "", task.StatusRescheduled, at(2, 18), 60),
		scheduled("next", "deep", task.StatusPending, at(7, 9), 60),
	}
	hours := availability.AwakeHours{
		"monday":  {Start: 9, End: 17},
		"tuesday": {Start: 9, End: 12},
	}

	// A Wednesday evening in the middle of the week.
	summary := SummarizeWeek(at(2, 20), time.UTC, tasks, hours)

	if !summary.Start.Equal(monday) || !summary.End.Equal(sunday) {
		t.Fatalf("range = %v - %v, want %v - %v", summary.Start, summary.End, monday, sunday)
	}
	if len(summary.Tasks) != 5 {
		t.Fatalf("tasks = %d, want 5", len(summary.Tasks))
	}

	stats := summary.Stats
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"available", stats.AvailableMinutes, 11 * 60},
		{"planned", stats.PlannedMinutes, 90},
		{"completed", stats.CompletedMinutes, 30},
		{"blocks", stats.TotalBlocks, 5},
		{"cancelled", stats.CancelledBlocks, 1},
		{"rescheduled", stats.RescheduledBlocks, 1},
		{"deep minutes", stats.GroupMinutes["deep"], 90},
		{"admin minutes", stats.GroupMinutes["admin"], 30},
		{"monday free", stats.Days[0].FreeMinutes(), 8*60 - 90},
		{"tuesday free", stats.Days[1].FreeMinutes(), 3*60 - 30},
		{"completed percent", stats.CompletedPercent(), 25},
		{"load percent", stats.LoadPercent(), 18},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}

	day, minutes := stats.BusiestDay()
	if day != 0 || minutes != 90 {
		t.Errorf("BusiestDay() = %d, %d; want 0, 90", day, minutes)
	}
}

func TestSummarizeWeek_Timezone(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	// Sunday 23:30 UTC is already Monday in Berlin.
	late := scheduled("late", "", task.StatusPending, time.Date(2025, 1, 12, 23, 30, 0, 0, time.UTC), 30)

	summary := SummarizeWeek(time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC), berlin, []*task.Task{late}, nil)
	if summary.Timezone != "Europe/Berlin" {
		t.Errorf("timezone = %s", summary.Timezone)
	}
	if summary.Stats.Days[0].PlannedMinutes != 30 {
		t.Errorf("monday planned = %d, want 30", summary.Stats.Days[0].PlannedMinutes)
	}

	summary = SummarizeWeek(time.Date(2025, 1, 13, 12, 0, 0, 0, time.UTC), time.UTC, []*task.Task{late}, nil)
	if summary.Stats.TotalBlocks != 0 {
		t.Errorf("expected the task in the previous UTC week, got %d blocks", summary.Stats.TotalBlocks)
	}
}

func TestBusiestDay_Empty(t *testing.T) {
	day, minutes := WeekStats{}.BusiestDay()
	if day != -1 || minutes != 0 {
		t.Errorf("BusiestDay() = %d, %d; want -1, 0", day, minutes)
	}
}
