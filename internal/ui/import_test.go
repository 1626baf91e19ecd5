package ui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/db"
	"github.com/javiermolinar/daybook/internal/task"
)

func TestImportUser(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	sourcePath := filepath.Join(dir, "source.db")
	destPath := filepath.Join(dir, "dest.db")

	sourceRepo, err := db.New(sourcePath)
	if err != nil {
		t.Fatalf("creating source repo: %v", err)
	}

	// Names sort children before parents to check ordering.
	work := &task.Group{UserID: "u1", Name: "Work", IsParentGroup: true}
	if err := sourceRepo.CreateGroup(ctx, work); err != nil {
		t.Fatalf("CreateGroup (work) failed: %v", err)
	}
	deep := &task.Group{UserID: "u1", Name: "Deep", ParentGroupID: &work.ID, AutoScheduleEnabled: true}
	if err := sourceRepo.CreateGroup(ctx, deep); err != nil {
		t.Fatalf("CreateGroup (deep) failed: %v", err)
	}

	parent, _ := task.New("u1", "Release")
	parent.GroupID = &deep.ID
	if err := sourceRepo.CreateTask(ctx, parent); err != nil {
		t.Fatalf("CreateTask (parent) failed: %v", err)
	}
	child, _ := task.New("u1", "Changelog")
	child.ParentTaskID = &parent.ID
	child.GroupID = &deep.ID
	start := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	child.Schedule(start, start.Add(time.Hour))
	if err := sourceRepo.CreateTask(ctx, child); err != nil {
		t.Fatalf("CreateTask (child) failed: %v", err)
	}

	other, _ := task.New("u2", "Not mine")
	if err := sourceRepo.CreateTask(ctx, other); err != nil {
		t.Fatalf("CreateTask (other) failed: %v", err)
	}

	settings := &task.Settings{
		UserID:     "u1",
		Timezone:   "Europe/Madrid",
		AwakeHours: availability.AwakeHours{"monday": {Start: 8, End: 14}},
	}
	if err := sourceRepo.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	_ = sourceRepo.Close()

	destRepo, err := db.New(destPath)
	if err != nil {
		t.Fatalf("creating destination repo: %v", err)
	}
	defer func() { _ = destRepo.Close() }()

	stats, err := importUser(ctx, destRepo, sourcePath, "u1")
	if err != nil {
		t.Fatalf("importUser failed: %v", err)
	}
	if stats.groups != 2 || stats.tasks != 2 {
		t.Fatalf("expected 2 groups and 2 tasks, got %+v", stats)
	}

	tasks, err := destRepo.ListTasks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks in destination, got %d", len(tasks))
	}
	imported, err := destRepo.GetTask(ctx, "u1", child.ID)
	if err != nil {
		t.Fatalf("GetTask (child) failed: %v", err)
	}
	if imported.ParentTaskID == nil || *imported.ParentTaskID != parent.ID {
		t.Errorf("subtask lost its parent: %v", imported.ParentTaskID)
	}
	if !imported.ScheduledStart.Equal(start) {
		t.Errorf("scheduled start = %v, want %v", imported.ScheduledStart, start)
	}

	others, err := destRepo.ListTasks(ctx, "u2")
	if err != nil {
		t.Fatalf("ListTasks (u2) failed: %v", err)
	}
	if len(others) != 0 {
		t.Errorf("imported %d tasks of another user", len(others))
	}

	st, err := destRepo.GetSettings(ctx, "u1")
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if st.Timezone != "Europe/Madrid" {
		t.Errorf("timezone = %q, want Europe/Madrid", st.Timezone)
	}

	if _, err := importUser(ctx, destRepo, sourcePath, "u1"); err == nil {
		t.Error("expected second import to fail on duplicate ids")
	}
}

func TestResolvePath(t *testing.T) {
	if _, err := resolvePath("  "); err == nil {
		t.Error("expected error for empty path")
	}
	got, err := resolvePath("data/daybook.db")
	if err != nil {
		t.Fatalf("resolvePath failed: %v", err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("expected absolute path, got %q", got)
	}
}
