// Package task defines the core domain types for daybook.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/daybook/internal/interval"
)

// Validation errors.
var (
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrInvalidStatus    = errors.New("unknown task status")
	ErrInvalidPriority  = errors.New("priority must be between 1 and 5")
	ErrInvalidEnergy    = errors.New("energy level must be between 1 and 5")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrPartialSchedule  = errors.New("scheduled start and end must be set together")
	ErrEndBeforeStart   = errors.New("end time must be after start time")
	ErrNestedSubtask    = errors.New("subtasks cannot have subtasks")
	ErrScheduledParent  = errors.New("a task with subtasks cannot be scheduled")
	ErrSelfParent       = errors.New("a task cannot be its own parent")
	ErrMissingParent    = errors.New("parent task does not exist")
	ErrMissingUserID    = errors.New("user id cannot be empty")
	ErrMismatchedUserID = errors.New("parent belongs to a different user")
)

// Domain errors.
var (
	ErrTaskNotFound = errors.New("task not found")
)

// Priority and energy bounds. 1 is the most urgent priority.
const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
	MinEnergy       = 1
	MaxEnergy       = 5
	DefaultEnergy   = 3
)

// Status represents the state of a task.
type Status string

const (
	StatusPending     Status = "pending"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

// Valid returns true if the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	default:
		return false
	}
}

// ParseStatus parses a status string, case-insensitively.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Task is a unit of work that may occupy a block of calendar time.
type Task struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	Title               string     `json:"title"`
	Status              Status     `json:"status"`
	Priority            int        `json:"priority"`
	Duration            *int       `json:"duration,omitempty"` // minutes
	ScheduledStart      *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time `json:"scheduled_end,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	Locked              bool       `json:"locked"`
	GroupID             *string    `json:"group_id,omitempty"`
	EnergyLevelRequired int        `json:"energy_level_required"`
	ParentTaskID        *string    `json:"parent_task_id,omitempty"`
	Ignored             bool       `json:"ignored"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// New creates a pending Task with default priority and energy.
func New(userID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if userID == "" {
		return nil, ErrMissingUserID
	}
	now := time.Now()
	return &Task{
		UserID:              userID,
		Title:               title,
		Status:              StatusPending,
		Priority:            DefaultPriority,
		EnergyLevelRequired: DefaultEnergy,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// Validate checks the single-task invariants.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrEmptyTitle
	}
	if t.UserID == "" {
		return ErrMissingUserID
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, t.Status)
	}
	if t.Priority < MinPriority || t.Priority > MaxPriority {
		return fmt.Errorf("%w: got %d", ErrInvalidPriority, t.Priority)
	}
	if t.EnergyLevelRequired < MinEnergy || t.EnergyLevelRequired > MaxEnergy {
		return fmt.Errorf("%w: got %d", ErrInvalidEnergy, t.EnergyLevelRequired)
	}
	if t.Duration != nil && *t.Duration <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDuration, *t.Duration)
	}
	if (t.ScheduledStart == nil) != (t.ScheduledEnd == nil) {
		return ErrPartialSchedule
	}
	if t.ScheduledStart != nil && !t.ScheduledStart.Before(*t.ScheduledEnd) {
		return ErrEndBeforeStart
	}
	if t.ParentTaskID != nil && *t.ParentTaskID == t.ID && t.ID != "" {
		return ErrSelfParent
	}
	return nil
}

// Interval returns the scheduled block. Bounds that are not set stay missing.
func (t *Task) Interval() interval.Interval {
	return interval.FromPtrs(t.ScheduledStart, t.ScheduledEnd)
}

// IsScheduled returns true if both scheduled bounds are set.
func (t *Task) IsScheduled() bool {
	return t.ScheduledStart != nil && t.ScheduledEnd != nil
}

// IsCompleted returns true if the task has completed status.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

// IsCancelled returns true if the task has cancelled status.
func (t *Task) IsCancelled() bool {
	return t.Status == StatusCancelled
}

// IsOpen returns true if the task is neither completed nor cancelled.
func (t *Task) IsOpen() bool {
	return !t.IsCompleted() && !t.IsCancelled()
}

// OccupiesTime returns true if the task blocks its scheduled slot for other work.
// Cancelled and rescheduled tasks release their slot.
func (t *Task) OccupiesTime() bool {
	return t.IsScheduled() && t.Status != StatusCancelled && t.Status != StatusRescheduled
}

// IsSubtask returns true if the task has a parent.
func (t *Task) IsSubtask() bool {
	return t.ParentTaskID != nil
}

// DurationMinutes returns the planned duration, or 0 if not set.
func (t *Task) DurationMinutes() int {
	if t.Duration == nil {
		return 0
	}
	return *t.Duration
}

// InGroups returns true if the task's group is in the given set.
func (t *Task) InGroups(groups map[string]bool) bool {
	return t.GroupID != nil && groups[*t.GroupID]
}

// Schedule sets the task's block.
func (t *Task) Schedule(start, end time.Time) {
	s, e := start, end
	t.ScheduledStart = &s
	t.ScheduledEnd = &e
}

// ParentIDs returns the ids of tasks that have at least one subtask in tasks.
func ParentIDs(tasks []*Task) map[string]bool {
	parents := make(map[string]bool)
	for _, t := range tasks {
		if t.ParentTaskID != nil {
			parents[*t.ParentTaskID] = true
		}
	}
	return parents
}

// ValidateHierarchy checks the cross-task invariants of a snapshot:
// subtasks nest one level deep and parents with subtasks are never scheduled.
func ValidateHierarchy(tasks []*Task) error {
	byID := make(map[string]*Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	for _, t := range tasks {
		if t.ParentTaskID == nil {
			continue
		}
		parent, ok := byID[*t.ParentTaskID]
		if !ok {
			return fmt.Errorf("%w: %q (parent of %q)", ErrMissingParent, *t.ParentTaskID, t.ID)
		}
		if parent.ParentTaskID != nil {
			return fmt.Errorf("%w: %q is a subtask of %q", ErrNestedSubtask, parent.ID, *parent.ParentTaskID)
		}
		if parent.UserID != t.UserID {
			return fmt.Errorf("%w: %q", ErrMismatchedUserID, t.ID)
		}
	}
	for id := range ParentIDs(tasks) {
		if p, ok := byID[id]; ok && p.IsScheduled() {
			return fmt.Errorf("%w: %q", ErrScheduledParent, id)
		}
	}
	return nil
}
