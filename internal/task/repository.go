package task

import (
	"context"
	"time"
)

// TimeUpdate represents a task time change for batch updates.
type TimeUpdate struct {
	ID       string
	NewStart time.Time
	NewEnd   time.Time
}

// Repository defines the storage interface for tasks and groups.
type Repository interface {
	// CreateTask adds a new task. An empty ID is filled in.
	CreateTask(ctx context.Context, task *Task) error

	// GetTask retrieves a task owned by userID. Returns ErrTaskNotFound if missing.
	GetTask(ctx context.Context, userID, id string) (*Task, error)

	// ListTasks returns every task owned by userID.
	ListTasks(ctx context.Context, userID string) ([]*Task, error)

	// CreateGroup adds a new group. An empty ID is filled in.
	CreateGroup(ctx context.Context, group *Group) error

	// ListGroups returns every group owned by userID.
	ListGroups(ctx context.Context, userID string) ([]*Group, error)

	// SetStatus changes the status of a task owned by userID.
	SetStatus(ctx context.Context, userID, id string, status Status) error

	// ApplyTimeUpdates writes new scheduled times for tasks owned by userID.
	// All updates are applied in one transaction; if any task is missing or
	// owned by someone else, nothing is written and ErrTaskNotFound is returned.
	// Applying the same updates twice leaves the same state.
	ApplyTimeUpdates(ctx context.Context, userID string, updates []TimeUpdate) error

	// GetSettings returns the stored settings of userID, or ErrSettingsNotFound.
	GetSettings(ctx context.Context, userID string) (*Settings, error)

	// SaveSettings creates or replaces the settings of s.UserID.
	SaveSettings(ctx context.Context, s *Settings) error

	// Close releases any resources held by the repository.
	Close() error
}
