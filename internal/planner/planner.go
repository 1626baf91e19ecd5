// Package planner runs the scheduling core against stored data.
//
// Every call reads one snapshot of a user's tasks, groups and settings, hands
// it to the pure scheduler or layout code, and persists the resulting moves in
// a single batch.
package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/summary"
	"github.com/javiermolinar/daybook/internal/task"
)

// ErrInvalidInput marks caller mistakes such as a bad date or an invalid task.
var ErrInvalidInput = errors.New("invalid input")

// Defaults apply to users without stored settings.
type Defaults struct {
	Timezone   string
	AwakeHours availability.AwakeHours
}

// Service orchestrates load, schedule and persist.
type Service struct {
	repo     task.Repository
	log      *zap.Logger
	defaults Defaults
	now      func() time.Time
}

// New creates a Service. A nil logger discards output.
func New(repo task.Repository, log *zap.Logger, defaults Defaults) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		log:      log,
		defaults: defaults,
		now:      time.Now,
	}
}

// WithClock replaces the clock used to keep placements out of the past.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// PullForwardInput selects the day and group to fill.
type PullForwardInput struct {
	// TargetDate is the day to fill. Zero means today in the effective timezone.
	TargetDate time.Time
	GroupID    string
	// Timezone overrides the user's stored timezone when set.
	Timezone string
	DryRun   bool
}

// AutoScheduleInput selects the day to fill and, optionally, one group.
type AutoScheduleInput struct {
	Date     time.Time
	GroupID  string
	Timezone string
	DryRun   bool
}

// Output is the plan plus the user's tasks after it was applied.
type Output struct {
	*scheduler.Result
	Tasks []*task.Task `json:"tasks"`
}

// PullForward moves future tasks of a group onto the target date.
func (s *Service) PullForward(ctx context.Context, userID string, in PullForwardInput) (*Output, error) {
	if in.GroupID == "" {
		return nil, fmt.Errorf("%w: group id is required", ErrInvalidInput)
	}
	snap, err := s.load(ctx, userID, in.Timezone)
	if err != nil {
		return nil, err
	}

	result, err := scheduler.PullForward(scheduler.Request{
		TargetDate: s.resolveDate(in.TargetDate, snap.settings.Timezone),
		GroupID:    in.GroupID,
		Tasks:      snap.tasks,
		Groups:     snap.groups,
		AwakeHours: snap.settings.AwakeHours,
		Timezone:   snap.settings.Timezone,
		Now:        s.now(),
	})
	if err != nil {
		s.log.Info("pull forward rejected",
			zap.String("user_id", userID),
			zap.String("group_id", in.GroupID),
			zap.Error(err),
		)
		return nil, err
	}

	return s.apply(ctx, userID, "pull forward", result, snap.tasks, in.DryRun)
}

// AutoSchedule places unscheduled tasks of auto-scheduling groups on a date.
func (s *Service) AutoSchedule(ctx context.Context, userID string, in AutoScheduleInput) (*Output, error) {
	snap, err := s.load(ctx, userID, in.Timezone)
	if err != nil {
		return nil, err
	}

	result, err := scheduler.AutoSchedule(scheduler.AutoRequest{
		Date:       s.resolveDate(in.Date, snap.settings.Timezone),
		GroupID:    in.GroupID,
		Tasks:      snap.tasks,
		Groups:     snap.groups,
		AwakeHours: snap.settings.AwakeHours,
		Timezone:   snap.settings.Timezone,
		Now:        s.now(),
	})
	if err != nil {
		s.log.Info("auto schedule rejected", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	return s.apply(ctx, userID, "auto schedule", result, snap.tasks, in.DryRun)
}

// resolveDate returns date, or today in tz when date is zero. An unknown tz
// leaves date unchanged for the caller to reject.
func (s *Service) resolveDate(date time.Time, tz string) time.Time {
	if !date.IsZero() {
		return date
	}
	loc, err := availability.LoadLocation(tz)
	if err != nil {
		return date
	}
	return dateutil.DayOf(s.now(), loc)
}

// DayLayout returns the rendering metadata of one day. A zero date means
// today in the user's effective timezone.
func (s *Service) DayLayout(ctx context.Context, userID string, date time.Time, tz string) (layout.DayLayout, error) {
	st, err := s.Settings(ctx, userID, tz)
	if err != nil {
		return layout.DayLayout{}, err
	}
	loc, err := availability.LoadLocation(st.Timezone)
	if err != nil {
		return layout.DayLayout{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return layout.DayLayout{}, fmt.Errorf("loading tasks: %w", err)
	}
	y, m, d := s.resolveDate(date, st.Timezone).Date()
	return layout.BuildDay(tasks, time.Date(y, m, d, 0, 0, 0, 0, loc), loc), nil
}

// WeekSummary returns the planned and completed time of the week containing
// date, or of the current week when date is zero.
func (s *Service) WeekSummary(ctx context.Context, userID string, date time.Time, tz string) (*summary.WeekSummary, error) {
	st, err := s.Settings(ctx, userID, tz)
	if err != nil {
		return nil, err
	}
	loc, err := availability.LoadLocation(st.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	y, m, d := s.resolveDate(date, st.Timezone).Date()
	return summary.SummarizeWeek(time.Date(y, m, d, 12, 0, 0, 0, loc), loc, tasks, st.AwakeHours), nil
}

// Settings returns the effective settings of userID: stored values, or the
// defaults when none are stored. A non-empty tz overrides the timezone.
func (s *Service) Settings(ctx context.Context, userID, tz string) (*task.Settings, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, task.ErrMissingUserID)
	}
	st, err := s.repo.GetSettings(ctx, userID)
	switch {
	case errors.Is(err, task.ErrSettingsNotFound):
		st = &task.Settings{
			UserID:     userID,
			Timezone:   s.defaults.Timezone,
			AwakeHours: s.defaults.AwakeHours,
		}
	case err != nil:
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if tz != "" {
		st.Timezone = tz
	}
	return st, nil
}

// SaveSettings validates and stores a user's settings.
func (s *Service) SaveSettings(ctx context.Context, st *task.Settings) error {
	if err := st.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return s.repo.SaveSettings(ctx, st)
}

// CreateTask validates and stores a new task.
func (s *Service) CreateTask(ctx context.Context, t *task.Task) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.repo.CreateTask(ctx, t); err != nil {
		if isValidation(err) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return err
	}
	s.log.Debug("task created", zap.String("user_id", t.UserID), zap.String("task_id", t.ID))
	return nil
}

// ListTasks returns all tasks of userID.
func (s *Service) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	return s.repo.ListTasks(ctx, userID)
}

// SetStatus changes the status of one task.
func (s *Service) SetStatus(ctx context.Context, userID, id string, status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidInput, task.ErrInvalidStatus, status)
	}
	return s.repo.SetStatus(ctx, userID, id, status)
}

// MoveTask schedules one task at an explicit time. Locked tasks may be moved
// by hand; tasks with subtasks may not be scheduled at all.
func (s *Service) MoveTask(ctx context.Context, userID, id string, start, end time.Time) (*task.Task, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, task.ErrEndBeforeStart)
	}
	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	if task.ParentIDs(tasks)[id] {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, task.ErrScheduledParent)
	}

	update := task.TimeUpdate{ID: id, NewStart: start, NewEnd: end}
	if err := s.repo.ApplyTimeUpdates(ctx, userID, []task.TimeUpdate{update}); err != nil {
		return nil, err
	}
	s.log.Info("task moved",
		zap.String("user_id", userID),
		zap.String("task_id", id),
		zap.Time("start", start),
		zap.Time("end", end),
	)
	return s.repo.GetTask(ctx, userID, id)
}

// CreateGroup validates and stores a new group.
func (s *Service) CreateGroup(ctx context.Context, g *task.Group) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		if errors.Is(err, task.ErrGroupNotFound) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		return err
	}
	s.log.Debug("group created", zap.String("user_id", g.UserID), zap.String("group_id", g.ID))
	return nil
}

// ListGroups returns all groups of userID.
func (s *Service) ListGroups(ctx context.Context, userID string) ([]*task.Group, error) {
	return s.repo.ListGroups(ctx, userID)
}

type snapshot struct {
	tasks    []*task.Task
	groups   []*task.Group
	settings *task.Settings
}

func (s *Service) load(ctx context.Context, userID, tz string) (*snapshot, error) {
	st, err := s.Settings(ctx, userID, tz)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tasks: %w", err)
	}
	groups, err := s.repo.ListGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading groups: %w", err)
	}
	if err := task.ValidateHierarchy(tasks); err != nil {
		s.log.Warn("task hierarchy is inconsistent", zap.String("user_id", userID), zap.Error(err))
	}
	return &snapshot{tasks: tasks, groups: groups, settings: st}, nil
}

// apply persists the moves of result and returns the refreshed tasks.
func (s *Service) apply(ctx context.Context, userID, op string, result *scheduler.Result, before []*task.Task, dryRun bool) (*Output, error) {
	fields := []zap.Field{
		zap.String("user_id", userID),
		zap.Int("moved", len(result.Moved)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Bool("dry_run", dryRun),
	}
	if dryRun || len(result.Moved) == 0 {
		s.log.Info(op, fields...)
		return newOutput(result, before), nil
	}

	if err := s.repo.ApplyTimeUpdates(ctx, userID, result.TimeUpdates()); err != nil {
		s.log.Error(op+" failed to persist", append(fields, zap.Error(err))...)
		return nil, fmt.Errorf("saving moves: %w", err)
	}
	s.log.Info(op, fields...)

	tasks, err := s.repo.ListTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reloading tasks: %w", err)
	}
	return newOutput(result, tasks), nil
}

func newOutput(result *scheduler.Result, tasks []*task.Task) *Output {
	if tasks == nil {
		tasks = []*task.Task{}
	}
	return &Output{Result: result, Tasks: tasks}
}

var validationErrors = []error{
	task.ErrEmptyTitle,
	task.ErrInvalidStatus,
	task.ErrInvalidPriority,
	task.ErrInvalidEnergy,
	task.ErrInvalidDuration,
	task.ErrPartialSchedule,
	task.ErrEndBeforeStart,
	task.ErrNestedSubtask,
	task.ErrScheduledParent,
	task.ErrSelfParent,
	task.ErrMissingParent,
	task.ErrMissingUserID,
	task.ErrMismatchedUserID,
}

func isValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
