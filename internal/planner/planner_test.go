package planner_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/planner"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/task"
)

// MockRepository is a testify mock of task.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockRepository) GetTask(ctx context.Context, userID, id string) (*task.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockRepository) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockRepository) CreateGroup(ctx context.Context, g *task.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockRepository) ListGroups(ctx context.Context, userID string) ([]*task.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Group), args.Error(1)
}

func (m *MockRepository) SetStatus(ctx context.Context, userID, id string, status task.Status) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *MockRepository) ApplyTimeUpdates(ctx context.Context, userID string, updates []task.TimeUpdate) error {
	args := m.Called(ctx, userID, updates)
	return args.Error(0)
}

func (m *MockRepository) GetSettings(ctx context.Context, userID string) (*task.Settings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Settings), args.Error(1)
}

func (m *MockRepository) SaveSettings(ctx context.Context, s *task.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockRepository) Close() error {
	return m.Called().Error(0)
}

var _ task.Repository = (*MockRepository)(nil)

func ptr[T any](v T) *T { return &v }

// 2025-01-06 is a Monday.
var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func defaults() planner.Defaults {
	return planner.Defaults{
		Timezone:   "UTC",
		AwakeHours: availability.AwakeHours{"monday": {Start: 9, End: 17}},
	}
}

func fixedClock() time.Time { return time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC) }

func futureTask(id string, day, priority, minutes int) *task.Task {
	t := &task.Task{
		ID: id, UserID: "u1", Title: id, Status: task.StatusPending,
		Priority: priority, Duration: ptr(minutes), GroupID: ptr("home"), EnergyLevelRequired: 3,
	}
	start := time.Date(2025, 1, day, 10, 0, 0, 0, time.UTC)
	t.Schedule(start, start.Add(time.Duration(minutes)*time.Minute))
	return t
}

func homeGroups() []*task.Group {
	return []*task.Group{{ID: "home", UserID: "u1", Name: "Home"}}
}

func newService(repo *MockRepository) *planner.Service {
	return planner.New(repo, nil, defaults()).WithClock(fixedClock)
}

func TestService_PullForward(t *testing.T) {
	tasks := []*task.Task{futureTask("a", 8, 1, 60), futureTask("b", 9, 2, 30)}
	refreshed := []*task.Task{futureTask("a", 6, 1, 60), futureTask("b", 6, 2, 30)}

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return(tasks, nil).Once()
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)
	repo.On("ApplyTimeUpdates", mock.Anything, "u1", mock.MatchedBy(func(u []task.TimeUpdate) bool {
		return len(u) == 2 && u[0].ID == "a" && u[0].NewStart.Equal(monday.Add(9*time.Hour))
	})).Return(nil)
	repo.On("ListTasks", mock.Anything, "u1").Return(refreshed, nil).Once()

	out, err := newService(repo).PullForward(context.Background(), "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "home",
	})

	require.NoError(t, err)
	assert.Len(t, out.Moved, 2)
	assert.Equal(t, refreshed, out.Tasks)
	assert.Contains(t, out.Feedback[0], "Placed 2 of 2")
	repo.AssertExpectations(t)
}

func TestService_PullForward_DryRun(t *testing.T) {
	tasks := []*task.Task{futureTask("a", 8, 1, 60)}

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return(tasks, nil).Once()
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)

	out, err := newService(repo).PullForward(context.Background(), "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "home",
		DryRun:     true,
	})

	require.NoError(t, err)
	assert.Len(t, out.Moved, 1)
	repo.AssertNotCalled(t, "ApplyTimeUpdates", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertExpectations(t)
}

func TestService_PullForward_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     planner.PullForwardInput
		settings  *task.Settings
		wantErr   error
		wantCalls bool
	}{
		{
			name:    "missing group id",
			input:   planner.PullForwardInput{TargetDate: monday},
			wantErr: planner.ErrInvalidInput,
		},
		{
			name:      "unknown group",
			input:     planner.PullForwardInput{TargetDate: monday, GroupID: "nope"},
			wantErr:   scheduler.ErrNotFound,
			wantCalls: true,
		},
		{
			name:      "no awake hours on the day",
			input:     planner.PullForwardInput{TargetDate: monday.AddDate(0, 0, 1), GroupID: "home"},
			wantErr:   scheduler.ErrNoAvailability,
			wantCalls: true,
		},
		{
			name:      "stored settings without hours",
			input:     planner.PullForwardInput{TargetDate: monday, GroupID: "home"},
			settings:  &task.Settings{UserID: "u1", Timezone: "UTC"},
			wantErr:   scheduler.ErrNoAvailability,
			wantCalls: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			if tt.wantCalls {
				if tt.settings != nil {
					repo.On("GetSettings", mock.Anything, "u1").Return(tt.settings, nil)
				} else {
					repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
				}
				repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{}, nil)
				repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)
			}

			out, err := newService(repo).PullForward(context.Background(), "u1", tt.input)

			assert.Nil(t, out)
			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "ApplyTimeUpdates", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestService_PullForward_PersistFailure(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{futureTask("a", 8, 1, 60)}, nil)
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)
	repo.On("ApplyTimeUpdates", mock.Anything, "u1", mock.Anything).Return(task.ErrTaskNotFound)

	out, err := newService(repo).PullForward(context.Background(), "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "home",
	})

	assert.Nil(t, out)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestService_PullForward_TimezoneOverride(t *testing.T) {
	stored := &task.Settings{
		UserID:     "u1",
		Timezone:   "UTC",
		AwakeHours: availability.AwakeHours{"monday": {Start: 9, End: 17}},
	}
	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(stored, nil)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{futureTask("a", 8, 1, 60)}, nil)
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)

	out, err := newService(repo).PullForward(context.Background(), "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "home",
		Timezone:   "America/New_York",
		DryRun:     true,
	})

	require.NoError(t, err)
	require.Len(t, out.Moved, 1)
	// 09:00 in New York is 14:00 UTC in January.
	assert.True(t, out.Moved[0].NewStart.Equal(monday.Add(14*time.Hour)), "got %v", out.Moved[0].NewStart)
}

func TestService_AutoSchedule(t *testing.T) {
	groups := []*task.Group{{
		ID: "deep", UserID: "u1", Name: "Deep", AutoScheduleEnabled: true,
		AutoScheduleHours: availability.AwakeHours{"monday": {Start: 10, End: 12}},
	}}
	inbox := &task.Task{
		ID: "write", UserID: "u1", Title: "write", Status: task.StatusPending,
		Priority: 2, Duration: ptr(45), GroupID: ptr("deep"), EnergyLevelRequired: 3,
	}

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{inbox}, nil)
	repo.On("ListGroups", mock.Anything, "u1").Return(groups, nil)
	repo.On("ApplyTimeUpdates", mock.Anything, "u1", mock.Anything).Return(nil)

	out, err := newService(repo).AutoSchedule(context.Background(), "u1", planner.AutoScheduleInput{Date: monday})

	require.NoError(t, err)
	require.Len(t, out.Moved, 1)
	assert.True(t, out.Moved[0].NewStart.Equal(monday.Add(10*time.Hour)))
	repo.AssertCalled(t, "ApplyTimeUpdates", mock.Anything, "u1", mock.Anything)
}

func TestService_DayLayout(t *testing.T) {
	host := &task.Task{ID: "host", UserID: "u1", Title: "host", Status: task.StatusPending, Priority: 3}
	host.Schedule(monday.Add(9*time.Hour), monday.Add(12*time.Hour))
	guest := &task.Task{ID: "guest", UserID: "u1", Title: "guest", Status: task.StatusPending, Priority: 3}
	guest.Schedule(monday.Add(10*time.Hour), monday.Add(10*time.Hour+30*time.Minute))

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{host, guest}, nil)

	day, err := newService(repo).DayLayout(context.Background(), "u1", monday, "")

	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", day.Date)
	require.Len(t, day.Tasks, 2)
	assert.Equal(t, "host", day.Tasks[0].Task.ID)
	assert.Len(t, day.Tasks[0].Blocks, 2)
	assert.Equal(t, "host", day.Tasks[1].HostID)
}

func TestService_ZeroDateIsTodayInUserTimezone(t *testing.T) {
	// 23:47 UTC on the 17th is already the 18th in Kiritimati (UTC+14).
	clock := func() time.Time { return time.Date(2026, 10, 17, 23, 47, 0, 0, time.UTC) }
	stored := &task.Settings{
		UserID:     "u1",
		Timezone:   "UTC",
		AwakeHours: availability.AwakeHours{"sunday": {Start: 9, End: 17}},
	}
	next := &task.Task{
		ID: "next", UserID: "u1", Title: "next", Status: task.StatusPending,
		Priority: 1, Duration: ptr(30), GroupID: ptr("home"), EnergyLevelRequired: 3,
	}
	nextStart := time.Date(2026, 10, 20, 10, 0, 0, 0, time.UTC)
	next.Schedule(nextStart, nextStart.Add(30*time.Minute))

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(stored, nil)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{next}, nil)
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)
	svc := planner.New(repo, nil, defaults()).WithClock(clock)

	day, err := svc.DayLayout(context.Background(), "u1", time.Time{}, "Pacific/Kiritimati")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-18", day.Date)

	out, err := svc.PullForward(context.Background(), "u1", planner.PullForwardInput{
		GroupID:  "home",
		Timezone: "Pacific/Kiritimati",
		DryRun:   true,
	})
	require.NoError(t, err)
	require.Len(t, out.Moved, 1)
	// Sunday 14:00 in Kiritimati, the first quarter hour after now.
	want := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	assert.True(t, out.Moved[0].NewStart.Equal(want), "got %v", out.Moved[0].NewStart)
}

func TestService_EmptyPlanEncodesLists(t *testing.T) {
	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return(nil, nil)
	repo.On("ListGroups", mock.Anything, "u1").Return(homeGroups(), nil)

	out, err := newService(repo).PullForward(context.Background(), "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "home",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"movedTasks":[]`)
	assert.Contains(t, string(raw), `"skipped":[]`)
	assert.Contains(t, string(raw), `"tasks":[]`)
	repo.AssertNotCalled(t, "ApplyTimeUpdates", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_CreateTask(t *testing.T) {
	repo := new(MockRepository)
	svc := newService(repo)

	err := svc.CreateTask(context.Background(), &task.Task{UserID: "u1", Status: task.StatusPending, Priority: 3, EnergyLevelRequired: 3})
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)

	valid := &task.Task{UserID: "u1", Title: "Call bank", Status: task.StatusPending, Priority: 3, EnergyLevelRequired: 3}
	repo.On("CreateTask", mock.Anything, valid).Return(nil).Once()
	require.NoError(t, svc.CreateTask(context.Background(), valid))

	sub := &task.Task{UserID: "u1", Title: "Sub", Status: task.StatusPending, Priority: 3, EnergyLevelRequired: 3, ParentTaskID: ptr("x")}
	repo.On("CreateTask", mock.Anything, sub).Return(task.ErrMissingParent).Once()
	assert.ErrorIs(t, svc.CreateTask(context.Background(), sub), planner.ErrInvalidInput)

	repo.On("CreateTask", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()
	err = svc.CreateTask(context.Background(), &task.Task{UserID: "u1", Title: "x", Status: task.StatusPending, Priority: 3, EnergyLevelRequired: 3})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, planner.ErrInvalidInput)
}

func TestService_Settings(t *testing.T) {
	repo := new(MockRepository)
	svc := newService(repo)

	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound).Once()
	st, err := svc.Settings(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, "UTC", st.Timezone)
	assert.NotNil(t, st.AwakeHours["monday"])

	_, err = svc.Settings(context.Background(), "", "")
	assert.ErrorIs(t, err, planner.ErrInvalidInput)

	err = svc.SaveSettings(context.Background(), &task.Settings{UserID: "u1", Timezone: "Moon/Base"})
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
	repo.AssertNotCalled(t, "SaveSettings", mock.Anything, mock.Anything)
}

func TestService_SetStatus(t *testing.T) {
	repo := new(MockRepository)
	repo.On("SetStatus", mock.Anything, "u1", "t1", task.StatusCompleted).Return(nil)
	svc := newService(repo)

	require.NoError(t, svc.SetStatus(context.Background(), "u1", "t1", task.StatusCompleted))
	assert.ErrorIs(t, svc.SetStatus(context.Background(), "u1", "t1", "archived"), planner.ErrInvalidInput)
}

func TestService_MoveTask(t *testing.T) {
	parent := &task.Task{ID: "p", UserID: "u1", Title: "p", Status: task.StatusPending, Priority: 3}
	sub := &task.Task{ID: "s", UserID: "u1", Title: "s", Status: task.StatusPending, Priority: 3, ParentTaskID: ptr("p")}
	start, end := monday.Add(14*time.Hour), monday.Add(15*time.Hour)
	moved := &task.Task{ID: "s", UserID: "u1", Title: "s", Status: task.StatusPending, Priority: 3, ParentTaskID: ptr("p")}
	moved.Schedule(start, end)

	repo := new(MockRepository)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{parent, sub}, nil)
	repo.On("ApplyTimeUpdates", mock.Anything, "u1", []task.TimeUpdate{{ID: "s", NewStart: start, NewEnd: end}}).Return(nil).Once()
	repo.On("GetTask", mock.Anything, "u1", "s").Return(moved, nil).Once()
	svc := newService(repo)

	got, err := svc.MoveTask(context.Background(), "u1", "s", start, end)
	require.NoError(t, err)
	assert.Equal(t, moved, got)

	_, err = svc.MoveTask(context.Background(), "u1", "p", start, end)
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
	assert.ErrorIs(t, err, task.ErrScheduledParent)

	_, err = svc.MoveTask(context.Background(), "u1", "s", end, start)
	assert.ErrorIs(t, err, task.ErrEndBeforeStart)

	repo.AssertExpectations(t)
}

func TestService_WeekSummary(t *testing.T) {
	done := &task.Task{ID: "a", UserID: "u1", Title: "a", Status: task.StatusCompleted, Priority: 3, GroupID: ptr("home")}
	done.Schedule(monday.Add(9*time.Hour), monday.Add(10*time.Hour))
	open := futureTask("b", 8, 2, 30)

	repo := new(MockRepository)
	repo.On("GetSettings", mock.Anything, "u1").Return(nil, task.ErrSettingsNotFound)
	repo.On("ListTasks", mock.Anything, "u1").Return([]*task.Task{done, open}, nil)

	// Any day of the week gives the same summary.
	week, err := newService(repo).WeekSummary(context.Background(), "u1", monday.AddDate(0, 0, 3), "")

	require.NoError(t, err)
	assert.True(t, week.Start.Equal(monday))
	assert.Equal(t, "UTC", week.Timezone)
	assert.Equal(t, 8*60, week.Stats.AvailableMinutes)
	assert.Equal(t, 60, week.Stats.CompletedMinutes)
	assert.Equal(t, 30, week.Stats.PlannedMinutes)
	assert.Equal(t, 90, week.Stats.GroupMinutes["home"])

	_, err = newService(repo).WeekSummary(context.Background(), "u1", monday, "Moon/Base")
	assert.ErrorIs(t, err, planner.ErrInvalidInput)
}
