package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/httpapi"
	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/planner"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/summary"
	"github.com/javiermolinar/daybook/internal/task"
)

type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) PullForward(ctx context.Context, userID string, in planner.PullForwardInput) (*planner.Output, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planner.Output), args.Error(1)
}

func (m *MockPlanner) AutoSchedule(ctx context.Context, userID string, in planner.AutoScheduleInput) (*planner.Output, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planner.Output), args.Error(1)
}

func (m *MockPlanner) DayLayout(ctx context.Context, userID string, date time.Time, tz string) (layout.DayLayout, error) {
	args := m.Called(ctx, userID, date, tz)
	return args.Get(0).(layout.DayLayout), args.Error(1)
}

func (m *MockPlanner) Settings(ctx context.Context, userID, tz string) (*task.Settings, error) {
	args := m.Called(ctx, userID, tz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Settings), args.Error(1)
}

func (m *MockPlanner) SaveSettings(ctx context.Context, s *task.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockPlanner) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockPlanner) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockPlanner) SetStatus(ctx context.Context, userID, id string, status task.Status) error {
	args := m.Called(ctx, userID, id, status)
	return args.Error(0)
}

func (m *MockPlanner) CreateGroup(ctx context.Context, g *task.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockPlanner) ListGroups(ctx context.Context, userID string) ([]*task.Group, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Group), args.Error(1)
}

func (m *MockPlanner) WeekSummary(ctx context.Context, userID string, date time.Time, tz string) (*summary.WeekSummary, error) {
	args := m.Called(ctx, userID, date, tz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*summary.WeekSummary), args.Error(1)
}

func (m *MockPlanner) MoveTask(ctx context.Context, userID, id string, start, end time.Time) (*task.Task, error) {
	args := m.Called(ctx, userID, id, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

var monday = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

func newRouter(p *MockPlanner) http.Handler {
	return httpapi.NewRouter(p, zap.NewNop(), 5*time.Second)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Error     string   `json:"error"`
	Feedback  []string `json:"feedback"`
	RequestID string   `json:"request_id"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestPullForward_Success(t *testing.T) {
	mockPlanner := new(MockPlanner)
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	out := &planner.Output{
		Result: &scheduler.Result{
			Moved: []scheduler.Move{
				{TaskID: "t1", Title: "Write report", NewStart: start, NewEnd: start.Add(30 * time.Minute)},
			},
			Skipped:  []scheduler.Skip{},
			Feedback: []string{"Placed 1 of 1 tasks on 2025-01-06"},
		},
		Tasks: []*task.Task{},
	}
	mockPlanner.On("PullForward", mock.Anything, "u1", planner.PullForwardInput{
		TargetDate: monday,
		GroupID:    "work",
		DryRun:     true,
	}).Return(out, nil)

	rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/pull-forward",
		`{"targetDate":"2025-01-06","groupId":"work","dryRun":true}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var body struct {
		MovedTasks []scheduler.Move `json:"movedTasks"`
		Feedback   []string         `json:"feedback"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.MovedTasks, 1)
	assert.Equal(t, "t1", body.MovedTasks[0].TaskID)
	assert.True(t, body.MovedTasks[0].NewStart.Equal(start))
	assert.Equal(t, []string{"Placed 1 of 1 tasks on 2025-01-06"}, body.Feedback)
	mockPlanner.AssertExpectations(t)
}

func TestPullForward_Errors(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		err          error
		wantCode     int
		wantFeedback []string
	}{
		{
			name:     "malformed body",
			body:     `{"targetDate":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown field",
			body:     `{"targetDate":"2025-01-06","groupId":"work","extra":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing group",
			body:     `{"targetDate":"2025-01-06"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "bad date",
			body:     `{"targetDate":"06/01/2025","groupId":"work"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "unknown group",
			body: `{"targetDate":"2025-01-06","groupId":"work"}`,
			err: &scheduler.Error{
				Kind:     scheduler.KindNotFound,
				Message:  `group "work" not found`,
				Feedback: []string{`Group "work" not found`},
			},
			wantCode:     http.StatusNotFound,
			wantFeedback: []string{`Group "work" not found`},
		},
		{
			name: "no availability",
			body: `{"targetDate":"2025-01-06","groupId":"work"}`,
			err: &scheduler.Error{
				Kind:     scheduler.KindNoAvailability,
				Message:  "no availability on Monday",
				Feedback: []string{"No availability on Monday"},
			},
			wantCode:     http.StatusUnprocessableEntity,
			wantFeedback: []string{"No availability on Monday"},
		},
		{
			name: "invalid timezone",
			body: `{"targetDate":"2025-01-06","groupId":"work"}`,
			err: &scheduler.Error{
				Kind:    scheduler.KindInvalidRequest,
				Message: "unknown timezone",
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "storage failure",
			body:     `{"targetDate":"2025-01-06","groupId":"work"}`,
			err:      errors.New("disk full"),
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlanner := new(MockPlanner)
			if tt.err != nil {
				mockPlanner.On("PullForward", mock.Anything, "u1", mock.Anything).Return(nil, tt.err)
			}

			rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/pull-forward", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec)
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, rec.Header().Get("X-Request-ID"), body.RequestID)
			assert.Equal(t, tt.wantFeedback, body.Feedback)
			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, body.Error, "disk full")
			}
			mockPlanner.AssertExpectations(t)
		})
	}
}

func TestAutoSchedule(t *testing.T) {
	mockPlanner := new(MockPlanner)
	mockPlanner.On("AutoSchedule", mock.Anything, "u1", planner.AutoScheduleInput{
		Date:     monday,
		Timezone: "Europe/Berlin",
	}).Return(&planner.Output{
		Result: &scheduler.Result{Feedback: []string{"No unscheduled tasks to place"}},
	}, nil)

	rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/auto-schedule",
		`{"date":"2025-01-06","timezone":"Europe/Berlin"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No unscheduled tasks to place")
	mockPlanner.AssertExpectations(t)
}

func TestLayout(t *testing.T) {
	mockPlanner := new(MockPlanner)
	mockPlanner.On("DayLayout", mock.Anything, "u1", monday, "UTC").
		Return(layout.DayLayout{Date: "2025-01-06", Timezone: "UTC", Tasks: []layout.TaskLayout{}}, nil)

	router := newRouter(mockPlanner)

	rec := do(t, router, http.MethodGet, "/api/users/u1/layout?date=2025-01-06&tz=UTC", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"date":"2025-01-06","timezone":"UTC","tasks":[]}`, rec.Body.String())

	rec = do(t, router, http.MethodGet, "/api/users/u1/layout?date=tomorrow", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockPlanner.AssertExpectations(t)
}

func TestEmptyDateIsResolvedByPlanner(t *testing.T) {
	zero := mock.MatchedBy(func(d time.Time) bool { return d.IsZero() })

	mockPlanner := new(MockPlanner)
	mockPlanner.On("DayLayout", mock.Anything, "u1", zero, "Pacific/Kiritimati").
		Return(layout.DayLayout{Date: "2026-10-18", Timezone: "Pacific/Kiritimati", Tasks: []layout.TaskLayout{}}, nil)
	mockPlanner.On("WeekSummary", mock.Anything, "u1", zero, "Pacific/Kiritimati").
		Return(&summary.WeekSummary{Timezone: "Pacific/Kiritimati", Tasks: []*task.Task{}}, nil)
	mockPlanner.On("PullForward", mock.Anything, "u1", mock.MatchedBy(func(in planner.PullForwardInput) bool {
		return in.TargetDate.IsZero() && in.GroupID == "work"
	})).Return(&planner.Output{Result: &scheduler.Result{}, Tasks: []*task.Task{}}, nil)
	mockPlanner.On("AutoSchedule", mock.Anything, "u1", mock.MatchedBy(func(in planner.AutoScheduleInput) bool {
		return in.Date.IsZero()
	})).Return(&planner.Output{Result: &scheduler.Result{}, Tasks: []*task.Task{}}, nil)

	router := newRouter(mockPlanner)

	rec := do(t, router, http.MethodGet, "/api/users/u1/layout?tz=Pacific/Kiritimati", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2026-10-18")

	rec = do(t, router, http.MethodGet, "/api/users/u1/week?tz=Pacific/Kiritimati", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/users/u1/pull-forward", `{"groupId":"work"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/users/u1/auto-schedule", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)

	mockPlanner.AssertExpectations(t)
}

func TestTasks(t *testing.T) {
	t.Run("list empty", func(t *testing.T) {
		mockPlanner := new(MockPlanner)
		mockPlanner.On("ListTasks", mock.Anything, "u1").Return(nil, nil)

		rec := do(t, newRouter(mockPlanner), http.MethodGet, "/api/users/u1/tasks", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("create", func(t *testing.T) {
		mockPlanner := new(MockPlanner)
		mockPlanner.On("CreateTask", mock.Anything, mock.MatchedBy(func(tk *task.Task) bool {
			return tk.UserID == "u1" && tk.Title == "Write report" &&
				tk.Priority == 2 && tk.Duration != nil && *tk.Duration == 45 &&
				tk.GroupID != nil && *tk.GroupID == "work"
		})).Return(nil)

		rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/tasks",
			`{"title":"Write report","priority":2,"duration":45,"group_id":"work"}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		var created task.Task
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
		assert.Equal(t, task.StatusPending, created.Status)
		mockPlanner.AssertExpectations(t)
	})

	t.Run("create without title", func(t *testing.T) {
		mockPlanner := new(MockPlanner)

		rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/tasks", `{"title":"  "}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockPlanner.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
	})

	t.Run("create rejected by service", func(t *testing.T) {
		mockPlanner := new(MockPlanner)
		mockPlanner.On("CreateTask", mock.Anything, mock.Anything).
			Return(errors.Join(planner.ErrInvalidInput, task.ErrInvalidPriority))

		rec := do(t, newRouter(mockPlanner), http.MethodPost, "/api/users/u1/tasks",
			`{"title":"Write report","priority":9}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSetStatus(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		call     bool
		wantCode int
	}{
		{name: "completed", body: `{"status":"completed"}`, call: true, wantCode: http.StatusNoContent},
		{name: "unknown status", body: `{"status":"paused"}`, wantCode: http.StatusBadRequest},
		{name: "missing task", body: `{"status":"cancelled"}`, call: true, err: task.ErrTaskNotFound, wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPlanner := new(MockPlanner)
			if tt.call {
				mockPlanner.On("SetStatus", mock.Anything, "u1", "t1", mock.Anything).Return(tt.err)
			}

			rec := do(t, newRouter(mockPlanner), http.MethodPut, "/api/users/u1/tasks/t1/status", tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			mockPlanner.AssertExpectations(t)
		})
	}
}

func TestMoveTask(t *testing.T) {
	start, end := monday.Add(14*time.Hour), monday.Add(15*time.Hour)
	sameTime := func(want time.Time) any {
		return mock.MatchedBy(func(got time.Time) bool { return got.Equal(want) })
	}

	t.Run("moved", func(t *testing.T) {
		moved := &task.Task{ID: "t1", UserID: "u1", Title: "Dentist", Status: task.StatusPending, Priority: 3}
		moved.Schedule(start, end)
		mockPlanner := new(MockPlanner)
		mockPlanner.On("MoveTask", mock.Anything, "u1", "t1", sameTime(start), sameTime(end)).Return(moved, nil)

		rec := do(t, newRouter(mockPlanner), http.MethodPut, "/api/users/u1/tasks/t1/schedule",
			`{"scheduled_start":"2025-01-06T14:00:00Z","scheduled_end":"2025-01-06T15:00:00Z"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		var got task.Task
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		assert.True(t, got.ScheduledStart.Equal(start))
		mockPlanner.AssertExpectations(t)
	})

	t.Run("missing end", func(t *testing.T) {
		mockPlanner := new(MockPlanner)
		rec := do(t, newRouter(mockPlanner), http.MethodPut, "/api/users/u1/tasks/t1/schedule",
			`{"scheduled_start":"2025-01-06T14:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockPlanner.AssertNotCalled(t, "MoveTask", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("parent task", func(t *testing.T) {
		mockPlanner := new(MockPlanner)
		mockPlanner.On("MoveTask", mock.Anything, "u1", "t1", mock.Anything, mock.Anything).
			Return(nil, errors.Join(planner.ErrInvalidInput, task.ErrScheduledParent))

		rec := do(t, newRouter(mockPlanner), http.MethodPut, "/api/users/u1/tasks/t1/schedule",
			`{"scheduled_start":"2025-01-06T14:00:00Z","scheduled_end":"2025-01-06T15:00:00Z"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestWeek(t *testing.T) {
	mockPlanner := new(MockPlanner)
	week := &summary.WeekSummary{Start: monday, End: monday.AddDate(0, 0, 6), Timezone: "UTC", Tasks: []*task.Task{}}
	week.Stats.PlannedMinutes = 90
	mockPlanner.On("WeekSummary", mock.Anything, "u1", monday, "").Return(week, nil)

	router := newRouter(mockPlanner)

	rec := do(t, router, http.MethodGet, "/api/users/u1/week?date=2025-01-06", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Timezone string `json:"timezone"`
		Stats    struct {
			PlannedMinutes int `json:"planned_minutes"`
		} `json:"stats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "UTC", got.Timezone)
	assert.Equal(t, 90, got.Stats.PlannedMinutes)

	rec = do(t, router, http.MethodGet, "/api/users/u1/week?date=06-01-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockPlanner.AssertExpectations(t)
}

func TestGroups(t *testing.T) {
	mockPlanner := new(MockPlanner)
	mockPlanner.On("CreateGroup", mock.Anything, mock.MatchedBy(func(g *task.Group) bool {
		return g.UserID == "u1" && g.Name == "Deep work" && g.AutoScheduleEnabled &&
			g.AutoScheduleHours.For(time.Monday) != nil
	})).Return(nil)
	mockPlanner.On("ListGroups", mock.Anything, "u1").Return([]*task.Group{{ID: "g1", UserID: "u1", Name: "Deep work"}}, nil)

	router := newRouter(mockPlanner)

	rec := do(t, router, http.MethodPost, "/api/users/u1/groups",
		`{"name":"Deep work","auto_schedule_enabled":true,"auto_schedule_hours":{"monday":{"start":8,"end":12}}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/users/u1/groups", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var groups []task.Group
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&groups))
	require.Len(t, groups, 1)
	assert.Equal(t, "g1", groups[0].ID)
	mockPlanner.AssertExpectations(t)
}

func TestSettings(t *testing.T) {
	mockPlanner := new(MockPlanner)
	stored := &task.Settings{
		UserID:     "u1",
		Timezone:   "Europe/Berlin",
		AwakeHours: availability.AwakeHours{"monday": {Start: 9, End: 17}},
	}
	mockPlanner.On("Settings", mock.Anything, "u1", "").Return(stored, nil)
	mockPlanner.On("SaveSettings", mock.Anything, mock.MatchedBy(func(s *task.Settings) bool {
		return s.UserID == "u1" && s.Timezone == "America/New_York"
	})).Return(nil)
	mockPlanner.On("SaveSettings", mock.Anything, mock.MatchedBy(func(s *task.Settings) bool {
		return s.Timezone == "Mars/Olympus"
	})).Return(errors.Join(planner.ErrInvalidInput, errors.New("unknown timezone")))

	router := newRouter(mockPlanner)

	rec := do(t, router, http.MethodGet, "/api/users/u1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Europe/Berlin")

	rec = do(t, router, http.MethodPut, "/api/users/u1/settings",
		`{"timezone":"America/New_York","awake_hours":{"monday":{"start":9,"end":17}}}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodPut, "/api/users/u1/settings", `{"timezone":"Mars/Olympus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockPlanner.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	rec := do(t, newRouter(new(MockPlanner)), http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRequestID_Propagates(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()

	newRouter(new(MockPlanner)).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	mockPlanner := new(MockPlanner)
	mockPlanner.On("ListGroups", mock.Anything, "u1").Run(func(mock.Arguments) {
		panic("boom")
	})

	rec := do(t, newRouter(mockPlanner), http.MethodGet, "/api/users/u1/groups", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
