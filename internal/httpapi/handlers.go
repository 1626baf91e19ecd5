package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/dateutil"
	"github.com/javiermolinar/daybook/internal/layout"
	"github.com/javiermolinar/daybook/internal/planner"
	"github.com/javiermolinar/daybook/internal/scheduler"
	"github.com/javiermolinar/daybook/internal/summary"
	"github.com/javiermolinar/daybook/internal/task"
)

// Planner is the service the handlers call.
type Planner interface {
	PullForward(ctx context.Context, userID string, in planner.PullForwardInput) (*planner.Output, error)
	AutoSchedule(ctx context.Context, userID string, in planner.AutoScheduleInput) (*planner.Output, error)
	DayLayout(ctx context.Context, userID string, date time.Time, tz string) (layout.DayLayout, error)
	WeekSummary(ctx context.Context, userID string, date time.Time, tz string) (*summary.WeekSummary, error)
	Settings(ctx context.Context, userID, tz string) (*task.Settings, error)
	SaveSettings(ctx context.Context, s *task.Settings) error
	CreateTask(ctx context.Context, t *task.Task) error
	ListTasks(ctx context.Context, userID string) ([]*task.Task, error)
	SetStatus(ctx context.Context, userID, id string, status task.Status) error
	MoveTask(ctx context.Context, userID, id string, start, end time.Time) (*task.Task, error)
	CreateGroup(ctx context.Context, g *task.Group) error
	ListGroups(ctx context.Context, userID string) ([]*task.Group, error)
}

var _ Planner = (*planner.Service)(nil)

// Handler serves the JSON API.
type Handler struct {
	planner Planner
	log     *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(p Planner, log *zap.Logger) *Handler {
	return &Handler{planner: p, log: log}
}

type pullForwardRequest struct {
	TargetDate string `json:"targetDate"`
	GroupID    string `json:"groupId"`
	Timezone   string `json:"timezone,omitempty"`
	DryRun     bool   `json:"dryRun,omitempty"`
}

type autoScheduleRequest struct {
	Date     string `json:"date"`
	GroupID  string `json:"groupId,omitempty"`
	Timezone string `json:"timezone,omitempty"`
	DryRun   bool   `json:"dryRun,omitempty"`
}

type createTaskRequest struct {
	Title               string     `json:"title"`
	Priority            *int       `json:"priority,omitempty"`
	Duration            *int       `json:"duration,omitempty"`
	ScheduledStart      *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd        *time.Time `json:"scheduled_end,omitempty"`
	DueDate             *time.Time `json:"due_date,omitempty"`
	Locked              bool       `json:"locked,omitempty"`
	GroupID             *string    `json:"group_id,omitempty"`
	EnergyLevelRequired *int       `json:"energy_level_required,omitempty"`
	ParentTaskID        *string    `json:"parent_task_id,omitempty"`
	Ignored             bool       `json:"ignored,omitempty"`
}

type moveRequest struct {
	ScheduledStart time.Time `json:"scheduled_start"`
	ScheduledEnd   time.Time `json:"scheduled_end"`
}

type createGroupRequest struct {
	Name                string                  `json:"name"`
	Color               string                  `json:"color,omitempty"`
	ParentGroupID       *string                 `json:"parent_group_id,omitempty"`
	IsParentGroup       bool                    `json:"is_parent_group,omitempty"`
	AutoScheduleEnabled bool                    `json:"auto_schedule_enabled,omitempty"`
	AutoScheduleHours   availability.AwakeHours `json:"auto_schedule_hours,omitempty"`
	Priority            *int                    `json:"priority,omitempty"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type settingsRequest struct {
	Timezone   string                  `json:"timezone"`
	AwakeHours availability.AwakeHours `json:"awake_hours"`
}

// PullForward handles POST /api/users/{userID}/pull-forward.
func (h *Handler) PullForward(w http.ResponseWriter, r *http.Request) {
	var req pullForwardRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.GroupID == "" {
		responseWithError(w, r, http.StatusBadRequest, "groupId is required")
		return
	}
	date, err := parseDate(req.TargetDate)
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, "targetDate must be YYYY-MM-DD")
		return
	}

	out, err := h.planner.PullForward(r.Context(), chi.URLParam(r, "userID"), planner.PullForwardInput{
		TargetDate: date,
		GroupID:    req.GroupID,
		Timezone:   req.Timezone,
		DryRun:     req.DryRun,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, out)
}

// AutoSchedule handles POST /api/users/{userID}/auto-schedule.
func (h *Handler) AutoSchedule(w http.ResponseWriter, r *http.Request) {
	var req autoScheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	out, err := h.planner.AutoSchedule(r.Context(), chi.URLParam(r, "userID"), planner.AutoScheduleInput{
		Date:     date,
		GroupID:  req.GroupID,
		Timezone: req.Timezone,
		DryRun:   req.DryRun,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, out)
}

// Layout handles GET /api/users/{userID}/layout?date=YYYY-MM-DD&tz=Zone.
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	day, err := h.planner.DayLayout(r.Context(), chi.URLParam(r, "userID"), date, r.URL.Query().Get("tz"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, day)
}

// Week handles GET /api/users/{userID}/week?date=YYYY-MM-DD&tz=Zone.
func (h *Handler) Week(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	week, err := h.planner.WeekSummary(r.Context(), chi.URLParam(r, "userID"), date, r.URL.Query().Get("tz"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, week)
}

// ListTasks handles GET /api/users/{userID}/tasks.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.planner.ListTasks(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	responseWithJSON(w, http.StatusOK, tasks)
}

// CreateTask handles POST /api/users/{userID}/tasks.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	t, err := task.New(chi.URLParam(r, "userID"), req.Title)
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.EnergyLevelRequired != nil {
		t.EnergyLevelRequired = *req.EnergyLevelRequired
	}
	t.Duration = req.Duration
	t.ScheduledStart = req.ScheduledStart
	t.ScheduledEnd = req.ScheduledEnd
	t.DueDate = req.DueDate
	t.Locked = req.Locked
	t.GroupID = req.GroupID
	t.ParentTaskID = req.ParentTaskID
	t.Ignored = req.Ignored

	if err := h.planner.CreateTask(r.Context(), t); err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusCreated, t)
}

// SetStatus handles PUT /api/users/{userID}/tasks/{taskID}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	status, err := task.ParseStatus(req.Status)
	if err != nil {
		responseWithError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.planner.SetStatus(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "taskID"), status); err != nil {
		h.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveTask handles PUT /api/users/{userID}/tasks/{taskID}/schedule.
func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ScheduledStart.IsZero() || req.ScheduledEnd.IsZero() {
		responseWithError(w, r, http.StatusBadRequest, "scheduled_start and scheduled_end are required")
		return
	}
	t, err := h.planner.MoveTask(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "taskID"),
		req.ScheduledStart, req.ScheduledEnd)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, t)
}

// ListGroups handles GET /api/users/{userID}/groups.
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.planner.ListGroups(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if groups == nil {
		groups = []*task.Group{}
	}
	responseWithJSON(w, http.StatusOK, groups)
}

// CreateGroup handles POST /api/users/{userID}/groups.
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g := &task.Group{
		UserID:              chi.URLParam(r, "userID"),
		Name:                req.Name,
		Color:               req.Color,
		ParentGroupID:       req.ParentGroupID,
		IsParentGroup:       req.IsParentGroup,
		AutoScheduleEnabled: req.AutoScheduleEnabled,
		AutoScheduleHours:   req.AutoScheduleHours,
		Priority:            req.Priority,
	}
	if err := h.planner.CreateGroup(r.Context(), g); err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusCreated, g)
}

// GetSettings handles GET /api/users/{userID}/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st, err := h.planner.Settings(r.Context(), chi.URLParam(r, "userID"), "")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, st)
}

// PutSettings handles PUT /api/users/{userID}/settings.
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(r, &req); err != nil {
		responseWithError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	st := &task.Settings{
		UserID:     chi.URLParam(r, "userID"),
		Timezone:   req.Timezone,
		AwakeHours: req.AwakeHours,
	}
	if err := h.planner.SaveSettings(r.Context(), st); err != nil {
		h.handleError(w, r, err)
		return
	}
	responseWithJSON(w, http.StatusOK, st)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleError maps domain errors to status codes.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var feedback []string
	var schedErr *scheduler.Error
	if errors.As(err, &schedErr) {
		feedback = schedErr.Feedback
	}

	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("request_id", GetRequestID(r.Context())),
			zap.Error(err),
		)
		responseWithError(w, r, code, http.StatusText(code))
		return
	}
	responseWithError(w, r, code, err.Error(), feedback...)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrNotFound),
		errors.Is(err, task.ErrTaskNotFound),
		errors.Is(err, task.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, scheduler.ErrNoAvailability):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scheduler.ErrInvalidRequest),
		errors.Is(err, planner.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// parseDate reads an optional YYYY-MM-DD date. An empty string gives the zero
// time, which the planner resolves to today in the user's timezone.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return dateutil.ParseDateIn(s, time.UTC)
}
