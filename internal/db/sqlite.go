// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/daybook/internal/availability"
	"github.com/javiermolinar/daybook/internal/task"
)

// timeLayout is how instants are stored. Values are always written in UTC.
const timeLayout = time.RFC3339Nano

// SQLite implements task.Repository using SQLite.
type SQLite struct {
	db *sql.DB
}

var _ task.Repository = (*SQLite)(nil)

// New creates a new SQLite repository and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

const taskColumns = `
	id, user_id, title, status, priority, duration, scheduled_start, scheduled_end,
	due_date, locked, group_id, energy_level_required, parent_task_id, ignored,
	created_at, updated_at`

// CreateTask adds a new task to the repository.
// An empty ID is replaced by a new UUID. A parent task must exist, belong to
// the same user and not be a subtask itself.
func (s *SQLite) CreateTask(ctx context.Context, t *task.Task) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = t.CreatedAt
	}
	if err := t.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if t.ParentTaskID != nil {
		if err := checkParentTx(ctx, tx, t); err != nil {
			return err
		}
	}

	query := `INSERT INTO tasks (` + taskColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, query,
		t.ID,
		t.UserID,
		t.Title,
		t.Status,
		t.Priority,
		t.Duration,
		formatTime(t.ScheduledStart),
		formatTime(t.ScheduledEnd),
		formatTime(t.DueDate),
		t.Locked,
		t.GroupID,
		t.EnergyLevelRequired,
		t.ParentTaskID,
		t.Ignored,
		t.CreatedAt.UTC().Format(timeLayout),
		t.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting task %q: %w", t.Title, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// checkParentTx enforces the one-level subtask rule against stored rows.
func checkParentTx(ctx context.Context, tx *sql.Tx, t *task.Task) error {
	var (
		owner       string
		grandparent sql.NullString
		start       sql.NullString
	)
	err := tx.QueryRowContext(ctx,
		`SELECT user_id, parent_task_id, scheduled_start FROM tasks WHERE id = ?`, *t.ParentTaskID,
	).Scan(&owner, &grandparent, &start)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %q", task.ErrMissingParent, *t.ParentTaskID)
	}
	if err != nil {
		return fmt.Errorf("querying parent task: %w", err)
	}
	if owner != t.UserID {
		return fmt.Errorf("%w: %q", task.ErrMismatchedUserID, t.ID)
	}
	if grandparent.Valid {
		return fmt.Errorf("%w: %q", task.ErrNestedSubtask, *t.ParentTaskID)
	}
	if start.Valid {
		return fmt.Errorf("%w: %q", task.ErrScheduledParent, *t.ParentTaskID)
	}
	return nil
}

// GetTask retrieves a task owned by userID.
func (s *SQLite) GetTask(ctx context.Context, userID, id string) (*task.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	t, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", task.ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

// ListTasks returns all tasks owned by userID, ordered by scheduled start.
// Unscheduled tasks come last.
func (s *SQLite) ListTasks(ctx context.Context, userID string) ([]*task.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = ?
		ORDER BY scheduled_start IS NULL, scheduled_start, id
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// SetStatus changes the status of a task owned by userID.
func (s *SQLite) SetStatus(ctx context.Context, userID, id string, status task.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", task.ErrInvalidStatus, status)
	}
	query := `UPDATE tasks SET status = ?, updated_at = ? WHERE id = ? AND user_id = ?`

	result, err := s.db.ExecContext(ctx, query, status, time.Now().UTC().Format(timeLayout), id, userID)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %q", task.ErrTaskNotFound, id)
	}
	return nil
}

// ApplyTimeUpdates writes all updates in one transaction.
// Each row is matched by id and user_id; a miss rolls back the whole batch.
func (s *SQLite) ApplyTimeUpdates(ctx context.Context, userID string, updates []task.TimeUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE tasks SET scheduled_start = ?, scheduled_end = ?, updated_at = ? WHERE id = ? AND user_id = ?`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now().UTC().Format(timeLayout)
	for _, u := range updates {
		if !u.NewStart.Before(u.NewEnd) {
			return fmt.Errorf("updating task %s: %w", u.ID, task.ErrEndBeforeStart)
		}
		result, err := stmt.ExecContext(ctx,
			u.NewStart.UTC().Format(timeLayout),
			u.NewEnd.UTC().Format(timeLayout),
			now,
			u.ID,
			userID,
		)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", u.ID, err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("reading affected rows: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("%w: %q", task.ErrTaskNotFound, u.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

const groupColumns = `
	id, user_id, name, color, parent_group_id, is_parent_group,
	auto_schedule_enabled, auto_schedule_hours, priority, created_at`

// CreateGroup adds a new group. An empty ID is replaced by a new UUID.
// A parent group must exist for the same user.
func (s *SQLite) CreateGroup(ctx context.Context, g *task.Group) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	if err := g.Validate(); err != nil {
		return err
	}

	if g.ParentGroupID != nil {
		var n int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM task_groups WHERE id = ? AND user_id = ?`, *g.ParentGroupID, g.UserID,
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("querying parent group: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %q", task.ErrGroupNotFound, *g.ParentGroupID)
		}
	}

	var hours sql.NullString
	if g.AutoScheduleHours != nil {
		data, err := json.Marshal(g.AutoScheduleHours)
		if err != nil {
			return fmt.Errorf("encoding auto schedule hours: %w", err)
		}
		hours = sql.NullString{String: string(data), Valid: true}
	}

	query := `INSERT INTO task_groups (` + groupColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		g.ID,
		g.UserID,
		g.Name,
		g.Color,
		g.ParentGroupID,
		g.IsParentGroup,
		g.AutoScheduleEnabled,
		hours,
		g.Priority,
		g.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting group %q: %w", g.Name, err)
	}
	return nil
}

// ListGroups returns all groups owned by userID, ordered by name.
func (s *SQLite) ListGroups(ctx context.Context, userID string) ([]*task.Group, error) {
	query := `SELECT ` + groupColumns + ` FROM task_groups WHERE user_id = ? ORDER BY name, id`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying groups: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var groups []*task.Group
	for rows.Next() {
		var (
			g         task.Group
			parentID  sql.NullString
			hours     sql.NullString
			priority  sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(
			&g.ID,
			&g.UserID,
			&g.Name,
			&g.Color,
			&parentID,
			&g.IsParentGroup,
			&g.AutoScheduleEnabled,
			&hours,
			&priority,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}
		if parentID.Valid {
			g.ParentGroupID = &parentID.String
		}
		if hours.Valid {
			var h availability.AwakeHours
			if err := json.Unmarshal([]byte(hours.String), &h); err != nil {
				return nil, fmt.Errorf("decoding auto schedule hours of %q: %w", g.ID, err)
			}
			g.AutoScheduleHours = h
		}
		if priority.Valid {
			p := int(priority.Int64)
			g.Priority = &p
		}
		if g.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		groups = append(groups, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating groups: %w", err)
	}
	return groups, nil
}

// GetSettings returns the stored settings of userID.
func (s *SQLite) GetSettings(ctx context.Context, userID string) (*task.Settings, error) {
	st := task.Settings{UserID: userID}
	var (
		hours     sql.NullString
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT timezone, awake_hours, updated_at FROM user_settings WHERE user_id = ?`, userID,
	).Scan(&st.Timezone, &hours, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", task.ErrSettingsNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	if hours.Valid {
		if err := json.Unmarshal([]byte(hours.String), &st.AwakeHours); err != nil {
			return nil, fmt.Errorf("decoding awake hours: %w", err)
		}
	}
	if st.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}
	return &st, nil
}

// SaveSettings creates or replaces the settings of st.UserID.
func (s *SQLite) SaveSettings(ctx context.Context, st *task.Settings) error {
	if err := st.Validate(); err != nil {
		return err
	}
	var hours sql.NullString
	if st.AwakeHours != nil {
		data, err := json.Marshal(st.AwakeHours)
		if err != nil {
			return fmt.Errorf("encoding awake hours: %w", err)
		}
		hours = sql.NullString{String: string(data), Valid: true}
	}
	st.UpdatedAt = time.Now()

	query := `
		INSERT INTO user_settings (user_id, timezone, awake_hours, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timezone = excluded.timezone,
			awake_hours = excluded.awake_hours,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query,
		st.UserID, st.Timezone, hours, st.UpdatedAt.UTC().Format(timeLayout),
	); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*task.Task, error) {
	var (
		t          task.Task
		duration   sql.NullInt64
		start, end sql.NullString
		due        sql.NullString
		groupID    sql.NullString
		parentID   sql.NullString
		createdAt  string
		updatedAt  string
	)
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Status,
		&t.Priority,
		&duration,
		&start,
		&end,
		&due,
		&t.Locked,
		&groupID,
		&t.EnergyLevelRequired,
		&parentID,
		&t.Ignored,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if duration.Valid {
		d := int(duration.Int64)
		t.Duration = &d
	}
	if groupID.Valid {
		t.GroupID = &groupID.String
	}
	if parentID.Valid {
		t.ParentTaskID = &parentID.String
	}

	var err error
	if t.ScheduledStart, err = parseTime(start); err != nil {
		return nil, fmt.Errorf("parsing scheduled start: %w", err)
	}
	if t.ScheduledEnd, err = parseTime(end); err != nil {
		return nil, fmt.Errorf("parsing scheduled end: %w", err)
	}
	if t.DueDate, err = parseTime(due); err != nil {
		return nil, fmt.Errorf("parsing due date: %w", err)
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated at: %w", err)
	}
	return &t, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseTime parses a nullable stored instant.
func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
