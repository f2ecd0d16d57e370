package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// EventRepository persists school events and tasks.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs the repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func rangeClause(column string, filter models.DateRangeFilter, args *[]interface{}) []string {
	where := []string{"1=1"}
	if filter.From != nil {
		where = append(where, fmt.Sprintf("%s >= $%d", column, len(*args)+1))
		*args = append(*args, *filter.From)
	}
	if filter.To != nil {
		where = append(where, fmt.Sprintf("%s <= $%d", column, len(*args)+1))
		*args = append(*args, *filter.To)
	}
	return where
}

// ListEvents returns events inside the date range, soonest first.
func (r *EventRepository) ListEvents(ctx context.Context, filter models.DateRangeFilter) ([]models.SchoolEvent, error) {
	args := []interface{}{}
	where := rangeClause("date", filter, &args)
	query := fmt.Sprintf(`SELECT id, title, description, date, start_time, end_time, reminder_dates, created_by, created_at, updated_at
FROM school_events WHERE %s ORDER BY date ASC, start_time ASC`, strings.Join(where, " AND "))
	var events []models.SchoolEvent
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, fmt.Errorf("list school events: %w", err)
	}
	return events, nil
}

// FindEventByID loads one event.
func (r *EventRepository) FindEventByID(ctx context.Context, id string) (*models.SchoolEvent, error) {
	const query = `SELECT id, title, description, date, start_time, end_time, reminder_dates, created_by, created_at, updated_at
FROM school_events WHERE id = $1`
	var event models.SchoolEvent
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find school event: %w", err)
	}
	return &event, nil
}

// CreateEvent inserts a new event.
func (r *EventRepository) CreateEvent(ctx context.Context, event *models.SchoolEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO school_events (id, title, description, date, start_time, end_time, reminder_dates, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :date, :start_time, :end_time, :reminder_dates, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("create school event: %w", err)
	}
	return nil
}

// UpdateEvent persists event fields.
func (r *EventRepository) UpdateEvent(ctx context.Context, event *models.SchoolEvent) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE school_events
SET title = :title, description = :description, date = :date, start_time = :start_time, end_time = :end_time,
    reminder_dates = :reminder_dates, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		return fmt.Errorf("update school event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated school event rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteEvent removes an event row.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM school_events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete school event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted school event rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListTasks returns tasks due inside the date range.
func (r *EventRepository) ListTasks(ctx context.Context, filter models.DateRangeFilter) ([]models.Task, error) {
	args := []interface{}{}
	where := rangeClause("due_date", filter, &args)
	query := fmt.Sprintf(`SELECT id, title, description, due_date, assignee_kind, assignee_id, status, reminder_dates, created_by, created_at, updated_at
FROM tasks WHERE %s ORDER BY due_date ASC`, strings.Join(where, " AND "))
	var tasks []models.Task
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// FindTaskByID loads one task.
func (r *EventRepository) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	const query = `SELECT id, title, description, due_date, assignee_kind, assignee_id, status, reminder_dates, created_by, created_at, updated_at
FROM tasks WHERE id = $1`
	var task models.Task
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return &task, nil
}

// CreateTask inserts a new task.
func (r *EventRepository) CreateTask(ctx context.Context, task *models.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	const query = `INSERT INTO tasks (id, title, description, due_date, assignee_kind, assignee_id, status, reminder_dates, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :due_date, :assignee_kind, :assignee_id, :status, :reminder_dates, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, task); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// UpdateTask persists task fields.
func (r *EventRepository) UpdateTask(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()
	const query = `UPDATE tasks
SET title = :title, description = :description, due_date = :due_date, assignee_kind = :assignee_kind,
    assignee_id = :assignee_id, status = :status, reminder_dates = :reminder_dates, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, task)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated task rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteTask removes a task row.
func (r *EventRepository) DeleteTask(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted task rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
