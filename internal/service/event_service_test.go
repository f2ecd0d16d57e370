package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockEventRepo struct {
	events map[string]models.SchoolEvent
	tasks  map[string]models.Task
}

func (m *mockEventRepo) ListEvents(ctx context.Context, filter models.DateRangeFilter) ([]models.SchoolEvent, error) {
	return nil, nil
}

func (m *mockEventRepo) FindEventByID(ctx context.Context, id string) (*models.SchoolEvent, error) {
	if event, ok := m.events[id]; ok {
		return &event, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) CreateEvent(ctx context.Context, event *models.SchoolEvent) error {
	if m.events == nil {
		m.events = make(map[string]models.SchoolEvent)
	}
	event.ID = "event-new"
	m.events[event.ID] = *event
	return nil
}

func (m *mockEventRepo) UpdateEvent(ctx context.Context, event *models.SchoolEvent) error {
	if _, ok := m.events[event.ID]; !ok {
		return sql.ErrNoRows
	}
	m.events[event.ID] = *event
	return nil
}

func (m *mockEventRepo) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := m.events[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.events, id)
	return nil
}

func (m *mockEventRepo) ListTasks(ctx context.Context, filter models.DateRangeFilter) ([]models.Task, error) {
	return nil, nil
}

func (m *mockEventRepo) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	if task, ok := m.tasks[id]; ok {
		return &task, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEventRepo) CreateTask(ctx context.Context, task *models.Task) error {
	if m.tasks == nil {
		m.tasks = make(map[string]models.Task)
	}
	task.ID = "task-new"
	m.tasks[task.ID] = *task
	return nil
}

func (m *mockEventRepo) UpdateTask(ctx context.Context, task *models.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return sql.ErrNoRows
	}
	m.tasks[task.ID] = *task
	return nil
}

func (m *mockEventRepo) DeleteTask(ctx context.Context, id string) error {
	if _, ok := m.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.tasks, id)
	return nil
}

func TestEventServiceCreateEvent(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, validator.New(), zap.NewNop())

	start := "08:00"
	event, err := svc.CreateEvent(context.Background(), "user-1", SchoolEventRequest{
		Title:     "Sports day",
		Date:      time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		StartTime: &start,
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", event.CreatedBy)
	assert.NotEmpty(t, event.ID)
}

func TestEventServiceCreateEventRejectsMalformedTimes(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, validator.New(), zap.NewNop())

	for _, clock := range []string{"25:99", "ab:cd", "8:00", "+1:30"} {
		value := clock
		_, err := svc.CreateEvent(context.Background(), "user-1", SchoolEventRequest{
			Title:     "Sports day",
			Date:      time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			StartTime: &value,
		})
		require.Error(t, err, "start_time=%q", clock)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

		_, err = svc.CreateEvent(context.Background(), "user-1", SchoolEventRequest{
			Title:   "Sports day",
			Date:    time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
			EndTime: &value,
		})
		require.Error(t, err, "end_time=%q", clock)
	}
	assert.Empty(t, repo.events)
}

func TestEventServiceCreateEventRejectsMalformedReminderDate(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, validator.New(), zap.NewNop())

	_, err := svc.CreateEvent(context.Background(), "user-1", SchoolEventRequest{
		Title:         "Sports day",
		Date:          time.Date(2026, 11, 20, 0, 0, 0, 0, time.UTC),
		ReminderDates: []string{"2026-11-18", "not-a-date"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.events)
}

func TestEventServiceCreateTaskRejectsMalformedReminderDate(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, validator.New(), zap.NewNop())

	_, err := svc.CreateTask(context.Background(), "user-1", TaskRequest{
		Title:         "Collect permission slips",
		DueDate:       time.Now(),
		AssigneeKind:  models.TaskAssigneeSection,
		AssigneeID:    "sec-1",
		ReminderDates: []string{"18-11-2026"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceCreateTaskDefaultsPending(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewEventService(repo, validator.New(), zap.NewNop())

	task, err := svc.CreateTask(context.Background(), "user-1", TaskRequest{
		Title:        "Collect permission slips",
		DueDate:      time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC),
		AssigneeKind: models.TaskAssigneeSection,
		AssigneeID:   "sec-1",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskPending, task.Status)
}

func TestEventServiceCreateTaskUnknownAssigneeKind(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, validator.New(), zap.NewNop())

	_, err := svc.CreateTask(context.Background(), "user-1", TaskRequest{
		Title:        "Collect permission slips",
		DueDate:      time.Now(),
		AssigneeKind: "homeroom",
		AssigneeID:   "sec-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceCreateTaskUnknownStatus(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, validator.New(), zap.NewNop())

	_, err := svc.CreateTask(context.Background(), "user-1", TaskRequest{
		Title:        "Collect permission slips",
		DueDate:      time.Now(),
		AssigneeKind: models.TaskAssigneeUser,
		AssigneeID:   "user-2",
		Status:       "blocked",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEventServiceUpdateTaskRetargets(t *testing.T) {
	repo := &mockEventRepo{tasks: map[string]models.Task{
		"task-1": {
			ID:           "task-1",
			Title:        "Collect permission slips",
			DueDate:      time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC),
			AssigneeKind: models.TaskAssigneeUser,
			AssigneeID:   "user-2",
			Status:       models.TaskPending,
		},
	}}
	svc := NewEventService(repo, validator.New(), zap.NewNop())

	task, err := svc.UpdateTask(context.Background(), "task-1", TaskRequest{
		Title:        "Collect permission slips",
		DueDate:      time.Date(2026, 11, 18, 0, 0, 0, 0, time.UTC),
		AssigneeKind: models.TaskAssigneeClass,
		AssigneeID:   "class-1",
		Status:       models.TaskDone,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskAssigneeClass, task.AssigneeKind)
	assert.Equal(t, "class-1", task.AssigneeID)
	assert.Equal(t, models.TaskDone, task.Status)
}

func TestEventServiceUpdateEventMissing(t *testing.T) {
	svc := NewEventService(&mockEventRepo{}, validator.New(), zap.NewNop())

	_, err := svc.UpdateEvent(context.Background(), "event-404", SchoolEventRequest{
		Title: "Sports day",
		Date:  time.Now(),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
