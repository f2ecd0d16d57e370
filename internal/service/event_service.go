package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/timeutil"
)

type eventRepository interface {
	ListEvents(ctx context.Context, filter models.DateRangeFilter) ([]models.SchoolEvent, error)
	FindEventByID(ctx context.Context, id string) (*models.SchoolEvent, error)
	CreateEvent(ctx context.Context, event *models.SchoolEvent) error
	UpdateEvent(ctx context.Context, event *models.SchoolEvent) error
	DeleteEvent(ctx context.Context, id string) error
	ListTasks(ctx context.Context, filter models.DateRangeFilter) ([]models.Task, error)
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, id string) error
}

// SchoolEventRequest carries event fields for create and update.
type SchoolEventRequest struct {
	Title         string    `json:"title" validate:"required"`
	Description   *string   `json:"description,omitempty"`
	Date          time.Time `json:"date" validate:"required"`
	StartTime     *string   `json:"start_time,omitempty"`
	EndTime       *string   `json:"end_time,omitempty"`
	ReminderDates []string  `json:"reminder_dates,omitempty"`
}

// TaskRequest carries task fields for create and update. The assignee is a
// kind plus id pair; exactly one target applies.
type TaskRequest struct {
	Title         string                  `json:"title" validate:"required"`
	Description   *string                 `json:"description,omitempty"`
	DueDate       time.Time               `json:"due_date" validate:"required"`
	AssigneeKind  models.TaskAssigneeKind `json:"assignee_kind" validate:"required"`
	AssigneeID    string                  `json:"assignee_id" validate:"required"`
	Status        models.TaskStatus       `json:"status,omitempty"`
	ReminderDates []string                `json:"reminder_dates,omitempty"`
}

// EventService manages the school calendar: dated events and tasks.
type EventService struct {
	repo      eventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEventService constructs EventService.
func NewEventService(repo eventRepository, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, validator: validate, logger: logger}
}

// ListEvents returns events in the date range.
func (s *EventService) ListEvents(ctx context.Context, filter models.DateRangeFilter) ([]models.SchoolEvent, error) {
	events, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	return events, nil
}

// GetEvent loads one event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*models.SchoolEvent, error) {
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	return event, nil
}

// CreateEvent registers a new calendar event.
func (s *EventService) CreateEvent(ctx context.Context, createdBy string, req SchoolEventRequest) (*models.SchoolEvent, error) {
	if err := s.validateEvent(req); err != nil {
		return nil, err
	}
	event := &models.SchoolEvent{
		Title:         req.Title,
		Description:   req.Description,
		Date:          req.Date,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		ReminderDates: req.ReminderDates,
		CreatedBy:     createdBy,
	}
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	return event, nil
}

// UpdateEvent edits a calendar event.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req SchoolEventRequest) (*models.SchoolEvent, error) {
	if err := s.validateEvent(req); err != nil {
		return nil, err
	}
	event, err := s.repo.FindEventByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load event")
	}
	event.Title = req.Title
	event.Description = req.Description
	event.Date = req.Date
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.ReminderDates = req.ReminderDates
	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	return event, nil
}

// DeleteEvent removes a calendar event.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if err := s.repo.DeleteEvent(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	return nil
}

// ListTasks returns tasks in the date range.
func (s *EventService) ListTasks(ctx context.Context, filter models.DateRangeFilter) ([]models.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	return tasks, nil
}

// CreateTask registers a new task against one assignee target.
func (s *EventService) CreateTask(ctx context.Context, createdBy string, req TaskRequest) (*models.Task, error) {
	if err := s.validateTask(req); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = models.TaskPending
	}
	task := &models.Task{
		Title:         req.Title,
		Description:   req.Description,
		DueDate:       req.DueDate,
		AssigneeKind:  req.AssigneeKind,
		AssigneeID:    req.AssigneeID,
		Status:        status,
		ReminderDates: req.ReminderDates,
		CreatedBy:     createdBy,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	return task, nil
}

// UpdateTask edits a task, including re-targeting its assignee.
func (s *EventService) UpdateTask(ctx context.Context, id string, req TaskRequest) (*models.Task, error) {
	if err := s.validateTask(req); err != nil {
		return nil, err
	}
	task, err := s.repo.FindTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load task")
	}
	task.Title = req.Title
	task.Description = req.Description
	task.DueDate = req.DueDate
	task.AssigneeKind = req.AssigneeKind
	task.AssigneeID = req.AssigneeID
	if req.Status != "" {
		task.Status = req.Status
	}
	task.ReminderDates = req.ReminderDates
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task")
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *EventService) DeleteTask(ctx context.Context, id string) error {
	if err := s.repo.DeleteTask(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "task not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete task")
	}
	return nil
}

func (s *EventService) validateEvent(req SchoolEventRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	if req.StartTime != nil {
		if _, err := timeutil.ParseClock(*req.StartTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "start_time must be HH:MM")
		}
	}
	if req.EndTime != nil {
		if _, err := timeutil.ParseClock(*req.EndTime); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "end_time must be HH:MM")
		}
	}
	return validReminderDates(req.ReminderDates)
}

func (s *EventService) validateTask(req TaskRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	if !req.AssigneeKind.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown assignee kind")
	}
	if req.Status != "" && req.Status != models.TaskPending && req.Status != models.TaskDone {
		return appErrors.Clone(appErrors.ErrValidation, "unknown task status")
	}
	return validReminderDates(req.ReminderDates)
}

func validReminderDates(dates []string) error {
	for _, date := range dates {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "reminder dates must be YYYY-MM-DD")
		}
	}
	return nil
}
