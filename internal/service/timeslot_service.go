package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/timeutil"
)

type timeSlotRepository interface {
	ListByScope(ctx context.Context, scope models.TimeSlotScope) ([]models.TimeSlot, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlot, error)
	Create(ctx context.Context, slot *models.TimeSlot) error
	Update(ctx context.Context, slot *models.TimeSlot) error
	Delete(ctx context.Context, id string) error
}

type timetableCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CreateTimeSlotRequest describes a new timetable slot. End time is never
// accepted; it is derived from start time plus duration.
type CreateTimeSlotRequest struct {
	AcademicYearID  string           `json:"academic_year_id" validate:"required"`
	ClassID         string           `json:"class_id" validate:"required"`
	SectionID       string           `json:"section_id" validate:"required"`
	DayOfWeek       models.DayOfWeek `json:"day_of_week" validate:"required"`
	StartTime       string           `json:"start_time" validate:"required"`
	DurationMinutes int              `json:"duration_minutes" validate:"required"`
	Type            models.SlotType  `json:"slot_type" validate:"required"`
	SubjectID       *string          `json:"subject_id,omitempty"`
	Title           *string          `json:"title,omitempty"`
}

// UpdateTimeSlotRequest carries the editable slot fields.
type UpdateTimeSlotRequest struct {
	DayOfWeek       models.DayOfWeek `json:"day_of_week" validate:"required"`
	StartTime       string           `json:"start_time" validate:"required"`
	DurationMinutes int              `json:"duration_minutes" validate:"required"`
	Type            models.SlotType  `json:"slot_type" validate:"required"`
	SubjectID       *string          `json:"subject_id,omitempty"`
	Title           *string          `json:"title,omitempty"`
}

// TimeSlotService manages weekly timetable slots.
type TimeSlotService struct {
	repo      timeSlotRepository
	cache     timetableCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs TimeSlotService. A nil cache disables the
// day-view cache entirely; a nil metrics service skips counting lookups.
func NewTimeSlotService(repo timeSlotRepository, cache timetableCache, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, cache: cache, cacheTTL: cacheTTL, metrics: metrics, validator: validate, logger: logger}
}

func timetableCacheKey(scope models.TimeSlotScope) string {
	return fmt.Sprintf("timetable:%s:%s:%s:%s", scope.AcademicYearID, scope.ClassID, scope.SectionID, scope.DayOfWeek)
}

// DayView returns one section's slots for a day, ordered by start time.
func (s *TimeSlotService) DayView(ctx context.Context, scope models.TimeSlotScope) ([]models.TimeSlot, error) {
	if !scope.DayOfWeek.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}

	if s.cache != nil {
		var cached []models.TimeSlot
		if err := s.cache.Get(ctx, timetableCacheKey(scope), &cached); err == nil {
			s.metrics.RecordCacheLookup(true)
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("timetable cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheLookup(false)
	}

	slots, err := s.repo.ListByScope(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list time slots")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, timetableCacheKey(scope), slots, s.cacheTTL); err != nil {
			s.logger.Warn("timetable cache write failed", zap.Error(err))
		}
	}
	return slots, nil
}

// Get loads one slot by id.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlot, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	return slot, nil
}

// Create validates and persists a new slot, deriving its end time.
func (s *TimeSlotService) Create(ctx context.Context, req CreateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if !req.DayOfWeek.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}

	subjectID, title, err := resolveSlotPayload(req.Type, req.SubjectID, req.Title)
	if err != nil {
		return nil, err
	}

	endTime, err := deriveEndTime(req.StartTime, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	slot := &models.TimeSlot{
		AcademicYearID:  req.AcademicYearID,
		ClassID:         req.ClassID,
		SectionID:       req.SectionID,
		DayOfWeek:       req.DayOfWeek,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
		EndTime:         endTime,
		Type:            req.Type,
		SubjectID:       subjectID,
		Title:           title,
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}

	s.invalidateSection(ctx, slot.SectionID)
	return slot, nil
}

// Update rewrites a slot. Changing the slot type clears the field that no
// longer applies, so a subject slot turned break drops its subject.
func (s *TimeSlotService) Update(ctx context.Context, id string, req UpdateTimeSlotRequest) (*models.TimeSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}
	if !req.DayOfWeek.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day of week")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	subjectID, title, err := resolveSlotPayload(req.Type, req.SubjectID, req.Title)
	if err != nil {
		return nil, err
	}

	endTime, err := deriveEndTime(req.StartTime, req.DurationMinutes)
	if err != nil {
		return nil, err
	}

	slot.DayOfWeek = req.DayOfWeek
	slot.StartTime = req.StartTime
	slot.DurationMinutes = req.DurationMinutes
	slot.EndTime = endTime
	slot.Type = req.Type
	slot.SubjectID = subjectID
	slot.Title = title

	if err := s.repo.Update(ctx, slot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}

	s.invalidateSection(ctx, slot.SectionID)
	return slot, nil
}

// Delete removes a slot. Slots have no dependents, so no checks apply.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	s.invalidateSection(ctx, slot.SectionID)
	return nil
}

func (s *TimeSlotService) invalidateSection(ctx context.Context, sectionID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, fmt.Sprintf("timetable:*:%s:*", sectionID)); err != nil {
		s.logger.Warn("timetable cache invalidation failed", zap.String("section_id", sectionID), zap.Error(err))
	}
}

// resolveSlotPayload enforces the subject/title split: subject slots carry a
// subject id and no title, break and event slots the reverse.
func resolveSlotPayload(slotType models.SlotType, subjectID, title *string) (*string, *string, error) {
	switch slotType {
	case models.SlotSubject:
		if subjectID == nil || *subjectID == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "subject slot requires subject_id")
		}
		return subjectID, nil, nil
	case models.SlotBreak, models.SlotEvent:
		if title == nil || *title == "" {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "break and event slots require a title")
		}
		return nil, title, nil
	default:
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown slot type")
	}
}

func deriveEndTime(startTime string, durationMinutes int) (string, error) {
	if !timeutil.ValidDuration(durationMinutes) {
		return "", appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("duration must be between %d and %d minutes", timeutil.MinDuration, timeutil.MaxDuration))
	}
	endTime, err := timeutil.ComputeEndTime(startTime, durationMinutes)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid start time")
	}
	return endTime, nil
}
