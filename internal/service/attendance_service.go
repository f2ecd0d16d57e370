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

type studentAttendanceRepository interface {
	Upsert(ctx context.Context, record *models.StudentAttendance) (*models.StudentAttendance, error)
	ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error)
	StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.StudentAttendance, error)
	StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error)
}

type teacherAttendanceRepository interface {
	Upsert(ctx context.Context, record *models.TeacherAttendance) (*models.TeacherAttendance, error)
	TeacherHistory(ctx context.Context, teacherID string, from, to *time.Time) ([]models.TeacherAttendance, error)
	ListByDate(ctx context.Context, date time.Time) ([]models.TeacherAttendance, error)
}

type sectionResolver interface {
	CurrentSection(ctx context.Context, studentID string) (*models.StudentSection, error)
}

// MarkStudentAttendanceRequest records one student's status for a day.
// Marking the same day twice overwrites the earlier status.
type MarkStudentAttendanceRequest struct {
	StudentID string                         `json:"student_id" validate:"required"`
	Date      time.Time                      `json:"date" validate:"required"`
	Status    models.StudentAttendanceStatus `json:"status" validate:"required"`
	Notes     *string                        `json:"notes,omitempty"`
}

// MarkTeacherAttendanceRequest records one teacher's status for a day.
type MarkTeacherAttendanceRequest struct {
	TeacherID string                         `json:"teacher_id" validate:"required"`
	Date      time.Time                      `json:"date" validate:"required"`
	Status    models.TeacherAttendanceStatus `json:"status" validate:"required"`
	CheckIn   *string                        `json:"check_in,omitempty"`
	CheckOut  *string                        `json:"check_out,omitempty"`
}

// AttendanceService records daily student and teacher attendance.
type AttendanceService struct {
	students  studentAttendanceRepository
	teachers  teacherAttendanceRepository
	sections  sectionResolver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(students studentAttendanceRepository, teachers teacherAttendanceRepository, sections sectionResolver, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{students: students, teachers: teachers, sections: sections, validator: validate, logger: logger}
}

// MarkStudent upserts a student's attendance for the day. The section is
// resolved from the student's current assignment; a student without one
// cannot be marked.
func (s *AttendanceService) MarkStudent(ctx context.Context, req MarkStudentAttendanceRequest) (*models.StudentAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}

	link, err := s.sections.CurrentSection(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNoSectionAssigned, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student section")
	}

	record := &models.StudentAttendance{
		StudentID: req.StudentID,
		SectionID: link.SectionID,
		Date:      truncateToDay(req.Date),
		Status:    req.Status,
		Notes:     req.Notes,
	}
	stored, err := s.students.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return stored, nil
}

// SectionRegister returns one section's register for a day.
func (s *AttendanceService) SectionRegister(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error) {
	records, err := s.students.ListBySectionAndDate(ctx, sectionID, truncateToDay(date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load register")
	}
	return records, nil
}

// StudentHistory returns a student's attendance rows, newest first.
func (s *AttendanceService) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.StudentAttendance, error) {
	history, err := s.students.StudentHistory(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return history, nil
}

// StudentSummary aggregates a student's attendance counts.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error) {
	summary, err := s.students.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to summarise attendance")
	}
	return summary, nil
}

// MarkTeacher upserts a teacher's attendance for the day.
func (s *AttendanceService) MarkTeacher(ctx context.Context, req MarkTeacherAttendanceRequest) (*models.TeacherAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}
	if req.CheckIn != nil {
		if _, err := timeutil.ParseClock(*req.CheckIn); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "check_in must be HH:MM")
		}
	}
	if req.CheckOut != nil {
		if _, err := timeutil.ParseClock(*req.CheckOut); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "check_out must be HH:MM")
		}
	}

	record := &models.TeacherAttendance{
		TeacherID: req.TeacherID,
		Date:      truncateToDay(req.Date),
		Status:    req.Status,
		CheckIn:   req.CheckIn,
		CheckOut:  req.CheckOut,
	}
	stored, err := s.teachers.Upsert(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return stored, nil
}

// TeacherHistory returns a teacher's attendance rows, newest first.
func (s *AttendanceService) TeacherHistory(ctx context.Context, teacherID string, from, to *time.Time) ([]models.TeacherAttendance, error) {
	history, err := s.teachers.TeacherHistory(ctx, teacherID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return history, nil
}

// TeacherRegister returns every teacher's attendance row for a day.
func (s *AttendanceService) TeacherRegister(ctx context.Context, date time.Time) ([]models.TeacherAttendance, error) {
	records, err := s.teachers.ListByDate(ctx, truncateToDay(date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load register")
	}
	return records, nil
}

// truncateToDay normalises a timestamp to its UTC calendar day so the
// (student, date) natural key never splits a day across time zones.
func truncateToDay(ts time.Time) time.Time {
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
