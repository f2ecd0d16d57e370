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
)

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	AssignSections(ctx context.Context, examID string, sectionIDs []string, academicYearID string) error
	ListAssignments(ctx context.Context, examID string) ([]models.ExamAssignment, error)
	UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error)
	ListResultsByExam(ctx context.Context, examID string) ([]models.ExamResultDetail, error)
	DeleteCascade(ctx context.Context, examID string) error
}

type activeYearReader interface {
	FindActive(ctx context.Context) (*models.AcademicYear, error)
}

// CreateExamRequest defines a new exam and the sections that sit it.
type CreateExamRequest struct {
	Name       string    `json:"name" validate:"required"`
	Date       time.Time `json:"date" validate:"required"`
	MaxScore   float64   `json:"max_score" validate:"required,gt=0"`
	SubjectID  string    `json:"subject_id" validate:"required"`
	SectionIDs []string  `json:"section_ids" validate:"required,min=1"`
}

// UpdateExamRequest carries editable exam fields.
type UpdateExamRequest struct {
	Name     string    `json:"name" validate:"required"`
	Date     time.Time `json:"date" validate:"required"`
	MaxScore float64   `json:"max_score" validate:"required,gt=0"`
}

// RecordExamResultRequest writes one student's score.
type RecordExamResultRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	Score     float64 `json:"score"`
	Feedback  *string `json:"feedback,omitempty"`
}

// ExamService manages exams, their section assignments and results.
type ExamService struct {
	repo      examRepository
	subjects  subjectReader
	sections  sectionDetailReader
	years     activeYearReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs ExamService.
func NewExamService(repo examRepository, subjects subjectReader, sections sectionDetailReader, years activeYearReader, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, subjects: subjects, sections: sections, years: years, validator: validate, logger: logger}
}

// List returns exams matching the filter with pagination metadata.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return exams, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one exam with its section assignments.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, []models.ExamAssignment, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	assignments, err := s.repo.ListAssignments(ctx, id)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam assignments")
	}
	return exam, assignments, nil
}

// Create persists a new exam and assigns it to the given sections under the
// active academic year.
func (s *ExamService) Create(ctx context.Context, createdBy string, req CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	for _, sectionID := range req.SectionIDs {
		if _, err := s.sections.FindDetailByID(ctx, sectionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "section "+sectionID+" not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
		}
	}

	year, err := s.years.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve academic year")
	}

	exam := &models.Exam{
		Name:      req.Name,
		Date:      req.Date,
		MaxScore:  req.MaxScore,
		SubjectID: req.SubjectID,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	if err := s.repo.AssignSections(ctx, exam.ID, req.SectionIDs, year.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign exam sections")
	}
	return exam, nil
}

// Update edits an exam. Lowering max_score does not rescale stored results;
// future scores are bounded by the new maximum.
func (s *ExamService) Update(ctx context.Context, id string, req UpdateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	exam.Name = req.Name
	exam.Date = req.Date
	exam.MaxScore = req.MaxScore
	if err := s.repo.Update(ctx, exam); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	return exam, nil
}

// RecordResult upserts one student's score keyed by (exam, student). The
// score must fall within [0, max_score].
func (s *ExamService) RecordResult(ctx context.Context, examID string, req RecordExamResultRequest) (*models.ExamResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid result payload")
	}
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if req.Score < 0 || req.Score > exam.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("score must be between 0 and %g", exam.MaxScore))
	}
	result := &models.ExamResult{
		ExamID:    examID,
		StudentID: req.StudentID,
		Score:     req.Score,
		Feedback:  req.Feedback,
	}
	stored, err := s.repo.UpsertResult(ctx, result)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record result")
	}
	return stored, nil
}

// Results lists an exam's results together with student names.
func (s *ExamService) Results(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	if _, err := s.repo.FindByID(ctx, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	results, err := s.repo.ListResultsByExam(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list results")
	}
	return results, nil
}

// Delete removes an exam and everything recorded against it.
func (s *ExamService) Delete(ctx context.Context, examID string) error {
	if err := s.repo.DeleteCascade(ctx, examID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	return nil
}
