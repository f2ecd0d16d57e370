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

type mockExamRepo struct {
	exams            map[string]models.Exam
	assignedSections []string
	assignedYear     string
	results          map[string]models.ExamResult
	deleted          []string
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	return nil, 0, nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if exam, ok := m.exams[id]; ok {
		return &exam, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	if m.exams == nil {
		m.exams = make(map[string]models.Exam)
	}
	exam.ID = "exam-new"
	m.exams[exam.ID] = *exam
	return nil
}

func (m *mockExamRepo) Update(ctx context.Context, exam *models.Exam) error {
	if _, ok := m.exams[exam.ID]; !ok {
		return sql.ErrNoRows
	}
	m.exams[exam.ID] = *exam
	return nil
}

func (m *mockExamRepo) AssignSections(ctx context.Context, examID string, sectionIDs []string, academicYearID string) error {
	m.assignedSections = sectionIDs
	m.assignedYear = academicYearID
	return nil
}

func (m *mockExamRepo) ListAssignments(ctx context.Context, examID string) ([]models.ExamAssignment, error) {
	return nil, nil
}

func (m *mockExamRepo) UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error) {
	if m.results == nil {
		m.results = make(map[string]models.ExamResult)
	}
	key := result.ExamID + "/" + result.StudentID
	if existing, ok := m.results[key]; ok {
		result.ID = existing.ID
	} else {
		result.ID = "res-" + key
	}
	m.results[key] = *result
	return result, nil
}

func (m *mockExamRepo) ListResultsByExam(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	return nil, nil
}

func (m *mockExamRepo) DeleteCascade(ctx context.Context, examID string) error {
	if _, ok := m.exams[examID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.exams, examID)
	m.deleted = append(m.deleted, examID)
	return nil
}

type mockActiveYearReader struct {
	year *models.AcademicYear
}

func (m *mockActiveYearReader) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	if m.year == nil {
		return nil, sql.ErrNoRows
	}
	return m.year, nil
}

func newExamService(repo *mockExamRepo, years *mockActiveYearReader) *ExamService {
	return NewExamService(repo, &mockSubjectReader{}, &mockSectionDetailReader{}, years, validator.New(), zap.NewNop())
}

func TestExamServiceCreate(t *testing.T) {
	repo := &mockExamRepo{}
	svc := newExamService(repo, &mockActiveYearReader{year: &models.AcademicYear{ID: "year-1"}})

	exam, err := svc.Create(context.Background(), "user-1", CreateExamRequest{
		Name:       "Midterm Mathematics",
		Date:       time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC),
		MaxScore:   100,
		SubjectID:  "sub-1",
		SectionIDs: []string{"sec-1", "sec-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "user-1", exam.CreatedBy)
	assert.Equal(t, []string{"sec-1", "sec-2"}, repo.assignedSections)
	assert.Equal(t, "year-1", repo.assignedYear)
}

func TestExamServiceCreateNoActiveYear(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockActiveYearReader{})

	_, err := svc.Create(context.Background(), "user-1", CreateExamRequest{
		Name:       "Midterm Mathematics",
		Date:       time.Now(),
		MaxScore:   100,
		SubjectID:  "sub-1",
		SectionIDs: []string{"sec-1"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestExamServiceCreateUnknownSection(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockActiveYearReader{year: &models.AcademicYear{ID: "year-1"}})

	_, err := svc.Create(context.Background(), "user-1", CreateExamRequest{
		Name:       "Midterm Mathematics",
		Date:       time.Now(),
		MaxScore:   100,
		SubjectID:  "sub-1",
		SectionIDs: []string{"missing"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExamServiceRecordResultBounds(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]models.Exam{
		"exam-1": {ID: "exam-1", Name: "Midterm", MaxScore: 80},
	}}
	svc := newExamService(repo, &mockActiveYearReader{})

	// both boundaries are accepted
	for _, score := range []float64{0, 80} {
		_, err := svc.RecordResult(context.Background(), "exam-1", RecordExamResultRequest{
			StudentID: "stu-1",
			Score:     score,
		})
		require.NoError(t, err, "score %g", score)
	}

	for _, score := range []float64{-0.5, 80.5} {
		_, err := svc.RecordResult(context.Background(), "exam-1", RecordExamResultRequest{
			StudentID: "stu-1",
			Score:     score,
		})
		require.Error(t, err, "score %g", score)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestExamServiceRecordResultOverwrites(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]models.Exam{
		"exam-1": {ID: "exam-1", Name: "Midterm", MaxScore: 100},
	}}
	svc := newExamService(repo, &mockActiveYearReader{})

	first, err := svc.RecordResult(context.Background(), "exam-1", RecordExamResultRequest{StudentID: "stu-1", Score: 60})
	require.NoError(t, err)
	second, err := svc.RecordResult(context.Background(), "exam-1", RecordExamResultRequest{StudentID: "stu-1", Score: 75})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.results, 1)
}

func TestExamServiceDeleteMissing(t *testing.T) {
	svc := newExamService(&mockExamRepo{}, &mockActiveYearReader{})

	err := svc.Delete(context.Background(), "exam-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
