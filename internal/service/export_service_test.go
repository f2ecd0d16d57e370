package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockRegisterReader struct {
	records []models.StudentAttendanceRecord
}

func (m *mockRegisterReader) SectionRegister(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error) {
	if sectionID == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
	}
	return m.records, nil
}

type mockResultSheetReader struct {
	exam    *models.Exam
	results []models.ExamResultDetail
}

func (m *mockResultSheetReader) Get(ctx context.Context, id string) (*models.Exam, []models.ExamAssignment, error) {
	if id == "missing" {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
	}
	return m.exam, nil, nil
}

func (m *mockResultSheetReader) Results(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	return m.results, nil
}

func TestExportServiceAttendanceRegisterCSV(t *testing.T) {
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	attendance := &mockRegisterReader{records: []models.StudentAttendanceRecord{
		{
			StudentAttendance: models.StudentAttendance{Date: date, Status: models.StudentPresent},
			StudentName:       "Siti Rahma",
			SectionName:       "A",
		},
		{
			StudentAttendance: models.StudentAttendance{Date: date, Status: models.StudentLate},
			StudentName:       "Budi Santoso",
			SectionName:       "A",
		},
	}}
	svc := NewExportService(attendance, &mockResultSheetReader{}, nil, nil, nil)

	payload, filename, err := svc.AttendanceRegisterCSV(context.Background(), "sec-1", date)
	require.NoError(t, err)

	assert.Equal(t, "attendance_sec-1_2026-03-09.csv", filename)
	body := string(payload)
	assert.Contains(t, body, "Student,Section,Date,Status,Notes")
	assert.Contains(t, body, "Siti Rahma,A,2026-03-09,present,")
	assert.Contains(t, body, "Budi Santoso,A,2026-03-09,late,")
}

func TestExportServiceAttendanceRegisterUnknownSection(t *testing.T) {
	svc := NewExportService(&mockRegisterReader{}, &mockResultSheetReader{}, nil, nil, nil)

	_, _, err := svc.AttendanceRegisterCSV(context.Background(), "missing", time.Now())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceExamResultSheetPDF(t *testing.T) {
	feedback := "solid work"
	exams := &mockResultSheetReader{
		exam: &models.Exam{
			ID:       "exam-1",
			Name:     "Midterm Mathematics",
			Date:     time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC),
			MaxScore: 80,
		},
		results: []models.ExamResultDetail{
			{ExamResult: models.ExamResult{Score: 72.5, Feedback: &feedback}, StudentName: "Siti Rahma"},
			{ExamResult: models.ExamResult{Score: 64}, StudentName: "Budi Santoso"},
		},
	}
	svc := NewExportService(&mockRegisterReader{}, exams, nil, nil, nil)

	payload, filename, err := svc.ExamResultSheetPDF(context.Background(), "exam-1")
	require.NoError(t, err)

	assert.Equal(t, "exam_results_exam-1.pdf", filename)
	require.NotEmpty(t, payload)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func TestExportServiceExamResultSheetMissingExam(t *testing.T) {
	svc := NewExportService(&mockRegisterReader{}, &mockResultSheetReader{}, nil, nil, nil)

	_, _, err := svc.ExamResultSheetPDF(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
