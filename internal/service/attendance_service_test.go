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

type mockStudentAttendanceRepo struct {
	records map[string]models.StudentAttendance
}

func attKey(studentID string, date time.Time) string {
	return studentID + "/" + date.Format("2006-01-02")
}

func (m *mockStudentAttendanceRepo) Upsert(ctx context.Context, record *models.StudentAttendance) (*models.StudentAttendance, error) {
	if m.records == nil {
		m.records = make(map[string]models.StudentAttendance)
	}
	key := attKey(record.StudentID, record.Date)
	if existing, ok := m.records[key]; ok {
		record.ID = existing.ID
	} else {
		record.ID = "att-" + key
	}
	m.records[key] = *record
	return record, nil
}

func (m *mockStudentAttendanceRepo) ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error) {
	return nil, nil
}

func (m *mockStudentAttendanceRepo) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.StudentAttendance, error) {
	return nil, nil
}

func (m *mockStudentAttendanceRepo) StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error) {
	return &models.StudentAttendanceSummary{}, nil
}

type mockTeacherAttendanceRepo struct {
	upserted *models.TeacherAttendance
}

func (m *mockTeacherAttendanceRepo) Upsert(ctx context.Context, record *models.TeacherAttendance) (*models.TeacherAttendance, error) {
	record.ID = "t-att-1"
	m.upserted = record
	return record, nil
}

func (m *mockTeacherAttendanceRepo) TeacherHistory(ctx context.Context, teacherID string, from, to *time.Time) ([]models.TeacherAttendance, error) {
	return nil, nil
}

func (m *mockTeacherAttendanceRepo) ListByDate(ctx context.Context, date time.Time) ([]models.TeacherAttendance, error) {
	return nil, nil
}

type mockSectionResolver struct{}

func (m *mockSectionResolver) CurrentSection(ctx context.Context, studentID string) (*models.StudentSection, error) {
	if studentID == "unassigned" {
		return nil, sql.ErrNoRows
	}
	return &models.StudentSection{StudentID: studentID, SectionID: "sec-1"}, nil
}

func newAttendanceService(students *mockStudentAttendanceRepo) *AttendanceService {
	return NewAttendanceService(students, &mockTeacherAttendanceRepo{}, &mockSectionResolver{}, validator.New(), zap.NewNop())
}

func TestAttendanceServiceMarkStudent(t *testing.T) {
	repo := &mockStudentAttendanceRepo{}
	svc := newAttendanceService(repo)

	marked := time.Date(2026, 3, 9, 14, 30, 0, 0, time.FixedZone("WIB", 7*3600))
	record, err := svc.MarkStudent(context.Background(), MarkStudentAttendanceRequest{
		StudentID: "stu-1",
		Date:      marked,
		Status:    models.StudentPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "sec-1", record.SectionID)
	// intraday timestamp collapses to the UTC calendar day
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), record.Date)
}

func TestAttendanceServiceMarkStudentOverwritesSameDay(t *testing.T) {
	repo := &mockStudentAttendanceRepo{}
	svc := newAttendanceService(repo)

	day := time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)
	first, err := svc.MarkStudent(context.Background(), MarkStudentAttendanceRequest{
		StudentID: "stu-1", Date: day, Status: models.StudentAbsent,
	})
	require.NoError(t, err)

	second, err := svc.MarkStudent(context.Background(), MarkStudentAttendanceRequest{
		StudentID: "stu-1", Date: day.Add(3 * time.Hour), Status: models.StudentLate,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.StudentLate, second.Status)
	assert.Len(t, repo.records, 1)
}

func TestAttendanceServiceMarkStudentNoSection(t *testing.T) {
	svc := newAttendanceService(&mockStudentAttendanceRepo{})

	_, err := svc.MarkStudent(context.Background(), MarkStudentAttendanceRequest{
		StudentID: "unassigned",
		Date:      time.Now(),
		Status:    models.StudentPresent,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNoSectionAssigned.Code, appErr.Code)
	assert.Equal(t, appErrors.ErrNoSectionAssigned.Status, appErr.Status)
}

func TestAttendanceServiceMarkStudentUnknownStatus(t *testing.T) {
	svc := newAttendanceService(&mockStudentAttendanceRepo{})

	_, err := svc.MarkStudent(context.Background(), MarkStudentAttendanceRequest{
		StudentID: "stu-1",
		Date:      time.Now(),
		Status:    "vacationing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceServiceMarkTeacher(t *testing.T) {
	teachers := &mockTeacherAttendanceRepo{}
	svc := NewAttendanceService(&mockStudentAttendanceRepo{}, teachers, &mockSectionResolver{}, validator.New(), zap.NewNop())

	checkIn := "07:45"
	record, err := svc.MarkTeacher(context.Background(), MarkTeacherAttendanceRequest{
		TeacherID: "t-1",
		Date:      time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC),
		Status:    models.TeacherPresent,
		CheckIn:   &checkIn,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), record.Date)
	require.NotNil(t, teachers.upserted.CheckIn)
	assert.Equal(t, "07:45", *teachers.upserted.CheckIn)
}

func TestAttendanceServiceMarkTeacherRejectsMalformedCheckTimes(t *testing.T) {
	teachers := &mockTeacherAttendanceRepo{}
	svc := NewAttendanceService(&mockStudentAttendanceRepo{}, teachers, &mockSectionResolver{}, validator.New(), zap.NewNop())

	for _, clock := range []string{"7:45", "24:00", "+1:30", "ab:cd"} {
		value := clock
		_, err := svc.MarkTeacher(context.Background(), MarkTeacherAttendanceRequest{
			TeacherID: "t-1",
			Date:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			Status:    models.TeacherPresent,
			CheckIn:   &value,
		})
		require.Error(t, err, "check_in=%q", clock)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

		_, err = svc.MarkTeacher(context.Background(), MarkTeacherAttendanceRequest{
			TeacherID: "t-1",
			Date:      time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
			Status:    models.TeacherPresent,
			CheckOut:  &value,
		})
		require.Error(t, err, "check_out=%q", clock)
	}
	assert.Nil(t, teachers.upserted)
}
