package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func newStudentAttendanceRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func TestStudentAttendanceRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newStudentAttendanceRepoMock(t)
	defer cleanup()
	repo := NewStudentAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("att-1", "student-1", "section-1", date, "present", nil, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date)")).
		WithArgs(sqlmock.AnyArg(), "student-1", "section-1", date, models.StudentPresent, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.StudentAttendance{
		StudentID: "student-1",
		SectionID: "section-1",
		Date:      date,
		Status:    models.StudentPresent,
	})
	require.NoError(t, err)
	assert.Equal(t, "att-1", stored.ID)
	assert.Equal(t, models.StudentPresent, stored.Status)
}

func TestStudentAttendanceRepositoryUpsertRemark(t *testing.T) {
	db, mock, cleanup := newStudentAttendanceRepoMock(t)
	defer cleanup()
	repo := NewStudentAttendanceRepository(db)

	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	notes := "arrived 07:55"
	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("att-1", "student-1", "section-1", date, "late", notes, now.Add(-time.Hour), now)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, date)")).
		WithArgs(sqlmock.AnyArg(), "student-1", "section-1", date, models.StudentLate, notes, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(rows)

	stored, err := repo.Upsert(context.Background(), &models.StudentAttendance{
		StudentID: "student-1",
		SectionID: "section-1",
		Date:      date,
		Status:    models.StudentLate,
		Notes:     &notes,
	})
	require.NoError(t, err)
	// the re-mark keeps the original row identity
	assert.Equal(t, "att-1", stored.ID)
	assert.Equal(t, models.StudentLate, stored.Status)
	require.NotNil(t, stored.Notes)
	assert.Equal(t, notes, *stored.Notes)
}

func TestStudentAttendanceRepositoryStudentSummary(t *testing.T) {
	db, mock, cleanup := newStudentAttendanceRepoMock(t)
	defer cleanup()
	repo := NewStudentAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"status", "cnt"}).
		AddRow("present", 18).
		AddRow("absent", 1).
		AddRow("late", 1)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs("student-1").
		WillReturnRows(rows)

	summary, err := repo.StudentSummary(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, 18, summary.Present)
	assert.Equal(t, 1, summary.Absent)
	assert.Equal(t, 1, summary.Late)
	assert.Equal(t, 0, summary.Leave)
	assert.Equal(t, 20, summary.Total)
	assert.InDelta(t, 90.0, summary.Percent, 0.001)
}

func TestStudentAttendanceRepositoryStudentHistoryRange(t *testing.T) {
	db, mock, cleanup := newStudentAttendanceRepoMock(t)
	defer cleanup()
	repo := NewStudentAttendanceRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "date", "status", "notes", "created_at", "updated_at"}).
		AddRow("att-2", "student-1", "section-1", to.AddDate(0, 0, -1), "present", nil, time.Now(), time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("date >= $2 AND date <= $3")).
		WithArgs("student-1", from, to).
		WillReturnRows(rows)

	history, err := repo.StudentHistory(context.Background(), "student-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "att-2", history[0].ID)
}
