package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func newAssignmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
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

func TestAssignmentRepositoryReplaceSectionStudents(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_sections WHERE section_id = $1")).
		WithArgs("section-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_sections")).
		WithArgs(sqlmock.AnyArg(), "student-1", "section-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_sections")).
		WithArgs(sqlmock.AnyArg(), "student-2", "section-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceSectionStudents(context.Background(), "section-1", []string{"student-1", "student-2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceSectionStudentsEmptySet(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_sections WHERE section_id = $1")).
		WithArgs("section-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	err := repo.ReplaceSectionStudents(context.Background(), "section-1", nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryReplaceSectionStudentsRollsBack(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM student_sections WHERE section_id = $1")).
		WithArgs("section-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO student_sections")).
		WithArgs(sqlmock.AnyArg(), "student-1", "section-1", sqlmock.AnyArg()).
		WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	err := repo.ReplaceSectionStudents(context.Background(), "section-1", []string{"student-1"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssignmentRepositoryCurrentSectionNone(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 1")).
		WithArgs("student-1").
		WillReturnError(sql.ErrNoRows)

	link, err := repo.CurrentSection(context.Background(), "student-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Nil(t, link)
}

func TestAssignmentRepositoryCurrentSection(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "section_id", "created_at"}).
		AddRow("link-1", "student-1", "section-1", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC LIMIT 1")).
		WithArgs("student-1").
		WillReturnRows(rows)

	link, err := repo.CurrentSection(context.Background(), "student-1")
	require.NoError(t, err)
	assert.Equal(t, "section-1", link.SectionID)
}

func TestAssignmentRepositoryExistsTeacherSubject(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects")).
		WithArgs("teacher-1", "subject-1").
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsTeacherSubject(context.Background(), "teacher-1", "subject-1")
	require.NoError(t, err)
	assert.False(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teacher_subjects")).
		WithArgs("teacher-1", "subject-1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err = repo.ExistsTeacherSubject(context.Background(), "teacher-1", "subject-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestAssignmentRepositoryCreateTeacherSubject(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO teacher_subjects")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	link := &models.TeacherSubject{TeacherID: "teacher-1", SubjectID: "subject-1"}
	require.NoError(t, repo.CreateTeacherSubject(context.Background(), link))
	assert.NotEmpty(t, link.ID)
}

func TestAssignmentRepositoryUpdateSubjectSectionTeacherMissing(t *testing.T) {
	db, mock, cleanup := newAssignmentRepoMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subject_section_teachers SET teacher_id = $1")).
		WithArgs("teacher-2", sqlmock.AnyArg(), "link-99").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateSubjectSectionTeacher(context.Background(), "link-99", "teacher-2")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
