package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// StudentAttendanceRepository handles daily student attendance rows.
type StudentAttendanceRepository struct {
	db *sqlx.DB
}

// NewStudentAttendanceRepository constructs the repository.
func NewStudentAttendanceRepository(db *sqlx.DB) *StudentAttendanceRepository {
	return &StudentAttendanceRepository{db: db}
}

// Upsert writes the single attendance row for (student, date). The natural
// key conflict clause makes concurrent marks converge on the last write
// instead of racing a check-then-act.
func (r *StudentAttendanceRepository) Upsert(ctx context.Context, record *models.StudentAttendance) (*models.StudentAttendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO student_attendance (id, student_id, section_id, date, status, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, date)
DO UPDATE SET status = EXCLUDED.status, section_id = EXCLUDED.section_id, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING id, student_id, section_id, date, status, notes, created_at, updated_at`
	var stored models.StudentAttendance
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.StudentID, record.SectionID, record.Date, record.Status, record.Notes, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert student attendance: %w", err)
	}
	return &stored, nil
}

// ListBySectionAndDate returns the register for one section on one day.
func (r *StudentAttendanceRepository) ListBySectionAndDate(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error) {
	const query = `SELECT sa.id, sa.student_id, sa.section_id, sa.date, sa.status, sa.notes, sa.created_at, sa.updated_at,
       st.first_name || ' ' || st.last_name AS student_name, sec.name AS section_name
FROM student_attendance sa
JOIN students st ON st.id = sa.student_id
JOIN sections sec ON sec.id = sa.section_id
WHERE sa.section_id = $1 AND sa.date = $2
ORDER BY student_name ASC`
	var rows []models.StudentAttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, sectionID, date); err != nil {
		return nil, fmt.Errorf("list section attendance: %w", err)
	}
	return rows, nil
}

// StudentHistory returns attendance rows for one student, newest first.
func (r *StudentAttendanceRepository) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.StudentAttendance, error) {
	where := []string{"student_id = $1"}
	args := []interface{}{studentID}
	if from != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *to)
	}
	query := fmt.Sprintf(`SELECT id, student_id, section_id, date, status, notes, created_at, updated_at
FROM student_attendance WHERE %s ORDER BY date DESC`, strings.Join(where, " AND "))
	var rows []models.StudentAttendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}

// StudentSummary aggregates status counts for a student.
func (r *StudentAttendanceRepository) StudentSummary(ctx context.Context, studentID string) (*models.StudentAttendanceSummary, error) {
	const query = `SELECT status, COUNT(*) AS cnt FROM student_attendance WHERE student_id = $1 GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance summary: %w", err)
	}
	summary := &models.StudentAttendanceSummary{}
	for _, row := range rows {
		switch models.StudentAttendanceStatus(row.Status) {
		case models.StudentPresent:
			summary.Present += row.Count
		case models.StudentAbsent:
			summary.Absent += row.Count
		case models.StudentLate:
			summary.Late += row.Count
		case models.StudentLeave:
			summary.Leave += row.Count
		}
		summary.Total += row.Count
	}
	if summary.Total > 0 {
		summary.Percent = float64(summary.Present) / float64(summary.Total) * 100
	}
	return summary, nil
}
