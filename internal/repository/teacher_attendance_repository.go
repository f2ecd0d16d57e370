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

// TeacherAttendanceRepository handles daily teacher attendance rows.
type TeacherAttendanceRepository struct {
	db *sqlx.DB
}

// NewTeacherAttendanceRepository constructs the repository.
func NewTeacherAttendanceRepository(db *sqlx.DB) *TeacherAttendanceRepository {
	return &TeacherAttendanceRepository{db: db}
}

// Upsert writes the single attendance row for (teacher, date).
func (r *TeacherAttendanceRepository) Upsert(ctx context.Context, record *models.TeacherAttendance) (*models.TeacherAttendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO teacher_attendance (id, teacher_id, date, status, check_in, check_out, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (teacher_id, date)
DO UPDATE SET status = EXCLUDED.status, check_in = EXCLUDED.check_in, check_out = EXCLUDED.check_out, updated_at = EXCLUDED.updated_at
RETURNING id, teacher_id, date, status, check_in, check_out, created_at, updated_at`
	var stored models.TeacherAttendance
	if err := r.db.GetContext(ctx, &stored, query, record.ID, record.TeacherID, record.Date, record.Status, record.CheckIn, record.CheckOut, record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert teacher attendance: %w", err)
	}
	return &stored, nil
}

// TeacherHistory returns attendance rows for one teacher, newest first.
func (r *TeacherAttendanceRepository) TeacherHistory(ctx context.Context, teacherID string, from, to *time.Time) ([]models.TeacherAttendance, error) {
	where := []string{"teacher_id = $1"}
	args := []interface{}{teacherID}
	if from != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *to)
	}
	query := fmt.Sprintf(`SELECT id, teacher_id, date, status, check_in, check_out, created_at, updated_at
FROM teacher_attendance WHERE %s ORDER BY date DESC`, strings.Join(where, " AND "))
	var rows []models.TeacherAttendance
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("teacher attendance history: %w", err)
	}
	return rows, nil
}

// ListByDate returns every teacher attendance row for a day.
func (r *TeacherAttendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]models.TeacherAttendance, error) {
	const query = `SELECT id, teacher_id, date, status, check_in, check_out, created_at, updated_at
FROM teacher_attendance WHERE date = $1 ORDER BY teacher_id ASC`
	var rows []models.TeacherAttendance
	if err := r.db.SelectContext(ctx, &rows, query, date); err != nil {
		return nil, fmt.Errorf("list teacher attendance: %w", err)
	}
	return rows, nil
}
