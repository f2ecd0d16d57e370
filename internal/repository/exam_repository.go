package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// ExamRepository persists exams, their section assignments and results.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams matching the filter with a total count.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, int, error) {
	base := `FROM exams e`
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.SubjectID != "" {
		where = append(where, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.SectionID != "" {
		base += ` JOIN exam_assignments ea ON ea.exam_id = e.id`
		where = append(where, fmt.Sprintf("ea.section_id = $%d", len(args)+1))
		args = append(args, filter.SectionID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("e.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("e.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	// DISTINCT on both queries: exam_assignments may hold duplicate rows for
	// one exam-section pair, which would otherwise duplicate exams and
	// inflate the count.
	query := fmt.Sprintf(`SELECT DISTINCT e.id, e.name, e.date, e.max_score, e.subject_id, e.created_by, e.created_at, e.updated_at
%s WHERE %s ORDER BY e.date %s LIMIT %d OFFSET %d`, base, whereClause, order, size, offset)
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT e.id) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// FindByID loads one exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, date, max_score, subject_id, created_by, created_at, updated_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = now
	}
	exam.UpdatedAt = now
	const query = `INSERT INTO exams (id, name, date, max_score, subject_id, created_by, created_at, updated_at)
VALUES (:id, :name, :date, :max_score, :subject_id, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update persists exam fields.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	exam.UpdatedAt = time.Now().UTC()
	const query = `UPDATE exams SET name = :name, date = :date, max_score = :max_score, subject_id = :subject_id, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated exam rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// AssignSections inserts one assignment row per section. No dedupe is
// attempted; this is a creation-time call.
func (r *ExamRepository) AssignSections(ctx context.Context, examID string, sectionIDs []string, academicYearID string) error {
	const query = `INSERT INTO exam_assignments (id, exam_id, section_id, academic_year_id, created_at)
VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	for _, sectionID := range sectionIDs {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), examID, sectionID, academicYearID, now); err != nil {
			return fmt.Errorf("assign exam to section %s: %w", sectionID, err)
		}
	}
	return nil
}

// ListAssignments returns the section links for one exam.
func (r *ExamRepository) ListAssignments(ctx context.Context, examID string) ([]models.ExamAssignment, error) {
	const query = `SELECT id, exam_id, section_id, academic_year_id, created_at FROM exam_assignments WHERE exam_id = $1 ORDER BY created_at ASC`
	var assignments []models.ExamAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, examID); err != nil {
		return nil, fmt.Errorf("list exam assignments: %w", err)
	}
	return assignments, nil
}

// UpsertResult writes one student's score keyed by (exam_id, student_id).
func (r *ExamRepository) UpsertResult(ctx context.Context, result *models.ExamResult) (*models.ExamResult, error) {
	now := time.Now().UTC()
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = now
	}
	result.UpdatedAt = now
	const query = `INSERT INTO exam_results (id, exam_id, student_id, score, feedback, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (exam_id, student_id)
DO UPDATE SET score = EXCLUDED.score, feedback = EXCLUDED.feedback, updated_at = EXCLUDED.updated_at
RETURNING id, exam_id, student_id, score, feedback, created_at, updated_at`
	var stored models.ExamResult
	if err := r.db.GetContext(ctx, &stored, query, result.ID, result.ExamID, result.StudentID, result.Score, result.Feedback, result.CreatedAt, result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert exam result: %w", err)
	}
	return &stored, nil
}

// ListResultsByExam returns results with student names for result sheets.
func (r *ExamRepository) ListResultsByExam(ctx context.Context, examID string) ([]models.ExamResultDetail, error) {
	const query = `SELECT er.id, er.exam_id, er.student_id, er.score, er.feedback, er.created_at, er.updated_at,
       st.first_name || ' ' || st.last_name AS student_name
FROM exam_results er
JOIN students st ON st.id = er.student_id
WHERE er.exam_id = $1
ORDER BY student_name ASC`
	var results []models.ExamResultDetail
	if err := r.db.SelectContext(ctx, &results, query, examID); err != nil {
		return nil, fmt.Errorf("list exam results: %w", err)
	}
	return results, nil
}

// DeleteCascade removes the exam together with its results and section
// assignments. The dependents go first, inside one transaction, so a failure
// partway cannot orphan rows.
func (r *ExamRepository) DeleteCascade(ctx context.Context, examID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete exam: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_results WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("delete exam results: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exam_assignments WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("delete exam assignments: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, examID)
	if err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted exam rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete exam: %w", err)
	}
	commit = true
	return nil
}
