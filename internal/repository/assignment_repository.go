package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// AssignmentRepository manages the roster join tables: student↔section,
// teacher↔subject, subject↔class and the per-section subject teacher
// override.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ReplaceSectionStudents substitutes the section roster wholesale: the old
// rows are deleted and the new set inserted in one transaction, so a failure
// never leaves the section half-assigned.
func (r *AssignmentRepository) ReplaceSectionStudents(ctx context.Context, sectionID string, studentIDs []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace section students: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM student_sections WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("clear section students: %w", err)
	}

	const insert = `INSERT INTO student_sections (id, student_id, section_id, created_at)
VALUES ($1, $2, $3, $4) ON CONFLICT (student_id, section_id) DO NOTHING`
	now := time.Now().UTC()
	for _, studentID := range studentIDs {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), studentID, sectionID, now); err != nil {
			return fmt.Errorf("insert section student %s: %w", studentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace section students: %w", err)
	}
	commit = true
	return nil
}

// ListSectionStudents returns the student ids currently in a section.
func (r *AssignmentRepository) ListSectionStudents(ctx context.Context, sectionID string) ([]string, error) {
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, `SELECT student_id FROM student_sections WHERE section_id = $1 ORDER BY created_at ASC, student_id ASC`, sectionID); err != nil {
		return nil, fmt.Errorf("list section students: %w", err)
	}
	return ids, nil
}

// CurrentSection resolves a student's section as the most recent assignment.
// Returns sql.ErrNoRows when the student has none.
func (r *AssignmentRepository) CurrentSection(ctx context.Context, studentID string) (*models.StudentSection, error) {
	const query = `SELECT id, student_id, section_id, created_at
FROM student_sections WHERE student_id = $1
ORDER BY created_at DESC LIMIT 1`
	var link models.StudentSection
	if err := r.db.GetContext(ctx, &link, query, studentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("resolve current section: %w", err)
	}
	return &link, nil
}

// ExistsTeacherSubject checks whether the teacher-subject pair is present.
func (r *AssignmentRepository) ExistsTeacherSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2 LIMIT 1`, teacherID, subjectID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher subject: %w", err)
	}
	return true, nil
}

// CreateTeacherSubject inserts the pair. Callers check existence first; the
// conflict clause keeps a concurrent duplicate insert from erroring.
func (r *AssignmentRepository) CreateTeacherSubject(ctx context.Context, link *models.TeacherSubject) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO teacher_subjects (id, teacher_id, subject_id, created_at)
VALUES (:id, :teacher_id, :subject_id, :created_at)
ON CONFLICT (teacher_id, subject_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create teacher subject: %w", err)
	}
	return nil
}

// DeleteTeacherSubject removes the pair when present.
func (r *AssignmentRepository) DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_subjects WHERE teacher_id = $1 AND subject_id = $2`, teacherID, subjectID); err != nil {
		return fmt.Errorf("delete teacher subject: %w", err)
	}
	return nil
}

// ListTeacherSubjects returns the subjects a teacher is assigned to.
func (r *AssignmentRepository) ListTeacherSubjects(ctx context.Context, teacherID string) ([]models.Subject, error) {
	const query = `SELECT s.id, s.name, s.code, s.created_at, s.updated_at
FROM teacher_subjects ts
JOIN subjects s ON s.id = ts.subject_id
WHERE ts.teacher_id = $1
ORDER BY s.name ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return subjects, nil
}

// FindSubjectSectionTeacher loads the override row for (subject, section).
func (r *AssignmentRepository) FindSubjectSectionTeacher(ctx context.Context, subjectID, sectionID string) (*models.SubjectSectionTeacher, error) {
	const query = `SELECT id, subject_id, section_id, teacher_id, class_id, academic_year_id, created_at, updated_at
FROM subject_section_teachers WHERE subject_id = $1 AND section_id = $2`
	var link models.SubjectSectionTeacher
	if err := r.db.GetContext(ctx, &link, query, subjectID, sectionID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find subject section teacher: %w", err)
	}
	return &link, nil
}

// CreateSubjectSectionTeacher inserts a new override row.
func (r *AssignmentRepository) CreateSubjectSectionTeacher(ctx context.Context, link *models.SubjectSectionTeacher) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if link.CreatedAt.IsZero() {
		link.CreatedAt = now
	}
	link.UpdatedAt = now
	const query = `INSERT INTO subject_section_teachers (id, subject_id, section_id, teacher_id, class_id, academic_year_id, created_at, updated_at)
VALUES (:id, :subject_id, :section_id, :teacher_id, :class_id, :academic_year_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create subject section teacher: %w", err)
	}
	return nil
}

// UpdateSubjectSectionTeacher repoints an existing override at a teacher.
func (r *AssignmentRepository) UpdateSubjectSectionTeacher(ctx context.Context, id, teacherID string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE subject_section_teachers SET teacher_id = $1, updated_at = $2 WHERE id = $3`, teacherID, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update subject section teacher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated subject section teacher rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteSubjectSectionTeacher removes an override row by id.
func (r *AssignmentRepository) DeleteSubjectSectionTeacher(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM subject_section_teachers WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject section teacher: %w", err)
	}
	return nil
}

// ListSectionSubjectTeachers returns the override rows for a section.
func (r *AssignmentRepository) ListSectionSubjectTeachers(ctx context.Context, sectionID string) ([]models.SubjectSectionTeacher, error) {
	const query = `SELECT id, subject_id, section_id, teacher_id, class_id, academic_year_id, created_at, updated_at
FROM subject_section_teachers WHERE section_id = $1 ORDER BY created_at ASC`
	var links []models.SubjectSectionTeacher
	if err := r.db.SelectContext(ctx, &links, query, sectionID); err != nil {
		return nil, fmt.Errorf("list section subject teachers: %w", err)
	}
	return links, nil
}

// ListTeacherSectionAssignments returns the override rows held by a teacher.
func (r *AssignmentRepository) ListTeacherSectionAssignments(ctx context.Context, teacherID string) ([]models.SubjectSectionTeacher, error) {
	const query = `SELECT id, subject_id, section_id, teacher_id, class_id, academic_year_id, created_at, updated_at
FROM subject_section_teachers WHERE teacher_id = $1 ORDER BY created_at ASC`
	var links []models.SubjectSectionTeacher
	if err := r.db.SelectContext(ctx, &links, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher section assignments: %w", err)
	}
	return links, nil
}

// ExistsSubjectClass checks whether the subject-class pair is present.
func (r *AssignmentRepository) ExistsSubjectClass(ctx context.Context, subjectID, classID string) (bool, error) {
	var exists int
	err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM subject_classes WHERE subject_id = $1 AND class_id = $2 LIMIT 1`, subjectID, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject class: %w", err)
	}
	return true, nil
}

// CreateSubjectClass links a subject to a class.
func (r *AssignmentRepository) CreateSubjectClass(ctx context.Context, link *models.SubjectClass) error {
	if link.ID == "" {
		link.ID = uuid.NewString()
	}
	if link.CreatedAt.IsZero() {
		link.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO subject_classes (id, subject_id, class_id, created_at)
VALUES (:id, :subject_id, :class_id, :created_at)
ON CONFLICT (subject_id, class_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, query, link); err != nil {
		return fmt.Errorf("create subject class: %w", err)
	}
	return nil
}
