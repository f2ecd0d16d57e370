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

// SectionRepository persists sections and owns their cascade delete.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository constructs the repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// ListByClass returns the sections of one class with joined detail.
func (r *SectionRepository) ListByClass(ctx context.Context, classID string) ([]models.SectionDetail, error) {
	const query = `SELECT s.id, s.name, s.class_id, s.homeroom_teacher_id, s.created_at, s.updated_at,
       c.name AS class_name, c.academic_year_id,
       t.first_name || ' ' || t.last_name AS homeroom_teacher_name,
       (SELECT COUNT(*) FROM student_sections ss WHERE ss.section_id = s.id) AS student_count
FROM sections s
JOIN classes c ON c.id = s.class_id
LEFT JOIN teachers t ON t.id = s.homeroom_teacher_id
WHERE s.class_id = $1
ORDER BY s.name ASC`
	var sections []models.SectionDetail
	if err := r.db.SelectContext(ctx, &sections, query, classID); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	return sections, nil
}

// FindByID loads one section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	const query = `SELECT id, name, class_id, homeroom_teacher_id, created_at, updated_at FROM sections WHERE id = $1`
	var section models.Section
	if err := r.db.GetContext(ctx, &section, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section: %w", err)
	}
	return &section, nil
}

// FindDetailByID loads one section with joined class and teacher names.
func (r *SectionRepository) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	const query = `SELECT s.id, s.name, s.class_id, s.homeroom_teacher_id, s.created_at, s.updated_at,
       c.name AS class_name, c.academic_year_id,
       t.first_name || ' ' || t.last_name AS homeroom_teacher_name,
       (SELECT COUNT(*) FROM student_sections ss WHERE ss.section_id = s.id) AS student_count
FROM sections s
JOIN classes c ON c.id = s.class_id
LEFT JOIN teachers t ON t.id = s.homeroom_teacher_id
WHERE s.id = $1`
	var detail models.SectionDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find section detail: %w", err)
	}
	return &detail, nil
}

// Create inserts a new section.
func (r *SectionRepository) Create(ctx context.Context, section *models.Section) error {
	if section.ID == "" {
		section.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if section.CreatedAt.IsZero() {
		section.CreatedAt = now
	}
	section.UpdatedAt = now
	const query = `INSERT INTO sections (id, name, class_id, homeroom_teacher_id, created_at, updated_at)
VALUES (:id, :name, :class_id, :homeroom_teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, section); err != nil {
		return fmt.Errorf("create section: %w", err)
	}
	return nil
}

// Update persists section fields.
func (r *SectionRepository) Update(ctx context.Context, section *models.Section) error {
	section.UpdatedAt = time.Now().UTC()
	const query = `UPDATE sections SET name = :name, homeroom_teacher_id = :homeroom_teacher_id, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, section)
	if err != nil {
		return fmt.Errorf("update section: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated section rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetHomeroomTeacher sets or clears the homeroom reference.
func (r *SectionRepository) SetHomeroomTeacher(ctx context.Context, sectionID string, teacherID *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sections SET homeroom_teacher_id = $1, updated_at = $2 WHERE id = $3`, teacherID, time.Now().UTC(), sectionID)
	if err != nil {
		return fmt.Errorf("set homeroom teacher: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check homeroom teacher rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteCascade removes a section and every row that hangs off it: student
// assignments, subject teacher overrides and timetable slots, in that fixed
// order, inside one transaction.
func (r *SectionRepository) DeleteCascade(ctx context.Context, sectionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete section: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM student_sections WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete section students: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM subject_section_teachers WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete section subject teachers: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM time_slots WHERE section_id = $1`, sectionID); err != nil {
		return fmt.Errorf("delete section time slots: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM sections WHERE id = $1`, sectionID)
	if err != nil {
		return fmt.Errorf("delete section: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted section rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete section: %w", err)
	}
	commit = true
	return nil
}
