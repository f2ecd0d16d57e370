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

// TimeSlotRepository persists timetable slots.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs the repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListByScope returns the slots of one section's day ordered by start time.
// The id tie-break keeps the ordering stable for overlapping slots.
func (r *TimeSlotRepository) ListByScope(ctx context.Context, scope models.TimeSlotScope) ([]models.TimeSlot, error) {
	const query = `SELECT id, academic_year_id, class_id, section_id, day_of_week, start_time, duration_minutes, end_time, slot_type, subject_id, title, created_at, updated_at
FROM time_slots
WHERE academic_year_id = $1 AND class_id = $2 AND section_id = $3 AND day_of_week = $4
ORDER BY start_time ASC, id ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query, scope.AcademicYearID, scope.ClassID, scope.SectionID, scope.DayOfWeek); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// FindByID loads a single slot.
func (r *TimeSlotRepository) FindByID(ctx context.Context, id string) (*models.TimeSlot, error) {
	const query = `SELECT id, academic_year_id, class_id, section_id, day_of_week, start_time, duration_minutes, end_time, slot_type, subject_id, title, created_at, updated_at
FROM time_slots WHERE id = $1`
	var slot models.TimeSlot
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find time slot: %w", err)
	}
	return &slot, nil
}

// Create inserts a new slot. EndTime must already be derived by the caller.
func (r *TimeSlotRepository) Create(ctx context.Context, slot *models.TimeSlot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = now
	}
	slot.UpdatedAt = now
	const query = `INSERT INTO time_slots (id, academic_year_id, class_id, section_id, day_of_week, start_time, duration_minutes, end_time, slot_type, subject_id, title, created_at, updated_at)
VALUES (:id, :academic_year_id, :class_id, :section_id, :day_of_week, :start_time, :duration_minutes, :end_time, :slot_type, :subject_id, :title, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create time slot: %w", err)
	}
	return nil
}

// Update persists the full slot row.
func (r *TimeSlotRepository) Update(ctx context.Context, slot *models.TimeSlot) error {
	slot.UpdatedAt = time.Now().UTC()
	const query = `UPDATE time_slots
SET day_of_week = :day_of_week, start_time = :start_time, duration_minutes = :duration_minutes, end_time = :end_time,
    slot_type = :slot_type, subject_id = :subject_id, title = :title, updated_at = :updated_at
WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, slot)
	if err != nil {
		return fmt.Errorf("update time slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated time slot rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a slot unconditionally; no referential checks apply.
func (r *TimeSlotRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM time_slots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete time slot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted time slot rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
