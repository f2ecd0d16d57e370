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

// IncidentRepository persists incidents and their involved-person sets.
type IncidentRepository struct {
	db *sqlx.DB
}

// NewIncidentRepository constructs the repository.
func NewIncidentRepository(db *sqlx.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

// List returns incidents matching the filter with a total count.
func (r *IncidentRepository) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT id, title, description, date, status, investigation_notes, resolution_details, resolution_date, reported_by, created_at, updated_at
FROM incidents WHERE %s ORDER BY date DESC LIMIT %d OFFSET %d`, whereClause, size, offset)
	var incidents []models.Incident
	if err := r.db.SelectContext(ctx, &incidents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list incidents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM incidents WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count incidents: %w", err)
	}
	return incidents, total, nil
}

// FindDetailByID loads an incident with its involved persons.
func (r *IncidentRepository) FindDetailByID(ctx context.Context, id string) (*models.IncidentDetail, error) {
	const query = `SELECT id, title, description, date, status, investigation_notes, resolution_details, resolution_date, reported_by, created_at, updated_at
FROM incidents WHERE id = $1`
	var incident models.Incident
	if err := r.db.GetContext(ctx, &incident, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find incident: %w", err)
	}
	const personQuery = `SELECT id, incident_id, user_id, role, created_at FROM incident_persons WHERE incident_id = $1 ORDER BY created_at ASC`
	var persons []models.IncidentPerson
	if err := r.db.SelectContext(ctx, &persons, personQuery, id); err != nil {
		return nil, fmt.Errorf("list incident persons: %w", err)
	}
	return &models.IncidentDetail{Incident: incident, InvolvedPersons: persons}, nil
}

// Create inserts the incident together with its involved persons in one
// transaction.
func (r *IncidentRepository) Create(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error {
	if incident.ID == "" {
		incident.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if incident.CreatedAt.IsZero() {
		incident.CreatedAt = now
	}
	incident.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create incident: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const query = `INSERT INTO incidents (id, title, description, date, status, investigation_notes, resolution_details, resolution_date, reported_by, created_at, updated_at)
VALUES (:id, :title, :description, :date, :status, :investigation_notes, :resolution_details, :resolution_date, :reported_by, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, tx, query, incident); err != nil {
		return fmt.Errorf("create incident: %w", err)
	}
	if err := insertIncidentPersons(ctx, tx, incident.ID, persons, now); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create incident: %w", err)
	}
	commit = true
	return nil
}

// Update persists incident fields and replaces the involved-person set
// wholesale when persons is non-nil.
func (r *IncidentRepository) Update(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error {
	incident.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update incident: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	const query = `UPDATE incidents
SET title = :title, description = :description, date = :date, status = :status,
    investigation_notes = :investigation_notes, resolution_details = :resolution_details,
    resolution_date = :resolution_date, updated_at = :updated_at
WHERE id = :id`
	result, err := sqlx.NamedExecContext(ctx, tx, query, incident)
	if err != nil {
		return fmt.Errorf("update incident: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check updated incident rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if persons != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM incident_persons WHERE incident_id = $1`, incident.ID); err != nil {
			return fmt.Errorf("clear incident persons: %w", err)
		}
		if err := insertIncidentPersons(ctx, tx, incident.ID, persons, time.Now().UTC()); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update incident: %w", err)
	}
	commit = true
	return nil
}

// DeleteCascade removes the incident and its involved persons.
func (r *IncidentRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete incident: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM incident_persons WHERE incident_id = $1`, id); err != nil {
		return fmt.Errorf("delete incident persons: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM incidents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete incident: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check deleted incident rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete incident: %w", err)
	}
	commit = true
	return nil
}

func insertIncidentPersons(ctx context.Context, tx *sqlx.Tx, incidentID string, persons []models.IncidentPerson, now time.Time) error {
	const query = `INSERT INTO incident_persons (id, incident_id, user_id, role, created_at)
VALUES ($1, $2, $3, $4, $5) ON CONFLICT (incident_id, user_id) DO NOTHING`
	for i := range persons {
		person := &persons[i]
		if person.ID == "" {
			person.ID = uuid.NewString()
		}
		if person.CreatedAt.IsZero() {
			person.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, query, person.ID, incidentID, person.UserID, person.Role, person.CreatedAt); err != nil {
			return fmt.Errorf("insert incident person %s: %w", person.UserID, err)
		}
	}
	return nil
}
