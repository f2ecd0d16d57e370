package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type incidentRepository interface {
	List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error)
	FindDetailByID(ctx context.Context, id string) (*models.IncidentDetail, error)
	Create(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error
	Update(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error
	DeleteCascade(ctx context.Context, id string) error
}

// IncidentPersonInput is one involved (user, role) pair.
type IncidentPersonInput struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required"`
}

// CreateIncidentRequest files a new incident.
type CreateIncidentRequest struct {
	Title           string                `json:"title" validate:"required"`
	Description     string                `json:"description" validate:"required"`
	Date            time.Time             `json:"date" validate:"required"`
	InvolvedPersons []IncidentPersonInput `json:"involved_persons,omitempty" validate:"dive"`
}

// UpdateIncidentRequest edits an incident. Status may move to any valid
// value; the forward-only walk is a UI concern, not a store rule, so
// mis-filed incidents stay correctable. A nil InvolvedPersons leaves the
// person set untouched; a non-nil one replaces it wholesale.
type UpdateIncidentRequest struct {
	Title              string                 `json:"title" validate:"required"`
	Description        string                 `json:"description" validate:"required"`
	Date               time.Time              `json:"date" validate:"required"`
	Status             models.IncidentStatus  `json:"status" validate:"required"`
	InvestigationNotes *string                `json:"investigation_notes,omitempty"`
	ResolutionDetails  *string                `json:"resolution_details,omitempty"`
	ResolutionDate     *time.Time             `json:"resolution_date,omitempty"`
	InvolvedPersons    *[]IncidentPersonInput `json:"involved_persons,omitempty"`
}

// IncidentService manages disciplinary and safety incidents.
type IncidentService struct {
	repo      incidentRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIncidentService constructs IncidentService.
func NewIncidentService(repo incidentRepository, validate *validator.Validate, logger *zap.Logger) *IncidentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IncidentService{repo: repo, validator: validate, logger: logger}
}

// List returns incidents matching the filter with pagination metadata.
func (s *IncidentService) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, *models.Pagination, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "unknown incident status")
	}
	incidents, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list incidents")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	return incidents, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one incident with its involved persons.
func (s *IncidentService) Get(ctx context.Context, id string) (*models.IncidentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}
	return detail, nil
}

// Create files a new incident in reported state.
func (s *IncidentService) Create(ctx context.Context, reportedBy string, req CreateIncidentRequest) (*models.IncidentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}
	incident := &models.Incident{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Status:      models.IncidentReported,
		ReportedBy:  reportedBy,
	}
	if err := s.repo.Create(ctx, incident, toIncidentPersons(req.InvolvedPersons)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create incident")
	}
	return s.Get(ctx, incident.ID)
}

// Update edits an incident and optionally replaces its involved persons.
func (s *IncidentService) Update(ctx context.Context, id string, req UpdateIncidentRequest) (*models.IncidentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid incident payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown incident status")
	}

	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load incident")
	}

	incident := detail.Incident
	incident.Title = req.Title
	incident.Description = req.Description
	incident.Date = req.Date
	incident.Status = req.Status
	incident.InvestigationNotes = req.InvestigationNotes
	incident.ResolutionDetails = req.ResolutionDetails
	incident.ResolutionDate = req.ResolutionDate

	var persons []models.IncidentPerson
	if req.InvolvedPersons != nil {
		persons = toIncidentPersons(*req.InvolvedPersons)
		if persons == nil {
			persons = []models.IncidentPerson{}
		}
	}

	if err := s.repo.Update(ctx, &incident, persons); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update incident")
	}
	return s.Get(ctx, id)
}

// Delete removes an incident together with its involved persons.
func (s *IncidentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "incident not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete incident")
	}
	return nil
}

func toIncidentPersons(inputs []IncidentPersonInput) []models.IncidentPerson {
	if len(inputs) == 0 {
		return nil
	}
	persons := make([]models.IncidentPerson, 0, len(inputs))
	for _, input := range inputs {
		persons = append(persons, models.IncidentPerson{UserID: input.UserID, Role: input.Role})
	}
	return persons
}
