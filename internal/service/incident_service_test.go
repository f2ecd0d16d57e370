package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockIncidentRepo struct {
	incidents map[string]models.Incident
	persons   map[string][]models.IncidentPerson
}

func (m *mockIncidentRepo) List(ctx context.Context, filter models.IncidentFilter) ([]models.Incident, int, error) {
	return nil, 0, nil
}

func (m *mockIncidentRepo) FindDetailByID(ctx context.Context, id string) (*models.IncidentDetail, error) {
	incident, ok := m.incidents[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.IncidentDetail{Incident: incident, InvolvedPersons: m.persons[id]}, nil
}

func (m *mockIncidentRepo) Create(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error {
	if m.incidents == nil {
		m.incidents = make(map[string]models.Incident)
		m.persons = make(map[string][]models.IncidentPerson)
	}
	incident.ID = "inc-new"
	m.incidents[incident.ID] = *incident
	m.persons[incident.ID] = persons
	return nil
}

func (m *mockIncidentRepo) Update(ctx context.Context, incident *models.Incident, persons []models.IncidentPerson) error {
	if _, ok := m.incidents[incident.ID]; !ok {
		return sql.ErrNoRows
	}
	m.incidents[incident.ID] = *incident
	if persons != nil {
		m.persons[incident.ID] = persons
	}
	return nil
}

func (m *mockIncidentRepo) DeleteCascade(ctx context.Context, id string) error {
	if _, ok := m.incidents[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.incidents, id)
	delete(m.persons, id)
	return nil
}

func seededIncidentRepo() *mockIncidentRepo {
	return &mockIncidentRepo{
		incidents: map[string]models.Incident{
			"inc-1": {
				ID:          "inc-1",
				Title:       "Broken window",
				Description: "Window broken during recess",
				Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
				Status:      models.IncidentReported,
				ReportedBy:  "user-1",
			},
		},
		persons: map[string][]models.IncidentPerson{
			"inc-1": {{ID: "p-1", IncidentID: "inc-1", UserID: "stu-1", Role: "witness"}},
		},
	}
}

func TestIncidentServiceCreateStartsReported(t *testing.T) {
	repo := &mockIncidentRepo{}
	svc := NewIncidentService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Create(context.Background(), "user-1", CreateIncidentRequest{
		Title:       "Broken window",
		Description: "Window broken during recess",
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		InvolvedPersons: []IncidentPersonInput{
			{UserID: "stu-1", Role: "perpetrator"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.IncidentReported, detail.Status)
	assert.Equal(t, "user-1", detail.ReportedBy)
	require.Len(t, detail.InvolvedPersons, 1)
	assert.Equal(t, "stu-1", detail.InvolvedPersons[0].UserID)
}

func TestIncidentServiceUpdateStatusAnyDirection(t *testing.T) {
	repo := seededIncidentRepo()
	svc := NewIncidentService(repo, validator.New(), zap.NewNop())

	// jumping straight to resolved, then back to under investigation, both ok
	for _, status := range []models.IncidentStatus{models.IncidentResolved, models.IncidentUnderInvestigation} {
		detail, err := svc.Update(context.Background(), "inc-1", UpdateIncidentRequest{
			Title:       "Broken window",
			Description: "Window broken during recess",
			Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
			Status:      status,
		})
		require.NoError(t, err)
		assert.Equal(t, status, detail.Status)
	}
}

func TestIncidentServiceUpdateRejectsUnknownStatus(t *testing.T) {
	svc := NewIncidentService(seededIncidentRepo(), validator.New(), zap.NewNop())

	_, err := svc.Update(context.Background(), "inc-1", UpdateIncidentRequest{
		Title:       "Broken window",
		Description: "Window broken during recess",
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Status:      "escalated",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestIncidentServiceUpdatePersonsNilKeepsExisting(t *testing.T) {
	repo := seededIncidentRepo()
	svc := NewIncidentService(repo, validator.New(), zap.NewNop())

	detail, err := svc.Update(context.Background(), "inc-1", UpdateIncidentRequest{
		Title:       "Broken window",
		Description: "Window broken during recess",
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Status:      models.IncidentUnderInvestigation,
	})
	require.NoError(t, err)
	assert.Len(t, detail.InvolvedPersons, 1)
}

func TestIncidentServiceUpdatePersonsEmptyClears(t *testing.T) {
	repo := seededIncidentRepo()
	svc := NewIncidentService(repo, validator.New(), zap.NewNop())

	empty := []IncidentPersonInput{}
	detail, err := svc.Update(context.Background(), "inc-1", UpdateIncidentRequest{
		Title:       "Broken window",
		Description: "Window broken during recess",
		Date:        time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Status:      models.IncidentUnderInvestigation,
		InvolvedPersons: &empty,
	})
	require.NoError(t, err)
	assert.Empty(t, detail.InvolvedPersons)
}

func TestIncidentServiceDeleteMissing(t *testing.T) {
	svc := NewIncidentService(&mockIncidentRepo{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "inc-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
