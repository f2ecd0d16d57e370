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

type mockAcademicYearRepo struct {
	years map[string]models.AcademicYear
}

func (m *mockAcademicYearRepo) List(ctx context.Context) ([]models.AcademicYear, error) {
	out := make([]models.AcademicYear, 0, len(m.years))
	for _, year := range m.years {
		out = append(out, year)
	}
	return out, nil
}

func (m *mockAcademicYearRepo) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if year, ok := m.years[id]; ok {
		return &year, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	for _, year := range m.years {
		if year.IsActive {
			return &year, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) Create(ctx context.Context, year *models.AcademicYear) error {
	if m.years == nil {
		m.years = make(map[string]models.AcademicYear)
	}
	year.ID = "year-new"
	m.years[year.ID] = *year
	return nil
}

func (m *mockAcademicYearRepo) Update(ctx context.Context, year *models.AcademicYear) error {
	if _, ok := m.years[year.ID]; !ok {
		return sql.ErrNoRows
	}
	m.years[year.ID] = *year
	return nil
}

func (m *mockAcademicYearRepo) SetActive(ctx context.Context, id string) error {
	if _, ok := m.years[id]; !ok {
		return sql.ErrNoRows
	}
	for key, year := range m.years {
		year.IsActive = key == id
		m.years[key] = year
	}
	return nil
}

func TestAcademicYearServiceCreateInactive(t *testing.T) {
	repo := &mockAcademicYearRepo{}
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	year, err := svc.Create(context.Background(), AcademicYearRequest{
		Name:      "2026/2027",
		StartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, year.IsActive)
}

func TestAcademicYearServiceCreateRejectsInvertedDates(t *testing.T) {
	svc := NewAcademicYearService(&mockAcademicYearRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), AcademicYearRequest{
		Name:      "2026/2027",
		StartDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceSetActiveDemotesOthers(t *testing.T) {
	repo := &mockAcademicYearRepo{years: map[string]models.AcademicYear{
		"year-1": {ID: "year-1", Name: "2025/2026", IsActive: true},
		"year-2": {ID: "year-2", Name: "2026/2027"},
	}}
	svc := NewAcademicYearService(repo, validator.New(), zap.NewNop())

	year, err := svc.SetActive(context.Background(), "year-2")
	require.NoError(t, err)
	assert.True(t, year.IsActive)
	assert.False(t, repo.years["year-1"].IsActive)

	active, err := svc.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "year-2", active.ID)
}

func TestAcademicYearServiceSetActiveMissing(t *testing.T) {
	svc := NewAcademicYearService(&mockAcademicYearRepo{}, validator.New(), zap.NewNop())

	_, err := svc.SetActive(context.Background(), "year-404")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAcademicYearServiceActiveNone(t *testing.T) {
	svc := NewAcademicYearService(&mockAcademicYearRepo{}, validator.New(), zap.NewNop())

	_, err := svc.Active(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
