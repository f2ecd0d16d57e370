package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockClassRepo struct {
	classes  map[string]models.Class
	sections map[string][]string
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	return nil, 0, nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok {
		return &class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	if m.classes == nil {
		m.classes = make(map[string]models.Class)
	}
	class.ID = "class-new"
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	if _, ok := m.classes[class.ID]; !ok {
		return sql.ErrNoRows
	}
	m.classes[class.ID] = *class
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.classes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.classes, id)
	return nil
}

func (m *mockClassRepo) SectionIDs(ctx context.Context, classID string) ([]string, error) {
	return m.sections[classID], nil
}

type mockYearReader struct{}

func (m *mockYearReader) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.AcademicYear{ID: id}, nil
}

func TestClassServiceCreateUnknownYear(t *testing.T) {
	svc := NewClassService(&mockClassRepo{}, &mockYearReader{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), ClassRequest{Name: "Grade 10", AcademicYearID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClassServiceDeleteRefusedWithSections(t *testing.T) {
	repo := &mockClassRepo{
		classes:  map[string]models.Class{"class-1": {ID: "class-1", Name: "Grade 10"}},
		sections: map[string][]string{"class-1": {"sec-1"}},
	}
	svc := NewClassService(repo, &mockYearReader{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "class-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, repo.classes, "class-1")
}

func TestClassServiceDeleteEmptyClass(t *testing.T) {
	repo := &mockClassRepo{
		classes: map[string]models.Class{"class-1": {ID: "class-1", Name: "Grade 10"}},
	}
	svc := NewClassService(repo, &mockYearReader{}, validator.New(), zap.NewNop())

	require.NoError(t, svc.Delete(context.Background(), "class-1"))
	assert.NotContains(t, repo.classes, "class-1")
}
