package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockSectionRepo struct {
	sections map[string]*models.Section
	homeroom map[string]*string
	deleted  []string
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{
		sections: map[string]*models.Section{},
		homeroom: map[string]*string{},
	}
}

func (m *mockSectionRepo) ListByClass(ctx context.Context, classID string) ([]models.SectionDetail, error) {
	var out []models.SectionDetail
	for _, section := range m.sections {
		if section.ClassID == classID {
			out = append(out, models.SectionDetail{Section: *section, ClassName: "Grade 10"})
		}
	}
	return out, nil
}

func (m *mockSectionRepo) FindByID(ctx context.Context, id string) (*models.Section, error) {
	section, ok := m.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *section
	return &copied, nil
}

func (m *mockSectionRepo) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	section, ok := m.sections[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.SectionDetail{Section: *section, ClassName: "Grade 10", AcademicYearID: "year-1"}, nil
}

func (m *mockSectionRepo) Create(ctx context.Context, section *models.Section) error {
	section.ID = "sec-new"
	m.sections[section.ID] = section
	return nil
}

func (m *mockSectionRepo) Update(ctx context.Context, section *models.Section) error {
	if _, ok := m.sections[section.ID]; !ok {
		return sql.ErrNoRows
	}
	m.sections[section.ID] = section
	return nil
}

func (m *mockSectionRepo) SetHomeroomTeacher(ctx context.Context, sectionID string, teacherID *string) error {
	if _, ok := m.sections[sectionID]; !ok {
		return sql.ErrNoRows
	}
	m.homeroom[sectionID] = teacherID
	return nil
}

func (m *mockSectionRepo) DeleteCascade(ctx context.Context, sectionID string) error {
	if _, ok := m.sections[sectionID]; !ok {
		return sql.ErrNoRows
	}
	delete(m.sections, sectionID)
	m.deleted = append(m.deleted, sectionID)
	return nil
}

type mockClassReader struct{}

func (m *mockClassReader) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Class{ID: id, Name: "Grade 10", AcademicYearID: "year-1"}, nil
}

func newSectionService(repo *mockSectionRepo) *SectionService {
	return NewSectionService(repo, &mockClassReader{}, &mockTeacherReader{}, nil, nil)
}

func TestSectionServiceCreateUnknownClass(t *testing.T) {
	repo := newMockSectionRepo()
	svc := newSectionService(repo)

	_, err := svc.Create(context.Background(), SectionRequest{Name: "A", ClassID: "missing"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
	assert.Empty(t, repo.sections)
}

func TestSectionServiceUpdateRenames(t *testing.T) {
	repo := newMockSectionRepo()
	repo.sections["sec-1"] = &models.Section{ID: "sec-1", Name: "A", ClassID: "class-1"}
	svc := newSectionService(repo)

	section, err := svc.Update(context.Background(), "sec-1", SectionRequest{Name: "B", ClassID: "class-1"})
	require.NoError(t, err)
	assert.Equal(t, "B", section.Name)
	assert.Equal(t, "B", repo.sections["sec-1"].Name)
}

func TestSectionServiceSetHomeroomUnknownTeacher(t *testing.T) {
	repo := newMockSectionRepo()
	repo.sections["sec-1"] = &models.Section{ID: "sec-1", Name: "A", ClassID: "class-1"}
	svc := newSectionService(repo)

	teacherID := "missing"
	err := svc.SetHomeroom(context.Background(), "sec-1", SetHomeroomRequest{TeacherID: &teacherID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.homeroom)
}

func TestSectionServiceSetHomeroomEmptyClears(t *testing.T) {
	repo := newMockSectionRepo()
	repo.sections["sec-1"] = &models.Section{ID: "sec-1", Name: "A", ClassID: "class-1"}
	svc := newSectionService(repo)

	empty := ""
	err := svc.SetHomeroom(context.Background(), "sec-1", SetHomeroomRequest{TeacherID: &empty})
	require.NoError(t, err)

	stored, ok := repo.homeroom["sec-1"]
	require.True(t, ok)
	assert.Nil(t, stored)
}

func TestSectionServiceDeleteMissing(t *testing.T) {
	repo := newMockSectionRepo()
	svc := newSectionService(repo)

	err := svc.Delete(context.Background(), "sec-9")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}
