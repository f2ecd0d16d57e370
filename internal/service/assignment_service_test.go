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

type mockAssignmentRepo struct {
	roster          map[string][]string
	teacherSubjects map[string]bool
	createdTS       *models.TeacherSubject
	sectionTeachers map[string]models.SubjectSectionTeacher
	createdSST      *models.SubjectSectionTeacher
	updatedSST      map[string]string
	deletedSST      []string
	subjectClasses  map[string]bool
	createdSC       *models.SubjectClass
}

func sstKey(subjectID, sectionID string) string { return subjectID + "/" + sectionID }

func (m *mockAssignmentRepo) ReplaceSectionStudents(ctx context.Context, sectionID string, studentIDs []string) error {
	if m.roster == nil {
		m.roster = make(map[string][]string)
	}
	m.roster[sectionID] = studentIDs
	return nil
}

func (m *mockAssignmentRepo) ListSectionStudents(ctx context.Context, sectionID string) ([]string, error) {
	return m.roster[sectionID], nil
}

func (m *mockAssignmentRepo) CurrentSection(ctx context.Context, studentID string) (*models.StudentSection, error) {
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) ExistsTeacherSubject(ctx context.Context, teacherID, subjectID string) (bool, error) {
	return m.teacherSubjects[teacherID+"/"+subjectID], nil
}

func (m *mockAssignmentRepo) CreateTeacherSubject(ctx context.Context, link *models.TeacherSubject) error {
	if m.teacherSubjects == nil {
		m.teacherSubjects = make(map[string]bool)
	}
	m.teacherSubjects[link.TeacherID+"/"+link.SubjectID] = true
	m.createdTS = link
	return nil
}

func (m *mockAssignmentRepo) DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string) error {
	delete(m.teacherSubjects, teacherID+"/"+subjectID)
	return nil
}

func (m *mockAssignmentRepo) ListTeacherSubjects(ctx context.Context, teacherID string) ([]models.Subject, error) {
	return nil, nil
}

func (m *mockAssignmentRepo) FindSubjectSectionTeacher(ctx context.Context, subjectID, sectionID string) (*models.SubjectSectionTeacher, error) {
	if link, ok := m.sectionTeachers[sstKey(subjectID, sectionID)]; ok {
		return &link, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) CreateSubjectSectionTeacher(ctx context.Context, link *models.SubjectSectionTeacher) error {
	if m.sectionTeachers == nil {
		m.sectionTeachers = make(map[string]models.SubjectSectionTeacher)
	}
	link.ID = "sst-new"
	m.sectionTeachers[sstKey(link.SubjectID, link.SectionID)] = *link
	m.createdSST = link
	return nil
}

func (m *mockAssignmentRepo) UpdateSubjectSectionTeacher(ctx context.Context, id, teacherID string) error {
	if m.updatedSST == nil {
		m.updatedSST = make(map[string]string)
	}
	m.updatedSST[id] = teacherID
	return nil
}

func (m *mockAssignmentRepo) DeleteSubjectSectionTeacher(ctx context.Context, id string) error {
	m.deletedSST = append(m.deletedSST, id)
	return nil
}

func (m *mockAssignmentRepo) ListSectionSubjectTeachers(ctx context.Context, sectionID string) ([]models.SubjectSectionTeacher, error) {
	return nil, nil
}

func (m *mockAssignmentRepo) ListTeacherSectionAssignments(ctx context.Context, teacherID string) ([]models.SubjectSectionTeacher, error) {
	return nil, nil
}

func (m *mockAssignmentRepo) ExistsSubjectClass(ctx context.Context, subjectID, classID string) (bool, error) {
	return m.subjectClasses[subjectID+"/"+classID], nil
}

func (m *mockAssignmentRepo) CreateSubjectClass(ctx context.Context, link *models.SubjectClass) error {
	if m.subjectClasses == nil {
		m.subjectClasses = make(map[string]bool)
	}
	m.subjectClasses[link.SubjectID+"/"+link.ClassID] = true
	m.createdSC = link
	return nil
}

type mockSectionDetailReader struct{}

func (m *mockSectionDetailReader) FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.SectionDetail{
		Section:        models.Section{ID: id, Name: "A", ClassID: "class-1"},
		ClassName:      "Grade 10",
		AcademicYearID: "year-1",
	}, nil
}

type mockTeacherReader struct{}

func (m *mockTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Teacher{ID: id}, nil
}

type mockSubjectReader struct{}

func (m *mockSubjectReader) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Subject{ID: id}, nil
}

type mockStudentReader struct{}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.Student, error) {
	if id == "missing" {
		return nil, sql.ErrNoRows
	}
	return &models.Student{ID: id}, nil
}

func newAssignmentService(repo *mockAssignmentRepo) *AssignmentService {
	return NewAssignmentService(repo, &mockSectionDetailReader{}, &mockTeacherReader{}, &mockSubjectReader{}, &mockStudentReader{}, validator.New(), zap.NewNop())
}

func TestAssignmentServiceSetSectionStudents(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := newAssignmentService(repo)

	err := svc.SetSectionStudents(context.Background(), "sec-1", AssignSectionStudentsRequest{
		StudentIDs: []string{"stu-1", "stu-2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"stu-1", "stu-2"}, repo.roster["sec-1"])
}

func TestAssignmentServiceSetSectionStudentsUnknownStudent(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := newAssignmentService(repo)

	err := svc.SetSectionStudents(context.Background(), "sec-1", AssignSectionStudentsRequest{
		StudentIDs: []string{"stu-1", "missing"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.roster)
}

func TestAssignmentServiceAddTeacherSubjectIdempotent(t *testing.T) {
	repo := &mockAssignmentRepo{teacherSubjects: map[string]bool{"t-1/sub-1": true}}
	svc := newAssignmentService(repo)

	require.NoError(t, svc.AddTeacherSubject(context.Background(), "t-1", "sub-1"))
	assert.Nil(t, repo.createdTS)

	require.NoError(t, svc.AddTeacherSubject(context.Background(), "t-1", "sub-2"))
	require.NotNil(t, repo.createdTS)
	assert.Equal(t, "sub-2", repo.createdTS.SubjectID)
}

func TestAssignmentServiceSetSubjectTeacherCreates(t *testing.T) {
	repo := &mockAssignmentRepo{}
	svc := newAssignmentService(repo)

	teacherID := "t-1"
	err := svc.SetSectionSubjectTeacher(context.Background(), "sec-1", AssignSectionSubjectTeacherRequest{
		SubjectID: "sub-1",
		TeacherID: &teacherID,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.createdSST)
	assert.Equal(t, "class-1", repo.createdSST.ClassID)
	assert.Equal(t, "year-1", repo.createdSST.AcademicYearID)
	// the subject gets linked to the class alongside
	require.NotNil(t, repo.createdSC)
	assert.Equal(t, "class-1", repo.createdSC.ClassID)
}

func TestAssignmentServiceSetSubjectTeacherRepoints(t *testing.T) {
	repo := &mockAssignmentRepo{sectionTeachers: map[string]models.SubjectSectionTeacher{
		sstKey("sub-1", "sec-1"): {ID: "sst-1", SubjectID: "sub-1", SectionID: "sec-1", TeacherID: "t-1"},
	}}
	svc := newAssignmentService(repo)

	teacherID := "t-2"
	err := svc.SetSectionSubjectTeacher(context.Background(), "sec-1", AssignSectionSubjectTeacherRequest{
		SubjectID: "sub-1",
		TeacherID: &teacherID,
	})
	require.NoError(t, err)
	assert.Equal(t, "t-2", repo.updatedSST["sst-1"])
	assert.Nil(t, repo.createdSST)
}

func TestAssignmentServiceSetSubjectTeacherUnassigns(t *testing.T) {
	repo := &mockAssignmentRepo{sectionTeachers: map[string]models.SubjectSectionTeacher{
		sstKey("sub-1", "sec-1"): {ID: "sst-1", SubjectID: "sub-1", SectionID: "sec-1", TeacherID: "t-1"},
	}}
	svc := newAssignmentService(repo)

	err := svc.SetSectionSubjectTeacher(context.Background(), "sec-1", AssignSectionSubjectTeacherRequest{
		SubjectID: "sub-1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"sst-1"}, repo.deletedSST)

	// unassigning again is a no-op
	repo.deletedSST = nil
	delete(repo.sectionTeachers, sstKey("sub-1", "sec-1"))
	err = svc.SetSectionSubjectTeacher(context.Background(), "sec-1", AssignSectionSubjectTeacherRequest{
		SubjectID: "sub-1",
	})
	require.NoError(t, err)
	assert.Empty(t, repo.deletedSST)
}

func TestAssignmentServiceSetSubjectTeacherSectionMissing(t *testing.T) {
	svc := newAssignmentService(&mockAssignmentRepo{})

	teacherID := "t-1"
	err := svc.SetSectionSubjectTeacher(context.Background(), "missing", AssignSectionSubjectTeacherRequest{
		SubjectID: "sub-1",
		TeacherID: &teacherID,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
