package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type assignmentRepository interface {
	ReplaceSectionStudents(ctx context.Context, sectionID string, studentIDs []string) error
	ListSectionStudents(ctx context.Context, sectionID string) ([]string, error)
	CurrentSection(ctx context.Context, studentID string) (*models.StudentSection, error)
	ExistsTeacherSubject(ctx context.Context, teacherID, subjectID string) (bool, error)
	CreateTeacherSubject(ctx context.Context, link *models.TeacherSubject) error
	DeleteTeacherSubject(ctx context.Context, teacherID, subjectID string) error
	ListTeacherSubjects(ctx context.Context, teacherID string) ([]models.Subject, error)
	FindSubjectSectionTeacher(ctx context.Context, subjectID, sectionID string) (*models.SubjectSectionTeacher, error)
	CreateSubjectSectionTeacher(ctx context.Context, link *models.SubjectSectionTeacher) error
	UpdateSubjectSectionTeacher(ctx context.Context, id, teacherID string) error
	DeleteSubjectSectionTeacher(ctx context.Context, id string) error
	ListSectionSubjectTeachers(ctx context.Context, sectionID string) ([]models.SubjectSectionTeacher, error)
	ListTeacherSectionAssignments(ctx context.Context, teacherID string) ([]models.SubjectSectionTeacher, error)
	ExistsSubjectClass(ctx context.Context, subjectID, classID string) (bool, error)
	CreateSubjectClass(ctx context.Context, link *models.SubjectClass) error
}

type sectionDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.SectionDetail, error)
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type studentExistsReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// AssignSectionStudentsRequest sets a section's roster wholesale.
type AssignSectionStudentsRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required"`
}

// AssignSectionSubjectTeacherRequest binds (or unbinds) the teacher for one
// subject in one section. A nil TeacherID removes the binding.
type AssignSectionSubjectTeacherRequest struct {
	SubjectID string  `json:"subject_id" validate:"required"`
	TeacherID *string `json:"teacher_id"`
}

// AssignmentService orchestrates roster and teaching assignments.
type AssignmentService struct {
	repo      assignmentRepository
	sections  sectionDetailReader
	teachers  teacherReader
	subjects  subjectReader
	students  studentExistsReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs AssignmentService.
func NewAssignmentService(repo assignmentRepository, sections sectionDetailReader, teachers teacherReader, subjects subjectReader, students studentExistsReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, sections: sections, teachers: teachers, subjects: subjects, students: students, validator: validate, logger: logger}
}

// SetSectionStudents replaces a section's roster with the given students.
// The previous roster is discarded; an empty list empties the section.
func (s *AssignmentService) SetSectionStudents(ctx context.Context, sectionID string, req AssignSectionStudentsRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster payload")
	}
	if _, err := s.loadSection(ctx, sectionID); err != nil {
		return err
	}
	for _, studentID := range req.StudentIDs {
		if _, err := s.students.FindByID(ctx, studentID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrNotFound, "student "+studentID+" not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
	}
	if err := s.repo.ReplaceSectionStudents(ctx, sectionID, req.StudentIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign students")
	}
	return nil
}

// SectionStudents lists the roster of a section.
func (s *AssignmentService) SectionStudents(ctx context.Context, sectionID string) ([]string, error) {
	if _, err := s.loadSection(ctx, sectionID); err != nil {
		return nil, err
	}
	ids, err := s.repo.ListSectionStudents(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list section students")
	}
	return ids, nil
}

// AddTeacherSubject links a teacher to a subject. Adding an existing link is
// a no-op, not an error.
func (s *AssignmentService) AddTeacherSubject(ctx context.Context, teacherID, subjectID string) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.subjects.FindByID(ctx, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	exists, err := s.repo.ExistsTeacherSubject(ctx, teacherID, subjectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher subject")
	}
	if exists {
		return nil
	}
	link := &models.TeacherSubject{TeacherID: teacherID, SubjectID: subjectID}
	if err := s.repo.CreateTeacherSubject(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to add teacher subject")
	}
	return nil
}

// RemoveTeacherSubject unlinks a teacher from a subject.
func (s *AssignmentService) RemoveTeacherSubject(ctx context.Context, teacherID, subjectID string) error {
	if err := s.repo.DeleteTeacherSubject(ctx, teacherID, subjectID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove teacher subject")
	}
	return nil
}

// TeacherSubjects lists a teacher's subjects.
func (s *AssignmentService) TeacherSubjects(ctx context.Context, teacherID string) ([]models.Subject, error) {
	subjects, err := s.repo.ListTeacherSubjects(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher subjects")
	}
	return subjects, nil
}

// SetSectionSubjectTeacher resolves the three cases in one call: no teacher
// given removes any existing binding, an existing binding is repointed, and
// a missing one is created with the section's class and year denormalized in.
func (s *AssignmentService) SetSectionSubjectTeacher(ctx context.Context, sectionID string, req AssignSectionSubjectTeacherRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject teacher payload")
	}

	section, err := s.loadSection(ctx, sectionID)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindSubjectSectionTeacher(ctx, req.SubjectID, sectionID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject teacher")
	}

	if req.TeacherID == nil || *req.TeacherID == "" {
		if existing == nil {
			return nil
		}
		if err := s.repo.DeleteSubjectSectionTeacher(ctx, existing.ID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unassign subject teacher")
		}
		return nil
	}

	if _, err := s.teachers.FindByID(ctx, *req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	if existing != nil {
		if err := s.repo.UpdateSubjectSectionTeacher(ctx, existing.ID, *req.TeacherID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject teacher")
		}
		return nil
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	link := &models.SubjectSectionTeacher{
		SubjectID:      req.SubjectID,
		SectionID:      sectionID,
		TeacherID:      *req.TeacherID,
		ClassID:        section.ClassID,
		AcademicYearID: section.AcademicYearID,
	}
	if err := s.repo.CreateSubjectSectionTeacher(ctx, link); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject teacher")
	}

	// keep the subject linked to the class so class-scoped subject listings
	// pick it up
	existsClass, err := s.repo.ExistsSubjectClass(ctx, req.SubjectID, section.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject class")
	}
	if !existsClass {
		if err := s.repo.CreateSubjectClass(ctx, &models.SubjectClass{SubjectID: req.SubjectID, ClassID: section.ClassID}); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link subject to class")
		}
	}
	return nil
}

// SectionSubjectTeachers lists the subject teacher bindings of a section.
func (s *AssignmentService) SectionSubjectTeachers(ctx context.Context, sectionID string) ([]models.SubjectSectionTeacher, error) {
	if _, err := s.loadSection(ctx, sectionID); err != nil {
		return nil, err
	}
	links, err := s.repo.ListSectionSubjectTeachers(ctx, sectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject teachers")
	}
	return links, nil
}

// TeacherSectionAssignments lists where a teacher currently teaches.
func (s *AssignmentService) TeacherSectionAssignments(ctx context.Context, teacherID string) ([]models.SubjectSectionTeacher, error) {
	links, err := s.repo.ListTeacherSectionAssignments(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher assignments")
	}
	return links, nil
}

func (s *AssignmentService) loadSection(ctx context.Context, sectionID string) (*models.SectionDetail, error) {
	section, err := s.sections.FindDetailByID(ctx, sectionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "section not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load section")
	}
	return section, nil
}
