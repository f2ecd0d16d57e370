package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// AssignmentHandler exposes roster and teaching assignment endpoints.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// SetSectionStudents godoc
// @Summary Replace section roster
// @Description Replaces the section's student roster wholesale
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.AssignSectionStudentsRequest true "Roster payload"
// @Success 204 {object} response.Envelope
// @Router /sections/{id}/students [put]
func (h *AssignmentHandler) SetSectionStudents(c *gin.Context) {
	var req service.AssignSectionStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetSectionStudents(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SectionStudents godoc
// @Summary List section roster
// @Tags Assignments
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/students [get]
func (h *AssignmentHandler) SectionStudents(c *gin.Context) {
	ids, err := h.service.SectionStudents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ids, nil)
}

// AddTeacherSubject godoc
// @Summary Qualify teacher for subject
// @Description Links a teacher to a subject; adding an existing link is a no-op
// @Tags Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Param subjectId path string true "Subject ID"
// @Success 204 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subjectId} [put]
func (h *AssignmentHandler) AddTeacherSubject(c *gin.Context) {
	if err := h.service.AddTeacherSubject(c.Request.Context(), c.Param("id"), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// RemoveTeacherSubject godoc
// @Summary Remove teacher subject qualification
// @Tags Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Param subjectId path string true "Subject ID"
// @Success 204 {object} response.Envelope
// @Router /teachers/{id}/subjects/{subjectId} [delete]
func (h *AssignmentHandler) RemoveTeacherSubject(c *gin.Context) {
	if err := h.service.RemoveTeacherSubject(c.Request.Context(), c.Param("id"), c.Param("subjectId")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TeacherSubjects godoc
// @Summary List teacher subjects
// @Tags Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/subjects [get]
func (h *AssignmentHandler) TeacherSubjects(c *gin.Context) {
	subjects, err := h.service.TeacherSubjects(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, nil)
}

// SetSectionSubjectTeacher godoc
// @Summary Bind subject teacher for section
// @Description Creates, repoints or removes the binding depending on teacher_id
// @Tags Assignments
// @Accept json
// @Produce json
// @Param id path string true "Section ID"
// @Param payload body service.AssignSectionSubjectTeacherRequest true "Binding payload"
// @Success 204 {object} response.Envelope
// @Router /sections/{id}/subject-teachers [put]
func (h *AssignmentHandler) SetSectionSubjectTeacher(c *gin.Context) {
	var req service.AssignSectionSubjectTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.SetSectionSubjectTeacher(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SectionSubjectTeachers godoc
// @Summary List section subject teachers
// @Tags Assignments
// @Produce json
// @Param id path string true "Section ID"
// @Success 200 {object} response.Envelope
// @Router /sections/{id}/subject-teachers [get]
func (h *AssignmentHandler) SectionSubjectTeachers(c *gin.Context) {
	links, err := h.service.SectionSubjectTeachers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}

// TeacherSectionAssignments godoc
// @Summary List a teacher's section assignments
// @Tags Assignments
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/assignments [get]
func (h *AssignmentHandler) TeacherSectionAssignments(c *gin.Context) {
	links, err := h.service.TeacherSectionAssignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, links, nil)
}
