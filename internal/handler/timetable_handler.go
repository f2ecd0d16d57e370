package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// TimetableHandler exposes timetable slot endpoints.
type TimetableHandler struct {
	service *service.TimeSlotService
}

// NewTimetableHandler constructs a timetable handler.
func NewTimetableHandler(svc *service.TimeSlotService) *TimetableHandler {
	return &TimetableHandler{service: svc}
}

// DayView godoc
// @Summary Section timetable for one day
// @Tags Timetable
// @Produce json
// @Param academicYearId query string true "Academic year ID"
// @Param classId query string true "Class ID"
// @Param sectionId query string true "Section ID"
// @Param day query string true "Day of week, e.g. MONDAY"
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) DayView(c *gin.Context) {
	scope := models.TimeSlotScope{
		AcademicYearID: c.Query("academicYearId"),
		ClassID:        c.Query("classId"),
		SectionID:      c.Query("sectionId"),
		DayOfWeek:      models.DayOfWeek(c.Query("day")),
	}
	if scope.AcademicYearID == "" || scope.ClassID == "" || scope.SectionID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "academicYearId, classId and sectionId required"))
		return
	}
	slots, err := h.service.DayView(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Get godoc
// @Summary Get time slot
// @Tags Timetable
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [get]
func (h *TimetableHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Create godoc
// @Summary Create time slot
// @Description End time is derived from start time and duration
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body service.CreateTimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimetableHandler) Create(c *gin.Context) {
	var req service.CreateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update time slot
// @Tags Timetable
// @Accept json
// @Produce json
// @Param id path string true "Time slot ID"
// @Param payload body service.UpdateTimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [put]
func (h *TimetableHandler) Update(c *gin.Context) {
	var req service.UpdateTimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete time slot
// @Tags Timetable
// @Produce json
// @Param id path string true "Time slot ID"
// @Success 204 {object} response.Envelope
// @Router /time-slots/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
