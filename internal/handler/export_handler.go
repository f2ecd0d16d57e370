package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// ExportHandler serves file exports.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an export handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

func serveDownload(c *gin.Context, payload []byte, filename, mimeType string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, mimeType, payload)
}

// AttendanceRegisterCSV godoc
// @Summary Export section attendance register as CSV
// @Tags Exports
// @Produce text/csv
// @Param id path string true "Section ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {file} file
// @Router /exports/attendance/sections/{id} [get]
func (h *ExportHandler) AttendanceRegisterCSV(c *gin.Context) {
	date, err := parseDateQuery(c, "date")
	if err != nil {
		response.Error(c, err)
		return
	}
	if date == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date required"))
		return
	}
	payload, filename, err := h.service.AttendanceRegisterCSV(c.Request.Context(), c.Param("id"), *date)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, payload, filename, "text/csv")
}

// ExamResultSheetPDF godoc
// @Summary Export exam result sheet as PDF
// @Tags Exports
// @Produce application/pdf
// @Param id path string true "Exam ID"
// @Success 200 {file} file
// @Router /exports/exams/{id}/results [get]
func (h *ExportHandler) ExamResultSheetPDF(c *gin.Context) {
	payload, filename, err := h.service.ExamResultSheetPDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveDownload(c, payload, filename, "application/pdf")
}
