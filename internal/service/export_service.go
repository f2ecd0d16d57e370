package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/export"
)

type registerReader interface {
	SectionRegister(ctx context.Context, sectionID string, date time.Time) ([]models.StudentAttendanceRecord, error)
}

type resultSheetReader interface {
	Get(ctx context.Context, id string) (*models.Exam, []models.ExamAssignment, error)
	Results(ctx context.Context, examID string) ([]models.ExamResultDetail, error)
}

type csvRenderer interface {
	Render(table export.Table) ([]byte, error)
}

type pdfRenderer interface {
	Render(table export.Table) ([]byte, error)
}

// ExportService renders attendance registers and exam result sheets for
// download.
type ExportService struct {
	attendance registerReader
	exams      resultSheetReader
	csv        csvRenderer
	pdf        pdfRenderer
	logger     *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(attendance registerReader, exams resultSheetReader, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{attendance: attendance, exams: exams, csv: csv, pdf: pdf, logger: logger}
}

// AttendanceRegisterCSV renders one section's register for a day as CSV.
func (s *ExportService) AttendanceRegisterCSV(ctx context.Context, sectionID string, date time.Time) ([]byte, string, error) {
	records, err := s.attendance.SectionRegister(ctx, sectionID, date)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   fmt.Sprintf("Attendance %s", date.Format("2006-01-02")),
		Columns: []string{"Student", "Section", "Date", "Status", "Notes"},
	}
	for _, record := range records {
		notes := ""
		if record.Notes != nil {
			notes = *record.Notes
		}
		table.Rows = append(table.Rows, []string{
			record.StudentName,
			record.SectionName,
			record.Date.Format("2006-01-02"),
			string(record.Status),
			notes,
		})
	}

	payload, err := s.csv.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render register")
	}
	filename := fmt.Sprintf("attendance_%s_%s.csv", sectionID, date.Format("2006-01-02"))
	return payload, filename, nil
}

// ExamResultSheetPDF renders one exam's scores as a PDF table.
func (s *ExportService) ExamResultSheetPDF(ctx context.Context, examID string) ([]byte, string, error) {
	exam, _, err := s.exams.Get(ctx, examID)
	if err != nil {
		return nil, "", err
	}
	results, err := s.exams.Results(ctx, examID)
	if err != nil {
		return nil, "", err
	}

	table := export.Table{
		Title:   fmt.Sprintf("%s (%s)", exam.Name, exam.Date.Format("2006-01-02")),
		Columns: []string{"Student", "Score", "Max", "Feedback"},
	}
	for _, result := range results {
		feedback := ""
		if result.Feedback != nil {
			feedback = *result.Feedback
		}
		table.Rows = append(table.Rows, []string{
			result.StudentName,
			fmt.Sprintf("%g", result.Score),
			fmt.Sprintf("%g", exam.MaxScore),
			feedback,
		})
	}

	payload, err := s.pdf.Render(table)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render result sheet")
	}
	filename := fmt.Sprintf("exam_results_%s.pdf", examID)
	return payload, filename, nil
}
