package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/campuskit/attendance-report-api/internal/models"
	appErrors "github.com/campuskit/attendance-report-api/pkg/errors"
	"github.com/campuskit/attendance-report-api/pkg/export"
)

// ExportFormat enumerates supported report download formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type reportBuilder interface {
	BuildReport(ctx context.Context, req ReportRequest) (*models.AttendanceReport, bool, error)
}

// ExportService renders assembled attendance reports into downloadable
// documents.
type ExportService struct {
	reports reportBuilder
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(reports reportBuilder, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		reports: reports,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

// ExportResult carries a rendered document ready for download.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Export builds the report for the given constraints and renders its
// statistic tables in the requested format.
func (s *ExportService) Export(ctx context.Context, req ReportRequest, format string) (*ExportResult, error) {
	report, _, err := s.reports.BuildReport(ctx, req)
	if err != nil {
		return nil, err
	}
	tables := reportTables(report)

	switch ExportFormat(format) {
	case ExportFormatCSV:
		content, err := s.csv.Render(tables)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("attendance-report-%s.csv", uuid.NewString()),
			ContentType: "text/csv",
			Content:     content,
		}, nil
	case ExportFormatPDF:
		content, err := s.pdf.Render(tables, "Attendance Report")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf export")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("attendance-report-%s.pdf", uuid.NewString()),
			ContentType: "application/pdf",
			Content:     content,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format, expected csv or pdf")
	}
}

func reportTables(report *models.AttendanceReport) []export.Table {
	students := export.Table{
		Title:   "Students",
		Headers: []string{"Student", "Roll Number", "Course", "Total", "Present", "Absent", "Percentage"},
		Rows:    make([][]string, 0, len(report.StudentStats)),
	}
	for _, stat := range report.StudentStats {
		students.Rows = append(students.Rows, []string{
			stat.StudentName,
			stat.RollNumber,
			stat.CourseName,
			strconv.Itoa(stat.TotalClasses),
			strconv.Itoa(stat.PresentClasses),
			strconv.Itoa(stat.AbsentClasses),
			formatPercent(stat.AttendancePercentage),
		})
	}

	subjects := export.Table{
		Title:   "Subjects",
		Headers: []string{"Subject", "Total", "Students", "Present", "Absent", "Percentage"},
		Rows:    make([][]string, 0, len(report.SubjectStats)),
	}
	for _, stat := range report.SubjectStats {
		subjects.Rows = append(subjects.Rows, []string{
			stat.SubjectName,
			strconv.Itoa(stat.TotalClasses),
			strconv.Itoa(stat.DistinctStudentCount),
			strconv.Itoa(stat.PresentCount),
			strconv.Itoa(stat.AbsentCount),
			formatPercent(stat.AttendancePercentage),
		})
	}

	courses := export.Table{
		Title:   "Courses",
		Headers: []string{"Course", "Total", "Students", "Present", "Absent", "Percentage"},
		Rows:    make([][]string, 0, len(report.CourseStats)),
	}
	for _, stat := range report.CourseStats {
		courses.Rows = append(courses.Rows, []string{
			stat.CourseName,
			strconv.Itoa(stat.TotalClasses),
			strconv.Itoa(stat.DistinctStudentCount),
			strconv.Itoa(stat.PresentCount),
			strconv.Itoa(stat.AbsentCount),
			formatPercent(stat.AttendancePercentage),
		})
	}

	return []export.Table{students, subjects, courses}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
