package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campuskit/attendance-report-api/internal/middleware"
	"github.com/campuskit/attendance-report-api/internal/models"
	"github.com/campuskit/attendance-report-api/internal/service"
	appErrors "github.com/campuskit/attendance-report-api/pkg/errors"
	"github.com/campuskit/attendance-report-api/pkg/response"
)

type reportService interface {
	BuildReport(ctx context.Context, req service.ReportRequest) (*models.AttendanceReport, bool, error)
}

type exportService interface {
	Export(ctx context.Context, req service.ReportRequest, format string) (*service.ExportResult, error)
}

// ReportHandler exposes the attendance reporting endpoints.
type ReportHandler struct {
	reports reportService
	exports exportService
}

// NewReportHandler constructs the report handler.
func NewReportHandler(reports reportService, exports exportService) *ReportHandler {
	return &ReportHandler{reports: reports, exports: exports}
}

// Attendance returns the multi-level attendance rollup for the supplied
// filter. All query parameters are optional.
func (h *ReportHandler) Attendance(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req := parseReportRequest(c)
	start := time.Now()
	report, cacheHit, err := h.reports.BuildReport(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, report, meta)
}

// Export streams the report statistics as a CSV or PDF attachment.
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	req := parseReportRequest(c)
	format := c.DefaultQuery("format", string(service.ExportFormatCSV))
	result, err := h.exports.Export(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

func parseReportRequest(c *gin.Context) service.ReportRequest {
	return service.ReportRequest{
		CourseID:  c.Query("courseId"),
		SubjectID: c.Query("subjectId"),
		StudentID: c.Query("studentId"),
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
	}
}
