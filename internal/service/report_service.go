package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuskit/attendance-report-api/internal/models"
	appErrors "github.com/campuskit/attendance-report-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type attendanceEventRepository interface {
	List(ctx context.Context, filter models.AttendanceEventFilter) ([]models.AttendanceEvent, error)
}

type catalogRepository interface {
	ListActiveCourses(ctx context.Context) ([]models.CourseRef, error)
	ListSubjects(ctx context.Context) ([]models.SubjectRef, error)
}

// ReportService builds attendance reports from the event store snapshot.
// It never writes; every invocation recomputes statistics from the raw
// filtered events.
type ReportService struct {
	events    attendanceEventRepository
	catalog   catalogRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cacheTTL  time.Duration
}

// NewReportService constructs the report service.
func NewReportService(events attendanceEventRepository, catalog catalogRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cacheTTL time.Duration) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		events:    events,
		catalog:   catalog,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
	}
}

// ReportRequest carries the raw, all-optional report constraints as they
// arrive from the HTTP layer.
type ReportRequest struct {
	CourseID  string `json:"courseId"`
	SubjectID string `json:"subjectId"`
	StudentID string `json:"studentId"`
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// resolveFilter normalises the request into a store query. A date range
// is applied only when both bounds are supplied; a single bound is
// dropped rather than silently applied half-open.
func (s *ReportService) resolveFilter(req ReportRequest) (models.AttendanceEventFilter, error) {
	filter := models.AttendanceEventFilter{
		CourseID:  req.CourseID,
		SubjectID: req.SubjectID,
		StudentID: req.StudentID,
	}
	if err := s.validator.Struct(req); err != nil {
		return filter, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date format, expected YYYY-MM-DD")
	}
	if req.StartDate == "" || req.EndDate == "" {
		return filter, nil
	}
	from, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return filter, appErrors.Clone(appErrors.ErrValidation, "invalid date format, expected YYYY-MM-DD")
	}
	filter.DateFrom = &from
	filter.DateTo = &to
	return filter, nil
}

// BuildReport computes the full multi-level attendance rollup for the
// given constraints. The boolean indicates whether the payload came
// from cache.
func (s *ReportService) BuildReport(ctx context.Context, req ReportRequest) (*models.AttendanceReport, bool, error) {
	filter, err := s.resolveFilter(req)
	if err != nil {
		return nil, false, err
	}

	cacheKey := makeReportCacheKey(filter)
	var cached models.AttendanceReport
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	start := time.Now()
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to query attendance events")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("attendance_events", time.Since(start))
	}

	start = time.Now()
	courses, err := s.catalog.ListActiveCourses(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	subjects, err := s.catalog.ListSubjects(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("report_catalog", time.Since(start))
	}

	res := aggregateAttendance(events)
	if res.skipped > 0 {
		s.logger.Warn("skipped events with unresolved references",
			zap.Int("count", res.skipped),
			zap.Int("total", len(events)))
	}
	report := assembleReport(res, events, courses, subjects)

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, report, s.cacheTTL); err != nil {
			s.logger.Warn("cache attendance report", zap.Error(err))
		}
	}
	return report, false, nil
}

// InvalidateCache drops every cached report payload. Callers invoke this
// after bulk attendance writes elsewhere in the system.
func (s *ReportService) InvalidateCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, "report:attendance:*")
}

func makeReportCacheKey(filter models.AttendanceEventFilter) string {
	var builder strings.Builder
	builder.Grow(64)
	builder.WriteString("report:attendance")
	for _, part := range []string{
		filter.CourseID,
		filter.SubjectID,
		filter.StudentID,
		formatDate(filter.DateFrom),
		formatDate(filter.DateTo),
	} {
		builder.WriteByte(':')
		builder.WriteString(strings.ReplaceAll(part, ":", "|"))
	}
	return builder.String()
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}
