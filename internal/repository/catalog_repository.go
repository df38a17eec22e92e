package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/attendance-report-api/internal/models"
)

// CatalogRepository serves the course and subject lookup lists used to
// populate report filter dropdowns.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository constructs the repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListActiveCourses returns all currently-active courses.
func (r *CatalogRepository) ListActiveCourses(ctx context.Context) ([]models.CourseRef, error) {
	query := `SELECT id, name FROM courses WHERE active = TRUE ORDER BY name ASC`
	courses := []models.CourseRef{}
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// ListSubjects returns all subjects regardless of filter.
func (r *CatalogRepository) ListSubjects(ctx context.Context) ([]models.SubjectRef, error) {
	query := `SELECT id, name, course_id FROM subjects ORDER BY name ASC`
	subjects := []models.SubjectRef{}
	if err := r.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
