package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/campuskit/attendance-report-api/internal/models"
)

// AttendanceEventRepository reads attendance marks from the event store.
// The reporting engine never writes through this repository.
type AttendanceEventRepository struct {
	db *sqlx.DB
}

// NewAttendanceEventRepository constructs the repository.
func NewAttendanceEventRepository(db *sqlx.DB) *AttendanceEventRepository {
	return &AttendanceEventRepository{db: db}
}

type attendanceEventRow struct {
	ID              string    `db:"id"`
	Date            time.Time `db:"date"`
	Present         bool      `db:"present"`
	StudentID       *string   `db:"student_id"`
	StudentName     *string   `db:"student_name"`
	RollNumber      *string   `db:"roll_number"`
	SubjectID       *string   `db:"subject_id"`
	SubjectName     *string   `db:"subject_name"`
	CourseID        *string   `db:"course_id"`
	CourseName      *string   `db:"course_name"`
	MarkedBy        string    `db:"marked_by"`
	MarkedByTeacher *string   `db:"marked_by_teacher_id"`
}

// List returns events matching the filter, each enriched with its
// resolved student, subject and course identity. Dangling references
// surface as NULL columns through the LEFT JOINs.
func (r *AttendanceEventRepository) List(ctx context.Context, filter models.AttendanceEventFilter) ([]models.AttendanceEvent, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.CourseID != "" {
		where = append(where, fmt.Sprintf("sub.course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.SubjectID != "" {
		where = append(where, fmt.Sprintf("ae.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.StudentID != "" {
		where = append(where, fmt.Sprintf("ae.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("ae.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("ae.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf(`SELECT ae.id, ae.date, ae.present,
        st.id AS student_id, st.full_name AS student_name, st.roll_number,
        sub.id AS subject_id, sub.name AS subject_name,
        sub.course_id, c.name AS course_name,
        ae.marked_by, t.id AS marked_by_teacher_id
FROM attendance_events ae
LEFT JOIN students st ON st.id = ae.student_id
LEFT JOIN subjects sub ON sub.id = ae.subject_id
LEFT JOIN courses c ON c.id = sub.course_id
LEFT JOIN teachers t ON t.id = ae.marked_by
WHERE %s
ORDER BY ae.date ASC, ae.id ASC`, strings.Join(where, " AND "))

	var rows []attendanceEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance events: %w", err)
	}

	events := make([]models.AttendanceEvent, len(rows))
	for i, row := range rows {
		marker := models.AdminMarker(row.MarkedBy)
		if row.MarkedByTeacher != nil {
			marker = models.TeacherMarker(*row.MarkedByTeacher)
		}
		events[i] = models.AttendanceEvent{
			ID:          row.ID,
			StudentID:   row.StudentID,
			StudentName: row.StudentName,
			RollNumber:  row.RollNumber,
			SubjectID:   row.SubjectID,
			SubjectName: row.SubjectName,
			CourseID:    row.CourseID,
			CourseName:  row.CourseName,
			Date:        row.Date,
			Present:     row.Present,
			MarkedBy:    marker,
		}
	}
	return events, nil
}
