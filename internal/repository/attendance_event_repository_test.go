package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskit/attendance-report-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func eventColumns() []string {
	return []string{
		"id", "date", "present",
		"student_id", "student_name", "roll_number",
		"subject_id", "subject_name",
		"course_id", "course_name",
		"marked_by", "marked_by_teacher_id",
	}
}

func TestAttendanceEventRepositoryList(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewAttendanceEventRepository(db)

	date := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventColumns()).
		AddRow("ev-1", date, true, "stu-1", "Amina Nakato", "R-17", "sub-1", "Algorithms", "course-1", "Computer Science", "teacher-9", "teacher-9").
		AddRow("ev-2", date, false, "stu-2", "Joel Okello", "R-21", "sub-1", "Algorithms", "course-1", "Computer Science", "registrar", nil)

	mock.ExpectQuery("SELECT ae.id, ae.date, ae.present").WillReturnRows(rows)

	events, err := repo.List(context.Background(), models.AttendanceEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	first := events[0]
	require.NotNil(t, first.StudentID)
	assert.Equal(t, "stu-1", *first.StudentID)
	assert.True(t, first.Present)
	assert.Equal(t, models.MarkerTeacher, first.MarkedBy.Kind)
	assert.Equal(t, "teacher-9", first.MarkedBy.TeacherID)

	second := events[1]
	assert.False(t, second.Present)
	assert.Equal(t, models.MarkerAdmin, second.MarkedBy.Kind)
	assert.Equal(t, "registrar", second.MarkedBy.RoleLabel)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceEventRepositoryListDanglingReferences(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewAttendanceEventRepository(db)

	date := time.Date(2024, 9, 3, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(eventColumns()).
		AddRow("ev-3", date, true, nil, nil, nil, "sub-1", "Algorithms", nil, nil, "registrar", nil)

	mock.ExpectQuery("SELECT ae.id, ae.date, ae.present").WillReturnRows(rows)

	events, err := repo.List(context.Background(), models.AttendanceEventFilter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].StudentID)
	assert.Nil(t, events[0].CourseID)
	require.NotNil(t, events[0].SubjectID)
	assert.Equal(t, "sub-1", *events[0].SubjectID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceEventRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()
	repo := NewAttendanceEventRepository(db)

	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 30, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT ae.id, ae.date, ae.present").
		WithArgs("course-1", "sub-1", "stu-1", from, to).
		WillReturnRows(sqlmock.NewRows(eventColumns()))

	events, err := repo.List(context.Background(), models.AttendanceEventFilter{
		CourseID:  "course-1",
		SubjectID: "sub-1",
		StudentID: "stu-1",
		DateFrom:  &from,
		DateTo:    &to,
	})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}
