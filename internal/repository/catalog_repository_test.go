package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalogRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestCatalogRepositoryListActiveCourses(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name"}).
		AddRow("course-1", "Computer Science").
		AddRow("course-2", "Mathematics")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM courses WHERE active = TRUE ORDER BY name ASC")).
		WillReturnRows(rows)

	courses, err := repo.ListActiveCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Computer Science", courses[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogRepositoryListSubjects(t *testing.T) {
	db, mock, cleanup := newCatalogRepoMock(t)
	defer cleanup()
	repo := NewCatalogRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "course_id"}).
		AddRow("sub-1", "Algorithms", "course-1").
		AddRow("sub-2", "Calculus", nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, course_id FROM subjects ORDER BY name ASC")).
		WillReturnRows(rows)

	subjects, err := repo.ListSubjects(context.Background())
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	require.NotNil(t, subjects[0].CourseID)
	assert.Equal(t, "course-1", *subjects[0].CourseID)
	assert.Nil(t, subjects[1].CourseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
