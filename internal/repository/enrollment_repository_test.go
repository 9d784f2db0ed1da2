package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sampleEnrollment() *models.Enrollment {
	return &models.Enrollment{
		EnrollmentID:     "11111111-2222-3333-4444-555555555555",
		EnrollmentYear:   2025,
		Semester:         models.SemesterFall,
		StudentID:        "8a5a7a2e-1b7c-4a8e-9a1d-2f3b4c5d6e7f",
		StudentFirstName: "Ada",
		StudentLastName:  "Lovelace",
		CourseID:         "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c",
		CourseNumber:     "MATH-301",
		CourseName:       "Linear Algebra",
	}
}

func TestEnrollmentRepositorySaveInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollments")).
		WithArgs(e.EnrollmentID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	saved, err := repo.Save(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	e.ID = 42
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET")).
		WithArgs(e.ID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName).
		WillReturnResult(sqlmock.NewResult(0, 1))

	saved, err := repo.Save(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, int64(42), saved.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveUpdateVanishedRowIsErrNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	e.ID = 42
	mock.ExpectExec(regexp.QuoteMeta("UPDATE enrollments SET")).
		WithArgs(e.ID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName).
		WillReturnResult(sqlmock.NewResult(0, 0))

	saved, err := repo.Save(context.Background(), e)
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveUniqueViolationIsConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO enrollments")).
		WillReturnError(&pq.Error{Code: "23505"})

	saved, err := repo.Save(context.Background(), e)
	require.Error(t, err)
	assert.Nil(t, saved)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByEnrollmentID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "enrollment_year", "semester", "student_id",
		"student_first_name", "student_last_name", "course_id", "course_number", "course_name"}).
		AddRow(int64(42), e.EnrollmentID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName)
	mock.ExpectQuery("SELECT .* FROM enrollments WHERE enrollment_id").
		WithArgs(e.EnrollmentID).
		WillReturnRows(rows)

	found, err := repo.FindByEnrollmentID(context.Background(), e.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), found.ID)
	assert.Equal(t, "Ada", found.StudentFirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindMissingIsErrNoRows(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT .* FROM enrollments WHERE enrollment_id").
		WithArgs("11111111-2222-3333-4444-555555555555").
		WillReturnError(sql.ErrNoRows)

	found, err := repo.FindByEnrollmentID(context.Background(), "11111111-2222-3333-4444-555555555555")
	require.Error(t, err)
	assert.Nil(t, found)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	e.ID = 42
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).
		WithArgs(e.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), e))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryStreamAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	e := sampleEnrollment()
	rows := sqlmock.NewRows([]string{"id", "enrollment_id", "enrollment_year", "semester", "student_id",
		"student_first_name", "student_last_name", "course_id", "course_number", "course_name"}).
		AddRow(int64(1), e.EnrollmentID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName).
		AddRow(int64(2), "22222222-3333-4444-5555-666666666666", 2024, models.SemesterWinter, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName)
	mock.ExpectQuery("SELECT .* FROM enrollments").WillReturnRows(rows)

	var streamed []models.Enrollment
	err := repo.StreamAll(context.Background(), func(row models.Enrollment) error {
		streamed = append(streamed, row)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, streamed, 2)
	assert.Equal(t, int64(1), streamed[0].ID)
	assert.Equal(t, models.SemesterWinter, streamed[1].Semester)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
