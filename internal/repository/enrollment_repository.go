package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

const enrollmentColumns = `id, enrollment_id, enrollment_year, semester, student_id,
student_first_name, student_last_name, course_id, course_number, course_name`

// EnrollmentRepository handles persistence of enrollment records.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Save persists the record. A record without a storage key is
// inserted and gets its key assigned; a record with one overwrites
// the existing row in place. A unique violation on enrollment_id
// surfaces as a conflict.
func (r *EnrollmentRepository) Save(ctx context.Context, e *models.Enrollment) (*models.Enrollment, error) {
	if e.ID == 0 {
		const query = `INSERT INTO enrollments (enrollment_id, enrollment_year, semester, student_id,
student_first_name, student_last_name, course_id, course_number, course_name)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, query,
			e.EnrollmentID, e.EnrollmentYear, e.Semester, e.StudentID,
			e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName,
		).Scan(&e.ID); err != nil {
			if isUniqueViolation(err) {
				return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
					fmt.Sprintf("enrollment with id=%s already exists", e.EnrollmentID))
			}
			return nil, fmt.Errorf("insert enrollment: %w", err)
		}
		return e, nil
	}

	const query = `UPDATE enrollments SET enrollment_year = $2, semester = $3, student_id = $4,
student_first_name = $5, student_last_name = $6, course_id = $7, course_number = $8, course_name = $9
WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		e.ID, e.EnrollmentYear, e.Semester, e.StudentID,
		e.StudentFirstName, e.StudentLastName, e.CourseID, e.CourseNumber, e.CourseName,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
				fmt.Sprintf("enrollment with id=%s already exists", e.EnrollmentID))
		}
		return nil, fmt.Errorf("update enrollment: %w", err)
	}
	// The row can vanish between the read and this write; report that
	// as absence so callers keep their empty-result contract.
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, sql.ErrNoRows
	}
	return e, nil
}

// FindByEnrollmentID returns the record for the public identifier.
// Absence is reported as sql.ErrNoRows for the service to translate.
func (r *EnrollmentRepository) FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Enrollment, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollments WHERE enrollment_id = $1`, enrollmentColumns)
	var enrollment models.Enrollment
	if err := r.db.GetContext(ctx, &enrollment, query, enrollmentID); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Delete removes the record by its storage key.
func (r *EnrollmentRepository) Delete(ctx context.Context, e *models.Enrollment) error {
	const query = `DELETE FROM enrollments WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, e.ID); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// StreamAll iterates every stored record in store order, invoking fn
// per row. Rows are scanned lazily off the cursor so callers can
// stream arbitrarily large result sets.
func (r *EnrollmentRepository) StreamAll(ctx context.Context, fn func(models.Enrollment) error) error {
	query := fmt.Sprintf(`SELECT %s FROM enrollments`, enrollmentColumns)
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return fmt.Errorf("stream enrollments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var enrollment models.Enrollment
		if err := rows.StructScan(&enrollment); err != nil {
			return fmt.Errorf("scan enrollment: %w", err)
		}
		if err := fn(enrollment); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of stored records.
func (r *EnrollmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments`); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
