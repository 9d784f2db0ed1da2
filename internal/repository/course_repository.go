package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

const courseColumns = `id, course_id, course_number, course_name, num_hours, num_credits, department`

// CourseRepository handles persistence of catalog entries.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// Save inserts a new course or overwrites the row at the existing
// storage key, mirroring the enrollment store contract.
func (r *CourseRepository) Save(ctx context.Context, c *models.Course) (*models.Course, error) {
	if c.ID == 0 {
		const query = `INSERT INTO courses (course_id, course_number, course_name, num_hours, num_credits, department)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
		if err := r.db.QueryRowxContext(ctx, query,
			c.CourseID, c.CourseNumber, c.CourseName, c.NumHours, c.NumCredits, c.Department,
		).Scan(&c.ID); err != nil {
			if isUniqueViolation(err) {
				return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
					fmt.Sprintf("course with id=%s already exists", c.CourseID))
			}
			return nil, fmt.Errorf("insert course: %w", err)
		}
		return c, nil
	}

	const query = `UPDATE courses SET course_number = $2, course_name = $3, num_hours = $4, num_credits = $5, department = $6
WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query,
		c.ID, c.CourseNumber, c.CourseName, c.NumHours, c.NumCredits, c.Department,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

// FindByCourseID returns the course for the public identifier.
// Absence is reported as sql.ErrNoRows for the service to translate.
func (r *CourseRepository) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE course_id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, courseID); err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete removes the course by its storage key.
func (r *CourseRepository) Delete(ctx context.Context, c *models.Course) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, c.ID); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// StreamAll iterates every stored course in store order.
func (r *CourseRepository) StreamAll(ctx context.Context, fn func(models.Course) error) error {
	query := fmt.Sprintf(`SELECT %s FROM courses`, courseColumns)
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return fmt.Errorf("stream courses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var course models.Course
		if err := rows.StructScan(&course); err != nil {
			return fmt.Errorf("scan course: %w", err)
		}
		if err := fn(course); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Count returns the number of stored courses.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}
