package validation

import (
	"fmt"
	"time"

	"github.com/opencampus-io/registrar-api/internal/dto"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

// Enrollment years before this are rejected outright.
const minEnrollmentYear = 2000

// enrollmentCheck pairs a predicate with the failure it produces.
// Checks run in declaration order and stop at the first failure, so
// identifier-format errors always surface before semester or year
// problems regardless of how broken the payload is.
type enrollmentCheck struct {
	ok   func(dto.EnrollmentRequest) bool
	fail func(dto.EnrollmentRequest) *appErrors.Error
}

var enrollmentChecks = []enrollmentCheck{
	{
		ok: func(r dto.EnrollmentRequest) bool { return r.StudentID != "" },
		fail: func(dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrValidation, "student id is required")
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool { return ValidIdentifier(r.StudentID) },
		fail: func(r dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("Student id=%s is invalid", r.StudentID))
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool { return r.CourseID != "" },
		fail: func(dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrValidation, "course id is required")
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool { return ValidIdentifier(r.CourseID) },
		fail: func(r dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("Course id=%s is invalid", r.CourseID))
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool { return r.Semester != "" },
		fail: func(dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrValidation, "semester is required")
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool { return r.Semester.Valid() },
		fail: func(r dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("semester %q is not recognised", r.Semester))
		},
	},
	{
		ok: func(r dto.EnrollmentRequest) bool {
			return r.EnrollmentYear >= minEnrollmentYear && r.EnrollmentYear <= time.Now().Year()+1
		},
		fail: func(r dto.EnrollmentRequest) *appErrors.Error {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("enrollment year %d is out of range", r.EnrollmentYear))
		},
	},
}

// EnrollmentRequest validates the request body before any remote call
// is made, short-circuiting on the first failed check.
func EnrollmentRequest(req dto.EnrollmentRequest) error {
	for _, check := range enrollmentChecks {
		if !check.ok(req) {
			return check.fail(req)
		}
	}
	return nil
}
