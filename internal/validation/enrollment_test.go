package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

const (
	goodStudentID = "8a5a7a2e-1b7c-4a8e-9a1d-2f3b4c5d6e7f"
	goodCourseID  = "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c"
)

func goodRequest() dto.EnrollmentRequest {
	return dto.EnrollmentRequest{
		EnrollmentYear: 2025,
		Semester:       models.SemesterFall,
		StudentID:      goodStudentID,
		CourseID:       goodCourseID,
	}
}

func TestEnrollmentRequestValid(t *testing.T) {
	assert.NoError(t, EnrollmentRequest(goodRequest()))
}

func TestEnrollmentRequestFailures(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*dto.EnrollmentRequest)
		wantKind *appErrors.Error
		wantMsg  string
	}{
		{
			name:     "missing student id",
			mutate:   func(r *dto.EnrollmentRequest) { r.StudentID = "" },
			wantKind: appErrors.ErrValidation,
			wantMsg:  "student id is required",
		},
		{
			name:     "malformed student id",
			mutate:   func(r *dto.EnrollmentRequest) { r.StudentID = "not-a-uuid" },
			wantKind: appErrors.ErrInvalidIdentifier,
			wantMsg:  "Student id=not-a-uuid is invalid",
		},
		{
			name:     "missing course id",
			mutate:   func(r *dto.EnrollmentRequest) { r.CourseID = "" },
			wantKind: appErrors.ErrValidation,
			wantMsg:  "course id is required",
		},
		{
			name:     "malformed course id",
			mutate:   func(r *dto.EnrollmentRequest) { r.CourseID = "12345" },
			wantKind: appErrors.ErrInvalidIdentifier,
			wantMsg:  "Course id=12345 is invalid",
		},
		{
			name:     "missing semester",
			mutate:   func(r *dto.EnrollmentRequest) { r.Semester = "" },
			wantKind: appErrors.ErrValidation,
			wantMsg:  "semester is required",
		},
		{
			name:     "unknown semester",
			mutate:   func(r *dto.EnrollmentRequest) { r.Semester = "AUTUMN" },
			wantKind: appErrors.ErrValidation,
			wantMsg:  `semester "AUTUMN" is not recognised`,
		},
		{
			name:     "year too old",
			mutate:   func(r *dto.EnrollmentRequest) { r.EnrollmentYear = 1999 },
			wantKind: appErrors.ErrValidation,
			wantMsg:  "enrollment year 1999 is out of range",
		},
		{
			name:     "year too far ahead",
			mutate:   func(r *dto.EnrollmentRequest) { r.EnrollmentYear = time.Now().Year() + 2 },
			wantKind: appErrors.ErrValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := goodRequest()
			tc.mutate(&req)

			err := EnrollmentRequest(req)
			require.Error(t, err)
			assert.True(t, appErrors.Is(err, tc.wantKind))
			if tc.wantMsg != "" {
				assert.Equal(t, tc.wantMsg, err.Error())
			}
		})
	}
}

// A payload broken in several ways reports the earliest failure: the
// student identifier is checked before anything about the course or
// term.
func TestEnrollmentRequestCheckOrder(t *testing.T) {
	req := dto.EnrollmentRequest{
		EnrollmentYear: 1900,
		Semester:       "AUTUMN",
		StudentID:      "bad",
		CourseID:       "also-bad",
	}

	err := EnrollmentRequest(req)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidIdentifier))
	assert.Equal(t, "Student id=bad is invalid", err.Error())

	req.StudentID = goodStudentID
	err = EnrollmentRequest(req)
	require.Error(t, err)
	assert.Equal(t, "Course id=also-bad is invalid", err.Error())
}
