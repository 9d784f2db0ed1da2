package dto

import "github.com/opencampus-io/registrar-api/internal/models"

// EnrollmentRequest is the transient client payload for creating or
// updating an enrollment. It is never persisted as-is.
type EnrollmentRequest struct {
	EnrollmentYear int             `json:"enrollmentYear"`
	Semester       models.Semester `json:"semester"`
	StudentID      string          `json:"studentId"`
	CourseID       string          `json:"courseId"`
}

// EnrollmentResponse is the read-only projection of a stored
// enrollment returned to callers.
type EnrollmentResponse struct {
	EnrollmentID     string          `json:"enrollmentId"`
	EnrollmentYear   int             `json:"enrollmentYear"`
	Semester         models.Semester `json:"semester"`
	StudentID        string          `json:"studentId"`
	StudentFirstName string          `json:"studentFirstName"`
	StudentLastName  string          `json:"studentLastName"`
	CourseID         string          `json:"courseId"`
	CourseNumber     string          `json:"courseNumber"`
	CourseName       string          `json:"courseName"`
}

// ToEnrollmentResponse maps a stored record to its response projection.
func ToEnrollmentResponse(e *models.Enrollment) *EnrollmentResponse {
	if e == nil {
		return nil
	}
	return &EnrollmentResponse{
		EnrollmentID:     e.EnrollmentID,
		EnrollmentYear:   e.EnrollmentYear,
		Semester:         e.Semester,
		StudentID:        e.StudentID,
		StudentFirstName: e.StudentFirstName,
		StudentLastName:  e.StudentLastName,
		CourseID:         e.CourseID,
		CourseNumber:     e.CourseNumber,
		CourseName:       e.CourseName,
	}
}
