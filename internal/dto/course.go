package dto

import "github.com/opencampus-io/registrar-api/internal/models"

// CourseRequest is the client payload for creating or updating a
// catalog entry.
type CourseRequest struct {
	CourseNumber string  `json:"courseNumber" validate:"required"`
	CourseName   string  `json:"courseName" validate:"required"`
	NumHours     int     `json:"numHours" validate:"required,gt=0"`
	NumCredits   float64 `json:"numCredits" validate:"required,gt=0"`
	Department   string  `json:"department"`
}

// CourseResponse is the read-only projection of a stored course.
type CourseResponse struct {
	CourseID     string  `json:"courseId"`
	CourseNumber string  `json:"courseNumber"`
	CourseName   string  `json:"courseName"`
	NumHours     int     `json:"numHours"`
	NumCredits   float64 `json:"numCredits"`
	Department   string  `json:"department"`
}

// ToCourseResponse maps a stored course to its response projection.
func ToCourseResponse(c *models.Course) *CourseResponse {
	if c == nil {
		return nil
	}
	return &CourseResponse{
		CourseID:     c.CourseID,
		CourseNumber: c.CourseNumber,
		CourseName:   c.CourseName,
		NumHours:     c.NumHours,
		NumCredits:   c.NumCredits,
		Department:   c.Department,
	}
}
