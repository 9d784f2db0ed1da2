package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Course is the call-scoped snapshot of an upstream catalog entry.
type Course struct {
	CourseID     string  `json:"courseId"`
	CourseNumber string  `json:"courseNumber"`
	CourseName   string  `json:"courseName"`
	NumHours     int     `json:"numHours"`
	NumCredits   float64 `json:"numCredits"`
	Department   string  `json:"department"`
}

// CourseClient resolves course identifiers against the course service.
type CourseClient struct {
	requester
}

// NewCourseClient constructs a CourseClient for the given base URL.
func NewCourseClient(baseURL string, timeout time.Duration, logger *zap.Logger) *CourseClient {
	return &CourseClient{requester: newRequester(baseURL, "Course", timeout, logger)}
}

// Resolve fetches the course identified by courseID.
func (c *CourseClient) Resolve(ctx context.Context, courseID string) (*Course, error) {
	var course Course
	if err := c.resolve(ctx, courseID, &course); err != nil {
		return nil, err
	}
	return &course, nil
}
