package client

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Student is the call-scoped snapshot of an upstream student record.
// Only the fields denormalized into enrollments are decoded.
type Student struct {
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Program   string `json:"program"`
}

// StudentClient resolves student identifiers against the student service.
type StudentClient struct {
	requester
}

// NewStudentClient constructs a StudentClient for the given base URL.
func NewStudentClient(baseURL string, timeout time.Duration, logger *zap.Logger) *StudentClient {
	return &StudentClient{requester: newRequester(baseURL, "Student", timeout, logger)}
}

// Resolve fetches the student identified by studentID.
func (c *StudentClient) Resolve(ctx context.Context, studentID string) (*Student, error) {
	var student Student
	if err := c.resolve(ctx, studentID, &student); err != nil {
		return nil, err
	}
	return &student, nil
}
