package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

const studentID = "8a5a7a2e-1b7c-4a8e-9a1d-2f3b4c5d6e7f"

func TestStudentClientResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/"+studentID, r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"studentId":"` + studentID + `","firstName":"Ada","lastName":"Lovelace","program":"Mathematics"}`))
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	student, err := c.Resolve(context.Background(), studentID)
	require.NoError(t, err)
	assert.Equal(t, studentID, student.StudentID)
	assert.Equal(t, "Ada", student.FirstName)
	assert.Equal(t, "Lovelace", student.LastName)
}

func TestStudentClientResolveEnvelopedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"studentId":"` + studentID + `","firstName":"Ada","lastName":"Lovelace"}}`))
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	student, err := c.Resolve(context.Background(), studentID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", student.FirstName)
}

func TestStudentClientResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	student, err := c.Resolve(context.Background(), studentID)
	require.Error(t, err)
	assert.Nil(t, student)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	assert.Equal(t, "Student with id="+studentID+" is not found", err.Error())
}

func TestStudentClientResolveInvalidIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	student, err := c.Resolve(context.Background(), "12345")
	require.Error(t, err)
	assert.Nil(t, student)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidIdentifier))
	assert.Equal(t, "Student id=12345 is invalid", err.Error())
}

func TestStudentClientResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Resolve(context.Background(), studentID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamUnavailable))
}

func TestStudentClientResolveTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening any more

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Resolve(context.Background(), studentID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamUnavailable))
}

func TestStudentClientResolveHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewStudentClient(srv.URL, 10*time.Second, zap.NewNop())
	_, err := c.Resolve(ctx, studentID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamUnavailable))
}

func TestCourseClientResolve(t *testing.T) {
	const courseID = "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"courseId":"` + courseID + `","courseNumber":"MATH-301","courseName":"Linear Algebra","numHours":48,"numCredits":3,"department":"Mathematics"}`))
	}))
	defer srv.Close()

	c := NewCourseClient(srv.URL, time.Second, zap.NewNop())
	course, err := c.Resolve(context.Background(), courseID)
	require.NoError(t, err)
	assert.Equal(t, "MATH-301", course.CourseNumber)
	assert.Equal(t, "Linear Algebra", course.CourseName)
	assert.Equal(t, 48, course.NumHours)
	assert.Equal(t, float64(3), course.NumCredits)
}

func TestCourseClientResolveNotFound(t *testing.T) {
	const courseID = "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewCourseClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Resolve(context.Background(), courseID)
	require.Error(t, err)
	assert.Equal(t, "Course with id="+courseID+" is not found", err.Error())
}

func TestResolveGarbageBodyIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{{not json`))
	}))
	defer srv.Close()

	c := NewStudentClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.Resolve(context.Background(), studentID)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrUpstreamUnavailable))
}
