package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
)

type mockCourseStore struct {
	byCourseID map[string]models.Course
	nextID     int64
	saved      []*models.Course
	deleted    []string
}

func (m *mockCourseStore) Save(ctx context.Context, c *models.Course) (*models.Course, error) {
	if m.byCourseID == nil {
		m.byCourseID = make(map[string]models.Course)
	}
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	}
	m.byCourseID[c.CourseID] = *c
	m.saved = append(m.saved, c)
	return c, nil
}

func (m *mockCourseStore) FindByCourseID(ctx context.Context, courseID string) (*models.Course, error) {
	if c, ok := m.byCourseID[courseID]; ok {
		return &c, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockCourseStore) Delete(ctx context.Context, c *models.Course) error {
	delete(m.byCourseID, c.CourseID)
	m.deleted = append(m.deleted, c.CourseID)
	return nil
}

func (m *mockCourseStore) StreamAll(ctx context.Context, fn func(models.Course) error) error {
	for _, c := range m.byCourseID {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockCourseStore) Count(ctx context.Context) (int, error) {
	return len(m.byCourseID), nil
}

func validCourseRequest() dto.CourseRequest {
	return dto.CourseRequest{
		CourseNumber: "CS-101",
		CourseName:   "Introduction to Computing",
		NumHours:     36,
		NumCredits:   3,
		Department:   "Computer Science",
	}
}

func newTestCourseService(store *mockCourseStore) *CourseService {
	return NewCourseService(store, validator.New(), nil, nil, zap.NewNop())
}

func TestCourseServiceAdd(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	resp, err := svc.Add(context.Background(), validCourseRequest())
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.NotEmpty(t, resp.CourseID)
	assert.Equal(t, "CS-101", resp.CourseNumber)
	assert.Equal(t, "Introduction to Computing", resp.CourseName)
	assert.Equal(t, 36, resp.NumHours)
	assert.Equal(t, float64(3), resp.NumCredits)
	require.Len(t, store.saved, 1)
}

func TestCourseServiceAddRejectsInvalidPayload(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	req := validCourseRequest()
	req.NumHours = 0
	resp, err := svc.Add(context.Background(), req)

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, store.saved)
}

func TestCourseServiceUpdatePreservesIdentity(t *testing.T) {
	existing := models.Course{ID: 4, CourseID: "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c", CourseNumber: "CS-101", CourseName: "Intro", NumHours: 36, NumCredits: 3}
	store := &mockCourseStore{byCourseID: map[string]models.Course{existing.CourseID: existing}, nextID: 4}
	svc := newTestCourseService(store)

	req := validCourseRequest()
	req.CourseName = "Introduction to Computing II"
	resp, err := svc.Update(context.Background(), req, existing.CourseID)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, existing.CourseID, resp.CourseID)
	assert.Equal(t, "Introduction to Computing II", resp.CourseName)
	require.Len(t, store.saved, 1)
	assert.Equal(t, existing.ID, store.saved[0].ID)
}

func TestCourseServiceUpdateMissingIsEmpty(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	resp, err := svc.Update(context.Background(), validCourseRequest(), "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, store.saved)
}

func TestCourseServiceUpdateMissingBeatsInvalidBody(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	req := validCourseRequest()
	req.NumHours = 0
	resp, err := svc.Update(context.Background(), req, "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Empty(t, store.saved)
}

func TestCourseServiceDelete(t *testing.T) {
	existing := models.Course{ID: 1, CourseID: "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c", CourseNumber: "CS-101"}
	store := &mockCourseStore{byCourseID: map[string]models.Course{existing.CourseID: existing}}
	svc := newTestCourseService(store)

	resp, err := svc.Delete(context.Background(), existing.CourseID)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, existing.CourseID, resp.CourseID)
	assert.Contains(t, store.deleted, existing.CourseID)
}

func TestCourseServiceDeleteMissingIsEmpty(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	resp, err := svc.Delete(context.Background(), "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCourseServiceGetMissingIsEmpty(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	resp, err := svc.GetByCourseID(context.Background(), "3c9f0b1a-5d6e-4f7a-8b9c-0d1e2f3a4b5c")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCourseServiceStreamAll(t *testing.T) {
	store := &mockCourseStore{}
	svc := newTestCourseService(store)

	_, err := svc.Add(context.Background(), validCourseRequest())
	require.NoError(t, err)

	var streamed []dto.CourseResponse
	err = svc.StreamAll(context.Background(), func(resp dto.CourseResponse) error {
		streamed = append(streamed, resp)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, streamed, 1)
	assert.Equal(t, "CS-101", streamed[0].CourseNumber)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
