package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/models"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
	"github.com/opencampus-io/registrar-api/pkg/jobs"
)

// CourseStore is the persistence capability behind the catalog.
type CourseStore interface {
	Save(ctx context.Context, c *models.Course) (*models.Course, error)
	FindByCourseID(ctx context.Context, courseID string) (*models.Course, error)
	Delete(ctx context.Context, c *models.Course) error
	StreamAll(ctx context.Context, fn func(models.Course) error) error
	Count(ctx context.Context) (int, error)
}

// CourseService owns the course catalog CRUD.
type CourseService struct {
	store         CourseStore
	validator     *validator.Validate
	cache         *CacheService
	invalidations *jobs.Queue
	logger        *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(store CourseStore, validate *validator.Validate, cache *CacheService, invalidations *jobs.Queue, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{store: store, validator: validate, cache: cache, invalidations: invalidations, logger: logger}
}

// Add creates a catalog entry with a fresh course identifier.
func (s *CourseService) Add(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	course := &models.Course{
		CourseID:     uuid.NewString(),
		CourseNumber: req.CourseNumber,
		CourseName:   req.CourseName,
		NumHours:     req.NumHours,
		NumCredits:   req.NumCredits,
		Department:   req.Department,
	}
	saved, err := s.store.Save(ctx, course)
	if err != nil {
		return nil, s.storeError(err, "failed to save course")
	}
	s.logger.Debug("course created", zap.String("course_id", saved.CourseID))
	return dto.ToCourseResponse(saved), nil
}

// Update replaces the content of an existing entry while preserving
// its public identifier and storage key. A missing entry yields an
// empty result.
func (s *CourseService) Update(ctx context.Context, req dto.CourseRequest, courseID string) (*dto.CourseResponse, error) {
	found, err := s.store.FindByCourseID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load course")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	found.CourseNumber = req.CourseNumber
	found.CourseName = req.CourseName
	found.NumHours = req.NumHours
	found.NumCredits = req.NumCredits
	found.Department = req.Department

	saved, err := s.store.Save(ctx, found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to save course")
	}
	s.enqueueInvalidation(saved.CourseID)
	return dto.ToCourseResponse(saved), nil
}

// Delete removes the entry and returns the projection of what was
// deleted. A missing entry yields an empty result.
func (s *CourseService) Delete(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	found, err := s.store.FindByCourseID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load course")
	}
	if err := s.store.Delete(ctx, found); err != nil {
		return nil, s.storeError(err, "failed to delete course")
	}
	s.enqueueInvalidation(found.CourseID)
	return dto.ToCourseResponse(found), nil
}

// GetByCourseID returns the stored projection, or empty when the
// identifier is unknown.
func (s *CourseService) GetByCourseID(ctx context.Context, courseID string) (*dto.CourseResponse, error) {
	cacheKey := courseCacheKey(courseID)
	var cached dto.CourseResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	found, err := s.store.FindByCourseID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load course")
	}

	resp := dto.ToCourseResponse(found)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// StreamAll invokes fn for every stored entry's projection.
func (s *CourseService) StreamAll(ctx context.Context, fn func(dto.CourseResponse) error) error {
	err := s.store.StreamAll(ctx, func(c models.Course) error {
		return fn(*dto.ToCourseResponse(&c))
	})
	if err != nil {
		return s.storeError(err, "failed to stream courses")
	}
	return nil
}

// Count returns the number of stored entries.
func (s *CourseService) Count(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, s.storeError(err, "failed to count courses")
	}
	return count, nil
}

func (s *CourseService) storeError(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *CourseService) enqueueInvalidation(courseID string) {
	if s.invalidations == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "cache-invalidation",
		Payload: courseCacheKey(courseID),
	}
	if err := s.invalidations.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue cache invalidation", zap.String("course_id", courseID), zap.Error(err))
	}
}

func courseCacheKey(courseID string) string {
	return "course:" + courseID
}
