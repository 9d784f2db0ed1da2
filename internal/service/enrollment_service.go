package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opencampus-io/registrar-api/internal/client"
	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/models"
	"github.com/opencampus-io/registrar-api/internal/validation"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
	"github.com/opencampus-io/registrar-api/pkg/jobs"
)

// EnrollmentStore is the persistence capability consumed by the
// orchestrator. Absence on lookup is reported as sql.ErrNoRows.
type EnrollmentStore interface {
	Save(ctx context.Context, e *models.Enrollment) (*models.Enrollment, error)
	FindByEnrollmentID(ctx context.Context, enrollmentID string) (*models.Enrollment, error)
	Delete(ctx context.Context, e *models.Enrollment) error
	StreamAll(ctx context.Context, fn func(models.Enrollment) error) error
	Count(ctx context.Context) (int, error)
}

// StudentLookup resolves a student identifier against the student service.
type StudentLookup interface {
	Resolve(ctx context.Context, studentID string) (*client.Student, error)
}

// CourseLookup resolves a course identifier against the course service.
type CourseLookup interface {
	Resolve(ctx context.Context, courseID string) (*client.Course, error)
}

// requestContext is the per-call aggregate carrying the request and
// the remote records resolved so far. Value receivers keep each
// pipeline step working on its own copy; nothing is shared between
// concurrent orchestrations.
type requestContext struct {
	request dto.EnrollmentRequest
	student *client.Student
	course  *client.Course
}

func (rc requestContext) withStudent(s *client.Student) requestContext {
	rc.student = s
	return rc
}

func (rc requestContext) withCourse(c *client.Course) requestContext {
	rc.course = c
	return rc
}

// toRecord assembles the denormalized record with a fresh public
// identifier. Callers replacing an existing record overwrite the
// identity afterwards.
func (rc requestContext) toRecord() *models.Enrollment {
	return &models.Enrollment{
		EnrollmentID:     uuid.NewString(),
		EnrollmentYear:   rc.request.EnrollmentYear,
		Semester:         rc.request.Semester,
		StudentID:        rc.student.StudentID,
		StudentFirstName: rc.student.FirstName,
		StudentLastName:  rc.student.LastName,
		CourseID:         rc.course.CourseID,
		CourseNumber:     rc.course.CourseNumber,
		CourseName:       rc.course.CourseName,
	}
}

// EnrollmentService orchestrates the enrollment pipeline: validate,
// resolve student, resolve course, persist, project. Resolution is
// strictly sequential and short-circuits on the first failure, so a
// course lookup is never attempted once the student lookup has
// failed, and nothing is ever persisted unless both resolved.
type EnrollmentService struct {
	store         EnrollmentStore
	students      StudentLookup
	courses       CourseLookup
	cache         *CacheService
	metrics       *MetricsService
	invalidations *jobs.Queue
	logger        *zap.Logger
}

// NewEnrollmentService constructs the service. Cache, metrics and the
// invalidation queue are optional.
func NewEnrollmentService(store EnrollmentStore, students StudentLookup, courses CourseLookup, cache *CacheService, metrics *MetricsService, invalidations *jobs.Queue, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		store:         store,
		students:      students,
		courses:       courses,
		cache:         cache,
		metrics:       metrics,
		invalidations: invalidations,
		logger:        logger,
	}
}

// Add runs the creation pipeline and returns the stored projection.
func (s *EnrollmentService) Add(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error) {
	if err := validation.EnrollmentRequest(req); err != nil {
		return nil, err
	}

	rc := requestContext{request: req}
	rc, err := s.resolveStudent(ctx, rc)
	if err != nil {
		return nil, err
	}
	rc, err = s.resolveCourse(ctx, rc)
	if err != nil {
		return nil, err
	}

	saved, err := s.store.Save(ctx, rc.toRecord())
	if err != nil {
		return nil, s.storeError(err, "failed to save enrollment")
	}
	s.logger.Debug("enrollment created", zap.String("enrollment_id", saved.EnrollmentID))
	return dto.ToEnrollmentResponse(saved), nil
}

// Update replaces the content of an existing record while preserving
// its public identifier and storage key. A missing record yields an
// empty result, not an error, and wins over anything wrong with the
// body: validation only runs once the record is known to exist.
func (s *EnrollmentService) Update(ctx context.Context, req dto.EnrollmentRequest, enrollmentID string) (*dto.EnrollmentResponse, error) {
	found, err := s.store.FindByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load enrollment")
	}

	if err := validation.EnrollmentRequest(req); err != nil {
		return nil, err
	}

	rc := requestContext{request: req}
	rc, err = s.resolveStudent(ctx, rc)
	if err != nil {
		return nil, err
	}
	rc, err = s.resolveCourse(ctx, rc)
	if err != nil {
		return nil, err
	}

	replacement := rc.toRecord()
	replacement.EnrollmentID = found.EnrollmentID
	replacement.ID = found.ID

	saved, err := s.store.Save(ctx, replacement)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to save enrollment")
	}
	s.enqueueInvalidation(saved.EnrollmentID)
	return dto.ToEnrollmentResponse(saved), nil
}

// Delete removes the record identified by enrollmentID and returns
// the projection of what was deleted. A missing record yields an
// empty result.
func (s *EnrollmentService) Delete(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error) {
	found, err := s.store.FindByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load enrollment")
	}
	if err := s.store.Delete(ctx, found); err != nil {
		return nil, s.storeError(err, "failed to delete enrollment")
	}
	s.enqueueInvalidation(found.EnrollmentID)
	return dto.ToEnrollmentResponse(found), nil
}

// GetByEnrollmentID returns the stored projection, or empty when the
// identifier is unknown. Reads go through the response cache when
// one is configured.
func (s *EnrollmentService) GetByEnrollmentID(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error) {
	cacheKey := enrollmentCacheKey(enrollmentID)
	var cached dto.EnrollmentResponse
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	found, err := s.store.FindByEnrollmentID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.storeError(err, "failed to load enrollment")
	}
	s.logger.Debug("enrollment found", zap.String("enrollment_id", found.EnrollmentID))

	resp := dto.ToEnrollmentResponse(found)
	s.cache.Set(ctx, cacheKey, resp)
	return resp, nil
}

// StreamAll invokes fn for every stored record's projection, in store
// iteration order, without materialising the whole set.
func (s *EnrollmentService) StreamAll(ctx context.Context, fn func(dto.EnrollmentResponse) error) error {
	err := s.store.StreamAll(ctx, func(e models.Enrollment) error {
		return fn(*dto.ToEnrollmentResponse(&e))
	})
	if err != nil {
		return s.storeError(err, "failed to stream enrollments")
	}
	return nil
}

// ListAll materialises every stored projection; used by the roster
// export endpoint.
func (s *EnrollmentService) ListAll(ctx context.Context) ([]dto.EnrollmentResponse, error) {
	var all []dto.EnrollmentResponse
	if err := s.StreamAll(ctx, func(resp dto.EnrollmentResponse) error {
		all = append(all, resp)
		return nil
	}); err != nil {
		return nil, err
	}
	return all, nil
}

// Count returns the number of stored records.
func (s *EnrollmentService) Count(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, s.storeError(err, "failed to count enrollments")
	}
	return count, nil
}

func (s *EnrollmentService) resolveStudent(ctx context.Context, rc requestContext) (requestContext, error) {
	start := time.Now()
	student, err := s.students.Resolve(ctx, rc.request.StudentID)
	s.metrics.ObserveUpstreamLookup("student", lookupOutcome(err), time.Since(start))
	if err != nil {
		return rc, err
	}
	return rc.withStudent(student), nil
}

func (s *EnrollmentService) resolveCourse(ctx context.Context, rc requestContext) (requestContext, error) {
	start := time.Now()
	course, err := s.courses.Resolve(ctx, rc.request.CourseID)
	s.metrics.ObserveUpstreamLookup("course", lookupOutcome(err), time.Since(start))
	if err != nil {
		return rc, err
	}
	return rc.withCourse(course), nil
}

// storeError passes typed failures through untouched and wraps
// everything else as internal.
func (s *EnrollmentService) storeError(err error, message string) error {
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return err
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *EnrollmentService) enqueueInvalidation(enrollmentID string) {
	if s.invalidations == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    "cache-invalidation",
		Payload: enrollmentCacheKey(enrollmentID),
	}
	if err := s.invalidations.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue cache invalidation", zap.String("enrollment_id", enrollmentID), zap.Error(err))
	}
}

func enrollmentCacheKey(enrollmentID string) string {
	return "enrollment:" + enrollmentID
}

func lookupOutcome(err error) string {
	if err == nil {
		return "ok"
	}
	if typed := appErrors.FromError(err); typed != nil {
		return typed.Code
	}
	return "error"
}
