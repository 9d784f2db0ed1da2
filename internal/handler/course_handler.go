package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/validation"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
	"github.com/opencampus-io/registrar-api/pkg/response"
)

type courseCatalog interface {
	Add(ctx context.Context, req dto.CourseRequest) (*dto.CourseResponse, error)
	Update(ctx context.Context, req dto.CourseRequest, courseID string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, courseID string) (*dto.CourseResponse, error)
	GetByCourseID(ctx context.Context, courseID string) (*dto.CourseResponse, error)
	StreamAll(ctx context.Context, fn func(dto.CourseResponse) error) error
	Count(ctx context.Context) (int, error)
}

// CourseHandler exposes course catalog endpoints.
type CourseHandler struct {
	courses courseCatalog
}

// NewCourseHandler constructs CourseHandler.
func NewCourseHandler(courses courseCatalog) *CourseHandler {
	return &CourseHandler{courses: courses}
}

// Create godoc
// @Summary Add a course to the catalog
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Stream godoc
// @Summary Stream the catalog as server-sent events
// @Tags Courses
// @Produce text/event-stream
// @Success 200
// @Router /courses [get]
func (h *CourseHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	streamed := false
	err := h.courses.StreamAll(c.Request.Context(), func(resp dto.CourseResponse) error {
		streamed = true
		c.SSEvent("course", resp)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		if !streamed {
			response.Error(c, err)
			return
		}
		c.SSEvent("error", appErrors.FromError(err))
		c.Writer.Flush()
	}
}

// Get godoc
// @Summary Get one course
// @Tags Courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	courseID := c.Param("courseId")
	if !validation.ValidIdentifier(courseID) {
		response.Error(c, invalidCourseID(courseID))
		return
	}
	course, err := h.courses.GetByCourseID(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if course == nil {
		response.Error(c, courseNotFound(courseID))
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Update godoc
// @Summary Update a course
// @Tags Courses
// @Accept json
// @Produce json
// @Param courseId path string true "Course ID"
// @Param payload body dto.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	courseID := c.Param("courseId")
	if !validation.ValidIdentifier(courseID) {
		response.Error(c, invalidCourseID(courseID))
		return
	}
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	course, err := h.courses.Update(c.Request.Context(), req, courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if course == nil {
		response.Error(c, courseNotFound(courseID))
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags Courses
// @Produce json
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /courses/{courseId} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	courseID := c.Param("courseId")
	if !validation.ValidIdentifier(courseID) {
		response.Error(c, invalidCourseID(courseID))
		return
	}
	course, err := h.courses.Delete(c.Request.Context(), courseID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if course == nil {
		response.Error(c, courseNotFound(courseID))
		return
	}
	response.JSON(c, http.StatusOK, course)
}

func invalidCourseID(courseID string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("Course id=%s is invalid", courseID))
}

func courseNotFound(courseID string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Course with id=%s is not found", courseID))
}
