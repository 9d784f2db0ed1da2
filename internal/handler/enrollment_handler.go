package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/opencampus-io/registrar-api/internal/dto"
	"github.com/opencampus-io/registrar-api/internal/validation"
	appErrors "github.com/opencampus-io/registrar-api/pkg/errors"
	"github.com/opencampus-io/registrar-api/pkg/export"
	"github.com/opencampus-io/registrar-api/pkg/response"
)

type enrollmentOrchestrator interface {
	Add(ctx context.Context, req dto.EnrollmentRequest) (*dto.EnrollmentResponse, error)
	Update(ctx context.Context, req dto.EnrollmentRequest, enrollmentID string) (*dto.EnrollmentResponse, error)
	Delete(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error)
	GetByEnrollmentID(ctx context.Context, enrollmentID string) (*dto.EnrollmentResponse, error)
	StreamAll(ctx context.Context, fn func(dto.EnrollmentResponse) error) error
	ListAll(ctx context.Context) ([]dto.EnrollmentResponse, error)
	Count(ctx context.Context) (int, error)
}

// EnrollmentHandler exposes enrollment endpoints.
type EnrollmentHandler struct {
	enrollments enrollmentOrchestrator
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments enrollmentOrchestrator) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollments: enrollments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
	}
}

// Create godoc
// @Summary Enroll a student in a course
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Create(c *gin.Context) {
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Add(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Stream godoc
// @Summary Stream all enrollments as server-sent events
// @Tags Enrollments
// @Produce text/event-stream
// @Success 200
// @Router /enrollments [get]
func (h *EnrollmentHandler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	streamed := false
	err := h.enrollments.StreamAll(c.Request.Context(), func(resp dto.EnrollmentResponse) error {
		streamed = true
		c.SSEvent("enrollment", resp)
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		if !streamed {
			response.Error(c, err)
			return
		}
		// Headers are gone once events flowed; a terminal event lets
		// clients tell a failed stream from a completed one.
		c.SSEvent("error", appErrors.FromError(err))
		c.Writer.Flush()
	}
}

// Get godoc
// @Summary Get one enrollment
// @Tags Enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{enrollmentId} [get]
func (h *EnrollmentHandler) Get(c *gin.Context) {
	enrollmentID := c.Param("enrollmentId")
	if !validation.ValidIdentifier(enrollmentID) {
		response.Error(c, invalidEnrollmentID(enrollmentID))
		return
	}
	enrollment, err := h.enrollments.GetByEnrollmentID(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if enrollment == nil {
		response.Error(c, enrollmentNotFound(enrollmentID))
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Update godoc
// @Summary Update an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Param payload body dto.EnrollmentRequest true "Enrollment payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{enrollmentId} [put]
func (h *EnrollmentHandler) Update(c *gin.Context) {
	enrollmentID := c.Param("enrollmentId")
	if !validation.ValidIdentifier(enrollmentID) {
		response.Error(c, invalidEnrollmentID(enrollmentID))
		return
	}
	var req dto.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Update(c.Request.Context(), req, enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if enrollment == nil {
		response.Error(c, enrollmentNotFound(enrollmentID))
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Delete godoc
// @Summary Delete an enrollment
// @Tags Enrollments
// @Produce json
// @Param enrollmentId path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{enrollmentId} [delete]
func (h *EnrollmentHandler) Delete(c *gin.Context) {
	enrollmentID := c.Param("enrollmentId")
	if !validation.ValidIdentifier(enrollmentID) {
		response.Error(c, invalidEnrollmentID(enrollmentID))
		return
	}
	enrollment, err := h.enrollments.Delete(c.Request.Context(), enrollmentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if enrollment == nil {
		response.Error(c, enrollmentNotFound(enrollmentID))
		return
	}
	response.JSON(c, http.StatusOK, enrollment)
}

// Export godoc
// @Summary Export the enrollment roster
// @Tags Enrollments
// @Produce text/csv
// @Param format query string false "csv or pdf" default(csv)
// @Success 200
// @Router /enrollments/export [get]
func (h *EnrollmentHandler) Export(c *gin.Context) {
	enrollments, err := h.enrollments.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	table := rosterTable(enrollments)

	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.pdf.Render(table, "Enrollment Roster")
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="enrollments.pdf"`)
		c.Data(http.StatusOK, "application/pdf", payload)
	case "csv":
		payload, err := h.csv.Render(table)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render roster"))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="enrollments.csv"`)
		c.Data(http.StatusOK, "text/csv", payload)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unsupported export format"))
	}
}

func rosterTable(enrollments []dto.EnrollmentResponse) export.Table {
	table := export.Table{
		Columns: []string{"Enrollment ID", "Year", "Semester", "Student", "Course Number", "Course Name"},
	}
	for _, e := range enrollments {
		table.Rows = append(table.Rows, map[string]string{
			"Enrollment ID": e.EnrollmentID,
			"Year":          strconv.Itoa(e.EnrollmentYear),
			"Semester":      string(e.Semester),
			"Student":       e.StudentFirstName + " " + e.StudentLastName,
			"Course Number": e.CourseNumber,
			"Course Name":   e.CourseName,
		})
	}
	return table
}

func invalidEnrollmentID(enrollmentID string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrInvalidIdentifier, fmt.Sprintf("Enrollment id=%s is invalid", enrollmentID))
}

func enrollmentNotFound(enrollmentID string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("Enrollment with id=%s is not found", enrollmentID))
}
