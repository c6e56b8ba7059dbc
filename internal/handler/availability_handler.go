package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grundschule/stundenplan-api/internal/service"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
	"github.com/grundschule/stundenplan-api/pkg/response"
)

// AvailabilityHandler handles teacher availability and qualification
// endpoints (both hang off the teacher resource).
type AvailabilityHandler struct {
	availability   *service.AvailabilityService
	qualifications *service.QualificationService
}

// NewAvailabilityHandler constructs the handler.
func NewAvailabilityHandler(availability *service.AvailabilityService, qualifications *service.QualificationService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability, qualifications: qualifications}
}

// Register mounts the availability and qualification routes.
func (h *AvailabilityHandler) Register(r *gin.RouterGroup) {
	r.GET("/teachers/:id/availability", h.ListAvailability)
	r.POST("/availability", h.CreateAvailability)
	r.PUT("/availability/:id", h.UpdateAvailability)
	r.DELETE("/availability/:id", h.DeleteAvailability)

	r.GET("/teachers/:id/qualifications", h.ListQualifications)
	r.POST("/qualifications", h.CreateQualification)
	r.PUT("/qualifications/:id", h.UpdateQualification)
	r.DELETE("/qualifications/:id", h.DeleteQualification)
}

// ListAvailability godoc
// @Summary List a teacher's availability
// @Tags Availability
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/availability [get]
func (h *AvailabilityHandler) ListAvailability(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.availability.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// CreateAvailability godoc
// @Summary Create an availability cell
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body service.UpsertAvailabilityRequest true "Availability payload"
// @Success 201 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) CreateAvailability(c *gin.Context) {
	var req service.UpsertAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.availability.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// UpdateAvailability godoc
// @Summary Update an availability cell
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path int true "Availability ID"
// @Param payload body service.UpsertAvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /availability/{id} [put]
func (h *AvailabilityHandler) UpdateAvailability(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpsertAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.availability.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// DeleteAvailability godoc
// @Summary Delete an availability cell
// @Tags Availability
// @Param id path int true "Availability ID"
// @Success 204
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) DeleteAvailability(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.availability.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListQualifications godoc
// @Summary List a teacher's subject qualifications
// @Tags Qualifications
// @Produce json
// @Param id path int true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/qualifications [get]
func (h *AvailabilityHandler) ListQualifications(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.qualifications.ListByTeacher(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// CreateQualification godoc
// @Summary Create a qualification
// @Tags Qualifications
// @Accept json
// @Produce json
// @Param payload body service.UpsertQualificationRequest true "Qualification payload"
// @Success 201 {object} response.Envelope
// @Router /qualifications [post]
func (h *AvailabilityHandler) CreateQualification(c *gin.Context) {
	var req service.UpsertQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.qualifications.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, row)
}

// UpdateQualification godoc
// @Summary Update a qualification
// @Tags Qualifications
// @Accept json
// @Produce json
// @Param id path int true "Qualification ID"
// @Param payload body service.UpsertQualificationRequest true "Qualification payload"
// @Success 200 {object} response.Envelope
// @Router /qualifications/{id} [put]
func (h *AvailabilityHandler) UpdateQualification(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.UpsertQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	row, err := h.qualifications.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, row, nil)
}

// DeleteQualification godoc
// @Summary Delete a qualification
// @Tags Qualifications
// @Param id path int true "Qualification ID"
// @Success 204
// @Router /qualifications/{id} [delete]
func (h *AvailabilityHandler) DeleteQualification(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.qualifications.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
