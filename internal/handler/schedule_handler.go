package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grundschule/stundenplan-api/internal/dto"
	"github.com/grundschule/stundenplan-api/internal/models"
	"github.com/grundschule/stundenplan-api/internal/service"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
	"github.com/grundschule/stundenplan-api/pkg/response"
)

// ScheduleHandler handles schedule CRUD, validation, the conflict scan and
// timetable exports.
type ScheduleHandler struct {
	service *service.ScheduleService
}

// NewScheduleHandler constructs a schedule handler.
func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// Register mounts the schedule routes.
func (h *ScheduleHandler) Register(r *gin.RouterGroup) {
	r.GET("/schedule", h.List)
	r.GET("/schedule/:id", h.Get)
	r.POST("/schedule", h.Create)
	r.POST("/schedule/bulk", h.BulkCreate)
	r.PUT("/schedule/:id", h.Update)
	r.DELETE("/schedule/:id", h.Delete)
	r.POST("/schedule/validate", h.Validate)
	r.GET("/schedule/conflicts", h.Conflicts)
	r.GET("/schedule/export/class/:id", h.ExportClass)
	r.GET("/schedule/export/teacher/:id", h.ExportTeacher)
}

// List godoc
// @Summary List schedule entries
// @Tags Schedule
// @Produce json
// @Param class_id query int false "Class filter"
// @Param teacher_id query int false "Teacher filter"
// @Param week_type query string false "Week type (A, B, ALL)"
// @Param day query int false "Day 1-5"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *ScheduleHandler) List(c *gin.Context) {
	filter := models.ScheduleFilter{
		ClassID:       queryInt64(c, "class_id"),
		TeacherID:     queryInt64(c, "teacher_id"),
		SubjectID:     queryInt64(c, "subject_id"),
		TimeSlotID:    queryInt64(c, "timeslot_id"),
		Room:          c.Query("room"),
		WeekType:      models.WeekType(c.Query("week_type")),
		Day:           queryInt(c, "day", 0),
		IncludeBreaks: c.DefaultQuery("include_breaks", "true") == "true",
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "limit", 100),
	}
	entries, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get schedule entry by id
// @Tags Schedule
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [get]
func (h *ScheduleHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entry, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Create godoc
// @Summary Create schedule entry
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleEntryRequest true "Entry payload"
// @Success 201 {object} response.Envelope
// @Router /schedule [post]
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}

// BulkCreate godoc
// @Summary Create schedule entries atomically
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.BulkScheduleRequest true "Entries payload"
// @Success 201 {object} response.Envelope
// @Router /schedule/bulk [post]
func (h *ScheduleHandler) BulkCreate(c *gin.Context) {
	var req dto.BulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entries, err := h.service.BulkCreate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entries)
}

// Update godoc
// @Summary Update schedule entry
// @Tags Schedule
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param payload body dto.ScheduleEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/{id} [put]
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	entry, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Delete godoc
// @Summary Delete schedule entry
// @Tags Schedule
// @Param id path int true "Entry ID"
// @Success 204
// @Router /schedule/{id} [delete]
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Validate godoc
// @Summary Check one candidate entry for conflicts
// @Tags Schedule
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleEntryRequest true "Candidate payload"
// @Success 200 {object} response.Envelope
// @Router /schedule/validate [post]
func (h *ScheduleHandler) Validate(c *gin.Context) {
	var req dto.ScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Conflicts godoc
// @Summary List all conflicts in the persisted schedule
// @Tags Schedule
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/conflicts [get]
func (h *ScheduleHandler) Conflicts(c *gin.Context) {
	found, err := h.service.Scan(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, found, nil)
}

// ExportClass godoc
// @Summary Export a class timetable as PDF or CSV
// @Tags Schedule
// @Param id path int true "Class ID"
// @Param format query string false "pdf or csv"
// @Router /schedule/export/class/{id} [get]
func (h *ScheduleHandler) ExportClass(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, contentType, err := h.service.ExportClass(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}

// ExportTeacher godoc
// @Summary Export a teacher timetable as PDF or CSV
// @Tags Schedule
// @Param id path int true "Teacher ID"
// @Param format query string false "pdf or csv"
// @Router /schedule/export/teacher/{id} [get]
func (h *ScheduleHandler) ExportTeacher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	data, contentType, err := h.service.ExportTeacher(c.Request.Context(), id, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, data)
}
