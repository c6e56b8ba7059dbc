package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grundschule/stundenplan-api/internal/dto"
	"github.com/grundschule/stundenplan-api/internal/service"
	appErrors "github.com/grundschule/stundenplan-api/pkg/errors"
	"github.com/grundschule/stundenplan-api/pkg/response"
)

// SolveHandler exposes the timetable generation endpoints.
type SolveHandler struct {
	service *service.SolveService
}

// NewSolveHandler constructs a solve handler.
func NewSolveHandler(svc *service.SolveService) *SolveHandler {
	return &SolveHandler{service: svc}
}

// Register mounts the solver routes.
func (h *SolveHandler) Register(r *gin.RouterGroup) {
	r.POST("/schedule/generate", h.Generate)
	r.POST("/schedule/optimize", h.Optimize)
	r.GET("/schedule/generate/last", h.Last)
}

// Generate godoc
// @Summary Generate a weekly schedule
// @Tags Solver
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Solve options"
// @Success 200 {object} response.Envelope
// @Router /schedule/generate [post]
func (h *SolveHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SolveResponseFrom(result), nil)
}

// Optimize godoc
// @Summary Improve the current schedule while keeping every entry fixed
// @Tags Solver
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Solve options"
// @Success 200 {object} response.Envelope
// @Router /schedule/optimize [post]
func (h *SolveHandler) Optimize(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	result, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.SolveResponseFrom(result), nil)
}

// Last godoc
// @Summary Return the cached summary of the most recent solve
// @Tags Solver
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /schedule/generate/last [get]
func (h *SolveHandler) Last(c *gin.Context) {
	result, ok := h.service.LastResult(c.Request.Context())
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no solve result cached"))
		return
	}
	response.JSON(c, http.StatusOK, dto.SolveResponseFrom(result), nil)
}
