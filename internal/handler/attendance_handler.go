package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance}
}

// BulkUpsert godoc
// @Summary Record term attendance for a class
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.AttendanceBulkRequest true "Attendance payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /attendance [put]
func (h *AttendanceHandler) BulkUpsert(c *gin.Context) {
	var req models.AttendanceBulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.BulkUpsert(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSummary godoc
// @Summary Get a student's attendance summary
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/attendance [get]
func (h *AttendanceHandler) GetSummary(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	summary, err := h.attendance.GetSummary(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// ListByClass godoc
// @Summary List attendance summaries for a class and term
// @Tags Attendance
// @Produce json
// @Param id path string true "Class ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance [get]
func (h *AttendanceHandler) ListByClass(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	summaries, err := h.attendance.ListByClass(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summaries, nil)
}
