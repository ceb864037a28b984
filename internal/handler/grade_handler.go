package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

// GradeHandler exposes grade recording endpoints.
type GradeHandler struct {
	grades *service.GradeService
}

// NewGradeHandler constructs GradeHandler.
func NewGradeHandler(grades *service.GradeService) *GradeHandler {
	return &GradeHandler{grades: grades}
}

// Upsert godoc
// @Summary Record a subject grade
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.GradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /grades [put]
func (h *GradeHandler) Upsert(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.grades.Upsert(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// ListByStudent godoc
// @Summary List a student's grades for a term
// @Tags Grades
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/grades [get]
func (h *GradeHandler) ListByStudent(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	grades, err := h.grades.ListByStudent(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}

// ListByClass godoc
// @Summary List every grade recorded for a class and term
// @Tags Grades
// @Produce json
// @Param id path string true "Class ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/grades [get]
func (h *GradeHandler) ListByClass(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	grades, err := h.grades.ListByClass(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, nil)
}
