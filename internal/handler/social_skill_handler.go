package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

// SocialSkillHandler exposes social skill rating endpoints.
type SocialSkillHandler struct {
	skills *service.SocialSkillService
}

// NewSocialSkillHandler constructs SocialSkillHandler.
func NewSocialSkillHandler(skills *service.SocialSkillService) *SocialSkillHandler {
	return &SocialSkillHandler{skills: skills}
}

// Replace godoc
// @Summary Replace a student's skill ratings for a term
// @Tags SocialSkills
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body models.SocialSkillUpdate true "Ratings payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Router /students/{id}/social-skills [put]
func (h *SocialSkillHandler) Replace(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SocialSkillUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.skills.Replace(c.Request.Context(), claims.SchoolCode, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ListByStudent godoc
// @Summary List a student's skill ratings for a term
// @Tags SocialSkills
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/social-skills [get]
func (h *SocialSkillHandler) ListByStudent(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	ratings, err := h.skills.ListByStudent(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ratings, nil)
}
