package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/render"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

type templateService interface {
	Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
	Save(ctx context.Context, tpl *models.ReportTemplate, updatedBy string) (*models.ReportTemplate, error)
}

// TemplateHandler exposes report template endpoints.
type TemplateHandler struct {
	templates templateService
}

// NewTemplateHandler constructs TemplateHandler.
func NewTemplateHandler(templates templateService) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

// Get godoc
// @Summary Get a school's report template
// @Description Returns the template, seeding the default on first access
// @Tags Templates
// @Produce json
// @Param school_code path string true "School code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /report-templates/{school_code} [get]
func (h *TemplateHandler) Get(c *gin.Context) {
	tpl, err := h.templates.Get(c.Request.Context(), c.Param("school_code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tpl, nil)
}

// Save godoc
// @Summary Replace a school's report template
// @Tags Templates
// @Accept json
// @Produce json
// @Param school_code path string true "School code"
// @Param payload body models.ReportTemplate true "Template document"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /report-templates/{school_code} [put]
func (h *TemplateHandler) Save(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var tpl models.ReportTemplate
	if err := c.ShouldBindJSON(&tpl); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid template payload"))
		return
	}
	tpl.SchoolCode = c.Param("school_code")

	saved, err := h.templates.Save(c.Request.Context(), &tpl, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, saved, nil)
}

// Fields godoc
// @Summary List placeholder fields
// @Description Returns the closed vocabulary of data fields templates can reference
// @Tags Templates
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /report-templates/fields [get]
func (h *TemplateHandler) Fields(c *gin.Context) {
	response.JSON(c, http.StatusOK, render.FieldCatalog, nil)
}
