package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/render"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

type reportCardService interface {
	Generate(ctx context.Context, params models.ReportBatchParams, actorID string) (*models.ReportBatch, error)
	GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*models.ReportBatch, error)
	Preview(ctx context.Context, schoolCode, studentID, term string) (*render.Document, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportCardHandler exposes report card generation endpoints.
type ReportCardHandler struct {
	reports reportCardService
}

// NewReportCardHandler constructs ReportCardHandler.
func NewReportCardHandler(reports reportCardService) *ReportCardHandler {
	return &ReportCardHandler{reports: reports}
}

// Generate godoc
// @Summary Queue a report card batch
// @Description Renders one PDF per student in the class, or one student when student_id is set
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param payload body dto.GenerateReportRequest true "Batch payload"
// @Success 202 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /report-cards/generate [post]
func (h *ReportCardHandler) Generate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}

	batch, err := h.reports.Generate(c.Request.Context(), models.ReportBatchParams{
		SchoolCode: claims.SchoolCode,
		ClassID:    req.ClassID,
		Term:       req.Term,
		StudentID:  req.StudentID,
	}, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.FromBatch(batch), nil)
}

// Status godoc
// @Summary Poll a report card batch
// @Tags ReportCards
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /report-cards/{id} [get]
func (h *ReportCardHandler) Status(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	batch, err := h.reports.GetStatus(c.Request.Context(), c.Param("id"), claims.UserID, claims.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.FromBatch(batch), nil)
}

// Preview godoc
// @Summary Compose a single report card without rendering a PDF
// @Description Returns the composed document for the template editor's preview pane
// @Tags ReportCards
// @Accept json
// @Produce json
// @Param payload body dto.PreviewRequest true "Preview payload"
// @Success 200 {object} response.Envelope
// @Router /report-cards/preview [post]
func (h *ReportCardHandler) Preview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if req.StudentID == "" || req.Term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "student_id and term required"))
		return
	}

	doc, err := h.reports.Preview(c.Request.Context(), claims.SchoolCode, req.StudentID, req.Term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, doc, nil)
}

// Download godoc
// @Summary Download a finished batch PDF
// @Description Streams the PDF referenced by a signed export token; no auth header needed
// @Tags ReportCards
// @Produce application/pdf
// @Param token path string true "Signed export token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /export/{token} [get]
func (h *ReportCardHandler) Download(c *gin.Context) {
	download, err := h.reports.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Disposition", `attachment; filename="`+download.Filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.File(download.File.Name())
}
