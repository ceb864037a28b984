package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

// UploadHandler exposes image upload endpoints.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler constructs UploadHandler.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// UploadImage godoc
// @Summary Upload a template image
// @Description Stores a background or logo image and returns its URL
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param kind formData string true "Image kind (backgrounds or logos)"
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /uploads [post]
func (h *UploadHandler) UploadImage(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	kind := c.PostForm("kind")
	if kind != "backgrounds" && kind != "logos" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "kind must be backgrounds or logos"))
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	url, err := h.uploads.SaveImage(c.Request.Context(), claims.SchoolCode, kind, header.Filename, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, gin.H{"url": url}, nil)
}

// UploadSignature godoc
// @Summary Upload a signature image
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param role formData string true "Signature role (teacher or principal)"
// @Param label formData string false "Printed label"
// @Param file formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /signatures [post]
func (h *UploadHandler) UploadSignature(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	role := models.SignatureRole(c.PostForm("role"))
	label := c.PostForm("label")

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close()

	sig, err := h.uploads.SaveSignature(c.Request.Context(), claims.SchoolCode, role, label, claims.UserID, header.Filename, header.Size, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sig)
}

// ListSignatures godoc
// @Summary List stored signatures for the caller's school
// @Tags Uploads
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /signatures [get]
func (h *UploadHandler) ListSignatures(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	sigs, err := h.uploads.ListSignatures(c.Request.Context(), claims.SchoolCode)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sigs, nil)
}
