package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/service"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/response"
)

// CommentHandler exposes term comment endpoints.
type CommentHandler struct {
	comments *service.CommentService
}

// NewCommentHandler constructs CommentHandler.
func NewCommentHandler(comments *service.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// Upsert godoc
// @Summary Record report card remarks
// @Tags Comments
// @Accept json
// @Produce json
// @Param payload body dto.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /comments [put]
func (h *CommentHandler) Upsert(c *gin.Context) {
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	comment, err := h.comments.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment, nil)
}

// Get godoc
// @Summary Get report card remarks
// @Tags Comments
// @Produce json
// @Param id path string true "Student ID"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/comments [get]
func (h *CommentHandler) Get(c *gin.Context) {
	term := c.Query("term")
	if term == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "term required"))
		return
	}
	comment, err := h.comments.Get(c.Request.Context(), c.Param("id"), term)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment, nil)
}
