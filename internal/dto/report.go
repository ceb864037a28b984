package dto

import "github.com/jtech-innovations/report-card-api/internal/models"

// GenerateReportRequest captures POST /report-cards/generate payload.
type GenerateReportRequest struct {
	ClassID   string  `json:"class_id" validate:"required"`
	Term      string  `json:"term" validate:"required"`
	StudentID *string `json:"student_id"`
}

// BatchResponse is returned after enqueueing a batch and when polling.
type BatchResponse struct {
	ID        string             `json:"id"`
	Status    models.BatchStatus `json:"status"`
	Progress  int                `json:"progress"`
	Total     int                `json:"total"`
	ResultURL *string            `json:"result_url,omitempty"`
	Error     *string            `json:"error,omitempty"`
}

// FromBatch maps the stored batch row onto the wire shape.
func FromBatch(batch *models.ReportBatch) BatchResponse {
	return BatchResponse{
		ID:        batch.ID,
		Status:    batch.Status,
		Progress:  batch.Progress,
		Total:     batch.TotalItems,
		ResultURL: batch.ResultURL,
		Error:     batch.ErrorMessage,
	}
}

// PreviewRequest composes one student's report card without rendering a PDF.
type PreviewRequest struct {
	StudentID string `json:"student_id" validate:"required"`
	Term      string `json:"term" validate:"required"`
}
