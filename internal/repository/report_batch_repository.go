package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

const batchColumns = `id, params, status, progress, total_items, result_path, created_by, created_at, finished_at, error_message`

// ReportBatchRepository persists report card generation jobs.
type ReportBatchRepository struct {
	db *sqlx.DB
}

// NewReportBatchRepository constructs the repository.
func NewReportBatchRepository(db *sqlx.DB) *ReportBatchRepository {
	return &ReportBatchRepository{db: db}
}

// Create inserts a new batch row with generated defaults.
func (r *ReportBatchRepository) Create(ctx context.Context, batch *models.ReportBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStatusQueued
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO report_batches (id, params, status, progress, total_items, result_path, created_by, created_at, finished_at, error_message)
VALUES (:id, :params, :status, :progress, :total_items, :result_path, :created_by, :created_at, :finished_at, :error_message)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create report batch: %w", err)
	}
	return nil
}

// GetByID returns a batch row by its identifier.
func (r *ReportBatchRepository) GetByID(ctx context.Context, id string) (*models.ReportBatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_batches WHERE id = $1`, batchColumns)
	var batch models.ReportBatch
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// UpdateBatchParams defines the mutable fields of a batch row.
type UpdateBatchParams struct {
	Status       *models.BatchStatus
	Progress     *int
	TotalItems   *int
	ResultPath   *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update persists the provided changes for a batch row.
func (r *ReportBatchRepository) Update(ctx context.Context, id string, params UpdateBatchParams) error {
	set := make([]string, 0, 6)
	args := make([]interface{}, 0, 7)
	argPos := 1

	if params.Status != nil {
		set = append(set, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *params.Status)
		argPos++
	}
	if params.Progress != nil {
		set = append(set, fmt.Sprintf("progress = $%d", argPos))
		args = append(args, *params.Progress)
		argPos++
	}
	if params.TotalItems != nil {
		set = append(set, fmt.Sprintf("total_items = $%d", argPos))
		args = append(args, *params.TotalItems)
		argPos++
	}
	if params.ResultPath != nil {
		set = append(set, fmt.Sprintf("result_path = $%d", argPos))
		args = append(args, *params.ResultPath)
		argPos++
	}
	if params.ErrorMessage != nil {
		set = append(set, fmt.Sprintf("error_message = $%d", argPos))
		args = append(args, *params.ErrorMessage)
		argPos++
	}
	if params.FinishedAt != nil {
		set = append(set, fmt.Sprintf("finished_at = $%d", argPos))
		args = append(args, *params.FinishedAt)
		argPos++
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf("UPDATE report_batches SET %s WHERE id = $%d", strings.Join(set, ", "), argPos)
	args = append(args, id)

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update report batch: %w", err)
	}
	return nil
}

// ListFinishedBefore retrieves completed batches prior to cutoff so
// the cleanup loop can delete their files.
func (r *ReportBatchRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportBatch, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM report_batches
WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1
ORDER BY finished_at ASC LIMIT $2`, batchColumns)
	var batches []models.ReportBatch
	if err := r.db.SelectContext(ctx, &batches, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("list finished report batches: %w", err)
	}
	return batches, nil
}
