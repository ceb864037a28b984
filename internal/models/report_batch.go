package models

import (
	"database/sql/driver"
	"time"
)

// BatchStatus captures background job lifecycle states.
type BatchStatus string

const (
	BatchStatusQueued     BatchStatus = "QUEUED"
	BatchStatusProcessing BatchStatus = "PROCESSING"
	BatchStatusFinished   BatchStatus = "FINISHED"
	BatchStatusFailed     BatchStatus = "FAILED"
)

// ReportBatchParams stores request-scoped options persisted as JSONB.
type ReportBatchParams struct {
	SchoolCode string `json:"schoolCode"`
	ClassID    string `json:"classId"`
	Term       string `json:"term"`
	// StudentID limits the batch to a single student when set.
	StudentID *string `json:"studentId,omitempty"`
}

// Value marshals params to JSON for persistence.
func (p ReportBatchParams) Value() (driver.Value, error) {
	return marshalJSON(p, "report batch params")
}

// Scan unmarshals JSON payloads into the params struct.
func (p *ReportBatchParams) Scan(value interface{}) error {
	return scanJSON(value, p, "ReportBatchParams")
}

// ReportBatch is a persisted report card generation job.
type ReportBatch struct {
	ID           string            `db:"id" json:"id"`
	Params       ReportBatchParams `db:"params" json:"params"`
	Status       BatchStatus       `db:"status" json:"status"`
	Progress     int               `db:"progress" json:"progress"`
	TotalItems   int               `db:"total_items" json:"total_items"`
	ResultPath   *string           `db:"result_path" json:"-"`
	ResultURL    *string           `db:"-" json:"result_url,omitempty"`
	CreatedBy    string            `db:"created_by" json:"created_by"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time        `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string           `db:"error_message" json:"error_message,omitempty"`
}
