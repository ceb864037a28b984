package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// AttendanceRepository persists per-term attendance summaries.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// BulkUpsert writes all summaries for a class and term in one
// transaction; the batch is atomic.
func (r *AttendanceRepository) BulkUpsert(ctx context.Context, classID, term string, entries []models.AttendanceEntry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance upsert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `INSERT INTO attendance_summaries (id, class_id, student_id, term, present, absent, late, excused, school_days, updated_at)
VALUES (:id, :class_id, :student_id, :term, :present, :absent, :late, :excused, :school_days, :updated_at)
ON CONFLICT (student_id, term) DO UPDATE SET
class_id = EXCLUDED.class_id, present = EXCLUDED.present, absent = EXCLUDED.absent,
late = EXCLUDED.late, excused = EXCLUDED.excused, school_days = EXCLUDED.school_days,
updated_at = EXCLUDED.updated_at`

	now := time.Now().UTC()
	for _, entry := range entries {
		record := models.AttendanceRecord{
			ID:         uuid.NewString(),
			ClassID:    classID,
			StudentID:  entry.StudentID,
			Term:       term,
			Present:    entry.Present,
			Absent:     entry.Absent,
			Late:       entry.Late,
			Excused:    entry.Excused,
			SchoolDays: entry.SchoolDays,
			UpdatedAt:  now,
		}
		if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
			return fmt.Errorf("upsert attendance for %s: %w", entry.StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance upsert: %w", err)
	}
	return nil
}

// GetSummary returns one student's attendance for a term. sql.ErrNoRows
// passes through when nothing has been recorded.
func (r *AttendanceRepository) GetSummary(ctx context.Context, studentID, term string) (*models.AttendanceSummary, error) {
	const query = `SELECT student_id, term, present, absent, late, excused, school_days
FROM attendance_summaries WHERE student_id = $1 AND term = $2`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID, term); err != nil {
		return nil, err
	}
	summary.ComputePercent()
	return &summary, nil
}

// ListByClassTerm returns all summaries for a class and term.
func (r *AttendanceRepository) ListByClassTerm(ctx context.Context, classID, term string) ([]models.AttendanceSummary, error) {
	const query = `SELECT a.student_id, a.term, a.present, a.absent, a.late, a.excused, a.school_days
FROM attendance_summaries a WHERE a.class_id = $1 AND a.term = $2`
	var summaries []models.AttendanceSummary
	if err := r.db.SelectContext(ctx, &summaries, query, classID, term); err != nil {
		return nil, fmt.Errorf("list attendance for class: %w", err)
	}
	for i := range summaries {
		summaries[i].ComputePercent()
	}
	return summaries, nil
}
