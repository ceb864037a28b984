package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

const gradeColumns = `id, student_id, class_id, subject, term, score, components, comment, recorded_by, created_at, updated_at`

// GradeRepository persists per-subject grade records.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs the repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert stores a grade record, replacing any existing record for the
// same student, subject and term.
func (r *GradeRepository) Upsert(ctx context.Context, grade *models.SubjectGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	grade.UpdatedAt = now
	const query = `INSERT INTO subject_grades (id, student_id, class_id, subject, term, score, components, comment, recorded_by, created_at, updated_at)
VALUES (:id, :student_id, :class_id, :subject, :term, :score, :components, :comment, :recorded_by, :created_at, :updated_at)
ON CONFLICT (student_id, subject, term) DO UPDATE SET
class_id = EXCLUDED.class_id, score = EXCLUDED.score, components = EXCLUDED.components,
comment = EXCLUDED.comment, recorded_by = EXCLUDED.recorded_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

// ListByStudentTerm returns all of a student's grades for a term.
func (r *GradeRepository) ListByStudentTerm(ctx context.Context, studentID, term string) ([]models.SubjectGrade, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_grades WHERE student_id = $1 AND term = $2 ORDER BY subject ASC`, gradeColumns)
	var grades []models.SubjectGrade
	if err := r.db.SelectContext(ctx, &grades, query, studentID, term); err != nil {
		return nil, fmt.Errorf("list grades for student: %w", err)
	}
	return grades, nil
}

// ListByClassTerm returns every grade record for a class and term,
// feeding batch rendering and class ranking in one query.
func (r *GradeRepository) ListByClassTerm(ctx context.Context, classID, term string) ([]models.SubjectGrade, error) {
	query := fmt.Sprintf(`SELECT %s FROM subject_grades WHERE class_id = $1 AND term = $2 ORDER BY student_id ASC, subject ASC`, gradeColumns)
	var grades []models.SubjectGrade
	if err := r.db.SelectContext(ctx, &grades, query, classID, term); err != nil {
		return nil, fmt.Errorf("list grades for class: %w", err)
	}
	return grades, nil
}
