package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// CommentRepository persists per-term report card remarks.
type CommentRepository struct {
	db *sqlx.DB
}

// NewCommentRepository constructs the repository.
func NewCommentRepository(db *sqlx.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Upsert stores a student's remarks for a term.
func (r *CommentRepository) Upsert(ctx context.Context, comment *models.TermComment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	comment.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO term_comments (id, student_id, term, teacher_comment, principal_comment, updated_at)
VALUES (:id, :student_id, :term, :teacher_comment, :principal_comment, :updated_at)
ON CONFLICT (student_id, term) DO UPDATE SET
teacher_comment = EXCLUDED.teacher_comment, principal_comment = EXCLUDED.principal_comment,
updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("upsert term comment: %w", err)
	}
	return nil
}

// ListByClassTerm returns remarks for every student in a class keyed
// by student id.
func (r *CommentRepository) ListByClassTerm(ctx context.Context, classID, term string) (map[string]models.TermComment, error) {
	const query = `SELECT c.id, c.student_id, c.term, c.teacher_comment, c.principal_comment, c.updated_at
FROM term_comments c JOIN students s ON s.id = c.student_id
WHERE s.class_id = $1 AND c.term = $2`
	var rows []models.TermComment
	if err := r.db.SelectContext(ctx, &rows, query, classID, term); err != nil {
		return nil, fmt.Errorf("list term comments: %w", err)
	}
	byStudent := make(map[string]models.TermComment, len(rows))
	for _, row := range rows {
		byStudent[row.StudentID] = row
	}
	return byStudent, nil
}

// GetByStudentTerm returns one student's remarks, sql.ErrNoRows when
// nothing has been written.
func (r *CommentRepository) GetByStudentTerm(ctx context.Context, studentID, term string) (*models.TermComment, error) {
	const query = `SELECT id, student_id, term, teacher_comment, principal_comment, updated_at
FROM term_comments WHERE student_id = $1 AND term = $2`
	var comment models.TermComment
	if err := r.db.GetContext(ctx, &comment, query, studentID, term); err != nil {
		return nil, err
	}
	return &comment, nil
}
