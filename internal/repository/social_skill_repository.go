package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// SocialSkillRepository persists social skill ratings.
type SocialSkillRepository struct {
	db *sqlx.DB
}

// NewSocialSkillRepository constructs the repository.
func NewSocialSkillRepository(db *sqlx.DB) *SocialSkillRepository {
	return &SocialSkillRepository{db: db}
}

// Replace swaps out all of a student's ratings for a term. Ratings are
// stored verbatim; rendering matches them against the template's
// vocabulary by exact string comparison.
func (r *SocialSkillRepository) Replace(ctx context.Context, studentID, term string, ratings map[string]string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ratings replace: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM social_skill_ratings WHERE student_id = $1 AND term = $2`, studentID, term); err != nil {
		return fmt.Errorf("clear ratings: %w", err)
	}

	const query = `INSERT INTO social_skill_ratings (id, student_id, term, skill, rating, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	now := time.Now().UTC()
	for skill, rating := range ratings {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), studentID, term, skill, rating, now); err != nil {
			return fmt.Errorf("insert rating %s: %w", skill, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ratings replace: %w", err)
	}
	return nil
}

// ListByStudentTerm returns a student's ratings keyed by skill.
func (r *SocialSkillRepository) ListByStudentTerm(ctx context.Context, studentID, term string) (map[string]string, error) {
	const query = `SELECT id, student_id, term, skill, rating, updated_at
FROM social_skill_ratings WHERE student_id = $1 AND term = $2`
	var rows []models.SocialSkillRating
	if err := r.db.SelectContext(ctx, &rows, query, studentID, term); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	ratings := make(map[string]string, len(rows))
	for _, row := range rows {
		ratings[row.Skill] = row.Rating
	}
	return ratings, nil
}

// ListByClassTerm returns ratings for every student in a class keyed
// by student id then skill.
func (r *SocialSkillRepository) ListByClassTerm(ctx context.Context, classID, term string) (map[string]map[string]string, error) {
	const query = `SELECT r.id, r.student_id, r.term, r.skill, r.rating, r.updated_at
FROM social_skill_ratings r JOIN students s ON s.id = r.student_id
WHERE s.class_id = $1 AND r.term = $2`
	var rows []models.SocialSkillRating
	if err := r.db.SelectContext(ctx, &rows, query, classID, term); err != nil {
		return nil, fmt.Errorf("list class ratings: %w", err)
	}
	byStudent := make(map[string]map[string]string)
	for _, row := range rows {
		if byStudent[row.StudentID] == nil {
			byStudent[row.StudentID] = make(map[string]string)
		}
		byStudent[row.StudentID][row.Skill] = row.Rating
	}
	return byStudent, nil
}
