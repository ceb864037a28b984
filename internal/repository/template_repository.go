package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

const templateColumns = `id, school_code, school_name, school_motto, logo_url, header_text, sub_header_text,
paper_size, background_url, use_weighted_grading, subjects, grade_scale, assessment_weights,
achievement_standards, social_skill_categories, skill_ratings, design_mode, blocks,
canvas_elements, theme, updated_by, created_at, updated_at`

// TemplateRepository persists report card templates, one row per school.
type TemplateRepository struct {
	db *sqlx.DB
}

// NewTemplateRepository constructs the repository.
func NewTemplateRepository(db *sqlx.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetBySchoolCode returns the template for a school. sql.ErrNoRows is
// passed through for the service layer to translate.
func (r *TemplateRepository) GetBySchoolCode(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM report_templates WHERE school_code = $1`, templateColumns)
	var tpl models.ReportTemplate
	if err := r.db.GetContext(ctx, &tpl, query, schoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get template for %s: %w", schoolCode, err)
	}
	return &tpl, nil
}

// Save stores the full template document, replacing any existing row
// for the school. Last write wins.
func (r *TemplateRepository) Save(ctx context.Context, tpl *models.ReportTemplate) error {
	if tpl.ID == "" {
		tpl.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tpl.CreatedAt.IsZero() {
		tpl.CreatedAt = now
	}
	tpl.UpdatedAt = now

	const query = `INSERT INTO report_templates (id, school_code, school_name, school_motto, logo_url, header_text, sub_header_text,
paper_size, background_url, use_weighted_grading, subjects, grade_scale, assessment_weights,
achievement_standards, social_skill_categories, skill_ratings, design_mode, blocks,
canvas_elements, theme, updated_by, created_at, updated_at)
VALUES (:id, :school_code, :school_name, :school_motto, :logo_url, :header_text, :sub_header_text,
:paper_size, :background_url, :use_weighted_grading, :subjects, :grade_scale, :assessment_weights,
:achievement_standards, :social_skill_categories, :skill_ratings, :design_mode, :blocks,
:canvas_elements, :theme, :updated_by, :created_at, :updated_at)
ON CONFLICT (school_code) DO UPDATE SET
school_name = EXCLUDED.school_name, school_motto = EXCLUDED.school_motto,
logo_url = EXCLUDED.logo_url, header_text = EXCLUDED.header_text,
sub_header_text = EXCLUDED.sub_header_text, paper_size = EXCLUDED.paper_size,
background_url = EXCLUDED.background_url, use_weighted_grading = EXCLUDED.use_weighted_grading,
subjects = EXCLUDED.subjects, grade_scale = EXCLUDED.grade_scale,
assessment_weights = EXCLUDED.assessment_weights, achievement_standards = EXCLUDED.achievement_standards,
social_skill_categories = EXCLUDED.social_skill_categories, skill_ratings = EXCLUDED.skill_ratings,
design_mode = EXCLUDED.design_mode, blocks = EXCLUDED.blocks,
canvas_elements = EXCLUDED.canvas_elements, theme = EXCLUDED.theme,
updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, tpl); err != nil {
		return fmt.Errorf("save template for %s: %w", tpl.SchoolCode, err)
	}
	return nil
}

// SchoolExists reports whether a school code is registered. Templates
// are only auto-seeded for known schools.
func (r *TemplateRepository) SchoolExists(ctx context.Context, schoolCode string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM schools WHERE code = $1)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, schoolCode); err != nil {
		return false, fmt.Errorf("check school %s: %w", schoolCode, err)
	}
	return exists, nil
}

// SchoolName returns the registered display name for a school code.
func (r *TemplateRepository) SchoolName(ctx context.Context, schoolCode string) (string, error) {
	const query = `SELECT name FROM schools WHERE code = $1`
	var name string
	if err := r.db.GetContext(ctx, &name, query, schoolCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("get school name %s: %w", schoolCode, err)
	}
	return name, nil
}
