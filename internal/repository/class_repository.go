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

// ClassRepository persists class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

const classColumns = `c.id, c.school_code, c.name, c.level, c.teacher_id, u.full_name AS teacher_name,
c.academic_year, (SELECT COUNT(*) FROM students s WHERE s.class_id = c.id AND s.active) AS student_count,
c.created_at, c.updated_at`

// Create inserts a class row.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, school_code, name, level, teacher_id, academic_year, created_at, updated_at)
VALUES (:id, :school_code, :name, :level, :teacher_id, :academic_year, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// GetByID returns a class with its teacher name and roster size.
func (r *ClassRepository) GetByID(ctx context.Context, id string) (*models.Class, error) {
	query := fmt.Sprintf(`SELECT %s FROM classes c LEFT JOIN users u ON u.id = c.teacher_id WHERE c.id = $1`, classColumns)
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Update replaces the mutable fields of a class row.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, level = :level, teacher_id = :teacher_id,
academic_year = :academic_year, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class row.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// List returns classes matching the filter with total count.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.Class, int, error) {
	where := []string{"c.school_code = $1"}
	args := []interface{}{filter.SchoolCode}
	argPos := 2

	if filter.AcademicYear != "" {
		where = append(where, fmt.Sprintf("c.academic_year = $%d", argPos))
		args = append(args, filter.AcademicYear)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("c.name ILIKE $%d", argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM classes c WHERE %s`, whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM classes c LEFT JOIN users u ON u.id = c.teacher_id
WHERE %s ORDER BY c.level ASC, c.name ASC LIMIT $%d OFFSET $%d`, classColumns, whereClause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}
	return classes, total, nil
}
