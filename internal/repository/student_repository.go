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

const studentColumns = `id, school_code, admission_no, first_name, last_name, gender, date_of_birth,
class_id, guardian_name, guardian_phone, photo_url, active, created_at, updated_at`

// StudentRepository persists student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student row with generated defaults.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, school_code, admission_no, first_name, last_name, gender, date_of_birth,
class_id, guardian_name, guardian_phone, photo_url, active, created_at, updated_at)
VALUES (:id, :school_code, :admission_no, :first_name, :last_name, :gender, :date_of_birth,
:class_id, :guardian_name, :guardian_phone, :photo_url, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// GetByID returns a student by identifier.
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// Update replaces the mutable fields of a student row.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	const query = `UPDATE students SET admission_no = :admission_no, first_name = :first_name,
last_name = :last_name, gender = :gender, date_of_birth = :date_of_birth, class_id = :class_id,
guardian_name = :guardian_name, guardian_phone = :guardian_phone, photo_url = :photo_url,
active = :active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// List returns students matching the filter with total count.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := []string{"school_code = $1"}
	args := []interface{}{filter.SchoolCode}
	argPos := 2

	if filter.ClassID != "" {
		where = append(where, fmt.Sprintf("class_id = $%d", argPos))
		args = append(args, filter.ClassID)
		argPos++
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", argPos))
		args = append(args, *filter.Active)
		argPos++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR admission_no ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM students WHERE %s`, whereClause)
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}
	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY last_name ASC, first_name ASC LIMIT $%d OFFSET $%d`,
		studentColumns, whereClause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

// ListByClass returns the full roster of a class in report order.
// Batch generation iterates this slice as-is, so the ordering here is
// the order report cards appear in the exported PDF.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE class_id = $1 AND active = TRUE
ORDER BY last_name ASC, first_name ASC, admission_no ASC`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return students, nil
}
