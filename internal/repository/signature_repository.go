package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// SignatureRepository persists stored signature image references.
type SignatureRepository struct {
	db *sqlx.DB
}

// NewSignatureRepository constructs the repository.
func NewSignatureRepository(db *sqlx.DB) *SignatureRepository {
	return &SignatureRepository{db: db}
}

// Save stores a signature reference, replacing the previous image for
// the same school and role.
func (r *SignatureRepository) Save(ctx context.Context, sig *models.Signature) error {
	if sig.ID == "" {
		sig.ID = uuid.NewString()
	}
	if sig.CreatedAt.IsZero() {
		sig.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO signatures (id, school_code, role, label, image_path, uploaded_by, created_at)
VALUES (:id, :school_code, :role, :label, :image_path, :uploaded_by, :created_at)
ON CONFLICT (school_code, role) DO UPDATE SET
label = EXCLUDED.label, image_path = EXCLUDED.image_path,
uploaded_by = EXCLUDED.uploaded_by, created_at = EXCLUDED.created_at`
	if _, err := r.db.NamedExecContext(ctx, query, sig); err != nil {
		return fmt.Errorf("save signature: %w", err)
	}
	return nil
}

// ListBySchool returns all signatures stored for a school.
func (r *SignatureRepository) ListBySchool(ctx context.Context, schoolCode string) ([]models.Signature, error) {
	const query = `SELECT id, school_code, role, label, image_path, uploaded_by, created_at
FROM signatures WHERE school_code = $1 ORDER BY role ASC`
	var sigs []models.Signature
	if err := r.db.SelectContext(ctx, &sigs, query, schoolCode); err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	return sigs, nil
}
