package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

const userColumns = `id, username, email, password_hash, full_name, role, school_code, active, last_login, created_at, updated_at`

// UserRepository persists application users and their refresh tokens.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs the repository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByUsername returns a user by login name.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns a user by identifier.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin stamps a successful authentication.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// StoreRefreshToken persists a hashed refresh token.
func (r *UserRepository) StoreRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO refresh_tokens (id, user_id, token_hash, ip, user_agent, expires_at, revoked_at, created_at)
VALUES (:id, :user_id, :token_hash, :ip, :user_agent, :expires_at, :revoked_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, token); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken looks up a stored token by its hash.
func (r *UserRepository) GetRefreshToken(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	const query = `SELECT id, user_id, token_hash, ip, user_agent, expires_at, revoked_at, created_at
FROM refresh_tokens WHERE token_hash = $1`
	var token models.RefreshToken
	if err := r.db.GetContext(ctx, &token, query, tokenHash); err != nil {
		return nil, err
	}
	return &token, nil
}

// RevokeRefreshToken marks a token unusable.
func (r *UserRepository) RevokeRefreshToken(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE refresh_tokens SET revoked_at = $1 WHERE id = $2 AND revoked_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, at, id); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
