package models

import "time"

// RefreshToken is a persisted refresh token bound to a user session.
type RefreshToken struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"user_id"`
	TokenHash string     `db:"token_hash" json:"-"`
	IP        string     `db:"ip" json:"ip"`
	UserAgent string     `db:"user_agent" json:"user_agent"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the token is past its expiry or revoked.
func (t *RefreshToken) Expired(now time.Time) bool {
	if t.RevokedAt != nil {
		return true
	}
	return now.After(t.ExpiresAt)
}
