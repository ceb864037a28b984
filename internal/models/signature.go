package models

import "time"

// SignatureRole identifies whose signature an image belongs to.
type SignatureRole string

const (
	SignatureRoleTeacher   SignatureRole = "teacher"
	SignatureRolePrincipal SignatureRole = "principal"
)

// Valid returns true when the role is a supported value.
func (r SignatureRole) Valid() bool {
	return r == SignatureRoleTeacher || r == SignatureRolePrincipal
}

// Signature is a stored signature image reference for a school.
type Signature struct {
	ID         string        `db:"id" json:"id"`
	SchoolCode string        `db:"school_code" json:"school_code"`
	Role       SignatureRole `db:"role" json:"role"`
	Label      string        `db:"label" json:"label"`
	ImagePath  string        `db:"image_path" json:"image_path"`
	UploadedBy string        `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
}
