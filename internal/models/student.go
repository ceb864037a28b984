package models

import "time"

// Student represents a learner registered at a school.
type Student struct {
	ID             string     `db:"id" json:"id"`
	SchoolCode     string     `db:"school_code" json:"school_code"`
	AdmissionNo    string     `db:"admission_no" json:"admission_no"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Gender         string     `db:"gender" json:"gender"`
	DateOfBirth    *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ClassID        *string    `db:"class_id" json:"class_id,omitempty"`
	GuardianName   string     `db:"guardian_name" json:"guardian_name"`
	GuardianPhone  string     `db:"guardian_phone" json:"guardian_phone"`
	PhotoURL       *string    `db:"photo_url" json:"photo_url,omitempty"`
	Active         bool       `db:"active" json:"active"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// FullName joins the name parts for display.
func (s *Student) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	SchoolCode string
	ClassID    string
	Search     string
	Active     *bool
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
