package models

import "time"

// Class represents a homeroom group of students.
type Class struct {
	ID            string    `db:"id" json:"id"`
	SchoolCode    string    `db:"school_code" json:"school_code"`
	Name          string    `db:"name" json:"name"`
	Level         string    `db:"level" json:"level"`
	TeacherID     *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	TeacherName   *string   `db:"teacher_name" json:"teacher_name,omitempty"`
	AcademicYear  string    `db:"academic_year" json:"academic_year"`
	StudentCount  int       `db:"student_count" json:"student_count"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// ClassFilter scopes class listing queries.
type ClassFilter struct {
	SchoolCode   string
	AcademicYear string
	Search       string
	Page         int
	PageSize     int
}
