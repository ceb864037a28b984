package models

import "time"

// TermComment holds the free-text remarks printed on a report card.
type TermComment struct {
	ID               string    `db:"id" json:"id"`
	StudentID        string    `db:"student_id" json:"student_id"`
	Term             string    `db:"term" json:"term"`
	TeacherComment   string    `db:"teacher_comment" json:"teacher_comment"`
	PrincipalComment string    `db:"principal_comment" json:"principal_comment"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
