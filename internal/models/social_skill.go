package models

import "time"

// SocialSkillRating records a single skill rating for a student and term.
type SocialSkillRating struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Term      string    `db:"term" json:"term"`
	Skill     string    `db:"skill" json:"skill"`
	Rating    string    `db:"rating" json:"rating"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SocialSkillUpdate replaces a student's ratings for a term.
type SocialSkillUpdate struct {
	Term    string            `json:"term" validate:"required"`
	Ratings map[string]string `json:"ratings" validate:"required"`
}
