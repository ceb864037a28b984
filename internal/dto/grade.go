package dto

import "github.com/jtech-innovations/report-card-api/internal/models"

// GradeRequest upserts a student's grade for one subject in one term.
type GradeRequest struct {
	StudentID  string                      `json:"student_id" validate:"required"`
	ClassID    string                      `json:"class_id" validate:"required"`
	Subject    string                      `json:"subject" validate:"required"`
	Term       string                      `json:"term" validate:"required"`
	Score      *float64                    `json:"score" validate:"omitempty,min=0,max=100"`
	Components models.AssessmentComponents `json:"components"`
	Comment    *string                     `json:"comment"`
}

// CommentRequest upserts the report card remarks for a student and term.
type CommentRequest struct {
	StudentID        string `json:"student_id" validate:"required"`
	Term             string `json:"term" validate:"required"`
	TeacherComment   string `json:"teacher_comment"`
	PrincipalComment string `json:"principal_comment"`
}
