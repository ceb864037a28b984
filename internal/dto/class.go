package dto

import "github.com/jtech-innovations/report-card-api/internal/models"

// ClassRequest captures create/update payloads for classes.
type ClassRequest struct {
	Name         string  `json:"name" validate:"required"`
	Level        string  `json:"level"`
	TeacherID    *string `json:"teacher_id"`
	AcademicYear string  `json:"academic_year" validate:"required"`
}

// ToModel converts the request into a class record.
func (r ClassRequest) ToModel(schoolCode string) *models.Class {
	return &models.Class{
		SchoolCode:   schoolCode,
		Name:         r.Name,
		Level:        r.Level,
		TeacherID:    r.TeacherID,
		AcademicYear: r.AcademicYear,
	}
}
