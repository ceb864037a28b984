package dto

import (
	"time"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// StudentRequest captures create/update payloads for students.
type StudentRequest struct {
	AdmissionNo   string  `json:"admission_no" validate:"required"`
	FirstName     string  `json:"first_name" validate:"required"`
	LastName      string  `json:"last_name"`
	Gender        string  `json:"gender" validate:"omitempty,oneof=male female"`
	DateOfBirth   *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	ClassID       *string `json:"class_id"`
	GuardianName  string  `json:"guardian_name"`
	GuardianPhone string  `json:"guardian_phone"`
	PhotoURL      *string `json:"photo_url"`
}

// ToModel converts the request into a student record.
func (r StudentRequest) ToModel(schoolCode string) *models.Student {
	student := &models.Student{
		SchoolCode:    schoolCode,
		AdmissionNo:   r.AdmissionNo,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Gender:        r.Gender,
		ClassID:       r.ClassID,
		GuardianName:  r.GuardianName,
		GuardianPhone: r.GuardianPhone,
		PhotoURL:      r.PhotoURL,
	}
	if r.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *r.DateOfBirth); err == nil {
			student.DateOfBirth = &dob
		}
	}
	return student
}
