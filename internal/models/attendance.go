package models

import "time"

// AttendanceSummary aggregates a student's attendance for a term.
type AttendanceSummary struct {
	StudentID  string  `db:"student_id" json:"student_id"`
	Term       string  `db:"term" json:"term"`
	Present    int     `db:"present" json:"present"`
	Absent     int     `db:"absent" json:"absent"`
	Late       int     `db:"late" json:"late"`
	Excused    int     `db:"excused" json:"excused"`
	SchoolDays int     `db:"school_days" json:"school_days"`
	Percent    float64 `db:"-" json:"percent"`
}

// ComputePercent fills in the attendance percentage from the counts.
func (a *AttendanceSummary) ComputePercent() {
	if a.SchoolDays <= 0 {
		a.Percent = 0
		return
	}
	a.Percent = float64(a.Present) / float64(a.SchoolDays) * 100
}

// AttendanceEntry is one student's summary row inside a bulk upsert.
type AttendanceEntry struct {
	StudentID  string `json:"student_id" validate:"required"`
	Present    int    `json:"present" validate:"min=0"`
	Absent     int    `json:"absent" validate:"min=0"`
	Late       int    `json:"late" validate:"min=0"`
	Excused    int    `json:"excused" validate:"min=0"`
	SchoolDays int    `json:"school_days" validate:"min=0"`
}

// AttendanceBulkRequest upserts summaries for a class and term.
type AttendanceBulkRequest struct {
	ClassID string            `json:"class_id" validate:"required"`
	Term    string            `json:"term" validate:"required"`
	Entries []AttendanceEntry `json:"entries" validate:"required,dive"`
}

// AttendanceRecord is the persisted summary row.
type AttendanceRecord struct {
	ID        string    `db:"id" json:"id"`
	ClassID   string    `db:"class_id" json:"class_id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Term      string    `db:"term" json:"term"`
	Present   int       `db:"present" json:"present"`
	Absent    int       `db:"absent" json:"absent"`
	Late      int       `db:"late" json:"late"`
	Excused   int       `db:"excused" json:"excused"`
	SchoolDays int      `db:"school_days" json:"school_days"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
