package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AssessmentComponents holds the six fixed per-subject assessment scores.
// A nil entry means the component was never recorded.
type AssessmentComponents struct {
	Homework  *float64 `json:"homework,omitempty"`
	GroupWork *float64 `json:"groupWork,omitempty"`
	Project   *float64 `json:"project,omitempty"`
	Quiz      *float64 `json:"quiz,omitempty"`
	MidTerm   *float64 `json:"midTerm,omitempty"`
	EndOfTerm *float64 `json:"endOfTerm,omitempty"`
}

// Value marshals the components to JSON for persistence.
func (c AssessmentComponents) Value() (driver.Value, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment components: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the components struct.
func (c *AssessmentComponents) Scan(value interface{}) error {
	return scanJSON(value, c, "AssessmentComponents")
}

// SubjectGrade is a student's grade record for one subject in one term.
type SubjectGrade struct {
	ID         string               `db:"id" json:"id"`
	StudentID  string               `db:"student_id" json:"student_id"`
	ClassID    string               `db:"class_id" json:"class_id"`
	Subject    string               `db:"subject" json:"subject"`
	Term       string               `db:"term" json:"term"`
	Score      *float64             `db:"score" json:"score,omitempty"`
	Components AssessmentComponents `db:"components" json:"components"`
	Comment    *string              `db:"comment" json:"comment,omitempty"`
	RecordedBy string               `db:"recorded_by" json:"recorded_by"`
	CreatedAt  time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time            `db:"updated_at" json:"updated_at"`
}

// GradeFilter scopes grade listing queries.
type GradeFilter struct {
	ClassID   string
	StudentID string
	Subject   string
	Term      string
}
