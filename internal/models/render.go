package models

// PositionInfo ranks a student within their class by core average.
type PositionInfo struct {
	Rank  int `json:"rank"`
	OutOf int `json:"out_of"`
}

// RenderContext carries everything needed to render one student's
// report card. It is assembled per student and never persisted.
type RenderContext struct {
	Student      Student
	ClassName    string
	TeacherName  string
	Term         string
	AcademicYear string
	NextTermDate string

	// Grades keyed by subject name as configured on the template.
	Grades map[string]SubjectGrade

	Attendance AttendanceSummary

	// ClassSize is the full roster count. Position is nil for students
	// without a core average, but ClassSize is always set.
	ClassSize int
	Position  *PositionInfo

	// SocialSkills maps skill name to the recorded rating string.
	SocialSkills map[string]string

	// Signatures maps signature role to a stored image path.
	Signatures map[SignatureRole]string

	TeacherComment   string
	PrincipalComment string
}

// GradeFor returns the student's grade record for a subject, if any.
func (c *RenderContext) GradeFor(subject string) (SubjectGrade, bool) {
	g, ok := c.Grades[subject]
	return g, ok
}
