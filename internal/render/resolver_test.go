package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

func fullContext() *models.RenderContext {
	dob := time.Date(2013, 4, 17, 0, 0, 0, 0, time.UTC)
	return &models.RenderContext{
		Student: models.Student{
			ID:           "stu-1",
			AdmissionNo:  "MH-0042",
			FirstName:    "Ama",
			LastName:     "Mensah",
			Gender:       "Female",
			DateOfBirth:  &dob,
			GuardianName: "Kofi Mensah",
		},
		ClassName:    "Grade 5 Blue",
		TeacherName:  "Mr. Owusu",
		Term:         "Term 2",
		AcademicYear: "2025/2026",
		NextTermDate: "05 Jan 2026",
		Attendance: models.AttendanceSummary{
			Present: 56, Absent: 2, Late: 3, Excused: 1, SchoolDays: 60, Percent: 93.3,
		},
		ClassSize:        28,
		Position:         &models.PositionInfo{Rank: 3, OutOf: 28},
		TeacherComment:   "A diligent learner.",
		PrincipalComment: "Keep it up.",
	}
}

func TestResolveEveryCatalogKey(t *testing.T) {
	ctx := fullContext()
	seen := map[string]bool{}
	for _, field := range FieldCatalog {
		require.False(t, seen[field.Key], "duplicate catalog key %s", field.Key)
		seen[field.Key] = true

		got := Resolve(field.Key, ctx)
		assert.NotEmpty(t, got, "key %s", field.Key)
		assert.NotEqual(t, "{{"+field.Key+"}}", got,
			"catalog key %s must resolve, not echo", field.Key)
	}
}

func TestResolveKnownValues(t *testing.T) {
	ctx := fullContext()
	cases := map[string]string{
		"student.name":          "Ama Mensah",
		"student.admission_no":  "MH-0042",
		"student.date_of_birth": "17 Apr 2013",
		"class.name":            "Grade 5 Blue",
		"class.teacher":         "Mr. Owusu",
		"class.size":            "28",
		"attendance.present":    "56",
		"attendance.percent":    "93.3%",
		"term":                  "Term 2",
		"academic_year":         "2025/2026",
		"position":              "3 of 28",
		"comment.teacher":       "A diligent learner.",
	}
	for key, want := range cases {
		assert.Equal(t, want, Resolve(key, ctx), "key %s", key)
	}
}

func TestResolveUnknownKeyEchoes(t *testing.T) {
	ctx := fullContext()
	assert.Equal(t, "{{student.nickname}}", Resolve("student.nickname", ctx))
	assert.Equal(t, "{{}}", Resolve("", ctx))
}

func TestResolveMissingOptionalData(t *testing.T) {
	ctx := &models.RenderContext{Student: models.Student{FirstName: "Solo"}}
	assert.Equal(t, "-", Resolve("student.date_of_birth", ctx))
	assert.Equal(t, "-", Resolve("position", ctx))
	assert.Equal(t, "Solo", Resolve("student.name", ctx))
}

func TestResolveClassSizeWithoutPosition(t *testing.T) {
	// An unranked student still belongs to a class of 25.
	ctx := &models.RenderContext{ClassSize: 25}
	assert.Equal(t, "25", Resolve("class.size", ctx))
	assert.Equal(t, "-", Resolve("position", ctx))
}

func TestFieldLabelFallsBackToKey(t *testing.T) {
	assert.Equal(t, "Student Name", FieldLabel("student.name"))
	assert.Equal(t, "made.up", FieldLabel("made.up"))
}
