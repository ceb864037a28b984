package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type rosterStoreStub struct {
	students map[string]*models.Student
	roster   []models.Student
}

func (r *rosterStoreStub) GetByID(ctx context.Context, id string) (*models.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (r *rosterStoreStub) ListByClass(ctx context.Context, classID string) ([]models.Student, error) {
	return r.roster, nil
}

type classStoreStub struct {
	class *models.Class
}

func (c *classStoreStub) GetByID(ctx context.Context, id string) (*models.Class, error) {
	if c.class == nil {
		return nil, sql.ErrNoRows
	}
	return c.class, nil
}

type gradeStoreStub struct {
	grades []models.SubjectGrade
}

func (g *gradeStoreStub) ListByClassTerm(ctx context.Context, classID, term string) ([]models.SubjectGrade, error) {
	return g.grades, nil
}

type attendanceStoreStub struct {
	summaries []models.AttendanceSummary
}

func (a *attendanceStoreStub) ListByClassTerm(ctx context.Context, classID, term string) ([]models.AttendanceSummary, error) {
	return a.summaries, nil
}

type skillStoreStub struct{}

func (s *skillStoreStub) ListByClassTerm(ctx context.Context, classID, term string) (map[string]map[string]string, error) {
	return map[string]map[string]string{}, nil
}

type signatureStoreStub struct {
	sigs []models.Signature
}

func (s *signatureStoreStub) ListBySchool(ctx context.Context, schoolCode string) ([]models.Signature, error) {
	return s.sigs, nil
}

type commentStoreStub struct {
	comments map[string]models.TermComment
}

func (c *commentStoreStub) ListByClassTerm(ctx context.Context, classID, term string) (map[string]models.TermComment, error) {
	if c.comments == nil {
		return map[string]models.TermComment{}, nil
	}
	return c.comments, nil
}

func scoreGrade(studentID, subject string, score float64) models.SubjectGrade {
	return models.SubjectGrade{StudentID: studentID, Subject: subject, Score: &score}
}

func newTestContextService(roster []models.Student, grades []models.SubjectGrade) *ContextService {
	students := &rosterStoreStub{students: map[string]*models.Student{}, roster: roster}
	for i := range roster {
		students.students[roster[i].ID] = &roster[i]
	}
	teacher := "Mr. Owusu"
	return NewContextService(
		students,
		&classStoreStub{class: &models.Class{ID: "class-1", Name: "Grade 5 Blue", TeacherName: &teacher, AcademicYear: "2025/2026"}},
		&gradeStoreStub{grades: grades},
		&attendanceStoreStub{},
		&skillStoreStub{},
		&signatureStoreStub{},
		&commentStoreStub{},
		nil,
	)
}

func TestContextServiceBuildForClassRanksByCoreAverage(t *testing.T) {
	roster := []models.Student{
		{ID: "stu-1", FirstName: "Ama"},
		{ID: "stu-2", FirstName: "Kofi"},
		{ID: "stu-3", FirstName: "Esi"},
		{ID: "stu-4", FirstName: "Yaw"},
	}
	grades := []models.SubjectGrade{
		scoreGrade("stu-1", "Mathematics", 80),
		scoreGrade("stu-2", "Mathematics", 95),
		scoreGrade("stu-3", "Mathematics", 80),
		// stu-4 has only a non-core subject and gets no position.
		scoreGrade("stu-4", "Creative Arts", 99),
	}
	svc := newTestContextService(roster, grades)
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")

	contexts, err := svc.BuildForClass(context.Background(), tpl, "class-1", "Term 2")
	require.NoError(t, err)
	require.Len(t, contexts, 4)

	byID := map[string]*models.RenderContext{}
	for _, rc := range contexts {
		byID[rc.Student.ID] = rc
	}

	require.NotNil(t, byID["stu-2"].Position)
	assert.Equal(t, 1, byID["stu-2"].Position.Rank)
	assert.Equal(t, 4, byID["stu-2"].Position.OutOf, "position reads against the whole roster, not just ranked students")

	// Tied averages share a rank.
	require.NotNil(t, byID["stu-1"].Position)
	require.NotNil(t, byID["stu-3"].Position)
	assert.Equal(t, 2, byID["stu-1"].Position.Rank)
	assert.Equal(t, 2, byID["stu-3"].Position.Rank)

	assert.Nil(t, byID["stu-4"].Position)

	// Class size is the roster count for every student, ranked or not.
	for _, rc := range contexts {
		assert.Equal(t, 4, rc.ClassSize)
	}
}

func TestContextServiceBuildForClassPreservesRosterOrder(t *testing.T) {
	roster := []models.Student{
		{ID: "stu-b", LastName: "Boateng"},
		{ID: "stu-m", LastName: "Mensah"},
		{ID: "stu-o", LastName: "Owusu"},
	}
	svc := newTestContextService(roster, nil)
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")

	contexts, err := svc.BuildForClass(context.Background(), tpl, "class-1", "Term 2")
	require.NoError(t, err)
	require.Len(t, contexts, 3)
	for i, rc := range contexts {
		assert.Equal(t, roster[i].ID, rc.Student.ID)
		assert.Equal(t, "Grade 5 Blue", rc.ClassName)
		assert.Equal(t, "Mr. Owusu", rc.TeacherName)
		assert.NotNil(t, rc.Grades)
		assert.NotNil(t, rc.SocialSkills)
	}
}

func TestContextServiceBuildForClassUnknownClass(t *testing.T) {
	svc := NewContextService(
		&rosterStoreStub{},
		&classStoreStub{},
		&gradeStoreStub{},
		&attendanceStoreStub{},
		&skillStoreStub{},
		&signatureStoreStub{},
		&commentStoreStub{},
		nil,
	)
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")

	_, err := svc.BuildForClass(context.Background(), tpl, "missing", "Term 2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestContextServiceBuildForStudent(t *testing.T) {
	classID := "class-1"
	roster := []models.Student{
		{ID: "stu-1", FirstName: "Ama", ClassID: &classID},
		{ID: "stu-2", FirstName: "Kofi", ClassID: &classID},
	}
	svc := newTestContextService(roster, []models.SubjectGrade{
		scoreGrade("stu-1", "Mathematics", 70),
		scoreGrade("stu-2", "Mathematics", 90),
	})
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")

	rc, err := svc.BuildForStudent(context.Background(), tpl, "stu-1", "Term 2")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", rc.Student.ID)
	require.NotNil(t, rc.Position)
	assert.Equal(t, 2, rc.Position.Rank, "ranking spans the whole class even for a single-student build")
}

func TestContextServiceBuildForStudentWithoutClass(t *testing.T) {
	roster := []models.Student{{ID: "stu-1", FirstName: "Ama"}}
	svc := newTestContextService(roster, nil)
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")

	_, err := svc.BuildForStudent(context.Background(), tpl, "stu-1", "Term 2")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
