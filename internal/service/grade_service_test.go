package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type gradeRepoStub struct {
	upserts []*models.SubjectGrade
}

func (g *gradeRepoStub) Upsert(ctx context.Context, grade *models.SubjectGrade) error {
	g.upserts = append(g.upserts, grade)
	return nil
}

func (g *gradeRepoStub) ListByStudentTerm(ctx context.Context, studentID, term string) ([]models.SubjectGrade, error) {
	return nil, nil
}

func (g *gradeRepoStub) ListByClassTerm(ctx context.Context, classID, term string) ([]models.SubjectGrade, error) {
	return nil, nil
}

func TestGradeServiceUpsert(t *testing.T) {
	repo := &gradeRepoStub{}
	svc := NewGradeService(repo, nil, nil)

	score := 85.0
	mid := 80.0
	grade, err := svc.Upsert(context.Background(), "teacher-1", dto.GradeRequest{
		StudentID:  "stu-1",
		ClassID:    "class-1",
		Subject:    "Mathematics",
		Term:       "Term 2",
		Score:      &score,
		Components: models.AssessmentComponents{MidTerm: &mid},
	})
	require.NoError(t, err)

	assert.Equal(t, "teacher-1", grade.RecordedBy)
	require.Len(t, repo.upserts, 1)
	require.NotNil(t, repo.upserts[0].Score)
	assert.Equal(t, 85.0, *repo.upserts[0].Score)
}

func TestGradeServiceUpsertRejectsOutOfRangeComponents(t *testing.T) {
	repo := &gradeRepoStub{}
	svc := NewGradeService(repo, nil, nil)

	cases := []struct {
		name  string
		value float64
	}{
		{"above range", 101},
		{"below range", -0.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := tc.value
			_, err := svc.Upsert(context.Background(), "teacher-1", dto.GradeRequest{
				StudentID:  "stu-1",
				ClassID:    "class-1",
				Subject:    "Mathematics",
				Term:       "Term 2",
				Components: models.AssessmentComponents{Quiz: &v},
			})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
	assert.Empty(t, repo.upserts)
}

func TestGradeServiceUpsertRejectsMissingFields(t *testing.T) {
	svc := NewGradeService(&gradeRepoStub{}, nil, nil)

	_, err := svc.Upsert(context.Background(), "teacher-1", dto.GradeRequest{StudentID: "stu-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
