package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type gradeWriteStore interface {
	Upsert(ctx context.Context, grade *models.SubjectGrade) error
	ListByStudentTerm(ctx context.Context, studentID, term string) ([]models.SubjectGrade, error)
	ListByClassTerm(ctx context.Context, classID, term string) ([]models.SubjectGrade, error)
}

// GradeService records and lists subject grades.
type GradeService struct {
	repo      gradeWriteStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs the grade service.
func NewGradeService(repo gradeWriteStore, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// Upsert writes one subject grade, replacing any earlier record for the
// same student, subject and term.
func (s *GradeService) Upsert(ctx context.Context, recordedBy string, req dto.GradeRequest) (*models.SubjectGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}
	if err := validateComponents(req.Components); err != nil {
		return nil, err
	}

	grade := &models.SubjectGrade{
		StudentID:  req.StudentID,
		ClassID:    req.ClassID,
		Subject:    req.Subject,
		Term:       req.Term,
		Score:      req.Score,
		Components: req.Components,
		Comment:    req.Comment,
		RecordedBy: recordedBy,
	}
	if err := s.repo.Upsert(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save grade")
	}
	return grade, nil
}

// ListByStudent returns all of a student's grades for a term.
func (s *GradeService) ListByStudent(ctx context.Context, studentID, term string) ([]models.SubjectGrade, error) {
	grades, err := s.repo.ListByStudentTerm(ctx, studentID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ListByClass returns every grade recorded for a class and term.
func (s *GradeService) ListByClass(ctx context.Context, classID, term string) ([]models.SubjectGrade, error) {
	grades, err := s.repo.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// validateComponents rejects component scores outside the 0-100 range.
func validateComponents(c models.AssessmentComponents) error {
	checks := []struct {
		name  string
		value *float64
	}{
		{"homework", c.Homework},
		{"groupWork", c.GroupWork},
		{"project", c.Project},
		{"quiz", c.Quiz},
		{"midTerm", c.MidTerm},
		{"endOfTerm", c.EndOfTerm},
	}
	for _, check := range checks {
		if check.value == nil {
			continue
		}
		if *check.value < 0 || *check.value > 100 {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("component %s must be between 0 and 100", check.name))
		}
	}
	return nil
}
