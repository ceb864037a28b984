package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type skillWriteStore interface {
	Replace(ctx context.Context, studentID, term string, ratings map[string]string) error
	ListByStudentTerm(ctx context.Context, studentID, term string) (map[string]string, error)
}

type skillTemplateStore interface {
	Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
}

// SocialSkillService records qualitative skill ratings.
type SocialSkillService struct {
	repo      skillWriteStore
	templates skillTemplateStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSocialSkillService constructs the social skill service.
func NewSocialSkillService(repo skillWriteStore, templates skillTemplateStore, validate *validator.Validate, logger *zap.Logger) *SocialSkillService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SocialSkillService{repo: repo, templates: templates, validator: validate, logger: logger}
}

// Replace overwrites a student's ratings for a term. Rating values must
// come from the school template's rating vocabulary.
func (s *SocialSkillService) Replace(ctx context.Context, schoolCode, studentID string, req models.SocialSkillUpdate) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid social skill payload")
	}

	tpl, err := s.templates.Get(ctx, schoolCode)
	if err != nil {
		return err
	}
	allowed := make(map[string]struct{}, len(tpl.SkillRatings))
	for _, rating := range tpl.SkillRatings {
		allowed[rating] = struct{}{}
	}
	if len(allowed) > 0 {
		for skill, rating := range req.Ratings {
			if _, ok := allowed[rating]; !ok {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("rating %q for skill %q is not in the school's rating scale", rating, skill))
			}
		}
	}

	if err := s.repo.Replace(ctx, studentID, req.Term, req.Ratings); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save social skills")
	}
	return nil
}

// ListByStudent returns a student's ratings for a term keyed by skill.
func (s *SocialSkillService) ListByStudent(ctx context.Context, studentID, term string) (map[string]string, error) {
	ratings, err := s.repo.ListByStudentTerm(ctx, studentID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list social skills")
	}
	return ratings, nil
}
