package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/dto"
	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type commentWriteStore interface {
	Upsert(ctx context.Context, comment *models.TermComment) error
	GetByStudentTerm(ctx context.Context, studentID, term string) (*models.TermComment, error)
}

// CommentService records the free-text remarks printed on report cards.
type CommentService struct {
	repo      commentWriteStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCommentService constructs the comment service.
func NewCommentService(repo commentWriteStore, validate *validator.Validate, logger *zap.Logger) *CommentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CommentService{repo: repo, validator: validate, logger: logger}
}

// Upsert writes the remarks for one student and term.
func (s *CommentService) Upsert(ctx context.Context, req dto.CommentRequest) (*models.TermComment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid comment payload")
	}
	comment := &models.TermComment{
		StudentID:        req.StudentID,
		Term:             req.Term,
		TeacherComment:   req.TeacherComment,
		PrincipalComment: req.PrincipalComment,
	}
	if err := s.repo.Upsert(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save comment")
	}
	return comment, nil
}

// Get returns the remarks for one student and term.
func (s *CommentService) Get(ctx context.Context, studentID, term string) (*models.TermComment, error) {
	comment, err := s.repo.GetByStudentTerm(ctx, studentID, term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comment")
	}
	return comment, nil
}
