package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type attendanceWriteStore interface {
	BulkUpsert(ctx context.Context, classID, term string, entries []models.AttendanceEntry) error
	GetSummary(ctx context.Context, studentID, term string) (*models.AttendanceSummary, error)
	ListByClassTerm(ctx context.Context, classID, term string) ([]models.AttendanceSummary, error)
}

// AttendanceService records term attendance summaries.
type AttendanceService struct {
	repo      attendanceWriteStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceWriteStore, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// BulkUpsert replaces attendance summaries for a class and term in one
// transaction. Counts may not exceed the number of school days.
func (s *AttendanceService) BulkUpsert(ctx context.Context, req models.AttendanceBulkRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	for _, entry := range req.Entries {
		if entry.SchoolDays > 0 && entry.Present > entry.SchoolDays {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s: present days exceed school days", entry.StudentID))
		}
	}
	if err := s.repo.BulkUpsert(ctx, req.ClassID, req.Term, req.Entries); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	return nil
}

// GetSummary returns one student's attendance summary for a term.
func (s *AttendanceService) GetSummary(ctx context.Context, studentID, term string) (*models.AttendanceSummary, error) {
	summary, err := s.repo.GetSummary(ctx, studentID, term)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return summary, nil
}

// ListByClass returns attendance summaries for a class and term.
func (s *AttendanceService) ListByClass(ctx context.Context, classID, term string) ([]models.AttendanceSummary, error) {
	summaries, err := s.repo.ListByClassTerm(ctx, classID, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return summaries, nil
}
