package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/render"
	"github.com/jtech-innovations/report-card-api/internal/repository"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/jobs"
)

type reportBatchStore interface {
	Create(ctx context.Context, batch *models.ReportBatch) error
	GetByID(ctx context.Context, id string) (*models.ReportBatch, error)
	Update(ctx context.Context, id string, params repository.UpdateBatchParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportBatch, error)
}

type templateProvider interface {
	Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
}

type contextBuilder interface {
	BuildForClass(ctx context.Context, tpl *models.ReportTemplate, classID, term string) ([]*models.RenderContext, error)
	BuildForStudent(ctx context.Context, tpl *models.ReportTemplate, studentID, term string) (*models.RenderContext, error)
}

type pdfRenderer interface {
	Render(docs []*render.Document) ([]byte, error)
}

type exportStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type downloadSigner interface {
	Generate(jobID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error)
}

type batchDispatcher interface {
	Enqueue(job jobs.Job) error
}

type renderMetrics interface {
	ObserveRender(duration time.Duration, reports int)
}

// ReportCardServiceConfig governs result lifetime and cleanup cadence.
type ReportCardServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ReportCardService owns the report card generation lifecycle: it
// queues batches, renders them in the background worker, and resolves
// signed download tokens.
type ReportCardService struct {
	batches   reportBatchStore
	templates templateProvider
	contexts  contextBuilder
	renderer  pdfRenderer
	storage   exportStore
	signer    downloadSigner
	queue     batchDispatcher
	metrics   renderMetrics
	logger    *zap.Logger
	cfg       ReportCardServiceConfig
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// NewReportCardService constructs the report card service. The queue
// is attached afterwards with SetQueue because the queue's handler is
// this service's Handle method.
func NewReportCardService(batches reportBatchStore, templates templateProvider, contexts contextBuilder, renderer pdfRenderer, storage exportStore, signer downloadSigner, logger *zap.Logger, cfg ReportCardServiceConfig) *ReportCardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = time.Hour
	}
	return &ReportCardService{
		batches:   batches,
		templates: templates,
		contexts:  contexts,
		renderer:  renderer,
		storage:   storage,
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetQueue attaches the dispatcher once the queue exists.
func (s *ReportCardService) SetQueue(queue batchDispatcher) {
	s.queue = queue
}

// SetMetrics attaches an optional render duration recorder.
func (s *ReportCardService) SetMetrics(m renderMetrics) {
	s.metrics = m
}

// Generate validates the request, persists a queued batch and hands it
// to the worker queue.
func (s *ReportCardService) Generate(ctx context.Context, params models.ReportBatchParams, actorID string) (*models.ReportBatch, error) {
	if params.SchoolCode == "" || params.ClassID == "" || params.Term == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "school code, class and term are required")
	}
	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report worker is not running")
	}

	batch := &models.ReportBatch{
		Params:    params,
		Status:    models.BatchStatusQueued,
		CreatedBy: actorID,
	}
	if err := s.batches.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report batch")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: batch.ID, Type: "report-cards"}); err != nil {
		s.failBatch(ctx, batch.ID, "failed to enqueue batch")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report batch")
	}
	return batch, nil
}

// GetStatus exposes batch metadata, enforcing ownership for teachers.
// A finished batch carries a freshly signed download URL.
func (s *ReportCardService) GetStatus(ctx context.Context, id, actorID string, role models.UserRole) (*models.ReportBatch, error) {
	batch, err := s.batches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report batch")
	}
	if role == models.RoleTeacher && batch.CreatedBy != actorID {
		return nil, appErrors.ErrForbidden
	}

	if batch.Status == models.BatchStatusFinished && batch.ResultPath != nil {
		token, _, err := s.signer.Generate(batch.ID, *batch.ResultPath)
		if err != nil {
			s.logger.Warn("failed to sign download url", zap.String("batch", batch.ID), zap.Error(err))
		} else {
			url := "/api/v1/export/" + token
			batch.ResultURL = &url
		}
	}
	return batch, nil
}

// ResolveDownload validates a signed token and opens the stored PDF.
func (s *ReportCardService) ResolveDownload(ctx context.Context, token string) (*ReportDownload, error) {
	batchID, relPath, expiresAt, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}

	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report batch")
	}
	if batch.ResultPath == nil || *batch.ResultPath != relPath {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token does not match batch result")
	}

	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report file no longer available")
	}
	return &ReportDownload{
		File:      file,
		Filename:  fmt.Sprintf("report-cards-%s.pdf", batch.Params.ClassID),
		ExpiresAt: expiresAt,
	}, nil
}

// Preview composes a single student's report card document without
// rendering a PDF, for the template editor's live preview.
func (s *ReportCardService) Preview(ctx context.Context, schoolCode, studentID, term string) (*render.Document, error) {
	tpl, err := s.templates.Get(ctx, schoolCode)
	if err != nil {
		return nil, err
	}
	rc, err := s.contexts.BuildForStudent(ctx, tpl, studentID, term)
	if err != nil {
		return nil, err
	}
	doc, err := render.For(tpl.DesignMode).Compose(tpl, rc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compose preview")
	}
	return doc, nil
}

// Handle is the queue worker: it renders one batch end to end.
func (s *ReportCardService) Handle(ctx context.Context, job jobs.Job) error {
	batch, err := s.batches.GetByID(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("load batch %s: %w", job.ID, err)
	}
	if batch.Status == models.BatchStatusFinished {
		return nil
	}

	started := time.Now()
	s.setProgress(ctx, batch.ID, models.BatchStatusProcessing, 5)

	tpl, err := s.templates.Get(ctx, batch.Params.SchoolCode)
	if err != nil {
		s.failBatch(ctx, batch.ID, "failed to load template")
		return fmt.Errorf("load template for batch %s: %w", batch.ID, err)
	}

	contexts, err := s.contexts.BuildForClass(ctx, tpl, batch.Params.ClassID, batch.Params.Term)
	if err != nil {
		s.failBatch(ctx, batch.ID, "failed to assemble class data")
		return fmt.Errorf("build contexts for batch %s: %w", batch.ID, err)
	}
	if batch.Params.StudentID != nil {
		contexts = filterContexts(contexts, *batch.Params.StudentID)
	}
	if len(contexts) == 0 {
		s.failBatch(ctx, batch.ID, "no students to render")
		return nil
	}

	total := len(contexts)
	_ = s.batches.Update(ctx, batch.ID, repository.UpdateBatchParams{TotalItems: &total})
	s.setProgress(ctx, batch.ID, models.BatchStatusProcessing, 30)

	docs, err := render.ComposeBatch(tpl, contexts)
	if err != nil {
		s.failBatch(ctx, batch.ID, "failed to compose report cards")
		return fmt.Errorf("compose batch %s: %w", batch.ID, err)
	}
	s.setProgress(ctx, batch.ID, models.BatchStatusProcessing, 60)

	pdfBytes, err := s.renderer.Render(docs)
	if err != nil {
		s.failBatch(ctx, batch.ID, "failed to render pdf")
		return fmt.Errorf("render batch %s: %w", batch.ID, err)
	}
	s.setProgress(ctx, batch.ID, models.BatchStatusProcessing, 90)

	relPath := fmt.Sprintf("%s/%s.pdf", time.Now().UTC().Format("2006-01"), batch.ID)
	if _, err := s.storage.Save(relPath, pdfBytes); err != nil {
		s.failBatch(ctx, batch.ID, "failed to store pdf")
		return fmt.Errorf("store batch %s: %w", batch.ID, err)
	}

	now := time.Now().UTC()
	finished := models.BatchStatusFinished
	progress := 100
	if err := s.batches.Update(ctx, batch.ID, repository.UpdateBatchParams{
		Status:     &finished,
		Progress:   &progress,
		ResultPath: &relPath,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finish batch %s: %w", batch.ID, err)
	}

	if s.metrics != nil {
		s.metrics.ObserveRender(time.Since(started), total)
	}
	s.logger.Info("report batch finished",
		zap.String("batch", batch.ID),
		zap.String("class", batch.Params.ClassID),
		zap.Int("students", total))
	return nil
}

// StartCleanup deletes expired result files on an interval until the
// context is cancelled.
func (s *ReportCardService) StartCleanup(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.cfg.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.cleanupExpired(ctx); err != nil {
					s.logger.Warn("report cleanup pass failed", zap.Error(err))
				}
			}
		}
	}()
}

func (s *ReportCardService) cleanupExpired(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.cfg.ResultTTL)
	batches, err := s.batches.ListFinishedBefore(ctx, cutoff, 50)
	if err != nil {
		return err
	}
	for _, batch := range batches {
		if batch.ResultPath == nil {
			continue
		}
		if err := s.storage.Delete(*batch.ResultPath); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove expired report file",
				zap.String("batch", batch.ID), zap.Error(err))
			continue
		}
		cleared := ""
		_ = s.batches.Update(ctx, batch.ID, repository.UpdateBatchParams{ResultPath: &cleared})
	}

	// Backstop for files whose batch rows are gone.
	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		s.logger.Info("removed orphaned report files", zap.Int("count", len(removed)))
	}
	return nil
}

func (s *ReportCardService) setProgress(ctx context.Context, id string, status models.BatchStatus, progress int) {
	if err := s.batches.Update(ctx, id, repository.UpdateBatchParams{Status: &status, Progress: &progress}); err != nil {
		s.logger.Warn("failed to update batch progress", zap.String("batch", id), zap.Error(err))
	}
}

func (s *ReportCardService) failBatch(ctx context.Context, id, message string) {
	failed := models.BatchStatusFailed
	now := time.Now().UTC()
	progress := 100
	if err := s.batches.Update(ctx, id, repository.UpdateBatchParams{
		Status:       &failed,
		Progress:     &progress,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Warn("failed to mark batch failed", zap.String("batch", id), zap.Error(err))
	}
}

func filterContexts(contexts []*models.RenderContext, studentID string) []*models.RenderContext {
	for _, rc := range contexts {
		if rc.Student.ID == studentID {
			return []*models.RenderContext{rc}
		}
	}
	return nil
}
