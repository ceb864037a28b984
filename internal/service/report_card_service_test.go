package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
	"github.com/jtech-innovations/report-card-api/internal/render"
	"github.com/jtech-innovations/report-card-api/internal/repository"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
	"github.com/jtech-innovations/report-card-api/pkg/jobs"
	"github.com/jtech-innovations/report-card-api/pkg/storage"
)

type batchRepoStub struct {
	batches map[string]*models.ReportBatch
}

func newBatchRepoStub() *batchRepoStub {
	return &batchRepoStub{batches: map[string]*models.ReportBatch{}}
}

func (r *batchRepoStub) Create(ctx context.Context, batch *models.ReportBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStatusQueued
	}
	r.batches[batch.ID] = batch
	return nil
}

func (r *batchRepoStub) GetByID(ctx context.Context, id string) (*models.ReportBatch, error) {
	batch, ok := r.batches[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *batch
	return &copied, nil
}

func (r *batchRepoStub) Update(ctx context.Context, id string, params repository.UpdateBatchParams) error {
	batch, ok := r.batches[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		batch.Status = *params.Status
	}
	if params.Progress != nil {
		batch.Progress = *params.Progress
	}
	if params.TotalItems != nil {
		batch.TotalItems = *params.TotalItems
	}
	if params.ResultPath != nil {
		batch.ResultPath = params.ResultPath
	}
	if params.ErrorMessage != nil {
		batch.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		batch.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *batchRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportBatch, error) {
	var out []models.ReportBatch
	for _, batch := range r.batches {
		if batch.Status == models.BatchStatusFinished && batch.FinishedAt != nil && batch.FinishedAt.Before(cutoff) {
			out = append(out, *batch)
		}
	}
	return out, nil
}

type templateProviderStub struct {
	tpl *models.ReportTemplate
	err error
}

func (p *templateProviderStub) Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.tpl, nil
}

type contextBuilderStub struct {
	contexts []*models.RenderContext
	err      error
}

func (b *contextBuilderStub) BuildForClass(ctx context.Context, tpl *models.ReportTemplate, classID, term string) ([]*models.RenderContext, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.contexts, nil
}

func (b *contextBuilderStub) BuildForStudent(ctx context.Context, tpl *models.ReportTemplate, studentID, term string) (*models.RenderContext, error) {
	if b.err != nil {
		return nil, b.err
	}
	for _, rc := range b.contexts {
		if rc.Student.ID == studentID {
			return rc, nil
		}
	}
	return nil, appErrors.ErrNotFound
}

type rendererStub struct {
	calls int
	err   error
}

func (r *rendererStub) Render(docs []*render.Document) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.calls++
	return []byte("%PDF-1.4 stub"), nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func testRenderContexts() []*models.RenderContext {
	students := []models.Student{
		{ID: "stu-1", FirstName: "Ama", LastName: "Mensah", AdmissionNo: "MH-0001"},
		{ID: "stu-2", FirstName: "Kofi", LastName: "Boateng", AdmissionNo: "MH-0002"},
	}
	contexts := make([]*models.RenderContext, 0, len(students))
	for _, student := range students {
		contexts = append(contexts, &models.RenderContext{
			Student:      student,
			ClassName:    "Grade 5 Blue",
			Term:         "Term 2",
			AcademicYear: "2025/2026",
			Grades:       map[string]models.SubjectGrade{},
			SocialSkills: map[string]string{},
			Signatures:   map[models.SignatureRole]string{},
		})
	}
	return contexts
}

func newTestReportCardService(t *testing.T, batches *batchRepoStub, contexts *contextBuilderStub, renderer *rendererStub) (*ReportCardService, *queueStub) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	templates := &templateProviderStub{tpl: DefaultTemplate("MHPS", "Morning Star Preparatory")}

	svc := NewReportCardService(batches, templates, contexts, renderer, store, signer, nil, ReportCardServiceConfig{})
	queue := &queueStub{}
	svc.SetQueue(queue)
	return svc, queue
}

func TestReportCardServiceGenerateQueuesBatch(t *testing.T) {
	batches := newBatchRepoStub()
	svc, queue := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2",
	}, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.BatchStatusQueued, batch.Status)
	assert.Equal(t, "user-1", batch.CreatedBy)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, batch.ID, queue.jobs[0].ID)
	assert.Equal(t, "report-cards", queue.jobs[0].Type)
}

func TestReportCardServiceGenerateRequiresFields(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{}, &rendererStub{})

	_, err := svc.Generate(context.Background(), models.ReportBatchParams{SchoolCode: "MHPS"}, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, batches.batches)
}

func TestReportCardServiceHandleFinishesBatch(t *testing.T) {
	batches := newBatchRepoStub()
	renderer := &rendererStub{}
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, renderer)

	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2",
	}, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), jobs.Job{ID: batch.ID, Type: "report-cards"}))

	stored := batches.batches[batch.ID]
	assert.Equal(t, models.BatchStatusFinished, stored.Status)
	assert.Equal(t, 100, stored.Progress)
	assert.Equal(t, 2, stored.TotalItems)
	require.NotNil(t, stored.ResultPath)
	assert.True(t, strings.HasSuffix(*stored.ResultPath, batch.ID+".pdf"))
	require.NotNil(t, stored.FinishedAt)
	assert.Equal(t, 1, renderer.calls)

	// Re-handling a finished batch is a no-op.
	require.NoError(t, svc.Handle(context.Background(), jobs.Job{ID: batch.ID}))
	assert.Equal(t, 1, renderer.calls)
}

func TestReportCardServiceHandleSingleStudent(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	studentID := "stu-2"
	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2", StudentID: &studentID,
	}, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Handle(context.Background(), jobs.Job{ID: batch.ID}))
	assert.Equal(t, 1, batches.batches[batch.ID].TotalItems)
}

func TestReportCardServiceHandleMarksFailure(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{err: errors.New("db down")}, &rendererStub{})

	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2",
	}, "user-1")
	require.NoError(t, err)

	require.Error(t, svc.Handle(context.Background(), jobs.Job{ID: batch.ID}))

	stored := batches.batches[batch.ID]
	assert.Equal(t, models.BatchStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
	assert.Contains(t, *stored.ErrorMessage, "class data")
}

func TestReportCardServiceStatusOwnership(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2",
	}, "teacher-1")
	require.NoError(t, err)

	_, err = svc.GetStatus(context.Background(), batch.ID, "teacher-2", models.RoleTeacher)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	got, err := svc.GetStatus(context.Background(), batch.ID, "admin-1", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, got.ID)
}

func TestReportCardServiceDownloadRoundTrip(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	batch, err := svc.Generate(context.Background(), models.ReportBatchParams{
		SchoolCode: "MHPS", ClassID: "class-1", Term: "Term 2",
	}, "user-1")
	require.NoError(t, err)
	require.NoError(t, svc.Handle(context.Background(), jobs.Job{ID: batch.ID}))

	status, err := svc.GetStatus(context.Background(), batch.ID, "user-1", models.RoleAdmin)
	require.NoError(t, err)
	require.NotNil(t, status.ResultURL)
	require.True(t, strings.HasPrefix(*status.ResultURL, "/api/v1/export/"))

	token := strings.TrimPrefix(*status.ResultURL, "/api/v1/export/")
	download, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer download.File.Close()

	assert.Equal(t, "report-cards-class-1.pdf", download.Filename)
	assert.True(t, download.ExpiresAt.After(time.Now()))
}

func TestReportCardServiceDownloadRejectsBadToken(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	_, err := svc.ResolveDownload(context.Background(), "not-a-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestReportCardServicePreview(t *testing.T) {
	batches := newBatchRepoStub()
	svc, _ := newTestReportCardService(t, batches, &contextBuilderStub{contexts: testRenderContexts()}, &rendererStub{})

	doc, err := svc.Preview(context.Background(), "MHPS", "stu-1", "Term 2")
	require.NoError(t, err)
	assert.Equal(t, "stu-1", doc.StudentID)
	assert.NotEmpty(t, doc.Regions)
}
