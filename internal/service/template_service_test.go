package service

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type templateRepoStub struct {
	templates map[string]*models.ReportTemplate
	schools   map[string]string
	saves     int
}

func newTemplateRepoStub() *templateRepoStub {
	return &templateRepoStub{
		templates: map[string]*models.ReportTemplate{},
		schools:   map[string]string{},
	}
}

func (r *templateRepoStub) GetBySchoolCode(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	tpl, ok := r.templates[schoolCode]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *tpl
	return &copied, nil
}

func (r *templateRepoStub) Save(ctx context.Context, tpl *models.ReportTemplate) error {
	r.saves++
	if tpl.ID == "" {
		tpl.ID = "tpl-1"
	}
	copied := *tpl
	r.templates[tpl.SchoolCode] = &copied
	return nil
}

func (r *templateRepoStub) SchoolExists(ctx context.Context, schoolCode string) (bool, error) {
	_, ok := r.schools[schoolCode]
	return ok, nil
}

func (r *templateRepoStub) SchoolName(ctx context.Context, schoolCode string) (string, error) {
	name, ok := r.schools[schoolCode]
	if !ok {
		return "", sql.ErrNoRows
	}
	return name, nil
}

type templateCacheStub struct {
	entries map[string][]byte
	gets    int
	deletes int
}

func (c *templateCacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	return appErrors.ErrCacheMiss
}

func (c *templateCacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (c *templateCacheStub) Delete(ctx context.Context, key string) error {
	c.deletes++
	return nil
}

func TestTemplateServiceGetSeedsDefault(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl, err := svc.Get(context.Background(), "MHPS")
	require.NoError(t, err)

	assert.Equal(t, "MHPS", tpl.SchoolCode)
	assert.Equal(t, "Morning Star Preparatory", tpl.SchoolName)
	assert.Equal(t, models.PaperLetter, tpl.PaperSize)
	assert.Equal(t, models.DesignModeBlocks, tpl.DesignMode)
	assert.Len(t, tpl.Blocks, 9)
	assert.Len(t, tpl.GradeScale, 11)
	assert.False(t, tpl.UseWeightedGrading)
	assert.Equal(t, 1, repo.saves, "seeded template should be persisted")

	again, err := svc.Get(context.Background(), "MHPS")
	require.NoError(t, err)
	assert.Equal(t, tpl.ID, again.ID)
	assert.Equal(t, 1, repo.saves, "second read must not reseed")
}

func TestTemplateServiceGetUnknownSchool(t *testing.T) {
	repo := newTemplateRepoStub()
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	_, err := svc.Get(context.Background(), "NOPE")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, 0, repo.saves)
}

func TestTemplateServiceSaveRenumbersAndFlattens(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	tpl.Blocks[0].Order = 40
	tpl.Blocks[1].Order = 7
	block := tpl.GradesTableBlock()
	require.NotNil(t, block)
	block.Config.Subjects = models.SubjectList{
		{Name: "Mathematics", IsCore: true},
		{Name: "Science", IsCore: false},
	}
	block.Config.UseWeighted = true
	block.Config.Weights = &models.AssessmentWeights{
		Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 30,
	}

	saved, err := svc.Save(context.Background(), tpl, "user-1")
	require.NoError(t, err)

	for i, b := range saved.Blocks {
		assert.Equal(t, i+1, b.Order)
	}
	assert.Len(t, saved.Subjects, 2, "flat subjects follow the grades-table block")
	assert.True(t, saved.UseWeightedGrading)
	require.NotNil(t, saved.UpdatedBy)
	assert.Equal(t, "user-1", *saved.UpdatedBy)
}

func TestTemplateServiceSaveRejectsBadWeights(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	block := tpl.GradesTableBlock()
	block.Config.UseWeighted = true
	block.Config.Weights = &models.AssessmentWeights{
		Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 10,
	}

	_, err := svc.Save(context.Background(), tpl, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidWeights.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, repo.saves)
}

func TestTemplateServiceSaveRejectsGappedScale(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	cases := []struct {
		name  string
		scale models.GradeScale
	}{
		{"gap in the middle", models.GradeScale{
			{Min: 50, Max: 100, Grade: "A"},
			{Min: 0, Max: 40, Grade: "B"},
		}},
		{"overlap", models.GradeScale{
			{Min: 40, Max: 100, Grade: "A"},
			{Min: 0, Max: 45, Grade: "B"},
		}},
		{"does not reach 100", models.GradeScale{
			{Min: 50, Max: 99, Grade: "A"},
			{Min: 0, Max: 49, Grade: "B"},
		}},
		{"does not start at 0", models.GradeScale{
			{Min: 50, Max: 100, Grade: "A"},
			{Min: 10, Max: 49, Grade: "B"},
		}},
		{"empty", models.GradeScale{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
			block := tpl.GradesTableBlock()
			block.Config.GradeScale = tc.scale
			tpl.GradeScale = tc.scale

			_, err := svc.Save(context.Background(), tpl, "user-1")
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrInvalidScale.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestTemplateServiceSaveValidatesCanvasElementScale(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	// The template-level scale stays contiguous; only the element-local
	// copy, which the canvas composer prefers, leaves 0-49 uncovered.
	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	tpl.DesignMode = models.DesignModeCanvas
	tpl.Blocks = nil
	tpl.CanvasElements = models.ElementList{
		{
			ID: "el-grades", Type: models.ElementGradesTable,
			X: 40, Y: 120, Width: 700, Height: 400,
			Config: models.BlockConfig{
				Subjects: models.SubjectList{{Name: "Mathematics", IsCore: true}},
				GradeScale: []models.GradeScaleEntry{
					{Min: 90, Max: 100, Grade: "A"},
					{Min: 50, Max: 89, Grade: "B"},
				},
			},
		},
	}

	_, err := svc.Save(context.Background(), tpl, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidScale.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, repo.saves)
}

func TestTemplateServiceSaveRejectsBlockLocalStandards(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	tpl.Blocks = append(tpl.Blocks, models.Block{
		ID: "blk-standards", Type: models.BlockAchievementStandards, Order: 10, Visible: true,
		Config: models.BlockConfig{
			Standards: []models.AchievementStandard{
				{Min: 60, Max: 100, Band: "Meeting"},
				{Min: 0, Max: 40, Band: "Emerging"},
			},
		},
	})

	_, err := svc.Save(context.Background(), tpl, "user-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidScale.Code, appErrors.FromError(err).Code)
}

func TestTemplateServiceSaveFlattensFromCanvasElement(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	tpl.DesignMode = models.DesignModeCanvas
	tpl.Blocks = nil
	tpl.CanvasElements = models.ElementList{
		{
			ID: "el-grades", Type: models.ElementGradesTable,
			X: 40, Y: 120, Width: 700, Height: 400,
			Config: models.BlockConfig{
				Subjects: models.SubjectList{
					{Name: "Mathematics", IsCore: true},
					{Name: "Science", IsCore: false},
				},
				UseWeighted: true,
				Weights: &models.AssessmentWeights{
					Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 30,
				},
				GradeScale: []models.GradeScaleEntry{
					{Min: 50, Max: 100, Grade: "A"},
					{Min: 0, Max: 49, Grade: "B"},
				},
			},
		},
	}

	saved, err := svc.Save(context.Background(), tpl, "user-1")
	require.NoError(t, err)
	assert.Len(t, saved.Subjects, 2, "flat subjects follow the grades-table element")
	assert.True(t, saved.UseWeightedGrading)
	assert.Len(t, saved.GradeScale, 2)
}

func TestTemplateServiceSaveRejectsBadPaperSize(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	tpl.PaperSize = "tabloid"

	_, err := svc.Save(context.Background(), tpl, "user-1")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestTemplateServiceSaveInvalidatesCache(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	cache := &templateCacheStub{}
	svc := NewTemplateService(repo, cache, nil, nil, TemplateServiceConfig{CacheEnabled: true})

	tpl := DefaultTemplate("MHPS", "Morning Star Preparatory")
	_, err := svc.Save(context.Background(), tpl, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.deletes)
}

func TestTemplateServiceSavePreservesIdentity(t *testing.T) {
	repo := newTemplateRepoStub()
	repo.schools["MHPS"] = "Morning Star Preparatory"
	svc := NewTemplateService(repo, nil, nil, nil, TemplateServiceConfig{})

	first, err := svc.Get(context.Background(), "MHPS")
	require.NoError(t, err)

	replacement := DefaultTemplate("MHPS", "Morning Star Preparatory")
	replacement.HeaderText = "END OF TERM REPORT"
	saved, err := svc.Save(context.Background(), replacement, "user-2")
	require.NoError(t, err)

	assert.Equal(t, first.ID, saved.ID, "saving a replacement keeps the row identity")
	assert.Equal(t, "END OF TERM REPORT", saved.HeaderText)
}
