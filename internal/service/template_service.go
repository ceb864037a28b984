package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jtech-innovations/report-card-api/internal/models"
	appErrors "github.com/jtech-innovations/report-card-api/pkg/errors"
)

type templateStore interface {
	GetBySchoolCode(ctx context.Context, schoolCode string) (*models.ReportTemplate, error)
	Save(ctx context.Context, tpl *models.ReportTemplate) error
	SchoolExists(ctx context.Context, schoolCode string) (bool, error)
	SchoolName(ctx context.Context, schoolCode string) (string, error)
}

type templateCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type cacheMetrics interface {
	CacheHit()
	CacheMiss()
}

// TemplateServiceConfig tunes the read-through cache.
type TemplateServiceConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// TemplateService owns the template lifecycle: auto-seeded defaults,
// save-time validation and the flatten step that keeps template-level
// grading fields in sync with the grades-table block.
type TemplateService struct {
	repo      templateStore
	cache     templateCache
	metrics   cacheMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cfg       TemplateServiceConfig
}

// NewTemplateService constructs the template service.
func NewTemplateService(repo templateStore, cache templateCache, validate *validator.Validate, logger *zap.Logger, cfg TemplateServiceConfig) *TemplateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	return &TemplateService{repo: repo, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// SetMetrics attaches an optional cache hit/miss recorder.
func (s *TemplateService) SetMetrics(m cacheMetrics) {
	s.metrics = m
}

func templateCacheKey(schoolCode string) string {
	return "template:" + schoolCode
}

// Get returns a school's template, seeding the structural default on
// first access for a known school. Unknown schools are a 404.
func (s *TemplateService) Get(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	if s.cfg.CacheEnabled && s.cache != nil {
		var cached models.ReportTemplate
		if err := s.cache.Get(ctx, templateCacheKey(schoolCode), &cached); err == nil {
			if s.metrics != nil {
				s.metrics.CacheHit()
			}
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("template cache read failed", zap.String("school", schoolCode), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.CacheMiss()
		}
	}

	tpl, err := s.repo.GetBySchoolCode(ctx, schoolCode)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
		}
		tpl, err = s.seedDefault(ctx, schoolCode)
		if err != nil {
			return nil, err
		}
	}

	s.writeCache(ctx, tpl)
	return tpl, nil
}

func (s *TemplateService) seedDefault(ctx context.Context, schoolCode string) (*models.ReportTemplate, error) {
	exists, err := s.repo.SchoolExists(ctx, schoolCode)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify school")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("school %s is not registered", schoolCode))
	}

	name, err := s.repo.SchoolName(ctx, schoolCode)
	if err != nil {
		s.logger.Warn("school name lookup failed, using code", zap.String("school", schoolCode), zap.Error(err))
		name = schoolCode
	}

	tpl := DefaultTemplate(schoolCode, name)
	if err := s.repo.Save(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed default template")
	}
	s.logger.Info("seeded default template", zap.String("school", schoolCode))
	return tpl, nil
}

// Save validates and stores the full template document, replacing the
// previous one. Block orders are renumbered densely and template-level
// grading fields are derived from the grades-table block before the
// write. The cache entry is invalidated on success.
func (s *TemplateService) Save(ctx context.Context, tpl *models.ReportTemplate, updatedBy string) (*models.ReportTemplate, error) {
	if !tpl.PaperSize.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported paper size %q", tpl.PaperSize))
	}
	if tpl.DesignMode != models.DesignModeBlocks && tpl.DesignMode != models.DesignModeCanvas {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported design mode %q", tpl.DesignMode))
	}

	existing, err := s.repo.GetBySchoolCode(ctx, tpl.SchoolCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			exists, checkErr := s.repo.SchoolExists(ctx, tpl.SchoolCode)
			if checkErr != nil {
				return nil, appErrors.Wrap(checkErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify school")
			}
			if !exists {
				return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("school %s is not registered", tpl.SchoolCode))
			}
		} else {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load template")
		}
	} else {
		tpl.ID = existing.ID
		tpl.CreatedAt = existing.CreatedAt
	}

	renumberBlocks(tpl)
	flattenGradingConfig(tpl)

	if err := validateGrading(tpl); err != nil {
		return nil, err
	}

	tpl.UpdatedBy = &updatedBy
	if err := s.repo.Save(ctx, tpl); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save template")
	}

	if s.cfg.CacheEnabled && s.cache != nil {
		if err := s.cache.Delete(ctx, templateCacheKey(tpl.SchoolCode)); err != nil {
			s.logger.Warn("template cache invalidation failed", zap.String("school", tpl.SchoolCode), zap.Error(err))
		}
	}
	return tpl, nil
}

func (s *TemplateService) writeCache(ctx context.Context, tpl *models.ReportTemplate) {
	if !s.cfg.CacheEnabled || s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, templateCacheKey(tpl.SchoolCode), tpl, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("template cache write failed", zap.String("school", tpl.SchoolCode), zap.Error(err))
	}
}

// renumberBlocks sorts blocks by their stored order and reassigns
// dense 1..n orders, so duplicates and gaps cannot persist.
func renumberBlocks(tpl *models.ReportTemplate) {
	sort.SliceStable(tpl.Blocks, func(i, j int) bool { return tpl.Blocks[i].Order < tpl.Blocks[j].Order })
	for i := range tpl.Blocks {
		tpl.Blocks[i].Order = i + 1
	}
}

// flattenGradingConfig derives the template-level grading fields from
// the grades table the template actually renders: the grades-table
// block in block mode, the grades-table element in canvas mode. The
// local config is the canonical copy; the flat fields exist for
// consumers that never look at the layout.
func flattenGradingConfig(tpl *models.ReportTemplate) {
	cfg := canonicalGradesConfig(tpl)
	if cfg == nil || len(cfg.Subjects) == 0 {
		return
	}
	tpl.Subjects = append(models.SubjectList(nil), cfg.Subjects...)
	tpl.UseWeightedGrading = cfg.UseWeighted
	if cfg.Weights != nil {
		tpl.AssessmentWeights = *cfg.Weights
	}
	if len(cfg.GradeScale) > 0 {
		tpl.GradeScale = append(models.GradeScale(nil), cfg.GradeScale...)
	}
}

func canonicalGradesConfig(tpl *models.ReportTemplate) *models.BlockConfig {
	if tpl.DesignMode == models.DesignModeCanvas {
		for i := range tpl.CanvasElements {
			if tpl.CanvasElements[i].Type == models.ElementGradesTable {
				return &tpl.CanvasElements[i].Config
			}
		}
		return nil
	}
	if block := tpl.GradesTableBlock(); block != nil {
		return &block.Config
	}
	return nil
}

func validateGrading(tpl *models.ReportTemplate) error {
	if tpl.UseWeightedGrading {
		if sum := tpl.AssessmentWeights.Sum(); math.Abs(sum-100) > 1e-6 {
			return appErrors.Clone(appErrors.ErrInvalidWeights,
				fmt.Sprintf("assessment weights sum to %s, expected 100", trimFloat(sum)))
		}
	}
	if err := validateBands(toBands(tpl.GradeScale), "grade scale"); err != nil {
		return err
	}
	if len(tpl.AchievementStandards) > 0 {
		if err := validateBands(standardsToBands(tpl.AchievementStandards), "achievement standards"); err != nil {
			return err
		}
	}

	// Renderers prefer block- and element-local grading config, so
	// every local copy has to pass the same checks as the flat fields.
	for i := range tpl.Blocks {
		if err := validateLocalGrading(tpl, tpl.Blocks[i].Config, fmt.Sprintf("block %s", tpl.Blocks[i].ID)); err != nil {
			return err
		}
	}
	for i := range tpl.CanvasElements {
		if err := validateLocalGrading(tpl, tpl.CanvasElements[i].Config, fmt.Sprintf("element %s", tpl.CanvasElements[i].ID)); err != nil {
			return err
		}
	}
	return nil
}

func validateLocalGrading(tpl *models.ReportTemplate, cfg models.BlockConfig, where string) error {
	if cfg.UseWeighted {
		weights := tpl.AssessmentWeights
		if cfg.Weights != nil {
			weights = *cfg.Weights
		}
		if sum := weights.Sum(); math.Abs(sum-100) > 1e-6 {
			return appErrors.Clone(appErrors.ErrInvalidWeights,
				fmt.Sprintf("%s: assessment weights sum to %s, expected 100", where, trimFloat(sum)))
		}
	}
	if len(cfg.GradeScale) > 0 {
		if err := validateBands(toBands(cfg.GradeScale), where+" grade scale"); err != nil {
			return err
		}
	}
	if len(cfg.Standards) > 0 {
		if err := validateBands(standardsToBands(cfg.Standards), where+" achievement standards"); err != nil {
			return err
		}
	}
	return nil
}

type band struct{ min, max float64 }

func toBands(scale models.GradeScale) []band {
	bands := make([]band, len(scale))
	for i, e := range scale {
		bands[i] = band{min: e.Min, max: e.Max}
	}
	return bands
}

func standardsToBands(standards models.StandardList) []band {
	bands := make([]band, len(standards))
	for i, s := range standards {
		bands[i] = band{min: s.Min, max: s.Max}
	}
	return bands
}

// validateBands enforces contiguous integer bands covering [0,100]
// with no gaps and no overlaps.
func validateBands(bands []band, label string) error {
	if len(bands) == 0 {
		return appErrors.Clone(appErrors.ErrInvalidScale, label+" must not be empty")
	}
	sorted := append([]band(nil), bands...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].min < sorted[j].min })

	for _, b := range sorted {
		if b.min > b.max {
			return appErrors.Clone(appErrors.ErrInvalidScale,
				fmt.Sprintf("%s range %s-%s is inverted", label, trimFloat(b.min), trimFloat(b.max)))
		}
	}
	if sorted[0].min != 0 {
		return appErrors.Clone(appErrors.ErrInvalidScale, label+" must start at 0")
	}
	if sorted[len(sorted)-1].max != 100 {
		return appErrors.Clone(appErrors.ErrInvalidScale, label+" must end at 100")
	}
	for i := 1; i < len(sorted); i++ {
		if math.Abs(sorted[i].min-(sorted[i-1].max+1)) > 1e-9 {
			return appErrors.Clone(appErrors.ErrInvalidScale,
				fmt.Sprintf("%s has a gap or overlap at %s", label, trimFloat(sorted[i].min)))
		}
	}
	return nil
}

func trimFloat(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

// DefaultTemplate is the structural default seeded on first access.
func DefaultTemplate(schoolCode, schoolName string) *models.ReportTemplate {
	subjects := models.SubjectList{
		{Name: "Mathematics", IsCore: true},
		{Name: "English Language", IsCore: true},
		{Name: "Integrated Science", IsCore: true},
		{Name: "Social Studies", IsCore: true},
		{Name: "Religious and Moral Education", IsCore: false},
		{Name: "Creative Arts", IsCore: false},
		{Name: "Physical Education", IsCore: false},
		{Name: "Information Technology", IsCore: false},
	}
	scale := models.GradeScale{
		{Min: 90, Max: 100, Grade: "A+", Description: "Excellent"},
		{Min: 85, Max: 89, Grade: "A", Description: "Very Good"},
		{Min: 80, Max: 84, Grade: "A-", Description: "Good"},
		{Min: 75, Max: 79, Grade: "B", Description: "Satisfactory"},
		{Min: 70, Max: 74, Grade: "B-", Description: "Developing"},
		{Min: 65, Max: 69, Grade: "C", Description: "Passing"},
		{Min: 60, Max: 64, Grade: "C-", Description: "Passing"},
		{Min: 55, Max: 59, Grade: "D", Description: "Marginal"},
		{Min: 50, Max: 54, Grade: "D-", Description: "Below Average"},
		{Min: 40, Max: 49, Grade: "E", Description: "Frustration"},
		{Min: 0, Max: 39, Grade: "U", Description: "No participation"},
	}
	weights := models.AssessmentWeights{
		Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 30,
	}
	standards := models.StandardList{
		{Min: 80, Max: 100, Band: "Exceeding", Description: "Performing beyond grade level expectations"},
		{Min: 60, Max: 79, Band: "Meeting", Description: "Meeting grade level expectations"},
		{Min: 40, Max: 59, Band: "Approaching", Description: "Approaching grade level expectations"},
		{Min: 0, Max: 39, Band: "Emerging", Description: "Beginning to work towards expectations"},
	}
	categories := models.SkillCategoryList{
		{CategoryName: "Personal Development", Skills: []string{"Punctuality", "Neatness", "Self Control"}},
		{CategoryName: "Social Development", Skills: []string{"Teamwork", "Respect for Others", "Leadership"}},
		{CategoryName: "Work Habits", Skills: []string{"Completes Assignments", "Participation", "Initiative"}},
	}
	ratings := models.StringList{"Excellent", "Good", "Fair", "Needs Improvement"}

	gradesConfig := models.BlockConfig{
		Subjects:        append([]models.Subject(nil), subjects...),
		UseWeighted:     false,
		Weights:         &weights,
		GradeScale:      append([]models.GradeScaleEntry(nil), scale...),
		ShowAchievement: false,
	}

	return &models.ReportTemplate{
		SchoolCode:            schoolCode,
		SchoolName:            schoolName,
		HeaderText:            "TERMINAL REPORT",
		PaperSize:             models.PaperLetter,
		UseWeightedGrading:    false,
		Subjects:              subjects,
		GradeScale:            scale,
		AssessmentWeights:     weights,
		AchievementStandards:  standards,
		SocialSkillCategories: categories,
		SkillRatings:          ratings,
		DesignMode:            models.DesignModeBlocks,
		Theme: models.Theme{
			Preset:       "classic",
			PrimaryColor: "#1f2937",
			AccentColor:  "#2563eb",
			HeaderBg:     "#1f2937",
			HeaderText:   "#ffffff",
			BodyBg:       "#ffffff",
			BodyText:     "#111827",
			FontFamily:   "Helvetica",
		},
		Blocks: models.BlockList{
			{ID: "blk-school-header", Type: models.BlockSchoolHeader, Order: 1, Visible: true},
			{ID: "blk-student-info", Type: models.BlockStudentInfo, Order: 2, Visible: true},
			{ID: "blk-term-info", Type: models.BlockTermInfo, Order: 3, Visible: true},
			{ID: "blk-grades-table", Type: models.BlockGradesTable, Order: 4, Visible: true, Config: gradesConfig},
			{ID: "blk-grade-key", Type: models.BlockGradeKey, Order: 5, Visible: true},
			{ID: "blk-social-skills", Type: models.BlockSocialSkills, Order: 6, Visible: true},
			{ID: "blk-comments", Type: models.BlockComments, Order: 7, Visible: true},
			{ID: "blk-signatures", Type: models.BlockSignatures, Order: 8, Visible: true},
			{ID: "blk-footer", Type: models.BlockFooter, Order: 9, Visible: true},
		},
	}
}
