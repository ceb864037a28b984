package render

import (
	"fmt"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// Layout constants, pixels at 96 DPI.
const (
	pageMargin     = 32.0
	blockGap       = 12.0
	baseFontSize   = 12.0
	lineSpacing    = 1.5
	tableRowHeight = 22.0
)

// Composer turns a template plus one student's render context into a
// composed document.
type Composer interface {
	Compose(tpl *models.ReportTemplate, ctx *models.RenderContext) (*Document, error)
}

// For selects the composer implementation for a design mode. Unknown
// modes compose as block mode, matching how stored templates default.
func For(mode models.DesignMode) Composer {
	if mode == models.DesignModeCanvas {
		return &CanvasComposer{}
	}
	return &BlockComposer{}
}

// ComposeBatch renders one document per context, preserving input
// order. The caller supplies contexts in roster order; exporters place
// a page break between consecutive documents.
func ComposeBatch(tpl *models.ReportTemplate, ctxs []*models.RenderContext) ([]*Document, error) {
	composer := For(tpl.DesignMode)
	docs := make([]*Document, 0, len(ctxs))
	for _, ctx := range ctxs {
		doc, err := composer.Compose(tpl, ctx)
		if err != nil {
			return nil, fmt.Errorf("compose report for student %s: %w", ctx.Student.ID, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func newDocument(tpl *models.ReportTemplate, ctx *models.RenderContext) *Document {
	w, h := tpl.PaperSize.Dimensions()
	bg := ""
	if tpl.BackgroundURL != nil {
		bg = *tpl.BackgroundURL
	}
	return &Document{
		SchoolCode:    tpl.SchoolCode,
		StudentID:     ctx.Student.ID,
		StudentName:   ctx.Student.FullName(),
		PaperSize:     tpl.PaperSize,
		PageWidth:     w,
		PageHeight:    h,
		ContentHeight: h,
		BackgroundURL: bg,
		Theme:         applyThemeDefaults(tpl.Theme),
	}
}

func applyThemeDefaults(t models.Theme) models.Theme {
	if t.PrimaryColor == "" {
		t.PrimaryColor = "#1f2937"
	}
	if t.AccentColor == "" {
		t.AccentColor = "#2563eb"
	}
	if t.HeaderBg == "" {
		t.HeaderBg = t.PrimaryColor
	}
	if t.HeaderText == "" {
		t.HeaderText = "#ffffff"
	}
	if t.BodyBg == "" {
		t.BodyBg = "#ffffff"
	}
	if t.BodyText == "" {
		t.BodyText = "#111827"
	}
	if t.FontFamily == "" {
		t.FontFamily = "Helvetica"
	}
	return t
}

// styleString reads a string override from block styles, falling back
// to the theme-derived default.
func styleString(s models.Styles, key, fallback string) string {
	if s == nil {
		return fallback
	}
	if v, ok := s[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// styleFloat reads a numeric override from block styles. JSON numbers
// decode as float64; integer literals stored by older clients are
// accepted too.
func styleFloat(s models.Styles, key string, fallback float64) float64 {
	if s == nil {
		return fallback
	}
	switch v := s[key].(type) {
	case float64:
		if v > 0 {
			return v
		}
	case int:
		if v > 0 {
			return float64(v)
		}
	}
	return fallback
}

// gradingConfig is the effective grading setup for a grades table.
// Block-local configuration is canonical; template-level flat fields
// serve templates saved before blocks carried their own copy.
type gradingConfig struct {
	subjects    []models.Subject
	useWeighted bool
	weights     models.AssessmentWeights
	scale       []models.GradeScaleEntry
	standards   []models.AchievementStandard
}

func gradingFrom(tpl *models.ReportTemplate, cfg models.BlockConfig) gradingConfig {
	gc := gradingConfig{
		subjects:    tpl.Subjects,
		useWeighted: tpl.UseWeightedGrading,
		weights:     tpl.AssessmentWeights,
		scale:       tpl.GradeScale,
		standards:   tpl.AchievementStandards,
	}
	if len(cfg.Subjects) > 0 {
		gc.subjects = cfg.Subjects
		gc.useWeighted = cfg.UseWeighted
	}
	if cfg.Weights != nil {
		gc.weights = *cfg.Weights
	}
	if len(cfg.GradeScale) > 0 {
		gc.scale = cfg.GradeScale
	}
	if len(cfg.Standards) > 0 {
		gc.standards = cfg.Standards
	}
	return gc
}

// formatScore prints a score without trailing noise: whole numbers
// drop the decimal, everything else keeps one place.
func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func formatRange(min, max float64) string {
	return fmt.Sprintf("%s - %s", formatScore(min), formatScore(max))
}
