package render

import (
	"math"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// GradeResult is the letter grade and its description for a score.
type GradeResult struct {
	Grade       string `json:"grade"`
	Description string `json:"description"`
}

// AchievementResult is the achievement band matched for a score.
type AchievementResult struct {
	Band        string `json:"band"`
	Description string `json:"description"`
}

// noScore is rendered wherever a numeric score is absent.
const noScore = "-"

// GradeFor maps a raw score onto a grade scale. The score is rounded
// to the nearest integer and matched against entries in order; the
// first entry whose range contains it wins. Scores outside every range
// fall back to the last entry so legacy scales with gaps still grade.
// A nil or NaN score yields the "-" sentinel.
func GradeFor(score *float64, scale []models.GradeScaleEntry) GradeResult {
	if score == nil || math.IsNaN(*score) || len(scale) == 0 {
		return GradeResult{Grade: noScore, Description: noScore}
	}
	r := math.Round(*score)
	for _, e := range scale {
		if r >= e.Min && r <= e.Max {
			return GradeResult{Grade: e.Grade, Description: e.Description}
		}
	}
	last := scale[len(scale)-1]
	return GradeResult{Grade: last.Grade, Description: last.Description}
}

// AchievementFor maps a score onto achievement standards with the same
// scan-in-order and last-entry fallback as GradeFor. In weighted
// grading mode callers pass the end-of-term component alone, not the
// blended score.
func AchievementFor(score *float64, standards []models.AchievementStandard) AchievementResult {
	if score == nil || math.IsNaN(*score) || len(standards) == 0 {
		return AchievementResult{Band: noScore, Description: noScore}
	}
	r := math.Round(*score)
	for _, s := range standards {
		if r >= s.Min && r <= s.Max {
			return AchievementResult{Band: s.Band, Description: s.Description}
		}
	}
	last := standards[len(standards)-1]
	return AchievementResult{Band: last.Band, Description: last.Description}
}

// WeightedScore blends the six assessment components by their weights.
// Each weight is a percentage; a missing component contributes zero.
// The weight sum is not normalised here, saves enforce it.
func WeightedScore(c models.AssessmentComponents, w models.AssessmentWeights) float64 {
	total := 0.0
	total += deref(c.Homework) * w.Homework / 100
	total += deref(c.GroupWork) * w.GroupWork / 100
	total += deref(c.Project) * w.Project / 100
	total += deref(c.Quiz) * w.Quiz / 100
	total += deref(c.MidTerm) * w.MidTerm / 100
	total += deref(c.EndOfTerm) * w.EndOfTerm / 100
	return total
}

// ExamScore returns the component achievement bands are keyed off in
// weighted mode: the end-of-term exam alone.
func ExamScore(c models.AssessmentComponents) *float64 {
	return c.EndOfTerm
}

// DisplayScore returns the number printed in the score column: the raw
// score, or the weighted blend when weighted grading is active.
func DisplayScore(g models.SubjectGrade, useWeighted bool, w models.AssessmentWeights) *float64 {
	if useWeighted {
		s := WeightedScore(g.Components, w)
		return &s
	}
	return g.Score
}

// CoreAverage averages the scores of core subjects for which the
// student has a grade record. In raw mode it averages raw scores; in
// weighted mode it averages (midTerm+endOfTerm)/2 per subject. Returns
// nil when no core subject has a usable record.
func CoreAverage(subjects []models.Subject, grades map[string]models.SubjectGrade, useWeighted bool) *float64 {
	sum := 0.0
	n := 0
	for _, sub := range subjects {
		if !sub.IsCore {
			continue
		}
		g, ok := grades[sub.Name]
		if !ok {
			continue
		}
		if useWeighted {
			sum += (deref(g.Components.MidTerm) + deref(g.Components.EndOfTerm)) / 2
			n++
			continue
		}
		if g.Score == nil || math.IsNaN(*g.Score) {
			continue
		}
		sum += *g.Score
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
