package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

func f(v float64) *float64 { return &v }

var testScale = []models.GradeScaleEntry{
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

func TestGradeForRoundsBeforeMatching(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{89.2, "A"},
		{91.9, "A+"},
		{88.1, "A"},
		{86.9, "A"},
		{79.5, "A-"},
		{74.4, "B-"},
		{100, "A+"},
		{0, "U"},
	}
	for _, tc := range cases {
		got := GradeFor(f(tc.score), testScale)
		assert.Equal(t, tc.want, got.Grade, "score %.1f", tc.score)
	}
}

func TestGradeForIsIdempotentUnderRounding(t *testing.T) {
	for _, score := range []float64{89.2, 79.5, 64.49, 39.9} {
		direct := GradeFor(f(score), testScale)
		rounded := math.Round(score)
		again := GradeFor(&rounded, testScale)
		assert.Equal(t, direct, again, "score %.2f", score)
	}
}

func TestGradeForEveryScoreMatchesExactlyOneBand(t *testing.T) {
	for s := 0; s <= 100; s++ {
		score := float64(s)
		matches := 0
		for _, e := range testScale {
			if score >= e.Min && score <= e.Max {
				matches++
			}
		}
		require.Equal(t, 1, matches, "score %d must fall in exactly one band", s)
	}
}

func TestGradeForMissingScore(t *testing.T) {
	assert.Equal(t, GradeResult{Grade: "-", Description: "-"}, GradeFor(nil, testScale))

	nan := math.NaN()
	assert.Equal(t, GradeResult{Grade: "-", Description: "-"}, GradeFor(&nan, testScale))

	assert.Equal(t, GradeResult{Grade: "-", Description: "-"}, GradeFor(f(50), nil))
}

func TestGradeForFallsBackToLastEntry(t *testing.T) {
	gapped := []models.GradeScaleEntry{
		{Min: 90, Max: 100, Grade: "A", Description: "Top"},
		{Min: 50, Max: 89, Grade: "B", Description: "Middle"},
	}
	got := GradeFor(f(12), gapped)
	assert.Equal(t, "B", got.Grade)
}

func TestWeightedScoreExamHeavyBlend(t *testing.T) {
	weights := models.AssessmentWeights{MidTerm: 30, EndOfTerm: 40}
	components := models.AssessmentComponents{MidTerm: f(80), EndOfTerm: f(90)}

	got := WeightedScore(components, weights)
	assert.InDelta(t, 60.0, got, 1e-9)
}

func TestWeightedScoreMissingComponentsAreZero(t *testing.T) {
	weights := models.AssessmentWeights{
		Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 30,
	}
	components := models.AssessmentComponents{EndOfTerm: f(100)}
	assert.InDelta(t, 30.0, WeightedScore(components, weights), 1e-9)
}

func TestWeightedScoreLinearity(t *testing.T) {
	weights := models.AssessmentWeights{
		Homework: 10, GroupWork: 10, Project: 10, Quiz: 10, MidTerm: 30, EndOfTerm: 30,
	}
	base := models.AssessmentComponents{
		Homework: f(50), GroupWork: f(50), Project: f(50), Quiz: f(50), MidTerm: f(50), EndOfTerm: f(50),
	}
	doubled := models.AssessmentComponents{
		Homework: f(100), GroupWork: f(100), Project: f(100), Quiz: f(100), MidTerm: f(100), EndOfTerm: f(100),
	}
	assert.InDelta(t, 2*WeightedScore(base, weights), WeightedScore(doubled, weights), 1e-9)
}

func TestWeightedScoreUniformWeightsEqualsMean(t *testing.T) {
	weights := models.AssessmentWeights{
		Homework: 100.0 / 6, GroupWork: 100.0 / 6, Project: 100.0 / 6,
		Quiz: 100.0 / 6, MidTerm: 100.0 / 6, EndOfTerm: 100.0 / 6,
	}
	components := models.AssessmentComponents{
		Homework: f(60), GroupWork: f(66), Project: f(72), Quiz: f(78), MidTerm: f(84), EndOfTerm: f(90),
	}
	mean := (60.0 + 66 + 72 + 78 + 84 + 90) / 6
	assert.InDelta(t, mean, WeightedScore(components, weights), 1e-9)
}

func TestAchievementForUsesExamOnlyInWeightedMode(t *testing.T) {
	standards := []models.AchievementStandard{
		{Min: 80, Max: 100, Band: "Exceeding", Description: "Beyond expectations"},
		{Min: 50, Max: 79, Band: "Meeting", Description: "On track"},
		{Min: 0, Max: 49, Band: "Emerging", Description: "Needs support"},
	}
	components := models.AssessmentComponents{MidTerm: f(80), EndOfTerm: f(90)}
	weights := models.AssessmentWeights{MidTerm: 30, EndOfTerm: 40}

	// The blend is 60 but achievement keys off the exam alone.
	require.InDelta(t, 60.0, WeightedScore(components, weights), 1e-9)
	got := AchievementFor(ExamScore(components), standards)
	assert.Equal(t, "Exceeding", got.Band)

	blend := WeightedScore(components, weights)
	assert.Equal(t, "Meeting", AchievementFor(&blend, standards).Band)
}

func TestCoreAverageRawScores(t *testing.T) {
	subjects := []models.Subject{
		{Name: "Mathematics", IsCore: true},
		{Name: "Art", IsCore: false},
	}
	grades := map[string]models.SubjectGrade{
		"Mathematics": {Subject: "Mathematics", Score: f(95)},
		"Art":         {Subject: "Art", Score: f(70)},
	}
	scale := []models.GradeScaleEntry{
		{Min: 90, Max: 100, Grade: "A", Description: "Top"},
		{Min: 0, Max: 89, Grade: "B", Description: "Rest"},
	}

	assert.Equal(t, "A", GradeFor(f(95), scale).Grade)
	assert.Equal(t, "B", GradeFor(f(70), scale).Grade)

	avg := CoreAverage(subjects, grades, false)
	require.NotNil(t, avg)
	assert.Equal(t, 95.0, *avg)
	assert.Equal(t, "A", GradeFor(avg, scale).Grade)
}

func TestCoreAverageWeightedUsesExamMean(t *testing.T) {
	subjects := []models.Subject{
		{Name: "Mathematics", IsCore: true},
		{Name: "English", IsCore: true},
	}
	grades := map[string]models.SubjectGrade{
		"Mathematics": {Components: models.AssessmentComponents{MidTerm: f(80), EndOfTerm: f(90)}},
		"English":     {Components: models.AssessmentComponents{MidTerm: f(70), EndOfTerm: f(60)}},
	}

	avg := CoreAverage(subjects, grades, true)
	require.NotNil(t, avg)
	// (85 + 65) / 2
	assert.InDelta(t, 75.0, *avg, 1e-9)
}

func TestCoreAverageNoCoreRecords(t *testing.T) {
	subjects := []models.Subject{{Name: "Art", IsCore: false}}
	assert.Nil(t, CoreAverage(subjects, nil, false))
}
