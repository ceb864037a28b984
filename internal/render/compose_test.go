package render

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

func blockTemplate() *models.ReportTemplate {
	return &models.ReportTemplate{
		SchoolCode:  "MHPS",
		SchoolName:  "Mount Horeb Preparatory School",
		SchoolMotto: "Knowledge and Light",
		PaperSize:   models.PaperLetter,
		DesignMode:  models.DesignModeBlocks,
		Subjects: models.SubjectList{
			{Name: "Mathematics", IsCore: true},
			{Name: "Art", IsCore: false},
		},
		GradeScale: models.GradeScale{
			{Min: 90, Max: 100, Grade: "A", Description: "Top"},
			{Min: 0, Max: 89, Grade: "B", Description: "Rest"},
		},
		SkillRatings:          models.StringList{"Excellent", "Good", "Fair"},
		SocialSkillCategories: models.SkillCategoryList{{CategoryName: "Conduct", Skills: []string{"Punctuality", "Teamwork"}}},
		Blocks: models.BlockList{
			{ID: "b-header", Type: models.BlockSchoolHeader, Order: 1, Visible: true},
			{ID: "b-student", Type: models.BlockStudentInfo, Order: 2, Visible: true},
			{ID: "b-grades", Type: models.BlockGradesTable, Order: 3, Visible: true},
			{ID: "b-skills", Type: models.BlockSocialSkills, Order: 4, Visible: false},
			{ID: "b-signatures", Type: models.BlockSignatures, Order: 5, Visible: true},
		},
	}
}

func studentContext(id, name string) *models.RenderContext {
	return &models.RenderContext{
		Student: models.Student{ID: id, FirstName: name},
		Grades: map[string]models.SubjectGrade{
			"Mathematics": {Subject: "Mathematics", Score: f(95)},
			"Art":         {Subject: "Art", Score: f(70)},
		},
		SocialSkills: map[string]string{"Punctuality": "Good"},
		Signatures:   map[models.SignatureRole]string{},
	}
}

func findRegion(t *testing.T, doc *Document, sourceID string) *Region {
	t.Helper()
	for i := range doc.Regions {
		if doc.Regions[i].SourceID == sourceID {
			return &doc.Regions[i]
		}
	}
	t.Fatalf("region %s not found", sourceID)
	return nil
}

func TestBlockComposeOrderAndVisibility(t *testing.T) {
	tpl := blockTemplate()
	// Shuffle stored order; composition must sort by Order.
	tpl.Blocks[0], tpl.Blocks[2] = tpl.Blocks[2], tpl.Blocks[0]

	doc, err := (&BlockComposer{}).Compose(tpl, studentContext("stu-1", "Ama"))
	require.NoError(t, err)

	require.Len(t, doc.Regions, 5)
	assert.Equal(t, "b-header", doc.Regions[0].SourceID)
	assert.Equal(t, "b-grades", doc.Regions[2].SourceID)

	hidden := findRegion(t, doc, "b-skills")
	assert.True(t, hidden.Hidden)
	assert.Zero(t, hidden.Height)

	// Visible regions stack top to bottom without overlap.
	prevBottom := 0.0
	for _, r := range doc.Regions {
		if r.Hidden {
			continue
		}
		assert.GreaterOrEqual(t, r.Y, prevBottom)
		prevBottom = r.Y + r.Height
	}
	assert.GreaterOrEqual(t, doc.ContentHeight, prevBottom)
}

func TestBlockComposeGradesTable(t *testing.T) {
	tpl := blockTemplate()
	doc, err := (&BlockComposer{}).Compose(tpl, studentContext("stu-1", "Ama"))
	require.NoError(t, err)

	region := findRegion(t, doc, "b-grades")
	require.Len(t, region.Nodes, 1)
	table := region.Nodes[0].Table
	require.NotNil(t, table)

	// Two subject rows plus the core average footer.
	require.Len(t, table.Rows, 3)
	assert.Equal(t, "Mathematics", table.Rows[0][0].Text)
	assert.Equal(t, "95", table.Rows[0][1].Text)
	assert.Equal(t, "A", table.Rows[0][2].Text)
	assert.NotEmpty(t, table.Rows[0][0].Fill, "core subjects are striped")

	assert.Equal(t, "Art", table.Rows[1][0].Text)
	assert.Equal(t, "B", table.Rows[1][2].Text)
	assert.Empty(t, table.Rows[1][0].Fill)

	footer := table.Rows[2]
	assert.Equal(t, "Core Average", footer[0].Text)
	assert.Equal(t, "95", footer[1].Text)
	assert.Equal(t, "A", footer[2].Text)
}

func TestBlockComposeGradesTableBlockLocalConfigWins(t *testing.T) {
	tpl := blockTemplate()
	block := tpl.GradesTableBlock()
	require.NotNil(t, block)
	block.Config.Subjects = []models.Subject{{Name: "Science", IsCore: true}}
	block.Config.GradeScale = []models.GradeScaleEntry{{Min: 0, Max: 100, Grade: "S", Description: "Single"}}

	ctx := studentContext("stu-1", "Ama")
	ctx.Grades["Science"] = models.SubjectGrade{Subject: "Science", Score: f(42)}

	doc, err := (&BlockComposer{}).Compose(tpl, ctx)
	require.NoError(t, err)

	table := findRegion(t, doc, "b-grades").Nodes[0].Table
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Science", table.Rows[0][0].Text)
	assert.Equal(t, "S", table.Rows[0][2].Text)
}

func TestBlockComposeSocialSkillsExactMatch(t *testing.T) {
	tpl := blockTemplate()
	for i := range tpl.Blocks {
		tpl.Blocks[i].Visible = true
	}
	ctx := studentContext("stu-1", "Ama")
	ctx.SocialSkills = map[string]string{"Punctuality": "Good", "Teamwork": "excellent"}

	doc, err := (&BlockComposer{}).Compose(tpl, ctx)
	require.NoError(t, err)

	region := findRegion(t, doc, "b-skills")
	var table *Table
	for _, n := range region.Nodes {
		if n.Kind == NodeTable {
			table = n.Table
			break
		}
	}
	require.NotNil(t, table)
	require.Len(t, table.Columns, 4)

	// Punctuality: only the "Good" column is checked.
	punctuality := table.Rows[0]
	assert.False(t, punctuality[1].Checked)
	assert.True(t, punctuality[2].Checked)
	assert.False(t, punctuality[3].Checked)

	// "excellent" does not match "Excellent"; nothing is checked.
	teamwork := table.Rows[1]
	for i := 1; i < len(teamwork); i++ {
		assert.False(t, teamwork[i].Checked)
	}
}

func TestBlockComposeSignaturesNeverError(t *testing.T) {
	tpl := blockTemplate()
	ctx := studentContext("stu-1", "Ama")
	ctx.Signatures = map[models.SignatureRole]string{
		models.SignatureRolePrincipal: "/assets/signatures/principal.png",
	}

	doc, err := (&BlockComposer{}).Compose(tpl, ctx)
	require.NoError(t, err)

	region := findRegion(t, doc, "b-signatures")
	require.Len(t, region.Nodes, 2)
	assert.Empty(t, region.Nodes[0].Src, "missing signature renders a blank line")
	assert.Equal(t, "/assets/signatures/principal.png", region.Nodes[1].Src)
}

func TestBlockComposeUnknownBlockType(t *testing.T) {
	tpl := blockTemplate()
	tpl.Blocks = append(tpl.Blocks, models.Block{ID: "b-bad", Type: "hologram", Order: 9, Visible: true})

	_, err := (&BlockComposer{}).Compose(tpl, studentContext("stu-1", "Ama"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")
}

func canvasTemplate() *models.ReportTemplate {
	tpl := blockTemplate()
	tpl.DesignMode = models.DesignModeCanvas
	tpl.Blocks = nil
	tpl.CanvasElements = models.ElementList{
		{ID: "e-title", Type: models.ElementText, X: 40, Y: 30, Width: 300, Height: 24,
			Config: models.BlockConfig{Content: "Report Card"}},
		{ID: "e-name", Type: models.ElementDataField, X: 40, Y: 70, Width: 200, Height: 18,
			Config: models.BlockConfig{Field: "student.name", ShowLabel: true}},
		{ID: "e-grades", Type: models.ElementGradesTable, X: 40, Y: 120, Width: 500, Height: 200},
		{ID: "e-line", Type: models.ElementLine, X: 40, Y: 340, Width: 500, Height: 1},
	}
	return tpl
}

func TestCanvasComposePlacesElements(t *testing.T) {
	tpl := canvasTemplate()
	doc, err := (&CanvasComposer{}).Compose(tpl, studentContext("stu-1", "Ama"))
	require.NoError(t, err)
	require.Len(t, doc.Regions, 4)

	name := findRegion(t, doc, "e-name")
	assert.Equal(t, 40.0, name.X)
	assert.Equal(t, 70.0, name.Y)
	require.Len(t, name.Nodes, 1)
	assert.Equal(t, "Student Name: Ama", name.Nodes[0].Text)

	grades := findRegion(t, doc, "e-grades")
	require.Len(t, grades.Nodes, 1)
	require.NotNil(t, grades.Nodes[0].Table)
}

func TestDocumentScaleIsLinearPerAxis(t *testing.T) {
	tpl := canvasTemplate()
	ctx := studentContext("stu-1", "Ama")

	for _, z := range []float64{0.5, 0.75, 1.0, 1.5, 2.0} {
		base, err := (&CanvasComposer{}).Compose(tpl, ctx)
		require.NoError(t, err)
		scaled, err := (&CanvasComposer{}).Compose(tpl, ctx)
		require.NoError(t, err)
		scaled.Scale(z)

		assert.InDelta(t, base.PageWidth*z, scaled.PageWidth, 1e-9)
		assert.InDelta(t, base.PageHeight*z, scaled.PageHeight, 1e-9)
		for i := range base.Regions {
			br, sr := base.Regions[i], scaled.Regions[i]
			assert.InDelta(t, br.X*z, sr.X, 1e-9, "z=%.2f region %s x", z, br.SourceID)
			assert.InDelta(t, br.Y*z, sr.Y, 1e-9, "z=%.2f region %s y", z, br.SourceID)
			assert.InDelta(t, br.Width*z, sr.Width, 1e-9, "z=%.2f region %s width", z, br.SourceID)
			assert.InDelta(t, br.Height*z, sr.Height, 1e-9, "z=%.2f region %s height", z, br.SourceID)
		}
	}
}

func TestPaperSizeDimensions(t *testing.T) {
	cases := []struct {
		size models.PaperSize
		w, h float64
	}{
		{models.PaperLetter, 816, 1056},
		{models.PaperLegal, 816, 1344},
		{models.PaperA4, 794, 1123},
	}
	for _, tc := range cases {
		w, h := tc.size.Dimensions()
		assert.Equal(t, tc.w, w)
		assert.Equal(t, tc.h, h)
	}
}

func TestComposeBatchPreservesRosterOrder(t *testing.T) {
	tpl := blockTemplate()
	var ctxs []*models.RenderContext
	for i := 0; i < 8; i++ {
		ctxs = append(ctxs, studentContext(fmt.Sprintf("stu-%d", i), fmt.Sprintf("Student %d", i)))
	}

	docs, err := ComposeBatch(tpl, ctxs)
	require.NoError(t, err)
	require.Len(t, docs, 8)
	for i, doc := range docs {
		assert.Equal(t, fmt.Sprintf("stu-%d", i), doc.StudentID)
	}
}

func TestComposerForMode(t *testing.T) {
	assert.IsType(t, &BlockComposer{}, For(models.DesignModeBlocks))
	assert.IsType(t, &CanvasComposer{}, For(models.DesignModeCanvas))
	assert.IsType(t, &BlockComposer{}, For(""))
}
