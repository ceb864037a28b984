package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// BlockComposer lays out block-mode templates as a vertical flow.
// Blocks render in ascending order; hidden blocks keep their place in
// the document model with zero height so previews can toggle them.
type BlockComposer struct{}

// Compose implements Composer.
func (bc *BlockComposer) Compose(tpl *models.ReportTemplate, ctx *models.RenderContext) (*Document, error) {
	doc := newDocument(tpl, ctx)
	contentWidth := doc.PageWidth - 2*pageMargin

	blocks := append(models.BlockList(nil), tpl.Blocks...)
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Order < blocks[j].Order })

	y := pageMargin
	for _, b := range blocks {
		region, err := bc.composeBlock(tpl, b, ctx, contentWidth, doc.Theme)
		if err != nil {
			return nil, err
		}
		region.X = pageMargin
		region.Y = y
		region.Width = contentWidth
		if b.Visible {
			y += region.Height + blockGap
		} else {
			region.Hidden = true
			region.Height = 0
		}
		doc.Regions = append(doc.Regions, region)
	}

	if y+pageMargin > doc.ContentHeight {
		doc.ContentHeight = y + pageMargin
	}
	return doc, nil
}

func (bc *BlockComposer) composeBlock(tpl *models.ReportTemplate, b models.Block, ctx *models.RenderContext, width float64, theme models.Theme) (Region, error) {
	region := Region{SourceID: b.ID, Kind: string(b.Type), Styles: b.Styles}

	switch b.Type {
	case models.BlockSchoolHeader:
		region.Nodes, region.Height = buildSchoolHeader(tpl, b, width, theme)
	case models.BlockStudentInfo:
		region.Nodes, region.Height = buildStudentInfo(ctx, b, width, theme)
	case models.BlockTermInfo:
		region.Nodes, region.Height = buildTermInfo(ctx, b, width, theme)
	case models.BlockGradesTable:
		node, h := buildGradesTable(tpl, b.Config, b.Styles, ctx, width, theme)
		region.Nodes, region.Height = []Node{node}, h
	case models.BlockGradeKey:
		region.Nodes, region.Height = buildGradeKey(tpl, b, width, theme)
	case models.BlockWeightKey:
		region.Nodes, region.Height = buildWeightKey(tpl, b, width, theme)
	case models.BlockAchievementStandards:
		region.Nodes, region.Height = buildAchievementStandards(tpl, b, width, theme)
	case models.BlockSocialSkills:
		region.Nodes, region.Height = buildSocialSkills(tpl, b.Config, ctx, width, theme)
	case models.BlockComments:
		region.Nodes, region.Height = buildComments(ctx, b, width, theme)
	case models.BlockSignatures:
		region.Nodes, region.Height = buildSignatures(ctx, b, width, theme)
	case models.BlockFooter:
		region.Nodes, region.Height = buildFooter(tpl, b, width, theme)
	case models.BlockCustomText:
		region.Nodes, region.Height = buildCustomText(b, ctx, width, theme)
	case models.BlockCustomImage:
		region.Nodes, region.Height = buildCustomImage(b, width)
	case models.BlockSpacer:
		h := b.Config.Height
		if h <= 0 {
			h = 24
		}
		region.Height = h
	default:
		return region, fmt.Errorf("unknown block type %q", b.Type)
	}
	return region, nil
}

func textNode(text string, size float64, width float64, opts ...func(*Node)) Node {
	n := Node{Kind: NodeText, Text: text, FontSize: size, Width: width, Height: size * lineSpacing}
	for _, opt := range opts {
		opt(&n)
	}
	return n
}

func bold(n *Node)     { n.Bold = true }
func italic(n *Node)   { n.Italic = true }
func centered(n *Node) { n.Align = "center" }

// estimateTextHeight approximates wrapped paragraph height from an
// average glyph width of half the font size.
func estimateTextHeight(text string, size, width float64) float64 {
	if text == "" || width <= 0 {
		return size * lineSpacing
	}
	charsPerLine := width / (size * 0.5)
	lines := math.Ceil(float64(len(text)) / charsPerLine)
	if lines < 1 {
		lines = 1
	}
	return lines * size * lineSpacing
}

func buildSchoolHeader(tpl *models.ReportTemplate, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	cfg := b.Config
	name := cfg.SchoolName
	if name == "" {
		name = tpl.SchoolName
	}
	motto := cfg.SchoolMotto
	if motto == "" {
		motto = tpl.SchoolMotto
	}
	logo := cfg.LogoURL
	if logo == "" {
		logo = tpl.LogoURL
	}
	header := cfg.HeaderText
	if header == "" {
		header = tpl.HeaderText
	}
	sub := cfg.SubHeaderText
	if sub == "" {
		sub = tpl.SubHeaderText
	}

	var nodes []Node
	y := 0.0
	if logo != "" {
		const logoSize = 64.0
		nodes = append(nodes, Node{Kind: NodeImage, Src: logo, X: (width - logoSize) / 2, Y: y, Width: logoSize, Height: logoSize})
		y += logoSize + 6
	}
	nameSize := styleFloat(b.Styles, "fontSize", 20)
	n := textNode(name, nameSize, width, bold, centered)
	n.Y = y
	n.Color = styleString(b.Styles, "color", theme.PrimaryColor)
	nodes = append(nodes, n)
	y += n.Height
	if motto != "" {
		m := textNode(motto, 11, width, italic, centered)
		m.Y = y
		nodes = append(nodes, m)
		y += m.Height
	}
	if header != "" {
		h := textNode(header, 13, width, bold, centered)
		h.Y = y
		nodes = append(nodes, h)
		y += h.Height
	}
	if sub != "" {
		s := textNode(sub, 10, width, centered)
		s.Y = y
		nodes = append(nodes, s)
		y += s.Height
	}
	return nodes, y
}

func infoTable(rows [][2]string, width float64) (Node, float64) {
	table := &Table{
		Columns:   []Column{{Title: "", Width: 0.3}, {Title: "", Width: 0.7}},
		FontSize:  baseFontSize - 1,
		RowHeight: tableRowHeight - 4,
	}
	for _, r := range rows {
		table.Rows = append(table.Rows, []Cell{{Text: r[0], Bold: true}, {Text: r[1]}})
	}
	h := float64(len(rows)) * table.RowHeight
	return Node{Kind: NodeTable, Table: table, Width: width, Height: h}, h
}

func buildStudentInfo(ctx *models.RenderContext, b models.Block, width float64, _ models.Theme) ([]Node, float64) {
	rows := [][2]string{
		{"Student Name", Resolve("student.name", ctx)},
		{"Admission No", Resolve("student.admission_no", ctx)},
		{"Class", Resolve("class.name", ctx)},
		{"Gender", Resolve("student.gender", ctx)},
	}
	if ctx.Position != nil {
		rows = append(rows, [2]string{"Position", Resolve("position", ctx)})
	}
	node, h := infoTable(rows, width)
	return []Node{node}, h
}

func buildTermInfo(ctx *models.RenderContext, b models.Block, width float64, _ models.Theme) ([]Node, float64) {
	rows := [][2]string{
		{"Term", Resolve("term", ctx)},
		{"Academic Year", Resolve("academic_year", ctx)},
		{"Attendance", fmt.Sprintf("%s of %s days", Resolve("attendance.present", ctx), Resolve("attendance.school_days", ctx))},
	}
	if ctx.NextTermDate != "" {
		rows = append(rows, [2]string{"Next Term Begins", ctx.NextTermDate})
	}
	node, h := infoTable(rows, width)
	return []Node{node}, h
}

// buildGradesTable renders the central grades grid. It is shared by
// the block and canvas composers.
func buildGradesTable(tpl *models.ReportTemplate, cfg models.BlockConfig, styles models.Styles, ctx *models.RenderContext, width float64, theme models.Theme) (Node, float64) {
	gc := gradingFrom(tpl, cfg)

	headerBg := cfg.HeaderBg
	if headerBg == "" {
		headerBg = styleString(styles, "headerBg", theme.HeaderBg)
	}
	headerColor := cfg.HeaderTextColor
	if headerColor == "" {
		headerColor = styleString(styles, "headerText", theme.HeaderText)
	}

	showAchievement := cfg.ShowAchievement && len(gc.standards) > 0

	table := &Table{
		HeaderBg:    headerBg,
		HeaderColor: headerColor,
		FontSize:    baseFontSize - 1,
		RowHeight:   tableRowHeight,
	}
	if showAchievement {
		table.Columns = []Column{
			{Title: "Subject", Width: 0.40},
			{Title: "Score", Width: 0.15, Align: "center"},
			{Title: "Grade", Width: 0.15, Align: "center"},
			{Title: "Achievement", Width: 0.30, Align: "center"},
		}
	} else {
		table.Columns = []Column{
			{Title: "Subject", Width: 0.55},
			{Title: "Score", Width: 0.20, Align: "center"},
			{Title: "Grade", Width: 0.25, Align: "center"},
		}
	}

	const coreFill = "#f3f4f6"
	for _, sub := range gc.subjects {
		fill := ""
		if sub.IsCore {
			fill = coreFill
		}
		row := []Cell{{Text: sub.Name, Bold: sub.IsCore, Fill: fill}}

		g, ok := ctx.GradeFor(sub.Name)
		var score *float64
		if ok {
			score = DisplayScore(g, gc.useWeighted, gc.weights)
		}
		scoreText := noScore
		if score != nil && !math.IsNaN(*score) {
			scoreText = formatScore(*score)
		}
		grade := GradeFor(score, gc.scale)
		row = append(row,
			Cell{Text: scoreText, Align: "center", Fill: fill},
			Cell{Text: grade.Grade, Align: "center", Fill: fill},
		)
		if showAchievement {
			achScore := score
			if gc.useWeighted && ok {
				achScore = ExamScore(g.Components)
			}
			ach := AchievementFor(achScore, gc.standards)
			row = append(row, Cell{Text: ach.Band, Align: "center", Fill: fill})
		}
		table.Rows = append(table.Rows, row)
	}

	if avg := CoreAverage(gc.subjects, ctx.Grades, gc.useWeighted); avg != nil {
		grade := GradeFor(avg, gc.scale)
		row := []Cell{
			{Text: "Core Average", Bold: true},
			{Text: formatScore(*avg), Bold: true, Align: "center"},
			{Text: grade.Grade, Bold: true, Align: "center"},
		}
		if showAchievement {
			row = append(row, Cell{Text: "", Align: "center"})
		}
		table.Rows = append(table.Rows, row)
	}

	h := float64(len(table.Rows)+1) * table.RowHeight
	return Node{Kind: NodeTable, Table: table, Width: width, Height: h}, h
}

func keyTable(columns []Column, rows [][]Cell, width float64, theme models.Theme) (Node, float64) {
	table := &Table{
		Columns:     columns,
		Rows:        rows,
		HeaderBg:    theme.HeaderBg,
		HeaderColor: theme.HeaderText,
		FontSize:    baseFontSize - 2,
		RowHeight:   tableRowHeight - 4,
	}
	h := float64(len(rows)+1) * table.RowHeight
	return Node{Kind: NodeTable, Table: table, Width: width, Height: h}, h
}

func buildGradeKey(tpl *models.ReportTemplate, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	gc := gradingFrom(tpl, b.Config)
	cols := []Column{
		{Title: "Range", Width: 0.25, Align: "center"},
		{Title: "Grade", Width: 0.20, Align: "center"},
		{Title: "Description", Width: 0.55},
	}
	var rows [][]Cell
	for _, e := range gc.scale {
		rows = append(rows, []Cell{
			{Text: formatRange(e.Min, e.Max), Align: "center"},
			{Text: e.Grade, Align: "center", Bold: true},
			{Text: e.Description},
		})
	}
	node, h := keyTable(cols, rows, width, theme)
	return []Node{node}, h
}

func buildWeightKey(tpl *models.ReportTemplate, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	gc := gradingFrom(tpl, b.Config)
	cols := []Column{
		{Title: "Assessment", Width: 0.6},
		{Title: "Weight", Width: 0.4, Align: "center"},
	}
	entries := []struct {
		label  string
		weight float64
	}{
		{"Homework", gc.weights.Homework},
		{"Group Work", gc.weights.GroupWork},
		{"Project", gc.weights.Project},
		{"Quiz", gc.weights.Quiz},
		{"Mid-Term Exam", gc.weights.MidTerm},
		{"End of Term Exam", gc.weights.EndOfTerm},
	}
	var rows [][]Cell
	for _, e := range entries {
		rows = append(rows, []Cell{
			{Text: e.label},
			{Text: formatScore(e.weight) + "%", Align: "center"},
		})
	}
	node, h := keyTable(cols, rows, width, theme)
	return []Node{node}, h
}

func buildAchievementStandards(tpl *models.ReportTemplate, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	gc := gradingFrom(tpl, b.Config)
	cols := []Column{
		{Title: "Range", Width: 0.25, Align: "center"},
		{Title: "Band", Width: 0.25, Align: "center"},
		{Title: "Description", Width: 0.50},
	}
	var rows [][]Cell
	for _, s := range gc.standards {
		rows = append(rows, []Cell{
			{Text: formatRange(s.Min, s.Max), Align: "center"},
			{Text: s.Band, Align: "center", Bold: true},
			{Text: s.Description},
		})
	}
	node, h := keyTable(cols, rows, width, theme)
	return []Node{node}, h
}

// buildSocialSkills renders one table per category with a column per
// rating vocabulary entry. The cell whose column matches the student's
// recorded rating exactly is checked; unrated skills check nothing.
func buildSocialSkills(tpl *models.ReportTemplate, cfg models.BlockConfig, ctx *models.RenderContext, width float64, theme models.Theme) ([]Node, float64) {
	categories := cfg.Categories
	if len(categories) == 0 {
		categories = tpl.SocialSkillCategories
	}
	ratings := cfg.Ratings
	if len(ratings) == 0 {
		ratings = tpl.SkillRatings
	}

	var nodes []Node
	y := 0.0
	for _, cat := range categories {
		heading := textNode(cat.CategoryName, baseFontSize, width, bold)
		heading.Y = y
		heading.Color = theme.PrimaryColor
		nodes = append(nodes, heading)
		y += heading.Height + 2

		cols := []Column{{Title: "Skill", Width: 0.4}}
		ratingWidth := 0.6 / float64(max(len(ratings), 1))
		for _, r := range ratings {
			cols = append(cols, Column{Title: r, Width: ratingWidth, Align: "center"})
		}
		var rows [][]Cell
		for _, skill := range cat.Skills {
			row := []Cell{{Text: skill}}
			recorded := ctx.SocialSkills[skill]
			for _, r := range ratings {
				row = append(row, Cell{Checked: recorded != "" && recorded == r, Align: "center"})
			}
			rows = append(rows, row)
		}
		table := &Table{
			Columns:     cols,
			Rows:        rows,
			HeaderBg:    theme.HeaderBg,
			HeaderColor: theme.HeaderText,
			FontSize:    baseFontSize - 2,
			RowHeight:   tableRowHeight - 4,
		}
		th := float64(len(rows)+1) * table.RowHeight
		nodes = append(nodes, Node{Kind: NodeTable, Table: table, Y: y, Width: width, Height: th})
		y += th + 8
	}
	return nodes, y
}

func buildComments(ctx *models.RenderContext, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	title := b.Config.Title
	if title == "" {
		title = "Comments"
	}
	var nodes []Node
	y := 0.0

	heading := textNode(title, baseFontSize+1, width, bold)
	heading.Color = theme.PrimaryColor
	nodes = append(nodes, heading)
	y += heading.Height + 4

	for _, c := range []struct{ label, text string }{
		{"Class Teacher", ctx.TeacherComment},
		{"Principal", ctx.PrincipalComment},
	} {
		label := textNode(c.label+":", baseFontSize-1, width, bold)
		label.Y = y
		nodes = append(nodes, label)
		y += label.Height

		text := c.text
		if text == "" {
			text = noScore
		}
		body := textNode(text, baseFontSize-1, width, italic)
		body.Y = y
		body.Height = estimateTextHeight(text, baseFontSize-1, width)
		nodes = append(nodes, body)
		y += body.Height + 6
	}
	return nodes, y
}

func buildSignatures(ctx *models.RenderContext, b models.Block, width float64, _ models.Theme) ([]Node, float64) {
	slots := b.Config.Signatures
	if len(slots) == 0 {
		slots = []models.SignatureSlot{
			{Role: models.SignatureRoleTeacher, Label: "Class Teacher"},
			{Role: models.SignatureRolePrincipal, Label: "Principal"},
		}
	}
	const slotHeight = 64.0
	slotWidth := width / float64(len(slots))
	nodes := make([]Node, 0, len(slots))
	for i, slot := range slots {
		nodes = append(nodes, Node{
			Kind:   NodeSignature,
			Label:  slot.Label,
			Src:    ctx.Signatures[slot.Role],
			X:      float64(i) * slotWidth,
			Width:  slotWidth,
			Height: slotHeight,
		})
	}
	return nodes, slotHeight
}

func buildFooter(tpl *models.ReportTemplate, b models.Block, width float64, theme models.Theme) ([]Node, float64) {
	text := b.Config.Content
	if text == "" {
		text = tpl.SchoolMotto
	}
	n := textNode(text, baseFontSize-3, width, centered, italic)
	n.Color = styleString(b.Styles, "color", theme.BodyText)
	return []Node{n}, n.Height
}

func buildCustomText(b models.Block, ctx *models.RenderContext, width float64, theme models.Theme) ([]Node, float64) {
	size := styleFloat(b.Styles, "fontSize", baseFontSize)
	n := textNode(b.Config.Content, size, width)
	n.Align = styleString(b.Styles, "align", "left")
	n.Color = styleString(b.Styles, "color", theme.BodyText)
	n.Bold = styleString(b.Styles, "fontWeight", "") == "bold"
	n.Height = estimateTextHeight(b.Config.Content, size, width)
	return []Node{n}, n.Height
}

func buildCustomImage(b models.Block, width float64) ([]Node, float64) {
	h := b.Config.Height
	if h <= 0 {
		h = 120
	}
	n := Node{Kind: NodeImage, Src: b.Config.Src, Width: width, Height: h}
	return []Node{n}, h
}
