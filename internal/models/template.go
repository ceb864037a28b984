package models

import (
	"database/sql/driver"
	"time"
)

// PaperSize enumerates supported report card paper sizes.
type PaperSize string

const (
	PaperLegal  PaperSize = "legal"
	PaperLetter PaperSize = "letter"
	PaperA4     PaperSize = "a4"
)

// Valid returns true when the paper size is a supported value.
func (p PaperSize) Valid() bool {
	switch p {
	case PaperLegal, PaperLetter, PaperA4:
		return true
	default:
		return false
	}
}

// Dimensions returns the page width and height in pixels at 96 DPI.
// Unknown sizes fall back to letter.
func (p PaperSize) Dimensions() (width, height float64) {
	switch p {
	case PaperLegal:
		return 816, 1344
	case PaperA4:
		return 794, 1123
	default:
		return 816, 1056
	}
}

// DesignMode selects which layout model a template uses.
type DesignMode string

const (
	DesignModeBlocks DesignMode = "blocks"
	DesignModeCanvas DesignMode = "canvas"
)

// BlockType enumerates the closed set of block kinds in block mode.
type BlockType string

const (
	BlockSchoolHeader         BlockType = "school-header"
	BlockStudentInfo          BlockType = "student-info"
	BlockTermInfo             BlockType = "term-info"
	BlockGradesTable          BlockType = "grades-table"
	BlockGradeKey             BlockType = "grade-key"
	BlockWeightKey            BlockType = "weight-key"
	BlockAchievementStandards BlockType = "achievement-standards"
	BlockSocialSkills         BlockType = "social-skills"
	BlockComments             BlockType = "comments"
	BlockSignatures           BlockType = "signatures"
	BlockFooter               BlockType = "footer"
	BlockCustomText           BlockType = "custom-text"
	BlockCustomImage          BlockType = "custom-image"
	BlockSpacer               BlockType = "spacer"
)

// ElementType enumerates the closed set of canvas element kinds.
type ElementType string

const (
	ElementText         ElementType = "text"
	ElementDataField    ElementType = "data-field"
	ElementImage        ElementType = "image"
	ElementLine         ElementType = "line"
	ElementRectangle    ElementType = "rectangle"
	ElementSignature    ElementType = "signature"
	ElementGradesTable  ElementType = "grades-table"
	ElementSocialSkills ElementType = "social-skills"
)

// Subject is a graded subject with its core flag.
type Subject struct {
	Name   string `json:"name"`
	IsCore bool   `json:"is_core"`
}

// GradeScaleEntry maps a numeric score range to a letter grade.
type GradeScaleEntry struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Grade       string  `json:"grade"`
	Description string  `json:"description"`
}

// AchievementStandard maps a score range to an achievement band.
type AchievementStandard struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Band        string  `json:"band"`
	Description string  `json:"description"`
}

// AssessmentWeights holds the percentage weight of each of the six
// fixed assessment components. Weights are expressed out of 100.
type AssessmentWeights struct {
	Homework  float64 `json:"homework"`
	GroupWork float64 `json:"groupWork"`
	Project   float64 `json:"project"`
	Quiz      float64 `json:"quiz"`
	MidTerm   float64 `json:"midTerm"`
	EndOfTerm float64 `json:"endOfTerm"`
}

// Sum returns the total of all component weights.
func (w AssessmentWeights) Sum() float64 {
	return w.Homework + w.GroupWork + w.Project + w.Quiz + w.MidTerm + w.EndOfTerm
}

// Value marshals the weights to JSON for persistence.
func (w AssessmentWeights) Value() (driver.Value, error) {
	return marshalJSON(w, "assessment weights")
}

// Scan unmarshals JSON payloads into the weights struct.
func (w *AssessmentWeights) Scan(value interface{}) error {
	return scanJSON(value, w, "AssessmentWeights")
}

// SocialSkillCategory groups related social skills under one heading.
type SocialSkillCategory struct {
	CategoryName string   `json:"category_name"`
	Skills       []string `json:"skills"`
}

// Theme holds template-wide styling defaults applied when a block or
// element carries no style override of its own.
type Theme struct {
	Preset       string `json:"preset"`
	PrimaryColor string `json:"primaryColor"`
	AccentColor  string `json:"accentColor"`
	HeaderBg     string `json:"headerBg"`
	HeaderText   string `json:"headerText"`
	BodyBg       string `json:"bodyBg"`
	BodyText     string `json:"bodyText"`
	FontFamily   string `json:"fontFamily"`
}

// Value marshals the theme to JSON for persistence.
func (t Theme) Value() (driver.Value, error) {
	return marshalJSON(t, "theme")
}

// Scan unmarshals JSON payloads into the theme struct.
func (t *Theme) Scan(value interface{}) error {
	return scanJSON(value, t, "Theme")
}

// Styles carries free-form per-block visual overrides (colors, font
// sizes, alignment). Keys the renderer does not recognise are ignored.
type Styles map[string]interface{}

// SignatureSlot names one signature line inside a signatures block.
type SignatureSlot struct {
	Role  SignatureRole `json:"role"`
	Label string        `json:"label"`
}

// BlockConfig is the per-type configuration payload of a block or
// canvas element. Only the fields relevant to the block's type are
// populated; renderers dispatch on the type and read their own slice.
type BlockConfig struct {
	// school-header
	SchoolName    string `json:"school_name,omitempty"`
	SchoolMotto   string `json:"school_motto,omitempty"`
	LogoURL       string `json:"logo_url,omitempty"`
	HeaderText    string `json:"header_text,omitempty"`
	SubHeaderText string `json:"sub_header_text,omitempty"`

	// grades-table: block-local grading configuration is canonical.
	Subjects        []Subject          `json:"subjects,omitempty"`
	UseWeighted     bool               `json:"use_weighted,omitempty"`
	Weights         *AssessmentWeights `json:"weights,omitempty"`
	GradeScale      []GradeScaleEntry  `json:"grade_scale,omitempty"`
	ShowAchievement bool               `json:"show_achievement,omitempty"`
	HeaderBg        string             `json:"headerBg,omitempty"`
	HeaderTextColor string             `json:"headerText,omitempty"`

	// achievement-standards
	Standards []AchievementStandard `json:"standards,omitempty"`

	// social-skills
	Categories []SocialSkillCategory `json:"categories,omitempty"`
	Ratings    []string              `json:"ratings,omitempty"`

	// comments, custom-text, footer
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`

	// signatures
	Signatures []SignatureSlot `json:"signatures,omitempty"`

	// custom-image / image elements
	Src string `json:"src,omitempty"`
	Alt string `json:"alt,omitempty"`

	// data-field elements
	Field     string `json:"field,omitempty"`
	ShowLabel bool   `json:"show_label,omitempty"`
	Label     string `json:"label,omitempty"`

	// spacer
	Height float64 `json:"height,omitempty"`
}

// Block is one ordered section of a block-mode template.
type Block struct {
	ID      string      `json:"id"`
	Type    BlockType   `json:"type"`
	Order   int         `json:"order"`
	Visible bool        `json:"visible"`
	Config  BlockConfig `json:"config"`
	Styles  Styles      `json:"styles,omitempty"`
}

// CanvasElement is one absolutely positioned element of a canvas-mode
// template. Coordinates are in the reference space of the paper size.
type CanvasElement struct {
	ID     string      `json:"id"`
	Type   ElementType `json:"type"`
	X      float64     `json:"x"`
	Y      float64     `json:"y"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Config BlockConfig `json:"config"`
	Styles Styles      `json:"styles,omitempty"`
}

// SubjectList is a JSONB column of subjects.
type SubjectList []Subject

func (l SubjectList) Value() (driver.Value, error) { return marshalJSON(l, "subjects") }
func (l *SubjectList) Scan(value interface{}) error {
	return scanJSON(value, l, "SubjectList")
}

// GradeScale is a JSONB column of grade scale entries.
type GradeScale []GradeScaleEntry

func (s GradeScale) Value() (driver.Value, error) { return marshalJSON(s, "grade scale") }
func (s *GradeScale) Scan(value interface{}) error {
	return scanJSON(value, s, "GradeScale")
}

// StandardList is a JSONB column of achievement standards.
type StandardList []AchievementStandard

func (l StandardList) Value() (driver.Value, error) { return marshalJSON(l, "achievement standards") }
func (l *StandardList) Scan(value interface{}) error {
	return scanJSON(value, l, "StandardList")
}

// SkillCategoryList is a JSONB column of social skill categories.
type SkillCategoryList []SocialSkillCategory

func (l SkillCategoryList) Value() (driver.Value, error) {
	return marshalJSON(l, "social skill categories")
}
func (l *SkillCategoryList) Scan(value interface{}) error {
	return scanJSON(value, l, "SkillCategoryList")
}

// StringList is a JSONB column of strings.
type StringList []string

func (l StringList) Value() (driver.Value, error) { return marshalJSON(l, "string list") }
func (l *StringList) Scan(value interface{}) error {
	return scanJSON(value, l, "StringList")
}

// BlockList is a JSONB column of blocks.
type BlockList []Block

func (l BlockList) Value() (driver.Value, error) { return marshalJSON(l, "blocks") }
func (l *BlockList) Scan(value interface{}) error {
	return scanJSON(value, l, "BlockList")
}

// ElementList is a JSONB column of canvas elements.
type ElementList []CanvasElement

func (l ElementList) Value() (driver.Value, error) { return marshalJSON(l, "canvas elements") }
func (l *ElementList) Scan(value interface{}) error {
	return scanJSON(value, l, "ElementList")
}

// ReportTemplate is the full report card template for one school.
// One row per school; saves replace the whole document.
type ReportTemplate struct {
	ID            string    `db:"id" json:"id"`
	SchoolCode    string    `db:"school_code" json:"school_code"`
	SchoolName    string    `db:"school_name" json:"school_name"`
	SchoolMotto   string    `db:"school_motto" json:"school_motto"`
	LogoURL       string    `db:"logo_url" json:"logo_url"`
	HeaderText    string    `db:"header_text" json:"header_text"`
	SubHeaderText string    `db:"sub_header_text" json:"sub_header_text"`
	PaperSize     PaperSize `db:"paper_size" json:"paper_size"`
	BackgroundURL *string   `db:"background_url" json:"background_url,omitempty"`

	UseWeightedGrading    bool              `db:"use_weighted_grading" json:"use_weighted_grading"`
	Subjects              SubjectList       `db:"subjects" json:"subjects"`
	GradeScale            GradeScale        `db:"grade_scale" json:"grade_scale"`
	AssessmentWeights     AssessmentWeights `db:"assessment_weights" json:"assessment_weights"`
	AchievementStandards  StandardList      `db:"achievement_standards" json:"achievement_standards"`
	SocialSkillCategories SkillCategoryList `db:"social_skill_categories" json:"social_skill_categories"`
	SkillRatings          StringList        `db:"skill_ratings" json:"skill_ratings"`

	DesignMode     DesignMode  `db:"design_mode" json:"design_mode"`
	Blocks         BlockList   `db:"blocks" json:"blocks"`
	CanvasElements ElementList `db:"canvas_elements" json:"canvas_elements"`
	Theme          Theme       `db:"theme" json:"theme"`

	UpdatedBy *string   `db:"updated_by" json:"updated_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// GradesTableBlock returns the first grades-table block, visible or
// not, or nil when the template has none.
func (t *ReportTemplate) GradesTableBlock() *Block {
	for i := range t.Blocks {
		if t.Blocks[i].Type == BlockGradesTable {
			return &t.Blocks[i]
		}
	}
	return nil
}
