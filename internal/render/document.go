package render

import (
	"github.com/jtech-innovations/report-card-api/internal/models"
)

// NodeKind identifies the concrete shape of a document node.
type NodeKind string

const (
	NodeText      NodeKind = "text"
	NodeImage     NodeKind = "image"
	NodeTable     NodeKind = "table"
	NodeLine      NodeKind = "line"
	NodeRect      NodeKind = "rect"
	NodeSpacer    NodeKind = "spacer"
	NodeSignature NodeKind = "signature"
)

// Node is one drawable item inside a region. Only the fields relevant
// to its kind are populated; consumers dispatch on Kind.
type Node struct {
	Kind NodeKind `json:"kind"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Bold     bool    `json:"bold,omitempty"`
	Italic   bool    `json:"italic,omitempty"`
	Align    string  `json:"align,omitempty"`
	Color    string  `json:"color,omitempty"`
	Fill     string  `json:"fill,omitempty"`

	// image and signature nodes
	Src   string `json:"src,omitempty"`
	Label string `json:"label,omitempty"`

	Table *Table `json:"table,omitempty"`

	// Geometry relative to the owning region.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Column describes one table column. Width is a fraction of the table
// width; fractions across a table sum to 1.
type Column struct {
	Title string  `json:"title"`
	Width float64 `json:"width"`
	Align string  `json:"align,omitempty"`
}

// Cell is one table body cell.
type Cell struct {
	Text    string `json:"text"`
	Bold    bool   `json:"bold,omitempty"`
	Fill    string `json:"fill,omitempty"`
	Align   string `json:"align,omitempty"`
	Checked bool   `json:"checked,omitempty"`
}

// Table is a laid-out grid of cells with a styled header row.
type Table struct {
	Columns     []Column `json:"columns"`
	Rows        [][]Cell `json:"rows"`
	HeaderBg    string   `json:"header_bg,omitempty"`
	HeaderColor string   `json:"header_color,omitempty"`
	FontSize    float64  `json:"font_size,omitempty"`
	RowHeight   float64  `json:"row_height,omitempty"`
}

// Region is one positioned area of the page produced from a single
// block or canvas element. Hidden regions are carried in the model but
// skipped by exporters.
type Region struct {
	SourceID string        `json:"source_id"`
	Kind     string        `json:"kind"`
	Hidden   bool          `json:"hidden,omitempty"`
	X        float64       `json:"x"`
	Y        float64       `json:"y"`
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Styles   models.Styles `json:"styles,omitempty"`
	Nodes    []Node        `json:"nodes"`
}

// Document is the fully composed report card for one student. All
// geometry is in pixels at 96 DPI in the paper's reference space.
// ContentHeight may exceed the page height; exporters tile overflow
// across additional pages.
type Document struct {
	SchoolCode    string           `json:"school_code"`
	StudentID     string           `json:"student_id"`
	StudentName   string           `json:"student_name"`
	PaperSize     models.PaperSize `json:"paper_size"`
	PageWidth     float64          `json:"page_width"`
	PageHeight    float64          `json:"page_height"`
	ContentHeight float64          `json:"content_height"`
	BackgroundURL string           `json:"background_url,omitempty"`
	Theme         models.Theme     `json:"theme"`
	Regions       []Region         `json:"regions"`
}

// Scale maps the document into a new coordinate space by a single
// linear factor per axis. Every x, y, width and height scales by
// exactly z; text sizes scale with it so proportions hold.
func (d *Document) Scale(z float64) {
	if z == 1 || z <= 0 {
		return
	}
	d.PageWidth *= z
	d.PageHeight *= z
	d.ContentHeight *= z
	for i := range d.Regions {
		r := &d.Regions[i]
		r.X *= z
		r.Y *= z
		r.Width *= z
		r.Height *= z
		for j := range r.Nodes {
			n := &r.Nodes[j]
			n.X *= z
			n.Y *= z
			n.Width *= z
			n.Height *= z
			n.FontSize *= z
			if n.Table != nil {
				n.Table.FontSize *= z
				n.Table.RowHeight *= z
			}
		}
	}
}
