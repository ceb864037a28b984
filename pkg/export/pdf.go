package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/jtech-innovations/report-card-api/internal/render"
)

// Document geometry is pixels at 96 DPI; PDF points are 72 per inch.
const pxToPt = 72.0 / 96.0

// PDFExporter writes composed report card documents into a single PDF.
// Each document starts on a new page; documents taller than one page
// tile across additional pages.
type PDFExporter struct {
	// baseDir resolves stored asset references (logos, signatures,
	// backgrounds) to files on disk. Unresolvable images are drawn as
	// labelled placeholders rather than failing the export.
	baseDir string
}

// NewPDFExporter constructs a PDF exporter rooted at baseDir.
func NewPDFExporter(baseDir string) *PDFExporter {
	return &PDFExporter{baseDir: baseDir}
}

// Render produces one PDF containing every document in order.
func (e *PDFExporter) Render(docs []*render.Document) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("pdf requires at least one document")
	}

	first := docs[0]
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: first.PageWidth * pxToPt, Ht: first.PageHeight * pxToPt},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	for _, doc := range docs {
		e.renderDocument(pdf, doc)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) renderDocument(pdf *gofpdf.Fpdf, doc *render.Document) {
	pageH := doc.PageHeight
	for _, offset := range PageOffsets(doc.ContentHeight, pageH) {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: doc.PageWidth * pxToPt, Ht: pageH * pxToPt})
		e.drawBackground(pdf, doc)
		for _, region := range doc.Regions {
			if region.Hidden {
				continue
			}
			// Skip regions entirely outside this page's slice.
			if region.Y+region.Height <= offset || region.Y >= offset+pageH {
				continue
			}
			e.drawRegion(pdf, doc, region, offset)
		}
	}
}

func (e *PDFExporter) drawBackground(pdf *gofpdf.Fpdf, doc *render.Document) {
	if doc.BackgroundURL == "" {
		return
	}
	path := e.resolveAsset(doc.BackgroundURL)
	if path == "" {
		return
	}
	pdf.ImageOptions(path, 0, 0, doc.PageWidth*pxToPt, doc.PageHeight*pxToPt, false,
		gofpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (e *PDFExporter) drawRegion(pdf *gofpdf.Fpdf, doc *render.Document, region render.Region, pageOffset float64) {
	for _, node := range region.Nodes {
		x := (region.X + node.X) * pxToPt
		y := (region.Y + node.Y - pageOffset) * pxToPt
		w := node.Width * pxToPt
		h := node.Height * pxToPt
		if w <= 0 {
			w = region.Width * pxToPt
		}

		switch node.Kind {
		case render.NodeText:
			e.drawText(pdf, doc, node, x, y, w)
		case render.NodeTable:
			e.drawTable(pdf, doc, node, x, y, w)
		case render.NodeImage:
			e.drawImage(pdf, node.Src, node.Label, x, y, w, h)
		case render.NodeLine:
			setDrawColor(pdf, node.Color)
			pdf.SetLineWidth(maxFloat(h, 0.75))
			pdf.Line(x, y, x+w, y)
		case render.NodeRect:
			setDrawColor(pdf, node.Color)
			style := "D"
			if node.Fill != "" {
				setFillColor(pdf, node.Fill)
				style = "FD"
			}
			pdf.Rect(x, y, w, h, style)
		case render.NodeSignature:
			e.drawSignature(pdf, doc, node, x, y, w, h)
		case render.NodeSpacer:
			// nothing to draw
		}
	}
}

func (e *PDFExporter) drawText(pdf *gofpdf.Fpdf, doc *render.Document, node render.Node, x, y, w float64) {
	style := ""
	if node.Bold {
		style += "B"
	}
	if node.Italic {
		style += "I"
	}
	size := node.FontSize * pxToPt
	if size <= 0 {
		size = 9
	}
	pdf.SetFont(fontFamily(doc.Theme.FontFamily), style, size)
	setTextColor(pdf, firstNonEmpty(node.Color, doc.Theme.BodyText))

	align := "L"
	switch node.Align {
	case "center":
		align = "C"
	case "right":
		align = "R"
	}
	pdf.SetXY(x, y)
	pdf.MultiCell(w, size*1.4, node.Text, "", align, false)
}

func (e *PDFExporter) drawTable(pdf *gofpdf.Fpdf, doc *render.Document, node render.Node, x, y, w float64) {
	table := node.Table
	if table == nil {
		return
	}
	rowH := table.RowHeight * pxToPt
	if rowH <= 0 {
		rowH = 16
	}
	size := table.FontSize * pxToPt
	if size <= 0 {
		size = 8
	}
	family := fontFamily(doc.Theme.FontFamily)

	hasHeader := false
	for _, col := range table.Columns {
		if col.Title != "" {
			hasHeader = true
			break
		}
	}
	if hasHeader {
		pdf.SetFont(family, "B", size)
		setFillColor(pdf, firstNonEmpty(table.HeaderBg, "#1f2937"))
		setTextColor(pdf, firstNonEmpty(table.HeaderColor, "#ffffff"))
		pdf.SetXY(x, y)
		for _, col := range table.Columns {
			pdf.CellFormat(w*col.Width, rowH, col.Title, "1", 0, cellAlign(col.Align), true, 0, "")
		}
		y += rowH
	}

	setTextColor(pdf, doc.Theme.BodyText)
	for _, row := range table.Rows {
		pdf.SetXY(x, y)
		for i, cell := range row {
			if i >= len(table.Columns) {
				break
			}
			style := ""
			if cell.Bold {
				style = "B"
			}
			pdf.SetFont(family, style, size)
			fill := cell.Fill != ""
			if fill {
				setFillColor(pdf, cell.Fill)
			}
			text := cell.Text
			if cell.Checked {
				text = "X"
			}
			pdf.CellFormat(w*table.Columns[i].Width, rowH, text, "1", 0, cellAlign(cell.Align), fill, 0, "")
		}
		y += rowH
	}
}

func (e *PDFExporter) drawImage(pdf *gofpdf.Fpdf, src, alt string, x, y, w, h float64) {
	path := e.resolveAsset(src)
	if path == "" {
		pdf.SetDrawColor(200, 200, 200)
		pdf.Rect(x, y, w, h, "D")
		if alt != "" {
			pdf.SetFont("Helvetica", "I", 7)
			pdf.SetTextColor(150, 150, 150)
			pdf.SetXY(x, y+h/2)
			pdf.CellFormat(w, 8, alt, "", 0, "C", false, 0, "")
		}
		return
	}
	pdf.ImageOptions(path, x, y, w, h, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
}

func (e *PDFExporter) drawSignature(pdf *gofpdf.Fpdf, doc *render.Document, node render.Node, x, y, w, h float64) {
	lineY := y + h - 18
	if path := e.resolveAsset(node.Src); path != "" {
		pdf.ImageOptions(path, x+w*0.15, y, w*0.7, h-22, false, gofpdf.ImageOptions{ReadDpi: true}, 0, "")
	}
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.75)
	pdf.Line(x+w*0.1, lineY, x+w*0.9, lineY)

	pdf.SetFont(fontFamily(doc.Theme.FontFamily), "", 8)
	setTextColor(pdf, doc.Theme.BodyText)
	pdf.SetXY(x, lineY+3)
	pdf.CellFormat(w, 10, node.Label, "", 0, "C", false, 0, "")
}

// resolveAsset turns a stored reference into a readable file path.
// Remote URLs and missing files resolve to empty.
func (e *PDFExporter) resolveAsset(src string) string {
	if src == "" || strings.Contains(src, "://") {
		return ""
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.baseDir, filepath.Clean("/"+src))
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func fontFamily(family string) string {
	switch strings.ToLower(family) {
	case "times", "serif":
		return "Times"
	case "courier", "mono", "monospace":
		return "Courier"
	default:
		return "Helvetica"
	}
}

func cellAlign(align string) string {
	switch align {
	case "center":
		return "C"
	case "right":
		return "R"
	default:
		return "L"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func setTextColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := parseHex(hex)
	pdf.SetTextColor(r, g, b)
}

func setFillColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := parseHex(hex)
	pdf.SetFillColor(r, g, b)
}

func setDrawColor(pdf *gofpdf.Fpdf, hex string) {
	r, g, b := parseHex(hex)
	pdf.SetDrawColor(r, g, b)
}

// parseHex decodes #rgb and #rrggbb colors, defaulting to black.
func parseHex(hex string) (int, int, int) {
	h := strings.TrimPrefix(hex, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return 0, 0, 0
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return 0, 0, 0
	}
	return int(v >> 16), int((v >> 8) & 0xff), int(v & 0xff)
}
