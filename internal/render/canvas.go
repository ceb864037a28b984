package render

import (
	"fmt"

	"github.com/jtech-innovations/report-card-api/internal/models"
)

// CanvasComposer lays out canvas-mode templates. Elements carry their
// own absolute geometry in the paper's reference space, so composition
// is a per-element translation into regions rather than a flow.
type CanvasComposer struct{}

// Compose implements Composer.
func (cc *CanvasComposer) Compose(tpl *models.ReportTemplate, ctx *models.RenderContext) (*Document, error) {
	doc := newDocument(tpl, ctx)
	for _, el := range tpl.CanvasElements {
		region, err := cc.composeElement(tpl, el, ctx, doc.Theme)
		if err != nil {
			return nil, err
		}
		doc.Regions = append(doc.Regions, region)
		if bottom := el.Y + el.Height; bottom+pageMargin > doc.ContentHeight {
			doc.ContentHeight = bottom + pageMargin
		}
	}
	return doc, nil
}

func (cc *CanvasComposer) composeElement(tpl *models.ReportTemplate, el models.CanvasElement, ctx *models.RenderContext, theme models.Theme) (Region, error) {
	region := Region{
		SourceID: el.ID,
		Kind:     string(el.Type),
		X:        el.X,
		Y:        el.Y,
		Width:    el.Width,
		Height:   el.Height,
		Styles:   el.Styles,
	}

	switch el.Type {
	case models.ElementText:
		size := styleFloat(el.Styles, "fontSize", baseFontSize)
		n := textNode(el.Config.Content, size, el.Width)
		n.Align = styleString(el.Styles, "align", "left")
		n.Color = styleString(el.Styles, "color", theme.BodyText)
		n.Bold = styleString(el.Styles, "fontWeight", "") == "bold"
		n.Height = el.Height
		region.Nodes = []Node{n}

	case models.ElementDataField:
		value := Resolve(el.Config.Field, ctx)
		text := value
		if el.Config.ShowLabel {
			label := el.Config.Label
			if label == "" {
				label = FieldLabel(el.Config.Field)
			}
			text = label + ": " + value
		}
		size := styleFloat(el.Styles, "fontSize", baseFontSize)
		n := textNode(text, size, el.Width)
		n.Align = styleString(el.Styles, "align", "left")
		n.Color = styleString(el.Styles, "color", theme.BodyText)
		n.Height = el.Height
		region.Nodes = []Node{n}

	case models.ElementImage:
		region.Nodes = []Node{{Kind: NodeImage, Src: el.Config.Src, Width: el.Width, Height: el.Height}}

	case models.ElementLine:
		n := Node{Kind: NodeLine, Width: el.Width, Height: el.Height}
		n.Color = styleString(el.Styles, "color", theme.PrimaryColor)
		region.Nodes = []Node{n}

	case models.ElementRectangle:
		n := Node{Kind: NodeRect, Width: el.Width, Height: el.Height}
		n.Color = styleString(el.Styles, "borderColor", theme.PrimaryColor)
		n.Fill = styleString(el.Styles, "fill", "")
		region.Nodes = []Node{n}

	case models.ElementSignature:
		slot := models.SignatureSlot{Role: models.SignatureRoleTeacher, Label: "Class Teacher"}
		if len(el.Config.Signatures) > 0 {
			slot = el.Config.Signatures[0]
		}
		region.Nodes = []Node{{
			Kind:   NodeSignature,
			Label:  slot.Label,
			Src:    ctx.Signatures[slot.Role],
			Width:  el.Width,
			Height: el.Height,
		}}

	case models.ElementGradesTable:
		node, _ := buildGradesTable(tpl, el.Config, el.Styles, ctx, el.Width, theme)
		region.Nodes = []Node{node}

	case models.ElementSocialSkills:
		nodes, _ := buildSocialSkills(tpl, el.Config, ctx, el.Width, theme)
		region.Nodes = nodes

	default:
		return region, fmt.Errorf("unknown canvas element type %q", el.Type)
	}
	return region, nil
}
