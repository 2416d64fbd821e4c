package card

import (
	"bytes"
	"image"
	"image/color"
	"image/png"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/matzehuels/cardforge/pkg/errors"
)

// RenderRequest carries everything needed to render one card.
type RenderRequest struct {
	// Template is the base image the text layer is composited onto.
	Template image.Image

	Title         string
	Pronunciation string
	Definition    string

	// Styles is the explicit style table for this render.
	Styles Styles

	// Faces resolves font faces per field and size.
	Faces FaceSource
}

// Layout records where the three blocks ended up. It is returned alongside
// the rendered image so callers can inspect sizes and detect overflow.
type Layout struct {
	Title         FieldLayout
	Pronunciation FieldLayout
	Definition    FieldLayout

	// TotalHeight is the group height: three block heights plus two gaps.
	TotalHeight float64

	// StartY is the top of the title block. Negative when the group is
	// taller than the canvas.
	StartY float64

	CanvasWidth  int
	CanvasHeight int
}

// Overflow reports whether the block group is taller than the canvas.
// Rendering proceeds regardless; blocks past the canvas edge are simply
// drawn outside the visible area.
func (l Layout) Overflow() bool {
	return l.TotalHeight > float64(l.CanvasHeight)
}

// Compose lays out and renders one card. The result has the template's
// dimensions, with the text layer alpha-composited on top. The three blocks
// are stacked title / pronunciation / definition and vertically centered as
// a group; horizontal anchors come from the styles.
//
// Compose is stateless and deterministic: identical requests produce
// identical pixels.
func Compose(req RenderRequest) (*image.RGBA, Layout, error) {
	if req.Template == nil {
		return nil, Layout{}, errors.New(errors.ErrCodeInvalidTemplate, "template image is nil")
	}
	if req.Faces == nil {
		return nil, Layout{}, errors.New(errors.ErrCodeInvalidInput, "face source is nil")
	}

	bounds := req.Template.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil, Layout{}, errors.New(errors.ErrCodeInvalidTemplate, "template has empty bounds")
	}

	lt := LayoutField(req.Title, req.Styles.Title, TitleRetry, req.Faces)
	lp := LayoutField(req.Pronunciation, req.Styles.Pronunciation, NoRetry, req.Faces)
	ld := LayoutField(req.Definition, req.Styles.Definition, DefinitionRetry, req.Faces)

	spacing := req.Styles.SpacingPx
	layout := Layout{
		Title:         lt,
		Pronunciation: lp,
		Definition:    ld,
		TotalHeight:   lt.Height + spacing + lp.Height + spacing + ld.Height,
		CanvasWidth:   w,
		CanvasHeight:  h,
	}
	// Center the group; no clamping when it does not fit.
	layout.StartY = (float64(h) - layout.TotalHeight) / 2

	layer := gg.NewContext(w, h)
	layer.SetColor(color.Black)

	y := layout.StartY
	drawBlock(layer, lt, req.Styles.Title, req.Faces, y)
	y += lt.Height + spacing
	drawBlock(layer, lp, req.Styles.Pronunciation, req.Faces, y)
	y += lp.Height + spacing
	drawBlock(layer, ld, req.Styles.Definition, req.Faces, y)

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(out, out.Bounds(), req.Template, bounds.Min, xdraw.Src)
	xdraw.Draw(out, out.Bounds(), layer.Image(), image.Point{}, xdraw.Over)

	return out, layout, nil
}

// drawBlock draws one field's wrapped lines top-down from top, left-anchored
// at the style's AnchorX. Each line advances by the nominal line height.
func drawBlock(dc *gg.Context, fl FieldLayout, style StyleSpec, faces FaceSource, top float64) {
	if len(fl.Lines) == 0 {
		return
	}

	face := faces.Face(style.Family, style.Weight, fl.FontSize)
	dc.SetFontFace(face)

	// DrawString positions the baseline; offset by the ascent so the block
	// top lands at the computed Y.
	ascent := float64(face.Metrics().Ascent) / 64
	lineHeight := float64(fl.FontSize) * style.LineSpacing

	y := top
	for _, line := range fl.Lines {
		dc.DrawString(line, style.AnchorX, y+ascent)
		y += lineHeight
	}
}

// EncodePNG encodes a rendered card as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}
