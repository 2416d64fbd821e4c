package card

import (
	"strings"

	"golang.org/x/image/font"

	"github.com/matzehuels/cardforge/pkg/fonts"
)

// FaceSource provides font faces at requested sizes. *fonts.Source satisfies
// it; tests substitute fixed-metric fakes for deterministic measurements.
type FaceSource interface {
	Face(family fonts.Family, weight fonts.Weight, size int) font.Face
}

// Auto-shrink parameters for FitFontSize.
const (
	// MinFontSize is the floor below which no further shrinking happens.
	MinFontSize = 10

	// shrinkFactor is applied per step, truncated to an integer size.
	shrinkFactor = 0.9
)

// MeasureWidth returns the rendered pixel width of s at the given face.
func MeasureWidth(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// FitFontSize resolves the font size for text under style: starting at the
// style's ceiling, it shrinks by 10% (integer truncation) while the widest
// single word still measures wider than the style's pixel budget, stopping
// at the MinFontSize floor. This runs before wrapping so that no unbreakable
// token can force horizontal overflow.
//
// Empty text resolves to the ceiling unchanged.
func FitFontSize(text string, style StyleSpec, faces FaceSource) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return style.MaxFontSize
	}

	size := style.MaxFontSize
	for size > MinFontSize {
		face := faces.Face(style.Family, style.Weight, size)
		if widestWord(face, words) <= float64(style.MaxWidthPx) {
			break
		}
		size = int(float64(size) * shrinkFactor)
	}
	return size
}

func widestWord(face font.Face, words []string) float64 {
	widest := 0.0
	for _, w := range words {
		if width := MeasureWidth(face, w); width > widest {
			widest = width
		}
	}
	return widest
}

// Wrap splits text into lines that each measure at most maxWidth pixels at
// the given face, using greedy line fill in input word order. A word too
// wide to fit on its own still gets a line of its own (FitFontSize should
// have prevented that case). Empty text yields nil.
func Wrap(text string, face font.Face, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	var current []string
	for _, word := range words {
		candidate := strings.Join(append(current, word), " ")
		if MeasureWidth(face, candidate) <= maxWidth {
			current = append(current, word)
			continue
		}
		if len(current) > 0 {
			lines = append(lines, strings.Join(current, " "))
		}
		current = []string{word}
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

// BlockHeight returns the pixel height of a wrapped block. The nominal font
// size (not per-glyph ascent/descent) is the line-height unit; this is the
// system's line-height model.
func BlockHeight(lines []string, fontSize int, lineSpacing float64) float64 {
	return float64(len(lines)) * float64(fontSize) * lineSpacing
}

// FieldLayout is the computed layout of one field: the size actually used,
// the wrapped lines, and the resulting block height. It is derived fresh per
// render and never cached across rows.
type FieldLayout struct {
	FontSize int
	Lines    []string
	Height   float64
}

// LayoutField fits, wraps, and measures one field, applying the field's
// retry policy: if the first attempt wraps to more than policy.MaxLines
// lines, the layout is recomputed once with the ceiling given by policy.Next.
// There is no further retry beyond that single attempt.
func LayoutField(text string, style StyleSpec, policy RetryPolicy, faces FaceSource) FieldLayout {
	fl := layoutOnce(text, style, faces)
	if policy.MaxLines > 0 && len(fl.Lines) > policy.MaxLines {
		style.MaxFontSize = policy.Next(style.MaxFontSize)
		fl = layoutOnce(text, style, faces)
	}
	return fl
}

func layoutOnce(text string, style StyleSpec, faces FaceSource) FieldLayout {
	size := FitFontSize(text, style, faces)
	face := faces.Face(style.Family, style.Weight, size)
	lines := Wrap(text, face, float64(style.MaxWidthPx))
	return FieldLayout{
		FontSize: size,
		Lines:    lines,
		Height:   BlockHeight(lines, size, style.LineSpacing),
	}
}
