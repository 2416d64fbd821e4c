// Package fonts loads the two font families used on cards (regular and
// italic) and hands out faces at arbitrary sizes.
//
// Font loading never fails a render. The degradation chain is:
//
//  1. Configured file path
//  2. System font lookup by file name (via go-findfont)
//  3. The built-in bitmap face (basicfont), with default metrics
//
// Named weight variations (Bold, Medium, Italic) follow their own chain:
// a resource that supports named variations gets the name applied; otherwise
// a numeric weight-axis fallback is tried; otherwise the base font is used
// unmodified. Fonts parsed by freetype/truetype expose no variation axes, so
// with plain TTF inputs the base font is what renders — an accepted degraded
// mode, not an error.
package fonts

import (
	"fmt"
	"os"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Family selects one of the two card font files.
type Family string

// Card font families.
const (
	FamilyNormal Family = "normal"
	FamilyItalic Family = "italic"
)

// Weight names a font weight variation.
type Weight string

// Named weight variations used by the card styles.
const (
	WeightRegular Weight = "Regular"
	WeightBold    Weight = "Bold"
	WeightMedium  Weight = "Medium"
	WeightItalic  Weight = "Italic"
)

// weightAxisFallback maps named variations to numeric weight-axis values,
// tried when a variable font rejects the name itself.
var weightAxisFallback = map[Weight]float64{
	WeightBold:   700,
	WeightMedium: 500,
}

// VariableFont is implemented by font resources that support selecting
// named variations or numeric axis values. Resources parsed by
// freetype/truetype never implement it; the interface exists so sources
// backed by variable-font engines can plug into the same selection chain.
type VariableFont interface {
	// SelectNamedVariation applies a named instance (e.g. "Bold").
	SelectNamedVariation(name string) error

	// SelectWeightAxis sets the wght axis to the given value.
	SelectWeightAxis(value float64) error
}

// Config points at the two font files. Paths win over names; names are
// resolved against the system font directories.
type Config struct {
	NormalPath string `toml:"normal_path"`
	ItalicPath string `toml:"italic_path"`
	NormalName string `toml:"normal_name"`
	ItalicName string `toml:"italic_name"`
}

// DefaultConfig returns the stock configuration (the Cabin variable fonts
// shipped alongside the original template).
func DefaultConfig() Config {
	return Config{
		NormalName: "Cabin-Variable.ttf",
		ItalicName: "Cabin-Italic-Variable.ttf",
	}
}

// Source provides font faces for card rendering. It is immutable after
// construction and safe for concurrent use; faces are built per call rather
// than cached, so no shared state is mutated across rows.
type Source struct {
	normal *truetype.Font
	italic *truetype.Font

	degradations []string
}

// NewSource loads the configured font files. It never returns an error:
// a family that cannot be loaded falls back to the built-in bitmap face and
// the reason is recorded in Degradations.
func NewSource(cfg Config) *Source {
	s := &Source{}
	s.normal = s.load(FamilyNormal, cfg.NormalPath, cfg.NormalName)
	s.italic = s.load(FamilyItalic, cfg.ItalicPath, cfg.ItalicName)
	return s
}

// Degradations reports why any family fell back to the default face.
// Empty means both families loaded cleanly.
func (s *Source) Degradations() []string {
	return s.degradations
}

// Face returns a face for the family/weight at the given size in pixels.
// If the family's font failed to load, the built-in bitmap face is returned
// and size is ignored (default metrics).
func (s *Source) Face(family Family, weight Weight, size int) font.Face {
	f := s.normal
	if family == FamilyItalic {
		f = s.italic
	}
	if f == nil {
		return basicfont.Face7x13
	}

	selectWeight(f, weight)

	return truetype.NewFace(f, &truetype.Options{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// selectWeight applies the named-variation chain to a font resource.
// The resource is only modified through the VariableFont capability; plain
// truetype fonts pass through untouched.
func selectWeight(resource any, weight Weight) {
	v, ok := resource.(VariableFont)
	if !ok {
		return
	}
	if err := v.SelectNamedVariation(string(weight)); err == nil {
		return
	}
	if axis, ok := weightAxisFallback[weight]; ok {
		_ = v.SelectWeightAxis(axis)
	}
}

// load resolves and parses one font file, recording degradations.
func (s *Source) load(family Family, path, name string) *truetype.Font {
	resolved, err := resolve(path, name)
	if err != nil {
		s.degradations = append(s.degradations,
			fmt.Sprintf("%s: %v (using default face)", family, err))
		return nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		s.degradations = append(s.degradations,
			fmt.Sprintf("%s: read %s: %v (using default face)", family, resolved, err))
		return nil
	}

	f, err := truetype.Parse(data)
	if err != nil {
		s.degradations = append(s.degradations,
			fmt.Sprintf("%s: parse %s: %v (using default face)", family, resolved, err))
		return nil
	}
	return f
}

// resolve picks a concrete file: explicit path first, then a system font
// lookup by file name.
func resolve(path, name string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", err
		}
		return path, nil
	}
	if name == "" {
		return "", fmt.Errorf("no font path or name configured")
	}
	return findfont.Find(name)
}
