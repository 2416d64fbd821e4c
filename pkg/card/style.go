package card

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cardforge/pkg/errors"
	"github.com/matzehuels/cardforge/pkg/fonts"
)

// =============================================================================
// Style Specifications
// =============================================================================

// StyleSpec holds the rendering parameters for one text field.
// Instances are immutable; one spec exists per field.
type StyleSpec struct {
	// Family selects the font file (normal or italic).
	Family fonts.Family `toml:"family"`

	// Weight is the named weight variation (Bold, Medium, Italic, Regular).
	Weight fonts.Weight `toml:"weight"`

	// MaxFontSize is the size ceiling in pixels. The resolved size is always
	// at or below this value.
	MaxFontSize int `toml:"max_size"`

	// MaxWidthPx is the wrapping budget: no wrapped line measures wider than
	// this (except a single word that cannot fit even after auto-shrink).
	MaxWidthPx int `toml:"max_width"`

	// LineSpacing is the line-height factor applied to the nominal font size.
	LineSpacing float64 `toml:"line_spacing"`

	// AnchorX is the fixed left edge for this field's lines.
	AnchorX float64 `toml:"anchor_x"`
}

// Styles is the explicit style table for a render: one spec per field plus
// the fixed vertical gap between blocks. It is passed into Compose rather
// than read from package state so tests can vary styles freely.
type Styles struct {
	// SpacingPx is the fixed gap between adjacent blocks.
	SpacingPx float64 `toml:"spacing"`

	Title         StyleSpec `toml:"title"`
	Pronunciation StyleSpec `toml:"pronunciation"`
	Definition    StyleSpec `toml:"definition"`
}

// Stock layout constants, matching the original card template.
const (
	defaultMaxWidth = 1700
	defaultAnchorX  = 2100
	defaultSpacing  = 100
)

// DefaultStyles returns the stock style table for the 4000px card template.
func DefaultStyles() Styles {
	return Styles{
		SpacingPx: defaultSpacing,
		Title: StyleSpec{
			Family:      fonts.FamilyNormal,
			Weight:      fonts.WeightBold,
			MaxFontSize: 255,
			MaxWidthPx:  defaultMaxWidth,
			LineSpacing: 1.0,
			AnchorX:     defaultAnchorX,
		},
		Pronunciation: StyleSpec{
			Family:      fonts.FamilyItalic,
			Weight:      fonts.WeightItalic,
			MaxFontSize: 116,
			MaxWidthPx:  defaultMaxWidth,
			LineSpacing: 1.2,
			AnchorX:     defaultAnchorX,
		},
		Definition: StyleSpec{
			Family:      fonts.FamilyNormal,
			Weight:      fonts.WeightMedium,
			MaxFontSize: 157,
			MaxWidthPx:  defaultMaxWidth,
			LineSpacing: 1.2,
			AnchorX:     defaultAnchorX,
		},
	}
}

// =============================================================================
// Retry Policies
// =============================================================================

// Line-count thresholds and fallbacks. These are business rules inherited
// from the card design, not tuning knobs: the title gets one modest size
// reduction, the definition drops to an absolute fallback size.
const (
	// TitleMaxLines is the wrapped line budget for titles.
	TitleMaxLines = 3
	// TitleRetryDelta is subtracted from the title ceiling on retry.
	TitleRetryDelta = 20

	// DefinitionMaxLines is the wrapped line budget for definitions.
	DefinitionMaxLines = 5
	// DefinitionRetrySize is the absolute fallback size for definitions.
	DefinitionRetrySize = 130
)

// RetryPolicy is a per-field rule: when the first layout attempt wraps to
// more than MaxLines lines, the field is laid out once more with the ceiling
// produced by Next. The zero value means "no retry".
type RetryPolicy struct {
	MaxLines int
	Next     func(ceiling int) int
}

// Per-field policies. Pronunciation deliberately has none: only the
// word-width auto-shrink from FitFontSize applies to it.
var (
	TitleRetry = RetryPolicy{
		MaxLines: TitleMaxLines,
		Next:     func(ceiling int) int { return ceiling - TitleRetryDelta },
	}

	DefinitionRetry = RetryPolicy{
		MaxLines: DefinitionMaxLines,
		Next:     func(int) int { return DefinitionRetrySize },
	}

	NoRetry = RetryPolicy{}
)

// =============================================================================
// Configuration
// =============================================================================

// Config is the on-disk configuration (cardforge.toml): the style table plus
// font file locations.
type Config struct {
	Styles

	Fonts fonts.Config `toml:"fonts"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Styles: DefaultStyles(),
		Fonts:  fonts.DefaultConfig(),
	}
}

// LoadConfig reads a TOML config file, overlaying it on the defaults.
// An empty path returns the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks that all style parameters are usable.
func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		spec StyleSpec
	}{
		{"title", c.Title},
		{"pronunciation", c.Pronunciation},
		{"definition", c.Definition},
	} {
		if f.spec.MaxFontSize <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: max_size must be positive", f.name)
		}
		if f.spec.MaxWidthPx <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: max_width must be positive", f.name)
		}
		if f.spec.LineSpacing < 1.0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: line_spacing must be >= 1.0", f.name)
		}
		if f.spec.Family != fonts.FamilyNormal && f.spec.Family != fonts.FamilyItalic {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: family must be normal or italic", f.name)
		}
	}
	if c.SpacingPx < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must not be negative")
	}
	return nil
}
