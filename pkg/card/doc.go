// Package card implements the text block compositor: it fits, wraps, and
// measures three text fields (title, pronunciation, definition) and draws
// them as a vertically centered group over a template image.
//
// The package is a pure function of its inputs: given the same template,
// texts, styles, and face source, [Compose] produces identical pixels. No
// state is carried between rows; font faces are resolved fresh per field
// because the resolved size can differ per row.
//
// The three layout operations are exposed separately for testing and reuse:
// [FitFontSize] (auto-shrink so no single word overflows), [Wrap] (greedy
// line fill against a pixel budget), and [BlockHeight] (line count times
// nominal line height). [LayoutField] combines them with the per-field
// line-count retry policies.
package card
