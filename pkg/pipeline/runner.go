package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardforge/pkg/archive"
	"github.com/matzehuels/cardforge/pkg/cache"
	"github.com/matzehuels/cardforge/pkg/card"
	"github.com/matzehuels/cardforge/pkg/errors"
	"github.com/matzehuels/cardforge/pkg/fonts"
	"github.com/matzehuels/cardforge/pkg/httputil"
	"github.com/matzehuels/cardforge/pkg/observability"
	"github.com/matzehuels/cardforge/pkg/sheet"
)

// =============================================================================
// Runner
// =============================================================================

// Runner executes the batch pipeline. It is safe for concurrent use as long
// as the underlying cache is.
type Runner struct {
	sheets *sheet.Client
	logger *log.Logger
}

// NewRunner creates a Runner. A nil cache disables sheet caching and a nil
// client falls back to a sensible default.
func NewRunner(c cache.Cache, client *http.Client, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		sheets: sheet.NewClient(httputil.NewFetcher(client, c, cache.DefaultTTL)),
		logger: logger,
	}
}

// Execute runs the full fetch → compose → package pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if !opts.validated {
		if err := opts.ValidateAndSetDefaults(); err != nil {
			return nil, err
		}
	}
	logger := opts.Logger

	rows, fetchTime, err := r.fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	logger.Info("rows loaded", "count", len(rows), "duration", fetchTime)

	result := &Result{Stats: Stats{
		RowCount:  len(rows),
		FetchTime: fetchTime,
	}}

	cfg, err := card.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	template, err := LoadTemplate(opts.TemplatePath)
	if err != nil {
		return nil, err
	}

	faces := fonts.NewSource(cfg.Fonts)
	for _, d := range faces.Degradations() {
		logger.Warn("font degraded", "detail", d)
	}

	if err := r.compose(ctx, opts, rows, template, cfg, faces, result); err != nil {
		return nil, err
	}

	if !opts.SkipZip {
		start := time.Now()
		data, err := zipEntries(result.Entries)
		observability.Batch().OnPackageComplete(ctx, len(result.Entries), len(data), time.Since(start), err)
		if err != nil {
			return nil, err
		}
		result.Archive = data
		result.Stats.PackageTime = time.Since(start)
	}
	return result, nil
}

// fetch loads rows from the configured source.
func (r *Runner) fetch(ctx context.Context, opts Options) ([]sheet.Row, time.Duration, error) {
	start := time.Now()
	observability.Batch().OnFetchStart(ctx, opts.Source())

	var (
		rows []sheet.Row
		err  error
	)
	if opts.SheetURL != "" {
		rows, err = r.sheets.Rows(ctx, opts.SheetURL, opts.Refresh)
	} else {
		rows, err = sheet.ReadFile(opts.CSVPath)
	}
	elapsed := time.Since(start)
	observability.Batch().OnFetchComplete(ctx, opts.Source(), len(rows), elapsed, err)
	return rows, elapsed, err
}

// compose renders one card per row, honoring KeepGoing and context cancelation.
func (r *Runner) compose(ctx context.Context, opts Options, rows []sheet.Row, template image.Image, cfg card.Config, faces card.FaceSource, result *Result) error {
	logger := opts.Logger
	start := time.Now()
	observability.Batch().OnComposeStart(ctx, len(rows))

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := entryName(row.Title, i)
		data, layout, err := renderRow(template, row, cfg.Styles, faces)
		if err != nil {
			err = errors.Wrap(errors.ErrCodeRowRender, err, "row %d (%q)", i+1, row.Title)
			if !opts.KeepGoing {
				observability.Batch().OnComposeComplete(ctx, result.Stats.Rendered, time.Since(start), err)
				return err
			}
			logger.Warn("skipping row", "row", i+1, "title", row.Title, "error", err)
			result.Skipped = append(result.Skipped, RowError{Index: i, Title: row.Title, Err: err})
		} else {
			if layout.Overflow() {
				logger.Warn("text taller than template", "row", i+1, "title", row.Title,
					"text_height", layout.TotalHeight, "template_height", layout.CanvasHeight)
			}
			result.Entries = append(result.Entries, Entry{Name: name, Data: data})
			result.Stats.Rendered++
		}
		observability.Batch().OnRowComplete(ctx, i, name, err)
		if opts.OnRow != nil {
			opts.OnRow(i, len(rows), name, err)
		}
	}

	result.Stats.ComposeTime = time.Since(start)
	observability.Batch().OnComposeComplete(ctx, result.Stats.Rendered, result.Stats.ComposeTime, nil)
	return nil
}

// renderRow composes a single card and encodes it as PNG.
func renderRow(template image.Image, row sheet.Row, styles card.Styles, faces card.FaceSource) ([]byte, card.Layout, error) {
	img, layout, err := card.Compose(card.RenderRequest{
		Template:      template,
		Title:         row.Title,
		Pronunciation: row.Pronunciation,
		Definition:    row.Definition,
		Styles:        styles,
		Faces:         faces,
	})
	if err != nil {
		return nil, layout, err
	}
	data, err := card.EncodePNG(img)
	if err != nil {
		return nil, layout, err
	}
	return data, layout, nil
}

// entryName derives the archive file name for a row. Rows whose titles
// sanitize to nothing fall back to their position.
func entryName(title string, index int) string {
	name := card.SafeName(title)
	if name == "" {
		name = fmt.Sprintf("card_%03d", index+1)
	}
	return name + ".png"
}

// =============================================================================
// Helpers
// =============================================================================

// LoadTemplate decodes the template image from disk. PNG and JPEG are
// supported.
func LoadTemplate(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "open template %s", path)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode template %s", path)
	}
	return img, nil
}

// DecodeTemplate decodes a template image from memory, for callers that
// receive uploads instead of file paths.
func DecodeTemplate(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTemplate, err, "decode template")
	}
	return img, nil
}

// WriteEntries writes rendered cards as individual files under dir.
func WriteEntries(dir string, entries []Entry) error {
	return archive.WriteDir(dir, toArchive(entries))
}

func zipEntries(entries []Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := archive.WriteZip(&buf, toArchive(entries)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toArchive(entries []Entry) []archive.Entry {
	converted := make([]archive.Entry, len(entries))
	for i, e := range entries {
		converted[i] = archive.Entry{Name: e.Name, Data: e.Data}
	}
	return converted
}
