// Package pipeline provides the core batch-generation pipeline for Cardforge.
//
// This package implements the complete fetch → compose → package flow that
// is shared by the CLI and the HTTP server. By centralizing this logic, we
// ensure consistent behavior across all entry points and avoid code
// duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load rows from a Google Sheet or a local CSV file
//  2. Compose: Render one card image per row over the template
//  3. Package: Assemble the rendered cards into a zip (or plain entries)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    SheetURL:     "https://docs.google.com/spreadsheets/d/.../edit",
//	    TemplatePath: "template.png",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("cards.zip", result.Archive, 0644)
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cardforge/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultOutput is the default archive file name.
	DefaultOutput = "cards.zip"

	// DefaultArchiveName is the download name used by the server.
	DefaultArchiveName = "generated_cards.zip"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one batch run.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Fetch options (exactly one source must be set)
	SheetURL string `json:"sheet_url,omitempty"`
	CSVPath  string `json:"csv_path,omitempty"`

	// Compose options
	TemplatePath string `json:"template_path,omitempty"`
	ConfigPath   string `json:"config_path,omitempty"`

	// Behavior
	KeepGoing bool `json:"keep_going,omitempty"` // skip failing rows instead of aborting
	Refresh   bool `json:"refresh,omitempty"`    // bypass the sheet cache
	SkipZip   bool `json:"skip_zip,omitempty"`   // produce entries only, no archive bytes

	// Runtime options (not serialized)
	Logger *log.Logger                                    `json:"-"`
	OnRow  func(index, total int, name string, err error) `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks option consistency and fills defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.SheetURL == "" && o.CSVPath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a sheet URL or a CSV path is required")
	}
	if o.SheetURL != "" && o.CSVPath != "" {
		return errors.New(errors.ErrCodeInvalidInput, "sheet URL and CSV path are mutually exclusive")
	}
	if o.TemplatePath == "" {
		return errors.New(errors.ErrCodeInvalidInput, "a template image is required")
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	o.validated = true
	return nil
}

// Source describes where rows come from, for logging and hooks.
func (o *Options) Source() string {
	if o.SheetURL != "" {
		return o.SheetURL
	}
	return o.CSVPath
}

// =============================================================================
// Results
// =============================================================================

// RowError records a failure scoped to a single row.
type RowError struct {
	Index int    // zero-based row index
	Title string // raw title of the failing row
	Err   error
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Entries are the rendered cards in input row order.
	Entries []Entry

	// Archive is the assembled zip (nil when SkipZip is set).
	Archive []byte

	// Skipped lists rows that failed and were skipped (KeepGoing mode).
	Skipped []RowError

	// Stats contains timing and size information.
	Stats Stats
}

// Entry is one rendered card, named after its sanitized title.
type Entry struct {
	Name string
	Data []byte
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount    int
	Rendered    int
	FetchTime   time.Duration
	ComposeTime time.Duration
	PackageTime time.Duration
}
