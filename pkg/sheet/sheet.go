// Package sheet turns a shared Google Sheet (or a local CSV file) into rows
// of card text. A sheet shared as "anyone with the link can view" exposes a
// CSV export endpoint; this package derives that URL from the share link,
// downloads it with retry and caching, and parses the rows.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/matzehuels/cardforge/pkg/errors"
	"github.com/matzehuels/cardforge/pkg/httputil"
	"github.com/matzehuels/cardforge/pkg/observability"
)

// Row is one card's worth of text. Missing cells are empty strings; values
// are used as-is (already string-typed by the CSV format).
type Row struct {
	Title         string
	Pronunciation string
	Definition    string
}

// Column headers recognized in the CSV, matched case-insensitively.
const (
	ColumnTitle         = "title"
	ColumnPronunciation = "pronunciation"
	ColumnDefinition    = "definition"
)

// sheetIDPattern extracts the document ID from a Google Sheets share URL.
var sheetIDPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// ExportURL converts a Google Sheets share URL into its CSV export URL.
// Returns an INVALID_SHEET_URL error when no document ID can be found.
func ExportURL(shareURL string) (string, error) {
	m := sheetIDPattern.FindStringSubmatch(shareURL)
	if m == nil {
		return "", errors.New(errors.ErrCodeInvalidSheetURL, "could not find a sheet id in %q", shareURL)
	}
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv", m[1]), nil
}

// ParseCSV reads rows from CSV data. The first record is the header; the
// three card columns are located by name (case-insensitive, surrounding
// whitespace ignored). Records shorter than the header are padded with
// empty strings. A missing column yields empty values for that field.
func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.ErrCodeEmptySheet, "sheet has no header row")
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv header")
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	cell := func(record []string, column string) string {
		i, ok := idx[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read csv record")
		}
		rows = append(rows, Row{
			Title:         cell(record, ColumnTitle),
			Pronunciation: cell(record, ColumnPronunciation),
			Definition:    cell(record, ColumnDefinition),
		})
	}

	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptySheet, "sheet has a header but no data rows")
	}
	return rows, nil
}

// Client fetches sheet rows over HTTP.
type Client struct {
	fetcher *httputil.Fetcher
}

// NewClient creates a sheet client backed by the given fetcher.
func NewClient(fetcher *httputil.Fetcher) *Client {
	return &Client{fetcher: fetcher}
}

// Rows downloads and parses the sheet behind a share URL. With refresh set,
// any cached copy is bypassed.
func (c *Client) Rows(ctx context.Context, shareURL string, refresh bool) ([]Row, error) {
	exportURL, err := ExportURL(shareURL)
	if err != nil {
		return nil, err
	}
	return c.FetchRows(ctx, exportURL, refresh)
}

// FetchRows downloads and parses CSV rows from an already-resolved URL.
func (c *Client) FetchRows(ctx context.Context, url string, refresh bool) ([]Row, error) {
	data, cached, err := c.fetcher.Get(ctx, url, refresh)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "fetch sheet csv")
	}
	if cached {
		observability.Cache().OnCacheHit(ctx, "sheet")
	} else {
		observability.Cache().OnCacheMiss(ctx, "sheet")
	}

	return ParseCSV(bytes.NewReader(data))
}

// ReadFile parses rows from a local CSV file.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open csv %s", path)
	}
	defer f.Close()
	return ParseCSV(f)
}
