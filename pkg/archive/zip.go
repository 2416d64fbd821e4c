// Package archive assembles rendered cards into a zip archive or an output
// directory. Entries are written in the order given, so output ordering
// matches input row ordering.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/cardforge/pkg/errors"
)

// Entry is one file in the archive. Names are used as given; callers decide
// how to handle duplicate names (zip permits them).
type Entry struct {
	Name string
	Data []byte
}

// WriteZip writes entries to w as a DEFLATE-compressed zip, preserving
// entry order.
func WriteZip(w io.Writer, entries []Entry) error {
	zw := zip.NewWriter(w)
	for _, e := range entries {
		f, err := zw.Create(e.Name)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create zip entry %s", e.Name)
		}
		if _, err := f.Write(e.Data); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write zip entry %s", e.Name)
		}
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "finalize zip")
	}
	return nil
}

// WriteDir writes entries as individual files under dir, creating it if
// needed. Later entries overwrite earlier ones with the same name, matching
// how most zip extractors behave.
func WriteDir(dir string, entries []Entry) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOutput, err, "create output dir %s", dir)
	}
	for _, e := range entries {
		path := filepath.Join(dir, e.Name)
		if err := os.WriteFile(path, e.Data, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOutput, err, "write %s", path)
		}
	}
	return nil
}
