package cli

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func writeTestTemplate(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "template.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 300, 200))); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeTestCSV(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "rows.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// runCommand executes the CLI with args and returns the resulting error.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	c := New(&bytes.Buffer{}, log.ErrorLevel)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.ExecuteContext(context.Background())
}

func TestGenerateFromCSVToZip(t *testing.T) {
	dir := t.TempDir()
	csv := writeTestCSV(t, dir, "Title,Definition\nAlpha,First\nBeta,Second\n")
	tmpl := writeTestTemplate(t, dir)
	out := filepath.Join(dir, "out.zip")

	err := runCommand(t, "generate",
		"--csv", csv,
		"--template", tmpl,
		"--output", out,
		"--no-cache", "--plain")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a valid zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("zip contains %d files, want 2", len(zr.File))
	}
}

func TestGenerateToDirectory(t *testing.T) {
	dir := t.TempDir()
	csv := writeTestCSV(t, dir, "Title\nGamma\n")
	tmpl := writeTestTemplate(t, dir)
	out := filepath.Join(dir, "cards")

	err := runCommand(t, "generate",
		"--csv", csv,
		"--template", tmpl,
		"--output", out,
		"--dir", "--no-cache", "--plain")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(out, "Gamma.png")); err != nil {
		t.Errorf("expected Gamma.png in output dir: %v", err)
	}
}

func TestGenerateRequiresSource(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTestTemplate(t, dir)

	err := runCommand(t, "generate", "--template", tmpl, "--no-cache", "--plain")
	if err == nil {
		t.Fatal("expected error without a sheet URL or CSV path")
	}
}

func TestGenerateRejectsMissingTemplate(t *testing.T) {
	dir := t.TempDir()
	csv := writeTestCSV(t, dir, "Title\nOne\n")

	err := runCommand(t, "generate",
		"--csv", csv,
		"--template", filepath.Join(dir, "missing.png"),
		"--no-cache", "--plain")
	if err == nil {
		t.Fatal("expected error for a missing template")
	}
}

func TestRenderSingleCard(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTestTemplate(t, dir)
	out := filepath.Join(dir, "word.png")

	err := runCommand(t, "render", "Serendipity",
		"--template", tmpl,
		"--pronunciation", "ser-uhn-DIP-ih-tee",
		"--definition", "finding something good without looking for it",
		"--output", out)
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if _, err := png.Decode(f); err != nil {
		t.Errorf("output is not a valid PNG: %v", err)
	}
}

func TestRenderDerivesOutputName(t *testing.T) {
	dir := t.TempDir()
	tmpl := writeTestTemplate(t, dir)

	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(cwd)

	if err := runCommand(t, "render", "Ephemeral", "--template", tmpl); err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "Ephemeral.png")); err != nil {
		t.Errorf("expected Ephemeral.png: %v", err)
	}
}
