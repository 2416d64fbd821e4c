package server

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func templatePNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 200))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// multipartBody builds a generate request body from field values and files.
func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for name, data := range files {
		fw, err := mw.CreateFormFile(name, name+".png")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	srv := New(Config{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestGenerateFromCSV(t *testing.T) {
	srv := New(Config{})
	body, contentType := multipartBody(t,
		nil,
		map[string][]byte{
			"template": templatePNG(t),
			"rows":     []byte("Title,Definition\nAlpha,First\nBeta,Second\n"),
		})

	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/zip" {
		t.Errorf("Content-Type = %q, want application/zip", ct)
	}
	if got := rec.Header().Get("X-Rows-Rendered"); got != "2" {
		t.Errorf("X-Rows-Rendered = %q, want 2", got)
	}

	data, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("response is not a valid zip: %v", err)
	}
	if len(zr.File) != 2 {
		t.Errorf("zip contains %d files, want 2", len(zr.File))
	}
}

func TestGenerateMissingTemplate(t *testing.T) {
	srv := New(Config{})
	body, contentType := multipartBody(t,
		nil,
		map[string][]byte{"rows": []byte("Title\nAlpha\n")})

	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	var errBody map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &errBody); err != nil {
		t.Fatal(err)
	}
	if errBody["code"] == "" {
		t.Error("error response missing code field")
	}
}

func TestGenerateMissingSource(t *testing.T) {
	srv := New(Config{})
	body, contentType := multipartBody(t,
		nil,
		map[string][]byte{"template": templatePNG(t)})

	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestGenerateBadTemplateData(t *testing.T) {
	srv := New(Config{})
	body, contentType := multipartBody(t,
		nil,
		map[string][]byte{
			"template": []byte("not an image"),
			"rows":     []byte("Title\nAlpha\n"),
		})

	req := httptest.NewRequest(http.MethodPost, "/generate", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	srv := New(Config{})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	first := rec.Header().Get("X-Request-ID")

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	second := rec.Header().Get("X-Request-ID")

	if first == "" || second == "" || first == second {
		t.Errorf("request ids not unique: %q, %q", first, second)
	}
}
