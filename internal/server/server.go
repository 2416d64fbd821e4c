// Package server exposes the batch pipeline over HTTP.
//
// The server accepts multipart uploads (a template image plus either a
// Google Sheet URL or a CSV file) and answers with a zip of rendered cards.
// It is the same pipeline the CLI runs, behind a small REST surface.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/cardforge/pkg/buildinfo"
	"github.com/matzehuels/cardforge/pkg/cache"
	"github.com/matzehuels/cardforge/pkg/errors"
	"github.com/matzehuels/cardforge/pkg/pipeline"
)

// =============================================================================
// Configuration
// =============================================================================

const (
	// DefaultAddr is the default listen address.
	DefaultAddr = ":8080"

	// DefaultMaxUpload caps the multipart request body.
	DefaultMaxUpload = 64 << 20 // 64 MiB

	// shutdownTimeout bounds graceful shutdown on context cancelation.
	shutdownTimeout = 10 * time.Second
)

// Config holds server settings.
type Config struct {
	Addr      string
	MaxUpload int64
	Cache     cache.Cache
	Logger    *log.Logger
}

// =============================================================================
// Server
// =============================================================================

// Server handles card generation requests.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	logger *log.Logger
}

// New creates a Server. Zero-value config fields get defaults.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Server{
		cfg:    cfg,
		runner: pipeline.NewRunner(cfg.Cache, nil, cfg.Logger),
		logger: cfg.Logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestID)

	r.Get("/healthz", s.handleHealthz)
	r.Post("/generate", s.handleGenerate)
	return r
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "version", buildinfo.Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID tags every request with a UUID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

// RequestID returns the request id stored in ctx, or "" when absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleGenerate runs one batch from a multipart request.
//
// Form fields:
//
//	template   (file, required)   the template image
//	rows       (file)             a CSV with Title/Pronunciation/Definition
//	sheet_url  (string)           a Google Sheet share URL
//	keep_going (string)           "true" to skip failing rows
//
// Exactly one of rows and sheet_url must be present.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := s.logger.With("request_id", RequestID(ctx))

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
	if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
		s.writeError(w, logger, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse multipart form"))
		return
	}

	workDir, err := os.MkdirTemp("", "cardforge-*")
	if err != nil {
		s.writeError(w, logger, errors.Wrap(errors.ErrCodeInternal, err, "create work dir"))
		return
	}
	defer os.RemoveAll(workDir)

	opts := pipeline.Options{
		SheetURL:  r.FormValue("sheet_url"),
		KeepGoing: r.FormValue("keep_going") == "true",
		Refresh:   r.FormValue("refresh") == "true",
		Logger:    logger,
	}

	opts.TemplatePath, err = saveUpload(r, "template", workDir)
	if err != nil {
		s.writeError(w, logger, err)
		return
	}
	if hasUpload(r, "rows") {
		opts.CSVPath, err = saveUpload(r, "rows", workDir)
		if err != nil {
			s.writeError(w, logger, err)
			return
		}
	}

	start := time.Now()
	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.writeError(w, logger, err)
		return
	}
	logger.Info("batch complete",
		"rows", result.Stats.RowCount,
		"rendered", result.Stats.Rendered,
		"skipped", len(result.Skipped),
		"duration", time.Since(start))

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", pipeline.DefaultArchiveName))
	w.Header().Set("X-Rows-Rendered", fmt.Sprint(result.Stats.Rendered))
	w.Header().Set("X-Rows-Skipped", fmt.Sprint(len(result.Skipped)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Archive); err != nil {
		logger.Error("write response", "error", err)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// saveUpload copies a multipart file field into dir and returns its path.
func saveUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "missing %s upload", field)
	}
	defer file.Close()

	path := filepath.Join(dir, field+filepath.Ext(header.Filename))
	out, err := os.Create(path)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "save %s upload", field)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "save %s upload", field)
	}
	return path, nil
}

func hasUpload(r *http.Request, field string) bool {
	if r.MultipartForm == nil {
		return false
	}
	return len(r.MultipartForm.File[field]) > 0
}

// writeError maps an error code to an HTTP status and writes a JSON body.
func (s *Server) writeError(w http.ResponseWriter, logger *log.Logger, err error) {
	code := errors.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidSheetURL,
		errors.ErrCodeInvalidTemplate, errors.ErrCodeInvalidConfig,
		errors.ErrCodeEmptySheet, errors.ErrCodeRowRender:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		status = http.StatusBadGateway
	}

	if status >= 500 {
		logger.Error("request failed", "code", code, "error", err)
	} else {
		logger.Warn("request rejected", "code", code, "error", err)
	}
	writeJSON(w, status, map[string]string{
		"error": errors.UserMessage(err),
		"code":  string(code),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
