// Package server exposes the dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/salesdash/internal/cache"
	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/dataset"
	"github.com/KaramelBytes/salesdash/internal/filter"
	"github.com/KaramelBytes/salesdash/internal/insight"
	"github.com/KaramelBytes/salesdash/internal/logger"
	"github.com/KaramelBytes/salesdash/internal/metrics"
	"github.com/KaramelBytes/salesdash/internal/parser"
)

// Server serves the active dataset.
type Server struct {
	Loader     *dataset.Loader
	Active     *dataset.Active
	Summarizer *insight.Summarizer
	Metrics    *metrics.Recorder
	Log        zerolog.Logger
	// MaxUploadBytes bounds POST /api/upload bodies.
	MaxUploadBytes int64

	router chi.Router
}

// New wires the routes. active must already hold a dataset (possibly empty).
func New(loader *dataset.Loader, active *dataset.Active, s *insight.Summarizer, rec *metrics.Recorder, log zerolog.Logger) *Server {
	srv := &Server{
		Loader:         loader,
		Active:         active,
		Summarizer:     s,
		Metrics:        rec,
		Log:            log,
		MaxUploadBytes: 32 << 20,
		router:         chi.NewRouter(),
	}
	srv.setupMiddleware()
	srv.setupRoutes()
	return srv
}

func (s *Server) setupMiddleware() {
	s.router.Use(RequestID(s.Log))
	s.router.Use(Logger(s.Metrics))
	s.router.Use(Recovery)
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/dataset", s.handleDataset)
		r.Get("/dashboard", s.handleDashboard)
		r.Post("/upload", s.handleUpload)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.router.ServeHTTP(w, r) }

// Run listens on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, writeTimeout time.Duration) error {
	if writeTimeout <= 0 {
		writeTimeout = 2 * time.Minute
	}
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.Log.Info().Str("addr", addr).Msg("Starting dashboard server")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}
	s.Log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.Active.Get()
	caches := map[string]cache.Stats{"datasets": s.Loader.CacheStats()}
	if s.Summarizer != nil {
		caches["insights"] = s.Summarizer.CacheStats()
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"dataset": ds.Name,
		"rows":    ds.Table.Len(),
		"caches":  caches,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	ds := s.Active.Get()
	WriteJSON(w, http.StatusOK, filter.Options(ds.Table, selectionFrom(r)))
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, s.Active.Get())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	v := s.build(r)
	switch strings.ToLower(r.URL.Query().Get("format")) {
	case "yaml":
		b, err := v.YAML()
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "render yaml")
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(b)
	case "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, v.Markdown())
	default:
		WriteJSON(w, http.StatusOK, v)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	v := s.build(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(renderPage(v))
}

func (s *Server) build(r *http.Request) *dashboard.View {
	var sum dashboard.Summarizer
	if wantInsights(r) && s.Summarizer != nil {
		sum = s.Summarizer
	}
	return dashboard.Build(r.Context(), s.Active.Get(), selectionFrom(r), sum)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, s.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds the %d MB limit", s.MaxUploadBytes>>20))
			return
		}
		WriteError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !parser.Supported(name) {
		WriteError(w, http.StatusUnsupportedMediaType, "Only Excel (.xlsx, .xls) and CSV (.csv) files are allowed")
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "read upload")
		return
	}
	ds, err := s.Loader.Load(r.Context(), dataset.Source{Name: name, Data: data})
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("upload rejected")
		WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.Active.Set(ds)
	WriteJSON(w, http.StatusCreated, ds)
}

// selectionFrom reads period, seller and exclude query parameters. Both
// may repeat; periods may also be comma separated.
func selectionFrom(r *http.Request) filter.Selection {
	q := r.URL.Query()
	exclude, _ := strconv.ParseBool(q.Get("exclude"))
	return filter.Selection{
		Periods:            splitValues(q["period"]),
		Salespeople:        nonBlank(q["seller"]),
		ExcludeSalespeople: exclude,
	}
}

func wantInsights(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("insights"))
	return v
}

func splitValues(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func nonBlank(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
