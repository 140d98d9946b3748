// Package server is the HTTP backend for browser-hosted experiments.
//
// It serves the stimulus feed, static and animated diagrams, animation
// scripts for hosts that draw on their own, and ingests trial records:
//
//	GET  /healthz
//	GET  /api/domains
//	GET  /api/domains/{domain}/trials
//	GET  /api/domains/{domain}/trials/{index}/diagram.svg
//	GET  /api/domains/{domain}/trials/{index}/animation.svg
//	GET  /api/domains/{domain}/trials/{index}/script.json
//	GET  /api/domains/{domain}/trials/{index}/tree.svg
//	POST /api/records
//
// Every render goes through a shared [pipeline.Runner], so a Redis cache
// lets several instances share layouts and artifacts.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/ruleviz/pkg/alignment"
	"github.com/matzehuels/ruleviz/pkg/errors"
	"github.com/matzehuels/ruleviz/pkg/pipeline"
	"github.com/matzehuels/ruleviz/pkg/stimulus"
	"github.com/matzehuels/ruleviz/pkg/telemetry"
)

// Config wires a server.
type Config struct {
	Feed  stimulus.Feed
	Kinds map[string]alignment.Kind
	// Runner renders trials. Nil uses an uncached runner.
	Runner *pipeline.Runner
	// Options are the base pipeline options; Kind and Formats are set per
	// request.
	Options pipeline.Options
	// Sink receives posted records. Nil keeps them in memory.
	Sink   telemetry.Sink
	Logger *log.Logger
	// RequestTimeout bounds one request. Zero means one minute.
	RequestTimeout time.Duration
}

// Server serves one stimulus feed.
type Server struct {
	cfg    Config
	router chi.Router
	logger *log.Logger
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Sink == nil {
		cfg.Sink = &telemetry.MemorySink{}
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = time.Minute
	}
	s := &Server{cfg: cfg, logger: cfg.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/healthz", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/domains", s.listDomains)
		r.Route("/domains/{domain}/trials", func(r chi.Router) {
			r.Get("/", s.listTrials)
			r.Route("/{index}", func(r chi.Router) {
				r.Get("/diagram.svg", s.renderTrial(pipeline.FormatSVG, false))
				r.Get("/animation.svg", s.renderTrial(pipeline.FormatSVG, true))
				r.Get("/script.json", s.renderTrial(pipeline.FormatJSON, true))
				r.Get("/tree.svg", s.renderTrial(pipeline.FormatTree, false))
			})
		})
		r.Post("/records", s.postRecords)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is canceled, then drains open
// requests for up to five seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "domains", len(s.cfg.Feed))

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Code: code, Message: errors.UserMessage(err)})
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidStyle,
		errors.ErrCodeInvalidDomain, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeMalformedEncoding, errors.ErrCodeInvalidAlignment:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeBusy:
		return http.StatusConflict
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
