// Package server provides the HTTP adapter for mudra.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/recognizer"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	// Recognizer is required for the recognition and history endpoints.
	Recognizer *recognizer.Recognizer
	// Detector enables POST /detect image uploads.
	Detector detector.Detector
	// Archive enables GET /api/history/archive.
	Archive *store.HistoryRepository
	// Hub enables the GET /api/stream result feed.
	Hub    *ResultsHub
	Logger *slog.Logger
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	logger := config.Logger
	if logger == nil {
		logger = logging.Default()
	}

	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
		logger: logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/health", s.handleHealth)

	if rec := s.config.Recognizer; rec != nil {
		s.mux.Handle("/api/detect", api.NewDetectHandler(rec, s.logger))
		s.mux.Handle("/api/gestures", api.NewGestureHandler(rec.Classifier()))

		historyHandler := api.NewHistoryHandler(rec.Recorder(), s.config.Archive, s.logger)
		s.mux.HandleFunc("/api/history", historyHandler.List)
		s.mux.HandleFunc("/api/history/archive", historyHandler.Archive)
		s.mux.HandleFunc("/api/stats", historyHandler.Stats)
		s.mux.HandleFunc("/export-log", historyHandler.Export)

		if s.config.Detector != nil {
			s.mux.Handle("/detect", api.NewImageHandler(s.config.Detector, rec, s.logger))
		}
	}

	if s.config.Hub != nil {
		s.mux.Handle("/api/stream", s.config.Hub)
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(s.start).Round(time.Second).String(),
	})
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return goerr.Wrap(err, "server failed", goerr.V("addr", addr))
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return goerr.Wrap(err, "failed to shut down server")
	}
	s.logger.Info("server stopped")
	return nil
}
