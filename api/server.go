// Package api provides the HTTP REST API server for EquiSage.
//
// It exposes endpoints for running stock analyses, reading cached
// reports, and WebSocket streaming of pipeline progress.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/equisage/equisage/internal/agent"
	"github.com/equisage/equisage/internal/config"
	"github.com/equisage/equisage/internal/datasource"
	"github.com/equisage/equisage/internal/store"
	"github.com/equisage/equisage/pkg/models"
)

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	cfg    *config.Config
	orch   *agent.Orchestrator
	wsHub  *WSHub
	log    zerolog.Logger

	// runMu serializes analysis runs; the orchestrator tracks a single
	// pipeline state at a time.
	runMu sync.Mutex
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, log zerolog.Logger) *Server {
	fetcher := datasource.NewMarketFetcher(datasource.FetchOptions{
		CacheTTL:  time.Duration(cfg.Fetch.CacheTTL) * time.Second,
		NewsLimit: cfg.Fetch.NewsLimit,
	}, log)
	orch := agent.NewOrchestrator(agent.OrchestratorConfig{
		Store:    store.New(),
		Fetcher:  fetcher,
		Parallel: cfg.Analysis.ParallelStages,
		Logger:   log,
	})

	srv := &Server{
		cfg:   cfg,
		orch:  orch,
		wsHub: NewWSHub(),
		log:   log,
	}

	orch.OnProgress(func(ev agent.ProgressEvent) {
		srv.wsHub.Broadcast(WSMessage{Type: "progress", Data: ev})
	})

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("API server listening")
	<-done
	s.log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Post("/analyze", s.handleAnalyze)
		r.Get("/analyze/{ticker}", s.handleAnalyzeTicker)
		r.Get("/report/{ticker}", s.handleReport)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// ============================================================
// Request / response types
// ============================================================

// APIResponse is the standard response envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status": "ok",
			"state":  string(s.orch.State()),
			"time":   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	s.runAnalysis(w, r, req.Ticker)
}

func (s *Server) handleAnalyzeTicker(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}
	s.runAnalysis(w, r, ticker)
}

func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, ticker string) {
	ticker = normalizeTicker(ticker)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	s.runMu.Lock()
	report, err := s.orch.RunAnalysis(ctx, ticker)
	s.runMu.Unlock()
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "analysis_complete",
		Data: map[string]interface{}{
			"ticker": ticker,
			"rating": report.Rating,
			"score":  report.OverallScore,
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

// handleReport returns the most recent cached report for a ticker
// without triggering a new run.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	ticker := normalizeTicker(chi.URLParam(r, "ticker"))
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return
	}

	val, ok := s.orch.Store().Get(store.ReportKey(ticker))
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no report for %s", ticker))
		return
	}
	report, ok := val.(*models.Report)
	if !ok {
		writeError(w, http.StatusInternalServerError, "corrupt report entry")
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    report,
	})
}

// ============================================================
// Helpers
// ============================================================

func statusForError(err error) int {
	var noData *agent.NoDataError
	switch {
	case errors.As(err, &noData), errors.Is(err, datasource.ErrTickerNotFound):
		return http.StatusNotFound
	case errors.Is(err, agent.ErrIncompleteData):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func normalizeTicker(t string) string {
	return strings.ToUpper(strings.TrimSpace(t))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
