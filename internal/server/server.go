// Package server exposes the agent over HTTP: chat, ingestion and
// operational endpoints.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Divas-Gupta30/docbrain/internal/graph"
	"github.com/Divas-Gupta30/docbrain/internal/ingestion"
)

// Brain answers one user query. Satisfied by *graph.Engine.
type Brain interface {
	Run(ctx context.Context, query string) graph.Result
}

// Ingestor processes one uploaded document. Satisfied by
// *ingestion.Pipeline.
type Ingestor interface {
	IngestFile(ctx context.Context, path, imageDir string) (ingestion.Stats, error)
}

// ElementAdmin covers the store operations the server needs for health and
// reset. Satisfied by *storage.Store.
type ElementAdmin interface {
	Count(ctx context.Context) (int64, error)
	Reset(ctx context.Context) error
}

// IngestionStatus tracks one background ingestion job.
type IngestionStatus struct {
	Filename   string           `json:"filename"`
	Status     string           `json:"status"`
	Error      string           `json:"error,omitempty"`
	Stats      *ingestion.Stats `json:"stats,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt *time.Time       `json:"finished_at,omitempty"`
}

const (
	statusProcessing = "processing"
	statusCompleted  = "completed"
	statusFailed     = "failed"
)

// Server wires the HTTP surface to the brain, the ingestion pipeline and the
// element store.
type Server struct {
	brain     Brain
	ingestor  Ingestor
	admin     ElementAdmin
	cache     AnswerCache
	log       *zap.Logger
	outputDir string

	router *mux.Router

	mu       sync.RWMutex
	statuses map[string]*IngestionStatus
}

// New builds a Server. cache may be a disabled cache but must not be nil.
func New(brain Brain, ingestor Ingestor, admin ElementAdmin, cache AnswerCache, outputDir string, log *zap.Logger) *Server {
	s := &Server{
		brain:     brain,
		ingestor:  ingestor,
		admin:     admin,
		cache:     cache,
		log:       log,
		outputDir: outputDir,
		statuses:  make(map[string]*IngestionStatus),
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods("GET")
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/chat", s.handleChat).Methods("POST")
	r.HandleFunc("/ingest", s.handleIngest).Methods("POST")
	r.HandleFunc("/ingestion-status/{filename}", s.handleIngestionStatus).Methods("GET")
	r.HandleFunc("/reset", s.handleReset).Methods("DELETE")
	r.Handle("/metrics", promhttp.Handler())
	s.router = r
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run(port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server starting", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "docbrain",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status": "healthy",
		"cache":  "disconnected",
	}
	if s.cache.Enabled() {
		health["cache"] = "connected"
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if n, err := s.admin.Count(ctx); err == nil {
		health["elements"] = n
	} else {
		health["status"] = "degraded"
		health["database"] = err.Error()
	}
	writeJSON(w, http.StatusOK, health)
}

type chatRequest struct {
	Query string `json:"query"`
}

type chatResponse struct {
	Response          string           `json:"response"`
	RelevantDocuments []graph.Document `json:"relevant_documents"`
	RewrittenQuery    *string          `json:"rewritten_query"`
	RetryCount        int              `json:"retry_count"`
	Cached            bool             `json:"cached"`
}

func toChatResponse(res graph.Result, cached bool) chatResponse {
	return chatResponse{
		Response:          res.Generation,
		RelevantDocuments: res.RelevantDocuments,
		RewrittenQuery:    res.RewrittenQuery,
		RetryCount:        res.RetryCount,
		Cached:            cached,
	}
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("POST", "/chat").Observe(time.Since(start).Seconds())
	}()

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		chatRequestsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		chatRequestsTotal.WithLabelValues("error").Inc()
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	if res, ok := s.cache.Get(r.Context(), req.Query); ok {
		cacheHitsTotal.Inc()
		chatRequestsTotal.WithLabelValues("success").Inc()
		writeJSON(w, http.StatusOK, toChatResponse(res, true))
		return
	}
	cacheMissesTotal.Inc()

	res := s.brain.Run(r.Context(), req.Query)
	// Failure answers are transient; caching one would replay it for the
	// whole TTL after the backend recovers.
	if !res.Errored() {
		s.cache.Set(r.Context(), req.Query, res)
	}

	chatRequestsTotal.WithLabelValues("success").Inc()
	writeJSON(w, http.StatusOK, toChatResponse(res, false))
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		requestDuration.WithLabelValues("POST", "/ingest").Observe(time.Since(start).Seconds())
	}()

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	uploadDir := filepath.Join(s.outputDir, "uploads")
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to prepare upload dir")
		return
	}

	dest := filepath.Join(uploadDir, filename)
	out, err := os.Create(dest)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		os.Remove(dest)
		writeError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}
	out.Close()

	s.setStatus(filename, &IngestionStatus{
		Filename:  filename,
		Status:    statusProcessing,
		StartedAt: time.Now(),
	})

	go s.runIngestion(filename, dest)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"filename": filename,
		"status":   statusProcessing,
	})
}

// runIngestion executes one background job. It uses a fresh context so the
// upload request returning does not cancel the work.
func (s *Server) runIngestion(filename, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	imageDir := filepath.Join(s.outputDir,
		strings.TrimSuffix(filename, filepath.Ext(filename)))

	stats, err := s.ingestor.IngestFile(ctx, path, imageDir)
	now := time.Now()
	if err != nil {
		ingestionsTotal.WithLabelValues("error").Inc()
		s.log.Error("ingestion failed", zap.String("file", filename), zap.Error(err))
		s.setStatus(filename, &IngestionStatus{
			Filename:   filename,
			Status:     statusFailed,
			Error:      err.Error(),
			FinishedAt: &now,
		})
		return
	}

	ingestionsTotal.WithLabelValues("success").Inc()
	elementsIngested.Add(float64(stats.Stored))
	s.cache.Flush(ctx)
	s.setStatus(filename, &IngestionStatus{
		Filename:   filename,
		Status:     statusCompleted,
		Stats:      &stats,
		FinishedAt: &now,
	})
}

func (s *Server) setStatus(filename string, st *IngestionStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.statuses[filename]; ok && st.StartedAt.IsZero() {
		st.StartedAt = prev.StartedAt
	}
	s.statuses[filename] = st
}

func (s *Server) handleIngestionStatus(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	s.mu.RLock()
	st, ok := s.statuses[filename]
	s.mu.RUnlock()

	if !ok {
		writeError(w, http.StatusNotFound,
			fmt.Sprintf("no ingestion record for %q", filename))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.admin.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.cache.Flush(ctx)
	elementsIngested.Set(0)

	s.mu.Lock()
	s.statuses = make(map[string]*IngestionStatus)
	s.mu.Unlock()

	s.log.Info("store reset via api")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
