// Package server exposes the diagram pipeline over HTTP.
//
// The API mirrors the CLI: one endpoint runs the full pipeline, the run
// endpoints read and delete persisted results. All request and response
// bodies are JSON; inline source documents travel base64-encoded in the
// standard encoding/json []byte convention.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	clarityerrors "github.com/BrennerSpear/clarity/pkg/errors"
	"github.com/BrennerSpear/clarity/pkg/pipeline"
	"github.com/BrennerSpear/clarity/pkg/store"
)

// maxBodyBytes caps request bodies. Compose files are small; anything
// beyond this is abuse.
const maxBodyBytes = 2 << 20

// Server handles HTTP requests by delegating to a pipeline runner and an
// optional run store.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	logger *log.Logger
}

// New creates a server. The store may be nil, which disables the run
// endpoints with 503 responses.
func New(runner *pipeline.Runner, s store.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, store: s, logger: logger}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/diagram", s.handleDiagram)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
		r.Delete("/runs/{id}", s.handleDeleteRun)
	})

	return r
}

// logRequests is a minimal structured access log.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// diagramRequest is the body of POST /api/diagram. It embeds the pipeline
// options; Source is ignored in favor of SourceData.
type diagramRequest struct {
	pipeline.Options
	Save bool `json:"save,omitempty"`
}

// diagramResponse is the result of a pipeline run over HTTP.
type diagramResponse struct {
	RunID     string             `json:"run_id,omitempty"`
	GraphHash string             `json:"graph_hash"`
	NodeCount int                `json:"node_count"`
	EdgeCount int                `json:"edge_count"`
	Cache     pipeline.CacheInfo `json:"cache"`
	Artifacts map[string][]byte  `json:"artifacts"`
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	var req diagramRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeError(w, clarityerrors.New(clarityerrors.ErrCodeInvalidInput, "invalid request body: %v", err))
		return
	}
	if len(req.SourceData) == 0 {
		writeError(w, clarityerrors.New(clarityerrors.ErrCodeInvalidInput, "source_data is required"))
		return
	}
	// Never read server-side files on behalf of a client.
	req.Source = ""
	if req.Parser == "" {
		req.Parser = pipeline.ParserCompose
	}
	req.Options.Logger = s.logger

	result, err := s.runner.Execute(r.Context(), req.Options)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := diagramResponse{
		GraphHash: result.GraphHash,
		NodeCount: result.Stats.NodeCount,
		EdgeCount: result.Stats.EdgeCount,
		Cache:     result.CacheInfo,
		Artifacts: result.Artifacts,
	}

	if req.Save {
		runID, err := s.saveRun(r.Context(), result)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.RunID = runID
	}

	writeJSON(w, http.StatusOK, resp)
}

// saveRun persists a pipeline result and returns the run ID.
func (s *Server) saveRun(ctx context.Context, result *pipeline.Result) (string, error) {
	if s.store == nil {
		return "", clarityerrors.New(clarityerrors.ErrCodeUnsupported, "run store not configured")
	}
	layout, err := json.Marshal(result.Diagram)
	if err != nil {
		return "", err
	}
	run := store.NewRun("api", result.GraphHash, result.Stats.NodeCount, result.Stats.EdgeCount, layout)
	if err := s.store.Save(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, clarityerrors.New(clarityerrors.ErrCodeUnsupported, "run store not configured"))
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, clarityerrors.New(clarityerrors.ErrCodeInvalidInput, "invalid limit: %s", v))
			return
		}
		limit = n
	}
	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if runs == nil {
		runs = []*store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, clarityerrors.New(clarityerrors.ErrCodeUnsupported, "run store not configured"))
		return
	}
	run, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, clarityerrors.New(clarityerrors.ErrCodeUnsupported, "run store not configured"))
		return
	}
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is the JSON error envelope.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps pipeline error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	code := clarityerrors.GetCode(err)
	status := http.StatusInternalServerError
	switch {
	case clarityerrors.Is(err, clarityerrors.ErrCodeRunNotFound) || clarityerrors.Is(err, clarityerrors.ErrCodeNotFound):
		status = http.StatusNotFound
	case clarityerrors.Is(err, clarityerrors.ErrCodeUnsupported):
		status = http.StatusServiceUnavailable
	case isInvalidInput(err):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, errorBody{Code: string(code), Message: clarityerrors.UserMessage(err)})
}

func isInvalidInput(err error) bool {
	for _, code := range []clarityerrors.Code{
		clarityerrors.ErrCodeInvalidInput,
		clarityerrors.ErrCodeInvalidGraph,
		clarityerrors.ErrCodeInvalidFormat,
		clarityerrors.ErrCodeInvalidManifest,
	} {
		if clarityerrors.Is(err, code) {
			return true
		}
	}
	return false
}
