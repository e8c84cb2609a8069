// Package server exposes the orchestrator over HTTP
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/bububa/omniquery/config"
	"github.com/bububa/omniquery/logging"
	"github.com/bububa/omniquery/schema"
)

// MaxBodySize request body limit
const MaxBodySize = 1 << 20

// Processor answers queries, implemented by orchestrator.Orchestrator
type Processor interface {
	Process(ctx context.Context, req *schema.QueryRequest) *schema.QueryResponse
	Agents(ctx context.Context) []schema.AgentInfo
}

type Server struct {
	processor   Processor
	allowOrigin string
	logger      zerolog.Logger
	srv         *http.Server
}

func New(cfg config.ServerConfig, processor Processor) *Server {
	ret := &Server{
		processor:   processor,
		allowOrigin: cfg.AllowOrigin,
		logger:      logging.New("server"),
	}
	if ret.allowOrigin == "" {
		ret.allowOrigin = "*"
	}
	ret.srv = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           ret.Handler(),
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}
	return ret
}

// Handler returns the routed handler with CORS and request logging
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return s.logRequests(s.cors(mux))
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/query", s.handleQuery)
	// legacy path
	mux.HandleFunc("POST /query", s.handleQuery)
	mux.HandleFunc("GET /api/v1/agents", s.handleAgents)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /health", s.handleHealth)
}

// ListenAndServe blocks until the server stops, a graceful Shutdown is not an error
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.srv.Addr).Msg("listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req schema.QueryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err)
		return
	}
	writeJSON(w, http.StatusOK, s.processor.Process(r.Context(), &req))
}

func (s *Server) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.processor.Agents(r.Context()))
}

type healthResponse struct {
	Status string `json:"status"`
	Agents int    `json:"agents"`
	Ready  int    `json:"ready"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	list := s.processor.Agents(r.Context())
	resp := healthResponse{Status: "ok", Agents: len(list)}
	for _, info := range list {
		if info.Status == "ready" || info.Status == "busy" {
			resp.Ready++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", s.allowOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(s.logger.WithContext(r.Context())))
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	resp := schema.ErrorResponse{Error: msg}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
