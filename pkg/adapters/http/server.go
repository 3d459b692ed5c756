// Package http exposes the orchestrator over REST, Server-Sent Events and WebSocket.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/dramaflow"
	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/sanitize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServiceMessage is the banner returned by GET /.
const ServiceMessage = "AI 视频剪辑智能体 API"

// Engine is the orchestrator surface the transport needs. *dramaflow.Engine implements it.
type Engine interface {
	Chat(ctx context.Context, sessionID, message string) (*dramaflow.ChatResult, error)
	ResetWithDiff(ctx context.Context, sessionID string) (*domain.WorkflowDiff, bool, error)
	Workflow(ctx context.Context, sessionID string) (*domain.WorkflowState, error)
	SessionCount(ctx context.Context) (int, error)
	Agents() []domain.AgentInfo
}

// Server holds the handlers and serves them through a chi router.
type Server struct {
	Engine  Engine
	Streams *StreamManager

	router       http.Handler
	origins      []string
	maxInputSize int
	metrics      http.Handler
	logger       *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS and WebSocket origin allow-list. "*" allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMaxInputSize overrides the message size limit.
func WithMaxInputSize(n int) Option {
	return func(s *Server) {
		s.maxInputSize = n
	}
}

// WithMetricsHandler serves h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// DefaultOrigins are the local front-end dev servers.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://localhost:3001",
}

// NewHandler creates the HTTP handler. Every route is served at the root and under /api.
func NewHandler(engine Engine, opts ...Option) *Server {
	s := &Server{
		Engine:       engine,
		Streams:      NewStreamManager(),
		origins:      DefaultOrigins,
		maxInputSize: sanitize.MaxInputSize(),
		logger:       logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.cors)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	})
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.mount(r)
	r.Route("/api", s.mount)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) mount(r chi.Router) {
	r.Get("/", s.GetRoot)
	r.Post("/chat", s.Chat)
	r.Post("/reset", s.Reset)
	r.Get("/workflow/{session_id}", s.GetWorkflow)
	r.Get("/agents", s.ListAgents)
	r.Get("/health", s.GetHealth)
	r.Get("/events", s.SubscribeEvents)
	r.Get("/ws", s.ChatSocket)
}

// GetRoot handles GET /.
func (s *Server) GetRoot(w http.ResponseWriter, r *http.Request) {
	resp := RootResponse{
		Message: ServiceMessage,
		Version: dramaflow.Version,
		Status:  "running",
	}
	if doc, err := Spec(); err == nil && doc.Info != nil {
		resp.APIVersion = doc.Info.Version
	}
	writeJSON(w, s.logger, resp)
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var body ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Chat: Invalid request body", "err", err, "request_id", RequestIDFrom(r.Context()))
		return
	}

	resp, err := s.chat(r.Context(), body)
	if err != nil {
		s.fail(w, r, "Chat", err)
		return
	}
	writeJSON(w, s.logger, resp)
}

// chat is shared by the REST and WebSocket transports.
func (s *Server) chat(ctx context.Context, body ChatRequest) (*ChatResponse, error) {
	message, err := sanitize.InputWithLimit(body.Message, s.maxInputSize)
	if err != nil {
		return nil, &inputError{err: err}
	}

	res, err := s.Engine.Chat(ctx, body.SessionID, message)
	if err != nil {
		return nil, err
	}

	if res.Diff != nil {
		if payload, err := json.Marshal(res.Diff); err == nil {
			s.Streams.Broadcast(res.SessionID, string(payload))
		}
	}

	return &ChatResponse{
		Response:      res.Response,
		AgentName:     res.AgentName,
		WorkflowState: res.State,
		CurrentStep:   res.State.CurrentStep,
		RankingData:   res.RankingData,
		Intent:        res.Intent,
	}, nil
}

// Reset handles POST /reset. An empty body resets the default session.
func (s *Server) Reset(w http.ResponseWriter, r *http.Request) {
	var body ResetRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			s.logger.Warn("Reset: Invalid request body", "err", err)
			return
		}
	}
	id := body.SessionID
	if id == "" {
		id = dramaflow.DefaultSessionID
	}

	diff, found, err := s.Engine.ResetWithDiff(r.Context(), id)
	if err != nil {
		s.fail(w, r, "Reset", err)
		return
	}
	if !found {
		writeJSON(w, s.logger, MessageResponse{Message: fmt.Sprintf("Session %s not found, nothing to reset", id)})
		return
	}

	if diff != nil {
		if payload, err := json.Marshal(diff); err == nil {
			s.Streams.Broadcast(id, string(payload))
		}
	}
	writeJSON(w, s.logger, MessageResponse{Message: fmt.Sprintf("Session %s reset successfully", id)})
}

// GetWorkflow handles GET /workflow/{session_id}.
func (s *Server) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session_id")
	state, err := s.Engine.Workflow(r.Context(), id)
	if err != nil {
		s.fail(w, r, "GetWorkflow", err)
		return
	}
	writeJSON(w, s.logger, WorkflowResponse{
		SessionID:     id,
		WorkflowState: state,
		CurrentStep:   state.CurrentStep,
	})
}

// ListAgents handles GET /agents.
func (s *Server) ListAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, AgentsResponse{Agents: s.Engine.Agents()})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.Engine.SessionCount(r.Context())
	if err != nil {
		s.fail(w, r, "GetHealth", err)
		return
	}
	writeJSON(w, s.logger, HealthResponse{Status: "healthy", Sessions: n})
}

type inputError struct{ err error }

func (e *inputError) Error() string { return "Invalid input: " + e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	var in *inputError
	if errors.As(err, &in) {
		http.Error(w, in.Error(), http.StatusBadRequest)
		s.logger.Warn(op+": Input rejected", "err", in.err, "request_id", RequestIDFrom(r.Context()))
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.logger.Error(op+" failed", "err", err, "request_id", RequestIDFrom(r.Context()))
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "err", err)
	}
}
