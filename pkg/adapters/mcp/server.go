// Package mcp exposes the orchestrator as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/dramaflow"
	"github.com/aretw0/dramaflow/internal/logging"
	"github.com/aretw0/dramaflow/pkg/domain"
	"github.com/aretw0/dramaflow/pkg/sanitize"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI names the ranking resource.
const CatalogURI = "dramaflow://catalog"

// Engine is the orchestrator surface exposed as tools. *dramaflow.Engine implements it.
type Engine interface {
	Chat(ctx context.Context, sessionID, message string) (*dramaflow.ChatResult, error)
	Reset(ctx context.Context, sessionID string) (bool, error)
	Workflow(ctx context.Context, sessionID string) (*domain.WorkflowState, error)
	Agents() []domain.AgentInfo
	Catalog(ctx context.Context) ([]domain.CatalogItem, error)
}

// ChatResponse mirrors the REST /chat body.
type ChatResponse struct {
	SessionID     string                `json:"session_id" jsonschema_description:"Session the message was handled in"`
	Response      string                `json:"response" jsonschema_description:"Agent reply"`
	AgentName     string                `json:"agent_name" jsonschema_description:"Display name of the agent that replied"`
	Intent        domain.Intent         `json:"intent" jsonschema_description:"Classified intent"`
	WorkflowState *domain.WorkflowState `json:"workflow_state" jsonschema_description:"Workflow state after the message"`
	RankingData   []domain.CatalogItem  `json:"ranking_data,omitempty" jsonschema_description:"Drama ranking, only for ranking queries"`
}

type chatArgs struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type sessionArgs struct {
	SessionID string `json:"session_id"`
}

// WorkflowResponse is returned by get_workflow and reset_session.
type WorkflowResponse struct {
	SessionID     string                `json:"session_id"`
	Found         *bool                 `json:"found,omitempty"`
	WorkflowState *domain.WorkflowState `json:"workflow_state,omitempty"`
}

// Server wraps the Engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("dramaflow-mcp", dramaflow.Version),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("chat",
		mcp.WithDescription("Send one user message to the promotion assistant. The reply comes from the agent chosen for the classified intent."),
		mcp.WithString("message", mcp.Required(), mcp.Description("User message")),
		mcp.WithString("session_id", mcp.Description("Conversation to continue (defaults to \"default\")")),
		mcp.WithOutputSchema[ChatResponse](),
	), mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Restore a session to the initial workflow state and clear its history."),
		mcp.WithString("session_id", mcp.Description("Session to reset (defaults to \"default\")")),
	), mcp.NewStructuredToolHandler(s.handleReset))

	s.mcpServer.AddTool(mcp.NewTool("get_workflow",
		mcp.WithDescription("Return the workflow state of a session, creating the session if needed."),
		mcp.WithString("session_id", mcp.Description("Session to inspect (defaults to \"default\")")),
	), mcp.NewStructuredToolHandler(s.handleWorkflow))

	s.mcpServer.AddTool(mcp.NewTool("list_agents",
		mcp.WithDescription("List the router and handler agents."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		jsonBytes, err := json.Marshal(s.engine.Agents())
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonBytes)), nil
	})
}

func (s *Server) handleChat(ctx context.Context, request mcp.CallToolRequest, args chatArgs) (ChatResponse, error) {
	clean, err := sanitize.Input(args.Message)
	if err != nil {
		s.logger.Warn("MCP Chat: Input rejected", "err", err, "size", len(args.Message))
		return ChatResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	res, err := s.engine.Chat(ctx, args.SessionID, clean)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("chat failed: %w", err)
	}
	return ChatResponse{
		SessionID:     res.SessionID,
		Response:      res.Response,
		AgentName:     res.AgentName,
		Intent:        res.Intent,
		WorkflowState: res.State,
		RankingData:   res.RankingData,
	}, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (WorkflowResponse, error) {
	id := sessionOrDefault(args.SessionID)
	found, err := s.engine.Reset(ctx, id)
	if err != nil {
		return WorkflowResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	resp := WorkflowResponse{SessionID: id, Found: &found}
	if found {
		resp.WorkflowState = domain.NewWorkflowState()
	}
	return resp, nil
}

func (s *Server) handleWorkflow(ctx context.Context, request mcp.CallToolRequest, args sessionArgs) (WorkflowResponse, error) {
	id := sessionOrDefault(args.SessionID)
	state, err := s.engine.Workflow(ctx, id)
	if err != nil {
		return WorkflowResponse{}, fmt.Errorf("workflow failed: %w", err)
	}
	return WorkflowResponse{SessionID: id, WorkflowState: state}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Drama Ranking",
		mcp.WithResourceDescription("Today's promotable short dramas"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		items, err := s.engine.Catalog(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog: %w", err)
		}
		jsonBytes, err := json.Marshal(items)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

func sessionOrDefault(id string) string {
	if id == "" {
		return dramaflow.DefaultSessionID
	}
	return id
}
