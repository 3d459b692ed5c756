package http

import "github.com/aretw0/dramaflow/pkg/domain"

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Response      string                `json:"response"`
	AgentName     string                `json:"agent_name"`
	WorkflowState *domain.WorkflowState `json:"workflow_state"`
	CurrentStep   domain.Step           `json:"current_step"`
	RankingData   []domain.CatalogItem  `json:"ranking_data"`
	Intent        domain.Intent         `json:"intent"`
}

type ResetRequest struct {
	SessionID string `json:"session_id,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type WorkflowResponse struct {
	SessionID     string                `json:"session_id"`
	WorkflowState *domain.WorkflowState `json:"workflow_state"`
	CurrentStep   domain.Step           `json:"current_step"`
}

type AgentsResponse struct {
	Agents []domain.AgentInfo `json:"agents"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

type RootResponse struct {
	Message    string `json:"message"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version,omitempty"`
	Status     string `json:"status"`
}

// socketError is written to a WebSocket when a frame could not be processed.
type socketError struct {
	Error string `json:"error"`
}
