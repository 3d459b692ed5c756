package domain

import "time"

// HandlerID names a persona-bound responder (or the router itself).
type HandlerID string

const (
	HandlerRouter   HandlerID = "intent_router"
	HandlerRanking  HandlerID = "ranking_agent"
	HandlerPlatform HandlerID = "platform_agent"
	HandlerScript   HandlerID = "script_agent"
	HandlerEditor   HandlerID = "editor_agent"
	HandlerGeneral  HandlerID = "general_agent"
)

// HandlerIDs returns the router followed by the five handlers.
func HandlerIDs() []HandlerID {
	return []HandlerID{
		HandlerRouter,
		HandlerRanking,
		HandlerPlatform,
		HandlerScript,
		HandlerEditor,
		HandlerGeneral,
	}
}

// AgentInfo is the public capability card of a handler.
type AgentInfo struct {
	ID          HandlerID `json:"id"`
	Name        string    `json:"name"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
}

// ConversationTurn records one handler invocation. Turns are never edited after creation.
type ConversationTurn struct {
	HandlerID   HandlerID `json:"handler_id"`
	Agent       string    `json:"agent"`
	UserMessage string    `json:"user_message"`
	Response    string    `json:"agent_response"`
	Failed      bool      `json:"failed,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Session owns the workflow state and history of one conversation.
type Session struct {
	ID        string             `json:"id"`
	State     *WorkflowState     `json:"workflow_state"`
	History   []ConversationTurn `json:"history"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewSession creates an empty session with default workflow state.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		State:     NewWorkflowState(),
		History:   []ConversationTurn{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy that shares no mutable memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.State = s.State.Clone()
	if c.State == nil {
		c.State = NewWorkflowState()
	}
	c.History = make([]ConversationTurn, len(s.History))
	copy(c.History, s.History)
	return &c
}

// Reset zeroes the workflow and clears the history.
func (s *Session) Reset() {
	s.State = NewWorkflowState()
	s.History = []ConversationTurn{}
	s.UpdatedAt = time.Now()
}
