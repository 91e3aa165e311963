package model

import "encoding/json"

// ChatRequest represents an inbound chat message
type ChatRequest struct {
	Message           string          `json:"message"`
	SessionID         string          `json:"sessionId,omitempty"`
	ConversationState json.RawMessage `json:"conversationState,omitempty"`
}

// ChatResponse represents the reply to a chat message
type ChatResponse struct {
	Success           bool             `json:"success"`
	Message           string           `json:"message"`
	Step              StepID           `json:"step"`
	Options           []string         `json:"options,omitempty"`
	Placeholder       string           `json:"placeholder,omitempty"`
	Properties        []PropertyRecord `json:"properties,omitempty"`
	TotalFound        *int             `json:"totalFound,omitempty"`
	SearchCriteria    *SearchCriteria  `json:"searchCriteria,omitempty"`
	ShowGrid          bool             `json:"showGrid"`
	SessionID         string           `json:"sessionId"`
	ConversationState *Session         `json:"conversationState"`
}
