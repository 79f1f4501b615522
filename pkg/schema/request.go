package schema

import (
	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Message is one turn of the conversation history sent with a request
type Message struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// ChatRequest is the body of the streaming chat endpoint
type ChatRequest struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
	CustomSystemPrompt  string    `json:"customSystemPrompt,omitempty"`
	UserName            string    `json:"userName,omitempty"`
	ContextDescription  string    `json:"contextDescription,omitempty"`
}

// ErrorResponse is the JSON body of a non-success response. Backends set
// either or both fields.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
}

// Health is returned by the backend health endpoint
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r ChatRequest) String() string {
	return types.Stringify(r)
}

func (m Message) String() string {
	return types.Stringify(m)
}
