package controller

import (
	"strings"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	zerolog "github.com/rs/zerolog"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Opt configures a controller
type Opt func(*Controller) error

// SendOpt configures a single chat request
type SendOpt func(*schema.ChatRequest)

///////////////////////////////////////////////////////////////////////////////
// CONTROLLER OPTIONS

// WithLogger sets the logger for session lifecycle events
func WithLogger(log zerolog.Logger) Opt {
	return func(c *Controller) error {
		c.log = log.With().Str("component", "controller").Logger()
		return nil
	}
}

// WithTracer sets the tracer for session spans
func WithTracer(tracer trace.Tracer) Opt {
	return func(c *Controller) error {
		c.tracer = tracer
		return nil
	}
}

// WithIDFunc sets the generator for session identifiers, which must
// return a distinct value on each call
func WithIDFunc(fn func() string) Opt {
	return func(c *Controller) error {
		if fn == nil {
			return chatstream.ErrBadParameter.With("id function is nil")
		}
		c.newID = fn
		return nil
	}
}

// WithUnavailableMessage sets the message reported when the backend
// cannot be reached
func WithUnavailableMessage(message string) Opt {
	return func(c *Controller) error {
		if message = strings.TrimSpace(message); message == "" {
			return chatstream.ErrBadParameter.With("unavailable message is empty")
		}
		c.unavailable = message
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// SEND OPTIONS

// WithHistory sets the prior turns of the conversation
func WithHistory(messages ...schema.Message) SendOpt {
	return func(req *schema.ChatRequest) {
		req.ConversationHistory = append(req.ConversationHistory, messages...)
	}
}

// WithSystemPrompt overrides the backend's system prompt
func WithSystemPrompt(prompt string) SendOpt {
	return func(req *schema.ChatRequest) {
		req.CustomSystemPrompt = prompt
	}
}

// WithUserName sets the name of the user sending the prompt
func WithUserName(name string) SendOpt {
	return func(req *schema.ChatRequest) {
		req.UserName = name
	}
}

// WithContextDescription describes the context the prompt is sent from
func WithContextDescription(description string) SendOpt {
	return func(req *schema.ChatRequest) {
		req.ContextDescription = description
	}
}
