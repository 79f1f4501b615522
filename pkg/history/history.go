// Package history keeps the conversation turns sent with each chat
// request, optionally persisted as a JSON transcript.
package history

import (
	"strings"
	"sync"
	"time"

	// Packages
	uuid "github.com/google/uuid"
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// History is an ordered list of conversation turns. When a limit is set,
// only the most recent turns are sent with a request. It is safe for
// concurrent use.
type History struct {
	mu       sync.RWMutex
	limit    int
	id       string
	messages []schema.Message
	created  time.Time
	modified time.Time
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates an empty history. A limit of zero keeps every turn in the
// request history.
func New(limit int) *History {
	now := time.Now()
	return &History{
		limit:    max(limit, 0),
		id:       uuid.New().String(),
		messages: make([]schema.Message, 0),
		created:  now,
		modified: now,
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ID returns the conversation identifier
func (h *History) ID() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.id
}

// Append adds a turn. Empty content is ignored, and the role must be
// either user or assistant.
func (h *History) Append(role, content string) error {
	switch role {
	case schema.RoleUser, schema.RoleAssistant:
	default:
		return chatstream.ErrBadParameter.Withf("role %q", role)
	}
	if strings.TrimSpace(content) == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, schema.Message{Role: role, Content: content})
	h.modified = time.Now()
	return nil
}

// Messages returns the turns to send with the next request, oldest first
func (h *History) Messages() []schema.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messages := h.messages
	if h.limit > 0 && len(messages) > h.limit {
		messages = messages[len(messages)-h.limit:]
	}
	result := make([]schema.Message, len(messages))
	copy(result, messages)
	return result
}

// Len returns the total number of turns held
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Reset clears all turns and starts a new conversation
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.id = uuid.New().String()
	h.messages = make([]schema.Message, 0)
	h.created = time.Now()
	h.modified = h.created
}
