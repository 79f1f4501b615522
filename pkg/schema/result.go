package schema

import (
	"encoding/json"
	"fmt"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// State is the lifecycle state of a stream session
type State uint

// Result is returned when a session reaches a terminal state
type Result struct {
	ID       string  `json:"id,omitempty"`
	Success  bool    `json:"success"`
	State    State   `json:"state"`
	Content  string  `json:"content,omitempty"`
	Widget   *Widget `json:"widget,omitempty"`
	Degraded bool    `json:"degraded,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// CONSTANTS

const (
	StateIdle State = iota
	StateStreaming
	StateCompleted
	StateAborted
	StateErrored
)

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("state(%d)", uint(s))
	}
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (r Result) String() string {
	return types.Stringify(r)
}
