// Package chatstream decodes streamed assistant replies. A reply arrives
// as newline-delimited "data:" frames carrying text fragments; in-band
// markers within the text announce and carry a structured widget payload.
package chatstream

import (
	"context"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Handler receives the decoded events of a single response, in order
type Handler interface {
	// Update is called with each incremental change to the message
	Update(schema.Update)

	// Complete is called once at the end of the stream with the final
	// display text and the widget, if any
	Complete(text string, widget *schema.Widget)
}

// Streamer issues a chat request and feeds the response into a handler.
// It returns when the stream ends, the context is cancelled or the
// request fails.
type Streamer interface {
	Stream(ctx context.Context, req schema.ChatRequest, handler Handler) error
}

// Callbacks is the contract exposed to a UI layer. Every method receives
// the identifier of the assistant message generated for the session, and
// is invoked synchronously from the decode loop.
type Callbacks interface {
	// OnStreamStart is called before any network activity
	OnStreamStart(id string)

	// OnStreamUpdate is called with each partial change to the message
	OnStreamUpdate(id string, update schema.Update)

	// OnStreamComplete is called once when the reply has been fully
	// decoded. It is not called for a degraded completion.
	OnStreamComplete(id string, text string, widget *schema.Widget)

	// OnError is called with a human-readable message when the session
	// fails
	OnError(id string, message string)
}
