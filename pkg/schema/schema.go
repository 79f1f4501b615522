// Package schema defines the wire types exchanged with the chat backend
// and the update types delivered to stream consumers.
package schema

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	// FramePrefix starts every protocol line that carries a payload
	FramePrefix = "data:"

	// FrameDone is the payload of the stream-termination line
	FrameDone = "[DONE]"

	// MarkerLoading announces a widget of the type which follows the colon
	MarkerLoading = "WIDGET_LOADING:"

	// MarkerData starts the JSON payload of a widget
	MarkerData = "WIDGET_DATA:"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
