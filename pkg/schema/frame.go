package schema

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Frame is one decoded protocol line. Either Done is set, or Text holds
// the fragment (nil when the payload carried no text field).
type Frame struct {
	Text *string `json:"text,omitempty"`
	Done bool    `json:"-"`
}
