package httphandler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	yaml "gopkg.in/yaml.v3"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Script is the set of canned replies served by the replay backend
type Script struct {
	Replies []Reply `yaml:"replies"`
	Default *Reply  `yaml:"default,omitempty"`
}

// Reply is one canned reply. The first reply whose match string occurs in
// the request message (ignoring case) is served.
type Reply struct {
	Match     string         `yaml:"match"`
	Text      string         `yaml:"text,omitempty"`
	Parts     []string       `yaml:"fragments,omitempty"` // sent as-is instead of splitting text
	Loading   bool           `yaml:"loading,omitempty"`   // announce the widget type first
	Widget    map[string]any `yaml:"widget,omitempty"`
	Truncate  bool           `yaml:"truncate,omitempty"` // cut the widget payload short
	Status    int            `yaml:"status,omitempty"`   // respond with an error status
	Error     string         `yaml:"error,omitempty"`
	Details   string         `yaml:"details,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// LoadScript reads a YAML script from a file
func LoadScript(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseScript(f)
}

// ParseScript reads a YAML script. Unknown fields are rejected.
func ParseScript(r io.Reader) (*Script, error) {
	var script Script
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil && err != io.EOF {
		return nil, chatstream.ErrBadParameter.Withf("script: %v", err)
	}
	if err := script.validate(); err != nil {
		return nil, err
	}
	return &script, nil
}

// DefaultScript returns the built-in script, which covers plain text,
// widgets, a degraded widget and an error response
func DefaultScript() *Script {
	return &Script{
		Replies: []Reply{
			{
				Match: "hello",
				Text:  "Hello world",
			},
			{
				Match: "summary",
				Text:  "Here is your summary: ",
				Widget: map[string]any{
					"type":  "table",
					"title": "Summary",
					"items": []any{
						map[string]any{"name": "Requests", "value": 42},
						map[string]any{"name": "Errors", "value": 3},
					},
				},
			},
			{
				Match:   "chart",
				Text:    "Plotting the last week.",
				Loading: true,
				Widget: map[string]any{
					"type":   "chart",
					"points": []any{3, 1, 4, 1, 5, 9, 2},
				},
			},
			{
				Match:    "broken",
				Text:     "This widget never finishes ",
				Widget:   map[string]any{"type": "table", "items": []any{1, 2, 3}},
				Truncate: true,
			},
			{
				Match:  "fail",
				Status: 500,
				Error:  "boom",
			},
		},
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Reply returns the reply for a message. Without a match the default
// reply is used, or the message is echoed.
func (s *Script) Reply(message string) Reply {
	lower := strings.ToLower(message)
	for _, reply := range s.Replies {
		if reply.Match == "" || strings.Contains(lower, strings.ToLower(reply.Match)) {
			return reply
		}
	}
	if s.Default != nil {
		return *s.Default
	}
	return Reply{Text: "You said: " + message}
}

// Fragments returns the text fragments of the reply, each at most size
// runes long. A size of zero or less sends the text as one fragment.
func (r Reply) Fragments(size int) ([]string, error) {
	var result []string
	if len(r.Parts) > 0 {
		result = append(result, r.Parts...)
	} else if r.Text != "" {
		result = split(r.Text, size)
	}
	if r.Widget == nil {
		return result, nil
	}

	// Widget markers
	data, err := json.Marshal(r.Widget)
	if err != nil {
		return nil, chatstream.ErrBadParameter.Withf("widget: %v", err)
	}
	if r.Loading {
		if widgetType, ok := r.Widget["type"].(string); ok && widgetType != "" {
			result = append(result, schema.MarkerLoading+widgetType)
		}
	}
	if r.Truncate {
		data = data[:len(data)/2]
	}
	payload := schema.MarkerData + string(data)
	return append(result, split(payload, size)...), nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (s *Script) validate() error {
	for i, reply := range s.Replies {
		if reply.Status != 0 && (reply.Status < 400 || reply.Status > 599) {
			return chatstream.ErrBadParameter.Withf("reply %d: invalid status %d", i, reply.Status)
		}
		if reply.Widget != nil {
			if _, ok := reply.Widget["type"]; !ok {
				return chatstream.ErrBadParameter.Withf("reply %d: widget has no type", i)
			}
		}
	}
	return nil
}

// split cuts text into pieces of at most size runes
func split(text string, size int) []string {
	runes := []rune(text)
	if size <= 0 || len(runes) <= size {
		return []string{text}
	}
	result := make([]string, 0, len(runes)/size+1)
	for len(runes) > 0 {
		n := min(size, len(runes))
		result = append(result, string(runes[:n]))
		runes = runes[n:]
	}
	return result
}

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (r Reply) String() string {
	if r.Status != 0 {
		return fmt.Sprintf("reply<%q status=%d>", r.Match, r.Status)
	}
	return fmt.Sprintf("reply<%q widget=%v>", r.Match, r.Widget != nil)
}
