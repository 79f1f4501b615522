package decoder

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// State is the position of the decoder in the widget state machine
type State uint

// extractor accumulates text fragments and splits off the widget payload
// once the data marker has been seen
type extractor struct {
	state      State
	text       strings.Builder // accumulated text, up to and including the marker
	content    string          // frozen display text once the marker is seen
	payload    strings.Builder // raw text from the marker onwards
	widgetType string          // best-effort type scanned from the payload
	announced  string          // type from the most recent loading signal
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	StateNoMarker State = iota
	StateBuffering
	StateDone
)

var (
	reLoading = regexp.MustCompile(`^` + regexp.QuoteMeta(schema.MarkerLoading) + `([A-Za-z0-9_\-]+)$`)
	reType    = regexp.MustCompile(`"type"\s*:\s*"([^"]+)"`)
	rePayload = regexp.MustCompile(`(?s)^` + regexp.QuoteMeta(schema.MarkerData) + `\s*(\{.*\})\s*$`)
)

///////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (s State) String() string {
	switch s {
	case StateNoMarker:
		return "no-marker"
	case StateBuffering:
		return "buffering"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// loading returns the widget type if the fragment is a loading signal
func loading(fragment string) (string, bool) {
	if match := reLoading.FindStringSubmatch(strings.TrimSpace(fragment)); match != nil {
		return match[1], true
	}
	return "", false
}

// append adds a text fragment and returns the update to emit, if any
func (e *extractor) append(fragment string) (schema.Update, bool) {
	switch e.state {
	case StateNoMarker:
		// Resume the marker search just before the previous end of text, so
		// a marker split across fragments is still found
		from := max(e.text.Len()-len(schema.MarkerData)+1, 0)
		e.text.WriteString(fragment)
		text := e.text.String()
		if i := strings.Index(text[from:], schema.MarkerData); i >= 0 {
			return e.boundary(text, from+i), true
		}
		return schema.ContentUpdate(text), true
	case StateBuffering:
		e.payload.WriteString(fragment)
		if e.widgetType == "" {
			if t := scanType(e.payload.String()); t != "" {
				e.widgetType = t
				return schema.Update{Widget: &schema.Widget{Type: t}}, true
			}
		}
	}
	return schema.Update{}, false
}

// boundary freezes the text before the marker and starts buffering
func (e *extractor) boundary(text string, at int) schema.Update {
	e.state = StateBuffering
	e.content = strings.TrimSpace(text[:at])
	e.payload.WriteString(text[at:])
	e.widgetType = scanType(e.payload.String())

	update := schema.Update{
		Content:       types.Ptr(e.content),
		WidgetLoading: types.Ptr(true),
		IsStreaming:   types.Ptr(true),
	}
	if e.widgetType != "" {
		update.Widget = &schema.Widget{Type: e.widgetType}
	}
	return update
}

// finish moves the extractor to the done state. It returns the final text
// and widget, or false if a widget payload never closed into valid JSON.
func (e *extractor) finish() (string, *schema.Widget, bool) {
	state := e.state
	e.state = StateDone
	switch state {
	case StateNoMarker:
		return e.text.String(), nil, true
	case StateBuffering:
		if widget := e.parse(); widget != nil {
			return e.content, widget, true
		}
	}
	return e.content, nil, false
}

// parse decodes the buffered payload as a single JSON object
func (e *extractor) parse() *schema.Widget {
	match := rePayload.FindStringSubmatch(e.payload.String())
	if match == nil {
		return nil
	}

	var object struct {
		Type string `json:"type"`
	}
	var data bytes.Buffer
	if err := json.Compact(&data, []byte(match[1])); err != nil {
		return nil
	} else if err := json.Unmarshal(data.Bytes(), &object); err != nil {
		return nil
	}

	widget := &schema.Widget{Type: object.Type, Data: data.Bytes()}
	if widget.Type == "" {
		widget.Type = e.widgetType
	}
	if widget.Type == "" {
		widget.Type = e.announced
	}
	return widget
}

func scanType(payload string) string {
	if match := reType.FindStringSubmatch(payload); match != nil {
		return match[1]
	}
	return ""
}
