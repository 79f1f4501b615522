package schema

import (
	"encoding/json"

	// Packages
	types "github.com/mutablelogic/go-server/pkg/types"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

// Widget is a structured payload embedded in the reply. Data is nil while
// the payload is still arriving; once complete it holds the whole object,
// including the type field.
type Widget struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Update is a partial change to the streaming message. Only the fields
// which are non-nil changed.
type Update struct {
	Content       *string `json:"content,omitempty"`
	WidgetLoading *bool   `json:"widgetLoading,omitempty"`
	Widget        *Widget `json:"widget,omitempty"`
	IsStreaming   *bool   `json:"isStreaming,omitempty"`
}

////////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// ContentUpdate returns an update carrying plain streaming text
func ContentUpdate(text string) Update {
	return Update{
		Content:     types.Ptr(text),
		IsStreaming: types.Ptr(true),
	}
}

// LoadingUpdate returns an update announcing a widget of the given type
func LoadingUpdate(widgetType string) Update {
	return Update{
		WidgetLoading: types.Ptr(true),
		Widget:        &Widget{Type: widgetType},
		IsStreaming:   types.Ptr(true),
	}
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Map decodes the widget data into a map, returning nil if the data is
// missing or not an object
func (w Widget) Map() map[string]any {
	var result map[string]any
	if len(w.Data) == 0 {
		return nil
	} else if err := json.Unmarshal(w.Data, &result); err != nil {
		return nil
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////
// STRINGIFY

func (u Update) String() string {
	return types.Stringify(u)
}

func (w Widget) String() string {
	return types.Stringify(w)
}
