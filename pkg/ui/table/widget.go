package table

import (
	"encoding/json"
	"slices"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// widgetTable presents the rows of a widget payload
type widgetTable struct {
	header []string
	rows   [][]any
}

var _ TableData = (*widgetTable)(nil)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// rowFields are the payload fields searched, in order, for the table rows
var rowFields = []string{"items", "rows", "data", "points", "values"}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Widget returns the rows of a widget payload as table data. Rows come
// from the first of the items, rows, data, points or values arrays. An
// array of objects gives one column per key; an array of scalars gives a
// numbered column. Without any such array, the payload fields other than
// the type are listed as name and value.
func Widget(widget *schema.Widget) (TableData, error) {
	if widget == nil || len(widget.Data) == 0 {
		return nil, chatstream.ErrBadParameter.With("widget has no data")
	}
	var object map[string]any
	if err := json.Unmarshal(widget.Data, &object); err != nil {
		return nil, chatstream.ErrBadParameter.Withf("widget: %v", err)
	}
	for _, field := range rowFields {
		if items, ok := object[field].([]any); ok {
			return fromArray(items), nil
		}
	}
	return fromObject(object), nil
}

///////////////////////////////////////////////////////////////////////////////
// TableData IMPLEMENTATION

func (t *widgetTable) Header() []string {
	return t.header
}

func (t *widgetTable) Len() int {
	return len(t.rows)
}

func (t *widgetTable) Row(i int) []any {
	return t.rows[i]
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func fromArray(items []any) *widgetTable {
	// Collect the union of object keys, in order of first appearance
	// within sorted keys of each object
	var keys []string
	objects := true
	for _, item := range items {
		object, ok := item.(map[string]any)
		if !ok {
			objects = false
			break
		}
		itemKeys := make([]string, 0, len(object))
		for key := range object {
			itemKeys = append(itemKeys, key)
		}
		slices.Sort(itemKeys)
		for _, key := range itemKeys {
			if !slices.Contains(keys, key) {
				keys = append(keys, key)
			}
		}
	}

	t := new(widgetTable)
	if objects && len(keys) > 0 {
		t.header = keys
		for _, item := range items {
			object := item.(map[string]any)
			row := make([]any, len(keys))
			for i, key := range keys {
				row[i] = object[key]
			}
			t.rows = append(t.rows, row)
		}
		return t
	}

	// Scalars, or a mix of values
	t.header = []string{"#", "value"}
	for i, item := range items {
		t.rows = append(t.rows, []any{Bold{i + 1}, item})
	}
	return t
}

func fromObject(object map[string]any) *widgetTable {
	keys := make([]string, 0, len(object))
	for key := range object {
		if key != "type" {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	t := &widgetTable{header: []string{"name", "value"}}
	for _, key := range keys {
		t.rows = append(t.rows, []any{Bold{key}, object[key]})
	}
	return t
}
