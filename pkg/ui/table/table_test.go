package table_test

import (
	"encoding/json"
	"strings"
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	table "github.com/mutablelogic/go-chatstream/pkg/ui/table"
	assert "github.com/stretchr/testify/assert"
)

func widget(data string) *schema.Widget {
	return &schema.Widget{Type: "table", Data: json.RawMessage(data)}
}

func Test_table_001(t *testing.T) {
	assert := assert.New(t)
	data, err := table.Widget(widget(`{"type":"table","items":[{"name":"Requests","value":42},{"name":"Errors","value":3,"note":"rising"}]}`))
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"name", "value", "note"}, data.Header())
	assert.Equal(2, data.Len())
	assert.Equal([]any{"Requests", float64(42), nil}, data.Row(0))

	markdown := table.RenderMarkdown(data)
	assert.Equal("| name | value | note |\n|---|---|---|\n| Requests | 42 | - |\n| Errors | 3 | rising |", markdown)
}

func Test_table_002(t *testing.T) {
	assert := assert.New(t)
	data, err := table.Widget(widget(`{"type":"chart","points":[3,1.5,"x"]}`))
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"#", "value"}, data.Header())
	assert.Equal(3, data.Len())
	assert.Equal("| # | value |\n|---|---|\n| **1** | 3 |\n| **2** | 1.5 |\n| **3** | x |", table.RenderMarkdown(data))
}

func Test_table_003(t *testing.T) {
	assert := assert.New(t)
	data, err := table.Widget(widget(`{"type":"card","title":"Weather","temp":21,"tags":["a","b"]}`))
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"name", "value"}, data.Header())
	assert.Equal(3, data.Len())
	assert.Equal([]any{table.Bold{Value: "tags"}, []any{"a", "b"}}, data.Row(0))
	assert.Contains(table.RenderMarkdown(data), `| **tags** | ["a","b"] |`)
}

func Test_table_004(t *testing.T) {
	assert := assert.New(t)
	_, err := table.Widget(nil)
	assert.Error(err)
	_, err = table.Widget(&schema.Widget{Type: "table"})
	assert.Error(err)
	_, err = table.Widget(widget(`[1,2]`))
	assert.Error(err)
}

func Test_table_005(t *testing.T) {
	assert := assert.New(t)
	data, err := table.Widget(widget(`{"type":"table","items":[{"name":"a|b","value":true}]}`))
	if !assert.NoError(err) {
		return
	}
	rendered := table.Render(data, 0)
	assert.Contains(rendered, "a|b")
	assert.Contains(rendered, "true")
	assert.Contains(table.RenderMarkdown(data), `a\|b`)
	assert.Equal(3, len(strings.Split(table.RenderMarkdown(data), "\n")))
}

func Test_format_001(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("-", table.FormatCell(nil))
	assert.Equal("-", table.FormatCell(""))
	assert.Equal("0", table.FormatCell(float64(0)))
	assert.Equal("1.25", table.FormatCell(1.25))
	assert.Equal("false", table.FormatCell(false))
	assert.Equal(`{"a":1}`, table.FormatCell(map[string]any{"a": 1}))
	assert.Equal("abcd…", table.Truncate("abcdefgh", 5))
	assert.Equal("a b", table.Truncate("a\nb", 5))
}
