package schema_test

import (
	"encoding/json"
	"testing"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_schema_001(t *testing.T) {
	assert := assert.New(t)
	data, err := json.Marshal(schema.ChatRequest{
		Message:             "hi",
		ConversationHistory: []schema.Message{{Role: schema.RoleUser, Content: "earlier"}},
		UserName:            "sam",
	})
	assert.NoError(err)
	assert.JSONEq(`{"message":"hi","conversationHistory":[{"role":"user","content":"earlier"}],"userName":"sam"}`, string(data))
}

func Test_schema_002(t *testing.T) {
	assert := assert.New(t)
	data, err := json.Marshal(schema.Result{ID: "a", Success: true, State: schema.StateCompleted, Content: "done"})
	assert.NoError(err)
	assert.JSONEq(`{"id":"a","success":true,"state":"completed","content":"done"}`, string(data))
	assert.Equal("aborted", schema.StateAborted.String())
	assert.Equal("state(99)", schema.State(99).String())
}

func Test_schema_003(t *testing.T) {
	assert := assert.New(t)
	update := schema.LoadingUpdate("chart")
	assert.True(*update.WidgetLoading)
	assert.True(*update.IsStreaming)
	assert.Nil(update.Content)
	assert.Equal("chart", update.Widget.Type)

	update = schema.ContentUpdate("text")
	assert.Equal("text", *update.Content)
	assert.Nil(update.WidgetLoading)
	assert.Nil(update.Widget)
}

func Test_schema_004(t *testing.T) {
	assert := assert.New(t)
	widget := schema.Widget{Type: "table", Data: json.RawMessage(`{"type":"table","items":[1]}`)}
	assert.Equal("table", widget.Map()["type"])
	assert.Nil(schema.Widget{Type: "table"}.Map())
	assert.Nil(schema.Widget{Data: json.RawMessage(`[1]`)}.Map())
}
