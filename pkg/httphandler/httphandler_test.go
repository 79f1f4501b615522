package httphandler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	// Packages
	httpclient "github.com/mutablelogic/go-chatstream/pkg/httpclient"
	httphandler "github.com/mutablelogic/go-chatstream/pkg/httphandler"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	assert "github.com/stretchr/testify/assert"
	require "github.com/stretchr/testify/require"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

type recorder struct {
	updates  []schema.Update
	complete bool
	text     string
	widget   *schema.Widget
}

func (r *recorder) Update(update schema.Update) {
	r.updates = append(r.updates, update)
}

func (r *recorder) Complete(text string, widget *schema.Widget) {
	r.complete = true
	r.text = text
	r.widget = widget
}

func newClient(t *testing.T, opts ...httphandler.Opt) *httpclient.Client {
	t.Helper()
	backend, err := httphandler.New(nil, append([]httphandler.Opt{httphandler.WithDelay(0), httphandler.WithChunkSize(3)}, opts...)...)
	require.NoError(t, err)
	server := httptest.NewServer(httphandler.ServeMux(backend))
	t.Cleanup(server.Close)
	client, err := httpclient.New(server.URL, nil)
	require.NoError(t, err)
	return client
}

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_httphandler_001(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t)

	var r recorder
	assert.NoError(client.Stream(context.Background(), schema.ChatRequest{Message: "hello there"}, &r))
	assert.True(r.complete)
	assert.Equal("Hello world", r.text)
	assert.Nil(r.widget)
	assert.Len(r.updates, 4)
}

func Test_httphandler_002(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t)

	var r recorder
	assert.NoError(client.Stream(context.Background(), schema.ChatRequest{Message: "Give me a SUMMARY"}, &r))
	assert.True(r.complete)
	assert.Equal("Here is your summary:", r.text)
	if assert.NotNil(r.widget) {
		assert.Equal("table", r.widget.Type)
		assert.Len(r.widget.Map()["items"], 2)
	}
}

func Test_httphandler_003(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t)

	var r recorder
	assert.NoError(client.Stream(context.Background(), schema.ChatRequest{Message: "chart please"}, &r))
	assert.True(r.complete)
	assert.Equal("Plotting the last week.", r.text)
	if assert.NotNil(r.widget) {
		assert.Equal("chart", r.widget.Type)
	}

	// The loading announcement precedes the payload
	var announced bool
	for _, update := range r.updates {
		if update.WidgetLoading != nil && *update.WidgetLoading && update.Widget != nil && update.Content == nil {
			announced = true
			assert.Equal("chart", update.Widget.Type)
		}
	}
	assert.True(announced)
}

func Test_httphandler_004(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t)

	var r recorder
	assert.NoError(client.Stream(context.Background(), schema.ChatRequest{Message: "broken"}, &r))
	assert.False(r.complete)
	if assert.NotEmpty(r.updates) {
		last := r.updates[len(r.updates)-1]
		assert.False(*last.WidgetLoading)
		assert.False(*last.IsStreaming)
	}
}

func Test_httphandler_005(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t)

	err := client.Stream(context.Background(), schema.ChatRequest{Message: "please fail"}, &recorder{})
	var statusErr *httpclient.StatusError
	if assert.ErrorAs(err, &statusErr) {
		assert.Equal(http.StatusInternalServerError, statusErr.Status)
		assert.Equal("boom", statusErr.Details)
	}

	err = client.Stream(context.Background(), schema.ChatRequest{Message: "  "}, &recorder{})
	if assert.ErrorAs(err, &statusErr) {
		assert.Equal(http.StatusBadRequest, statusErr.Status)
		assert.Equal("message is required", statusErr.Details)
	}
}

func Test_httphandler_006(t *testing.T) {
	assert := assert.New(t)
	client := newClient(t, httphandler.WithVersion("v1.2.3"))

	health, err := client.Health(context.Background())
	if assert.NoError(err) {
		assert.Equal("ok", health.Status)
		assert.Equal("v1.2.3", health.Version)
	}
}

func Test_httphandler_007(t *testing.T) {
	// Raw wire format
	assert := assert.New(t)
	backend, err := httphandler.New(nil, httphandler.WithDelay(0), httphandler.WithChunkSize(0))
	require.NoError(t, err)
	mux := httphandler.ServeMux(backend)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(`{"message":"hello","conversationHistory":[]}`))
	r.Header.Set("Content-Type", "application/json")
	mux.ServeHTTP(w, r)

	assert.Equal(http.StatusOK, w.Code)
	assert.Equal("text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal("data: {\"text\":\"Hello world\"}\n\ndata: [DONE]\n\n", w.Body.String())

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/chat", nil)
	mux.ServeHTTP(w, r)
	assert.Equal(http.StatusMethodNotAllowed, w.Code)
}

func Test_httphandler_008(t *testing.T) {
	// Unmatched messages are echoed
	assert := assert.New(t)
	client := newClient(t)

	var r recorder
	assert.NoError(client.Stream(context.Background(), schema.ChatRequest{Message: "anything else"}, &r))
	assert.Equal("You said: anything else", r.text)
	assert.True(strings.HasPrefix(*r.updates[0].Content, "You"))
}

func Test_backend_001(t *testing.T) {
	assert := assert.New(t)
	_, err := httphandler.New(nil, httphandler.WithChunkSize(-1))
	assert.Error(err)
	_, err = httphandler.New(nil, httphandler.WithDelay(-1))
	assert.Error(err)
}
