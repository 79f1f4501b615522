package decoder_test

import (
	"math/rand"
	"testing"

	// Packages
	decoder "github.com/mutablelogic/go-chatstream/pkg/decoder"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

///////////////////////////////////////////////////////////////////////////////
// HELPERS

type completion struct {
	text   string
	widget *schema.Widget
}

// recorder implements chatstream.Handler
type recorder struct {
	updates  []schema.Update
	complete []completion
}

func (r *recorder) Update(u schema.Update) {
	r.updates = append(r.updates, u)
}

func (r *recorder) Complete(text string, widget *schema.Widget) {
	r.complete = append(r.complete, completion{text, widget})
}

func (r *recorder) contents() []string {
	var result []string
	for _, u := range r.updates {
		if u.Content != nil {
			result = append(result, *u.Content)
		}
	}
	return result
}

// decode writes the stream in the given chunks and closes the decoder
func decode(chunks ...string) *recorder {
	r := new(recorder)
	d := decoder.New(r)
	for _, chunk := range chunks {
		d.Write([]byte(chunk))
	}
	d.Close()
	return r
}

const (
	helloStream  = "data: {\"text\":\"Hello \"}\ndata: {\"text\":\"world\"}\ndata: [DONE]\n"
	widgetStream = "data: {\"text\":\"Sure. WIDGET_DATA:{\\\"type\\\":\\\"work-items\\\",\\\"items\\\":[]}\"}\ndata: [DONE]\n"
)

///////////////////////////////////////////////////////////////////////////////
// TESTS

func Test_decoder_001(t *testing.T) {
	assert := assert.New(t)
	r := decode(helloStream)
	assert.Equal([]string{"Hello ", "Hello world"}, r.contents())
	if assert.Len(r.complete, 1) {
		assert.Equal("Hello world", r.complete[0].text)
		assert.Nil(r.complete[0].widget)
	}
	for _, u := range r.updates {
		if assert.NotNil(u.IsStreaming) {
			assert.True(*u.IsStreaming)
		}
	}
}

func Test_decoder_002(t *testing.T) {
	assert := assert.New(t)
	r := decode(widgetStream)
	if assert.Len(r.updates, 1) {
		u := r.updates[0]
		assert.Equal("Sure.", *u.Content)
		assert.True(*u.WidgetLoading)
		assert.True(*u.IsStreaming)
		if assert.NotNil(u.Widget) {
			assert.Equal("work-items", u.Widget.Type)
			assert.Nil(u.Widget.Data)
		}
	}
	if assert.Len(r.complete, 1) {
		assert.Equal("Sure.", r.complete[0].text)
		if assert.NotNil(r.complete[0].widget) {
			assert.Equal("work-items", r.complete[0].widget.Type)
			assert.JSONEq(`{"type":"work-items","items":[]}`, string(r.complete[0].widget.Data))
		}
	}
}

func Test_decoder_003(t *testing.T) {
	// A loading signal is never display text
	assert := assert.New(t)
	r := decode(
		"data: {\"text\":\"WIDGET_LOADING:hotels\"}\n",
		"data: {\"text\":\"No hotels found.\"}\n",
		"data: [DONE]\n",
	)
	if assert.Len(r.updates, 2) {
		assert.True(*r.updates[0].WidgetLoading)
		assert.Equal("hotels", r.updates[0].Widget.Type)
		assert.Nil(r.updates[0].Content)
	}
	if assert.Len(r.complete, 1) {
		assert.Equal("No hotels found.", r.complete[0].text)
		assert.Nil(r.complete[0].widget)
	}
	for _, content := range r.contents() {
		assert.NotContains(content, schema.MarkerLoading)
	}
}

func Test_decoder_004(t *testing.T) {
	// The same stream split into different chunks gives the same events
	streams := []string{
		helloStream,
		widgetStream,
		"data: {\"text\":\"Here \"}\n\ndata: {\"text\":\"you go WIDGET_\"}\r\ndata: {\"text\":\"DATA:{\\\"type\\\":\\\"hotels\\\",\"}\ndata: {\"text\":\"\\\"items\\\":[{\\\"name\\\":\\\"Ré\\\"}]}\"}\ndata: [DONE]\n",
	}
	rnd := rand.New(rand.NewSource(42))
	for _, stream := range streams {
		want := decode(stream)

		// Every split into two chunks
		for i := 1; i < len(stream); i++ {
			assert.Equal(t, want, decode(stream[:i], stream[i:]), "split at %d", i)
		}

		// Single bytes
		bytes := make([]string, 0, len(stream))
		for i := range len(stream) {
			bytes = append(bytes, stream[i:i+1])
		}
		assert.Equal(t, want, decode(bytes...))

		// Random chunk sizes, splitting multi-byte runes as well
		for n := 0; n < 50; n++ {
			var chunks []string
			for rest := stream; len(rest) > 0; {
				size := min(1+rnd.Intn(8), len(rest))
				chunks = append(chunks, rest[:size])
				rest = rest[size:]
			}
			assert.Equal(t, want, decode(chunks...))
		}
	}
}

func Test_decoder_005(t *testing.T) {
	// Malformed and foreign lines are skipped
	assert := assert.New(t)
	r := new(recorder)
	d := decoder.New(r)
	d.Write([]byte(": keep-alive\n\nevent: message\ndata: {not json}\ndata: {\"other\":1}\ndata: {\"text\":\"ok\"}\ndata: [DONE]\n"))
	d.Close()
	assert.Equal([]string{"ok"}, r.contents())
	assert.Equal(uint(7), d.Stats().Lines)
	assert.Equal(uint(3), d.Stats().Frames)
	assert.Equal(uint(4), d.Stats().Skipped)
}

func Test_decoder_006(t *testing.T) {
	// A payload which never closes is a degraded completion
	assert := assert.New(t)
	r := decode(
		"data: {\"text\":\"Look: WIDGET_DATA:{\\\"type\\\":\\\"hotels\\\",\\\"items\\\":[\"}\n",
		"data: [DONE]\n",
	)
	assert.Empty(r.complete)
	if assert.Len(r.updates, 2) {
		assert.Equal("Look:", *r.updates[0].Content)
		last := r.updates[1]
		assert.Nil(last.Content)
		assert.False(*last.WidgetLoading)
		assert.False(*last.IsStreaming)
	}
}

func Test_decoder_007(t *testing.T) {
	// The widget type is announced once it can be scanned
	assert := assert.New(t)
	r := decode(
		"data: {\"text\":\"Done. WIDGET_DATA:{\\\"ty\"}\n",
		"data: {\"text\":\"pe\\\":\\\"hotels\\\",\"}\n",
		"data: {\"text\":\"\\\"items\\\":[]}\"}\n",
	)
	if assert.Len(r.updates, 2) {
		assert.Equal("Done.", *r.updates[0].Content)
		assert.Nil(r.updates[0].Widget)
		assert.Nil(r.updates[1].Content)
		assert.Equal("hotels", r.updates[1].Widget.Type)
	}
	if assert.Len(r.complete, 1) {
		assert.Equal("Done.", r.complete[0].text)
		assert.Equal("hotels", r.complete[0].widget.Type)
	}
}

func Test_decoder_008(t *testing.T) {
	// Text after the marker is never delivered as content
	assert := assert.New(t)
	r := decode(
		"data: {\"text\":\"A\"}\n",
		"data: {\"text\":\" WIDGET_DATA:{\\\"type\\\":\\\"x\\\"\"}\n",
		"data: {\"text\":\"}\"}\n",
		"data: {\"text\":\"trailing words\"}\n",
	)
	assert.Equal([]string{"A", "A"}, r.contents())
	for _, content := range r.contents() {
		assert.NotContains(content, "WIDGET")
	}
	// The payload includes the trailing words, so it does not parse
	assert.Empty(r.complete)
}

func Test_decoder_009(t *testing.T) {
	// Frames after the sentinel are ignored
	assert := assert.New(t)
	r := new(recorder)
	d := decoder.New(r)
	d.Write([]byte("data: {\"text\":\"one\"}\ndata: [DONE]\ndata: {\"text\":\"two\"}\n"))
	assert.True(d.Done())
	d.Write([]byte("data: {\"text\":\"three\"}\n"))
	d.Close()
	d.Close()
	assert.Equal([]string{"one"}, r.contents())
	assert.Len(r.complete, 1)
	assert.Equal(decoder.StateDone, d.State())
}

func Test_decoder_010(t *testing.T) {
	// A final line without a newline is still decoded
	assert := assert.New(t)
	r := decode("data: {\"text\":\"tail\"}")
	assert.Equal([]string{"tail"}, r.contents())
	if assert.Len(r.complete, 1) {
		assert.Equal("tail", r.complete[0].text)
	}
}

func Test_decoder_011(t *testing.T) {
	// Widget state transitions
	assert := assert.New(t)
	r := new(recorder)
	d := decoder.New(r)
	assert.Equal(decoder.StateNoMarker, d.State())
	d.Write([]byte("data: {\"text\":\"x WIDGET_DATA:{}\"}\n"))
	assert.Equal(decoder.StateBuffering, d.State())
	d.Close()
	assert.Equal(decoder.StateDone, d.State())
	if assert.Len(r.complete, 1) {
		assert.Equal("x", r.complete[0].text)
		assert.Equal("", r.complete[0].widget.Type)
		assert.JSONEq(`{}`, string(r.complete[0].widget.Data))
	}
}

func Test_decoder_012(t *testing.T) {
	// The loading type fills in for a payload without a type field
	assert := assert.New(t)
	r := decode(
		"data: {\"text\":\"WIDGET_LOADING:calendar\"}\n",
		"data: {\"text\":\"WIDGET_DATA:{\\\"events\\\":[1,2]}\"}\n",
	)
	if assert.Len(r.complete, 1) {
		assert.Equal("", r.complete[0].text)
		assert.Equal("calendar", r.complete[0].widget.Type)
		assert.JSONEq(`{"events":[1,2]}`, string(r.complete[0].widget.Data))
	}
}
