package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	// Packages
	client "github.com/mutablelogic/go-client"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	chatstream "github.com/mutablelogic/go-chatstream"
	decoder "github.com/mutablelogic/go-chatstream/pkg/decoder"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	readBufferSize = 4 * 1024
)

// Ensure the client implements chatstream.Streamer
var _ chatstream.Streamer = (*Client)(nil)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Stream posts the chat request and decodes the streamed reply into the
// handler. A non-success status returns a *StatusError; a failure to
// reach the server returns an error wrapping chatstream.ErrUnavailable.
// The context is checked before every read and before every chunk is
// decoded, and its error is returned on cancellation.
func (c *Client) Stream(ctx context.Context, req schema.ChatRequest, handler chatstream.Handler) (err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Stream",
		attribute.Int("history", len(req.ConversationHistory)),
	)
	defer func() { endSpan(err) }()

	// Build the request
	body, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.path(chatPath), bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", client.ContentTypeJson)
	httpReq.Header.Set("Accept", client.ContentTypeTextStream)

	// Send the request
	resp, err := c.streamClient().Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return chatstream.ErrUnavailable.With(err)
	}
	defer resp.Body.Close()

	// Non-success responses carry an error body
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readStatusError(resp)
	}

	// Decode the stream, recording the frame counts on the span
	d := decoder.New(handler)
	err = decode(ctx, resp.Body, d)
	stats := d.Stats()
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("frames", int(stats.Frames)),
		attribute.Int("skipped", int(stats.Skipped)),
	)
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// decode reads the body one chunk at a time until the sentinel, the end
// of the body, or cancellation. The decoder is only closed (and the
// completion delivered) when the stream ended normally.
func decode(ctx context.Context, r io.Reader, d *decoder.Decoder) error {
	buf := make([]byte, readBufferSize)
	for !d.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := r.Read(buf)
		if n > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			d.Write(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.Close()
}
