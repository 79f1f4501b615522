// Package decoder turns an arbitrarily chunked reply stream into updates.
//
// Bytes are buffered until a newline completes a line, so chunk
// boundaries never drop or duplicate a frame. Each frame's text fragment
// is either a loading signal, or is appended to the reply and scanned for
// the widget data marker. Once the marker is seen the text before it is
// frozen and everything after it is buffered as the widget payload until
// the stream ends.
package decoder

import (
	"bytes"
	"io"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Decoder consumes raw stream chunks. It is not safe for concurrent use:
// chunks must be written one at a time, in arrival order.
type Decoder struct {
	handler chatstream.Handler
	buf     []byte
	done    bool // sentinel seen
	closed  bool
	stats   Stats
	widget  extractor
}

// Stats counts what the decoder has seen so far
type Stats struct {
	Lines   uint `json:"lines"`
	Frames  uint `json:"frames"`
	Skipped uint `json:"skipped"`
}

var _ io.WriteCloser = (*Decoder)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a decoder which emits events to the handler
func New(handler chatstream.Handler) *Decoder {
	return &Decoder{handler: handler}
}

// Close ends the stream. Any unterminated trailing line is decoded, then
// the final text and widget are delivered to the handler's Complete
// method. When a widget payload never closed into valid JSON, an update
// which clears the loading and streaming flags is emitted instead.
// Calling Close more than once has no effect.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	// Flush a final line which had no newline
	if !d.done && len(d.buf) > 0 {
		d.line(d.buf)
	}
	d.buf = nil

	if text, widget, ok := d.widget.finish(); ok {
		d.handler.Complete(text, widget)
	} else {
		d.handler.Update(schema.Update{
			WidgetLoading: types.Ptr(false),
			IsStreaming:   types.Ptr(false),
		})
	}

	// Return success
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Write consumes a chunk of the stream. It always accepts the whole
// chunk; data after the termination sentinel is discarded.
func (d *Decoder) Write(data []byte) (int, error) {
	if d.done || d.closed {
		return len(data), nil
	}
	d.buf = append(d.buf, data...)

	// Decode each complete line
	start := 0
	for !d.done {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}
		d.line(d.buf[start : start+i])
		start += i + 1
	}

	// Carry the incomplete line over to the next chunk
	if d.done {
		d.buf = d.buf[:0]
	} else if start > 0 {
		d.buf = append(d.buf[:0], d.buf[start:]...)
	}

	return len(data), nil
}

// Done returns true once the termination sentinel has been decoded
func (d *Decoder) Done() bool {
	return d.done
}

// State returns the position in the widget state machine
func (d *Decoder) State() State {
	return d.widget.state
}

// Stats returns line and frame counters
func (d *Decoder) Stats() Stats {
	return d.stats
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (d *Decoder) line(line []byte) {
	d.stats.Lines++
	frame, ok := ParseFrame(string(line))
	if !ok {
		d.stats.Skipped++
		return
	}
	d.stats.Frames++

	switch {
	case frame.Done:
		d.done = true
	case frame.Text == nil:
		return
	default:
		d.fragment(*frame.Text)
	}
}

func (d *Decoder) fragment(text string) {
	// A loading signal is never display text
	if widgetType, ok := loading(text); ok {
		d.widget.announced = widgetType
		d.handler.Update(schema.LoadingUpdate(widgetType))
		return
	}
	if update, ok := d.widget.append(text); ok {
		d.handler.Update(update)
	}
}
