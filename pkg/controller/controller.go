// Package controller owns the lifecycle of streamed chat replies. At most
// one session is active per controller: sending a new prompt cancels the
// previous session, and from that moment no callback bearing the previous
// session's identifier reaches the consumer.
package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	// Packages
	uuid "github.com/google/uuid"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	zerolog "github.com/rs/zerolog"
	attribute "go.opentelemetry.io/otel/attribute"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Controller issues chat requests through a streamer and relays the
// decoded reply to consumer callbacks
type Controller struct {
	streamer    chatstream.Streamer
	log         zerolog.Logger
	tracer      trace.Tracer
	newID       func() string
	unavailable string

	mu      sync.Mutex // guards current and state
	current *session
	state   schema.State

	emit sync.Mutex // serialises callbacks across sessions
}

// session is a single request/response lifecycle. It implements
// chatstream.Handler for the streamer.
type session struct {
	*Controller
	id        string
	callbacks chatstream.Callbacks
	active    atomic.Bool
	cancel    context.CancelFunc

	// Written from the decode loop only
	content   string
	completed bool
	text      string
	widget    *schema.Widget
}

var _ chatstream.Handler = (*session)(nil)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a controller which sends requests through the streamer
func New(streamer chatstream.Streamer, opts ...Opt) (*Controller, error) {
	if streamer == nil {
		return nil, chatstream.ErrBadParameter.With("streamer is required")
	}
	c := &Controller{
		streamer:    streamer,
		log:         zerolog.Nop(),
		newID:       uuid.NewString,
		unavailable: defaultUnavailable,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Send streams the reply to prompt into the callbacks and returns when
// the session reaches a terminal state. An empty or whitespace-only prompt
// is rejected without any callback. Any previously active session is
// cancelled first. Failures are reported through OnError and never
// returned; cancelling ctx aborts the session.
func (c *Controller) Send(ctx context.Context, prompt string, callbacks chatstream.Callbacks, opts ...SendOpt) schema.Result {
	if strings.TrimSpace(prompt) == "" {
		return schema.Result{Success: false, State: schema.StateIdle}
	}
	if callbacks == nil {
		callbacks = CallbackFuncs{}
	}

	// Build the request
	req := schema.ChatRequest{
		Message:             prompt,
		ConversationHistory: []schema.Message{},
	}
	for _, opt := range opts {
		opt(&req)
	}

	// Create the session, and make it current, which stops the previous one
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s := &session{
		Controller: c,
		id:         c.newID(),
		callbacks:  callbacks,
		cancel:     cancel,
	}
	s.active.Store(true)
	c.start(s)

	// Otel span
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Send",
		attribute.String("id", s.id),
		attribute.Int("history", len(req.ConversationHistory)),
	)

	// The consumer renders a pending message before any network activity
	c.log.Debug().Str("id", s.id).Int("history", len(req.ConversationHistory)).Msg("stream started")
	s.deliver(func() { callbacks.OnStreamStart(s.id) })

	// Stream the reply and resolve the session
	err := s.run(ctx, req)
	result := s.resolve(ctx, err)
	c.finish(s, result.State)

	// End the span with the error only if the session failed
	if result.State == schema.StateErrored {
		endSpan(err)
	} else {
		endSpan(nil)
	}
	return result
}

// Abort cancels the current session, if any. No further callbacks are
// delivered for it. It is safe to call at any time, and more than once.
func (c *Controller) Abort() {
	c.mu.Lock()
	s := c.current
	c.mu.Unlock()
	if s != nil {
		c.log.Debug().Str("id", s.id).Msg("stream aborted")
		s.stop()
	}
}

// IsStreaming returns true between a call to Send and the resolution of
// its session
func (c *Controller) IsStreaming() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// State returns the state of the current session, or the terminal state
// of the last one
func (c *Controller) State() schema.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS - CONTROLLER

// start makes s the current session and stops any previous one. The
// previous session is deactivated before s can deliver its first callback.
func (c *Controller) start(s *session) {
	c.mu.Lock()
	prev := c.current
	c.current = s
	c.state = schema.StateStreaming
	c.mu.Unlock()
	if prev != nil {
		c.log.Debug().Str("id", prev.id).Str("by", s.id).Msg("stream superseded")
		prev.stop()
	}
}

// finish records the terminal state if s is still the current session
func (c *Controller) finish(s *session, state schema.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == s {
		c.current = nil
		c.state = state
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS - SESSION

// stop deactivates the session and cancels its request
func (s *session) stop() {
	s.active.Store(false)
	s.cancel()
}

// deliver invokes fn while the session is active. Callbacks from all
// sessions are serialised, so once a session has been deactivated none of
// its callbacks can run after the next session's callbacks begin.
func (s *session) deliver(fn func()) bool {
	s.emit.Lock()
	defer s.emit.Unlock()
	if !s.active.Load() {
		return false
	}
	fn()
	return true
}

// run streams the request, turning a panic into an error
func (s *session) run(ctx context.Context, req schema.ChatRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chatstream.ErrInternalServerError.Withf("%v", r)
		}
	}()
	return s.streamer.Stream(ctx, req, s)
}

// resolve maps the outcome of the stream to a result, reporting any
// failure through OnError
func (s *session) resolve(ctx context.Context, err error) schema.Result {
	result := schema.Result{ID: s.id}
	switch {
	case err == nil && s.completed:
		result.Success = true
		result.State = schema.StateCompleted
		result.Content = s.text
		result.Widget = s.widget
		s.log.Debug().Str("id", s.id).Bool("widget", s.widget != nil).Msg("stream completed")
	case err == nil && s.active.Load():
		// The widget payload never closed: the last update stands
		result.Success = true
		result.State = schema.StateCompleted
		result.Content = s.content
		result.Degraded = true
		s.log.Warn().Str("id", s.id).Msg("stream completed without a valid widget payload")
	case !s.active.Load() || ctx.Err() != nil || errors.Is(err, context.Canceled):
		s.active.Store(false)
		result.State = schema.StateAborted
		s.log.Debug().Str("id", s.id).Msg("stream cancelled")
	default:
		message := s.message(err)
		result.State = schema.StateErrored
		s.log.Error().Err(err).Str("id", s.id).Msg("stream failed")
		s.deliver(func() { s.callbacks.OnError(s.id, message) })
	}
	return result
}

// message formats the error for display
func (s *session) message(err error) string {
	return message(err, s.unavailable)
}

///////////////////////////////////////////////////////////////////////////////
// chatstream.Handler IMPLEMENTATION

func (s *session) Update(update schema.Update) {
	if update.Content != nil {
		s.content = *update.Content
	}
	s.deliver(func() { s.callbacks.OnStreamUpdate(s.id, update) })
}

func (s *session) Complete(text string, widget *schema.Widget) {
	if s.deliver(func() { s.callbacks.OnStreamComplete(s.id, text, widget) }) {
		s.completed = true
		s.text = text
		s.widget = widget
	}
}
