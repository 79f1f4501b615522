// Package bubbletea implements an interactive terminal chat using the
// Charm bubbletea framework. Replies stream into a scrollable history
// through the session controller callbacks, widgets render as tables via
// glamour, and a spinner shows while a widget is loading.
package bubbletea

import (
	"context"
	"errors"
	"strings"

	// Packages
	spinner "github.com/charmbracelet/bubbles/spinner"
	textinput "github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	termenv "github.com/muesli/termenv"
	chatstream "github.com/mutablelogic/go-chatstream"
	controller "github.com/mutablelogic/go-chatstream/pkg/controller"
	history "github.com/mutablelogic/go-chatstream/pkg/history"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	zerolog "github.com/rs/zerolog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Terminal is an interactive chat session in the terminal
type Terminal struct {
	controller *controller.Controller
	history    *history.History
	opts       []controller.SendOpt
	path       string
	log        zerolog.Logger
}

// Opt configures the terminal
type Opt func(*Terminal) error

// callbacks forwards controller callbacks into the program event loop
type callbacks struct {
	send func(tea.Msg)
}

var _ chatstream.Callbacks = (*callbacks)(nil)

///////////////////////////////////////////////////////////////////////////////
// MESSAGES (bubbletea internal)

type startMsg struct {
	id string
}

type updateMsg struct {
	id     string
	update schema.Update
}

type completeMsg struct {
	id     string
	text   string
	widget *schema.Widget
}

type errorMsg struct {
	id      string
	message string
}

type resultMsg struct {
	prompt string
	result schema.Result
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a terminal chat which sends prompts through the controller,
// with prior turns taken from the history
func New(c *controller.Controller, h *history.History, opts ...Opt) (*Terminal, error) {
	t := &Terminal{
		controller: c,
		history:    h,
		log:        zerolog.Nop(),
	}
	if h == nil {
		t.history = history.New(0)
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WithSendOpts sets options applied to every request
func WithSendOpts(opts ...controller.SendOpt) Opt {
	return func(t *Terminal) error {
		t.opts = append(t.opts, opts...)
		return nil
	}
}

// WithTranscript saves the history to path after every completed turn
func WithTranscript(path string) Opt {
	return func(t *Terminal) error {
		t.path = path
		return nil
	}
}

// WithLogger sets the logger for failures which cannot be shown
func WithLogger(log zerolog.Logger) Opt {
	return func(t *Terminal) error {
		t.log = log
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Run takes over the terminal until the user quits or the context is
// cancelled. Any reply still streaming is aborted on return.
func (t *Terminal) Run(ctx context.Context) error {
	// Detect terminal background BEFORE starting bubbletea, so that
	// the escape-sequence response is consumed here rather than leaking
	// into bubbletea's input reader.
	stylePath := "dark"
	if !termenv.HasDarkBackground() {
		stylePath = "light"
	}

	m := newModel(stylePath)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.send = t.sender(ctx, p.Send)
	m.abort = t.controller.Abort
	m.reset = t.history.Reset
	m.record = t.record
	m.restore(t.history.Messages())

	defer t.controller.Abort()
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// sender returns the function which sends a prompt in the background.
// The result arrives in the event loop after the final callback.
func (t *Terminal) sender(ctx context.Context, send func(tea.Msg)) func(string) {
	cb := &callbacks{send: send}
	return func(prompt string) {
		opts := append([]controller.SendOpt{controller.WithHistory(t.history.Messages()...)}, t.opts...)
		go func() {
			result := t.controller.Send(ctx, prompt, cb, opts...)
			send(resultMsg{prompt: prompt, result: result})
		}()
	}
}

// record appends a completed turn to the history, and saves it when a
// transcript path is set
func (t *Terminal) record(prompt string, result schema.Result) {
	reply := result.Content
	if result.Widget != nil {
		reply = strings.TrimSpace(reply + "\n" + schema.MarkerData + string(result.Widget.Data))
	}
	if err := t.history.Append(schema.RoleUser, prompt); err != nil {
		t.log.Warn().Err(err).Msg("history")
	}
	if err := t.history.Append(schema.RoleAssistant, reply); err != nil {
		t.log.Warn().Err(err).Msg("history")
	}
	if t.path != "" {
		if err := t.history.Save(t.path); err != nil {
			t.log.Warn().Err(err).Str("path", t.path).Msg("save transcript")
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// chatstream.Callbacks IMPLEMENTATION

func (c *callbacks) OnStreamStart(id string) {
	c.send(startMsg{id: id})
}

func (c *callbacks) OnStreamUpdate(id string, update schema.Update) {
	c.send(updateMsg{id: id, update: update})
}

func (c *callbacks) OnStreamComplete(id, text string, widget *schema.Widget) {
	c.send(completeMsg{id: id, text: text, widget: widget})
}

func (c *callbacks) OnError(id, message string) {
	c.send(errorMsg{id: id, message: message})
}

///////////////////////////////////////////////////////////////////////////////
// HELPERS

func newInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, /abort, /clear or /quit"
	ti.Focus()
	ti.CharLimit = 0 // unlimited
	return ti
}

func newSpinner() spinner.Model {
	return spinner.New(spinner.WithSpinner(spinner.Dot))
}
