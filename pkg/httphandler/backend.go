package httphandler

import (
	"time"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	zerolog "github.com/rs/zerolog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Backend replays scripted replies in the chat stream wire format
type Backend struct {
	script  *Script
	size    int
	delay   time.Duration
	version string
	log     zerolog.Logger
}

// Opt configures the backend
type Opt func(*Backend) error

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DefaultChunkSize = 8
	DefaultDelay     = 40 * time.Millisecond
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New returns a backend serving the script. A nil script serves the
// built-in one.
func New(script *Script, opts ...Opt) (*Backend, error) {
	if script == nil {
		script = DefaultScript()
	}
	b := &Backend{
		script:  script,
		size:    DefaultChunkSize,
		delay:   DefaultDelay,
		version: "dev",
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

///////////////////////////////////////////////////////////////////////////////
// OPTIONS

// WithChunkSize sets the maximum fragment length in runes. Zero sends
// each text as a single fragment.
func WithChunkSize(size int) Opt {
	return func(b *Backend) error {
		if size < 0 {
			return chatstream.ErrBadParameter.Withf("chunk size %d", size)
		}
		b.size = size
		return nil
	}
}

// WithDelay sets the pause before each frame
func WithDelay(delay time.Duration) Opt {
	return func(b *Backend) error {
		if delay < 0 {
			return chatstream.ErrBadParameter.Withf("delay %v", delay)
		}
		b.delay = delay
		return nil
	}
}

// WithVersion sets the version reported by the health endpoint
func WithVersion(version string) Opt {
	return func(b *Backend) error {
		b.version = version
		return nil
	}
}

// WithLogger sets the request logger
func WithLogger(log zerolog.Logger) Opt {
	return func(b *Backend) error {
		b.log = log.With().Str("component", "backend").Logger()
		return nil
	}
}
