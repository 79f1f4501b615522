package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	// Packages
	kong "github.com/alecthomas/kong"
	client "github.com/mutablelogic/go-client"
	controller "github.com/mutablelogic/go-chatstream/pkg/controller"
	httpclient "github.com/mutablelogic/go-chatstream/pkg/httpclient"
	version "github.com/mutablelogic/go-chatstream/pkg/version"
	zerolog "github.com/rs/zerolog"
)

////////////////////////////////////////////////////////////////////////////////
// TYPES

type Globals struct {
	// Debugging
	Debug   bool `name:"debug" help:"Enable debug output"`
	Verbose bool `name:"verbose" help:"Enable verbose output"`

	// Backend
	URL     string        `name:"url" env:"CHATSTREAM_URL" default:"http://localhost:8084/api" help:"Chat backend API prefix"`
	Timeout time.Duration `name:"timeout" env:"CHATSTREAM_TIMEOUT" default:"30s" help:"Timeout for non-streaming requests"`

	// Context
	ctx      context.Context
	log      zerolog.Logger
	execName string
}

type CLI struct {
	Globals
	SendCommands
	ChatCommands
	ServeCommands

	Health  HealthCommand  `cmd:"" name:"health" help:"Check the backend is running."`
	Version VersionCommand `cmd:"" name:"version" help:"Print version information."`
}

type HealthCommand struct{}

type VersionCommand struct{}

////////////////////////////////////////////////////////////////////////////////
// MAIN

func main() {
	// Create a cli parser
	cli := CLI{}
	cmd := kong.Parse(&cli,
		kong.Name(execName()),
		kong.Description("Streaming chat client and replay backend"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)

	// Create a context
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	cli.Globals.ctx = ctx
	cli.Globals.execName = execName()
	cli.Globals.log = cli.Globals.logger(os.Stderr)

	// Run the command
	cmd.FatalIfErrorf(cmd.Run(&cli.Globals))
}

////////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *HealthCommand) Run(ctx *Globals) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	health, err := c.Health(ctx.ctx)
	if err != nil {
		return fmt.Errorf("%s: %s", ctx.URL, controller.Message(err))
	}
	fmt.Println(health)
	return nil
}

func (cmd *VersionCommand) Run(ctx *Globals) error {
	fmt.Println(string(version.JSON(ctx.execName)))
	return nil
}

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Client returns a client for the backend
func (g *Globals) Client() (*httpclient.Client, error) {
	opts := []client.ClientOpt{}
	if g.Debug {
		opts = append(opts, client.OptTrace(os.Stderr, g.Verbose))
	}
	if g.Timeout > 0 {
		opts = append(opts, client.OptTimeout(g.Timeout))
	}
	return httpclient.New(g.URL, nil, opts...)
}

// Controller returns a session controller which streams from the backend
func (g *Globals) Controller(log zerolog.Logger) (*controller.Controller, error) {
	c, err := g.Client()
	if err != nil {
		return nil, err
	}
	return controller.New(c,
		controller.WithLogger(log),
		controller.WithUnavailableMessage(fmt.Sprintf(
			"Cannot reach the chat backend at %s. Start it with %q and try again.",
			g.URL, g.execName+" serve",
		)),
	)
}

////////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// logger returns a console logger at warn level, or debug level with
// the debug flag
func (g *Globals) logger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if g.Debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		Level(level).
		With().Timestamp().Logger()
}

func execName() string {
	// The name of the executable
	name, err := os.Executable()
	if err != nil {
		panic(err)
	} else {
		return filepath.Base(name)
	}
}
