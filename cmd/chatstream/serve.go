package main

import (
	"time"

	// Packages
	httphandler "github.com/mutablelogic/go-chatstream/pkg/httphandler"
	version "github.com/mutablelogic/go-chatstream/pkg/version"
	httprouter "github.com/mutablelogic/go-server/pkg/httprouter"
	httpserver "github.com/mutablelogic/go-server/pkg/httpserver"
	zerolog "github.com/rs/zerolog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ServeCommands struct {
	Serve ServeCommand `cmd:"" name:"serve" help:"Run the replay backend." group:"SERVER"`
}

type ServeCommand struct {
	Addr   string `name:"addr" env:"CHATSTREAM_ADDR" default:"localhost:8084" help:"Listen address"`
	Prefix string `name:"prefix" default:"/api" help:"API path prefix"`
	Origin string `name:"origin" default:"*" help:"Allowed CORS origin"`
	ScriptFlags `embed:""`
}

// ScriptFlags configure the scripted replies
type ScriptFlags struct {
	Script    string        `name:"script" type:"existingfile" help:"YAML file of scripted replies"`
	ChunkSize int           `name:"chunk-size" default:"8" help:"Maximum fragment length in characters"`
	Delay     time.Duration `name:"delay" default:"40ms" help:"Pause before each frame"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ServeCommand) Run(ctx *Globals) error {
	backend, err := cmd.ScriptFlags.backend(ctx.log)
	if err != nil {
		return err
	}

	// Create the HTTP router
	router, err := httprouter.NewRouter(ctx.ctx, cmd.Prefix, cmd.Origin, "Chat Stream Replay", version.Version())
	if err != nil {
		return err
	} else if err := httphandler.RegisterHandlers(backend, router, true); err != nil {
		return err
	}

	// Create the server
	server, err := httpserver.New(cmd.Addr, router, nil)
	if err != nil {
		return err
	}

	// Run the server
	ctx.log.Info().Str("addr", cmd.Addr).Str("prefix", cmd.Prefix).Msgf("%s@%s started", ctx.execName, version.Version())
	if err := server.Run(ctx.ctx); err != nil {
		return err
	}

	// Return success
	ctx.log.Info().Msgf("%s@%s stopped", ctx.execName, version.Version())
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// backend creates the replay backend from the script flags
func (flags ScriptFlags) backend(log zerolog.Logger) (*httphandler.Backend, error) {
	var script *httphandler.Script
	if flags.Script != "" {
		var err error
		if script, err = httphandler.LoadScript(flags.Script); err != nil {
			return nil, err
		}
	}
	return httphandler.New(script,
		httphandler.WithChunkSize(flags.ChunkSize),
		httphandler.WithDelay(flags.Delay),
		httphandler.WithVersion(version.Version()),
		httphandler.WithLogger(log),
	)
}
