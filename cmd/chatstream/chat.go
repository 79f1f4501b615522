package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	// Packages
	history "github.com/mutablelogic/go-chatstream/pkg/history"
	httphandler "github.com/mutablelogic/go-chatstream/pkg/httphandler"
	bubbletea "github.com/mutablelogic/go-chatstream/pkg/ui/bubbletea"
	zerolog "github.com/rs/zerolog"
	errgroup "golang.org/x/sync/errgroup"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type ChatCommands struct {
	Chat ChatCommand `cmd:"" name:"chat" help:"Start an interactive chat." group:"CHAT"`
}

type ChatCommand struct {
	RequestFlags `embed:""`
	Replay       bool   `name:"replay" help:"Chat with an in-process replay backend"`
	Log          string `name:"log" type:"path" help:"Write logs to a file"`
	ScriptFlags  `embed:""`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *ChatCommand) Run(ctx *Globals) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("chat requires a terminal, use send instead")
	}

	// Logs would corrupt the display, so they only go to a file
	log := zerolog.Nop()
	if cmd.Log != "" {
		f, err := os.OpenFile(cmd.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, history.FilePerm)
		if err != nil {
			return err
		}
		defer f.Close()
		log = ctx.logger(f)
	}

	g, gctx := errgroup.WithContext(ctx.ctx)

	// Start the replay backend on a local port
	if cmd.Replay {
		backend, err := cmd.ScriptFlags.backend(log)
		if err != nil {
			return err
		}
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return err
		}
		mux := http.NewServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", httphandler.ServeMux(backend)))
		server := &http.Server{Handler: mux}
		ctx.URL = fmt.Sprintf("http://%s/api", listener.Addr())
		g.Go(func() error {
			if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			return server.Close()
		})
	}

	// Create the controller, history and terminal
	c, err := ctx.Controller(log)
	if err != nil {
		return err
	}
	h, err := cmd.RequestFlags.history()
	if err != nil {
		return err
	}
	opts := []bubbletea.Opt{
		bubbletea.WithSendOpts(cmd.RequestFlags.opts()...),
		bubbletea.WithLogger(log),
	}
	if cmd.History != "" {
		opts = append(opts, bubbletea.WithTranscript(cmd.History))
	}
	t, err := bubbletea.New(c, h, opts...)
	if err != nil {
		return err
	}

	// Run the terminal until the user quits, then stop the backend
	g.Go(func() error {
		if err := t.Run(gctx); err != nil {
			return err
		}
		return errQuit
	})
	if err := g.Wait(); !errors.Is(err, errQuit) {
		return err
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

// errQuit stops the group when the terminal exits
var errQuit = errors.New("quit")
