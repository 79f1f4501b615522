package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	// Packages
	controller "github.com/mutablelogic/go-chatstream/pkg/controller"
	history "github.com/mutablelogic/go-chatstream/pkg/history"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	table "github.com/mutablelogic/go-chatstream/pkg/ui/table"
	term "golang.org/x/term"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type SendCommands struct {
	Send SendCommand `cmd:"" name:"send" help:"Send a message and print the streamed reply." group:"CHAT"`
}

type SendCommand struct {
	Text string `arg:"" name:"text" help:"Message text to send"`
	RequestFlags `embed:""`
	JSON bool `name:"json" help:"Print the result as JSON"`
}

// RequestFlags are the request options shared by send and chat
type RequestFlags struct {
	History      string `name:"history" type:"path" help:"Conversation transcript file"`
	Limit        int    `name:"limit" default:"20" help:"Maximum number of prior turns sent with a request"`
	SystemPrompt string `name:"system" help:"Override the backend system prompt"`
	UserName     string `name:"user" env:"USER" help:"Name of the user"`
	Context      string `name:"context" help:"Description of the context the message is sent from"`
}

///////////////////////////////////////////////////////////////////////////////
// COMMANDS

func (cmd *SendCommand) Run(ctx *Globals) error {
	c, err := ctx.Controller(ctx.log)
	if err != nil {
		return err
	}
	h, err := cmd.RequestFlags.history()
	if err != nil {
		return err
	}

	// Stream content to a terminal as it arrives
	tty := term.IsTerminal(int(os.Stdout.Fd())) && !cmd.JSON
	var printed string
	var failure string
	callbacks := controller.CallbackFuncs{
		Update: func(_ string, update schema.Update) {
			if tty && update.Content != nil {
				printed = printDelta(printed, *update.Content)
			}
		},
		Complete: func(_, text string, _ *schema.Widget) {
			if tty {
				printed = printDelta(printed, text)
			}
		},
		Error: func(_, message string) {
			failure = message
		},
	}

	// Send the message
	opts := append(cmd.RequestFlags.opts(), controller.WithHistory(h.Messages()...))
	result := c.Send(ctx.ctx, cmd.Text, callbacks, opts...)
	if tty && printed != "" {
		fmt.Println()
	}

	switch result.State {
	case schema.StateIdle:
		return errors.New("message is empty")
	case schema.StateErrored:
		return errors.New(failure)
	case schema.StateAborted:
		return ctx.ctx.Err()
	}
	if result.Degraded {
		ctx.log.Warn().Str("id", result.ID).Msg("the widget payload was incomplete")
	}

	// Record the turn
	if err := cmd.RequestFlags.record(h, cmd.Text, result); err != nil {
		return err
	}

	// Print the result
	switch {
	case cmd.JSON:
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case !tty:
		fmt.Println(result.Content)
		if result.Widget != nil {
			fmt.Println(string(result.Widget.Data))
		}
	case result.Widget != nil:
		printWidget(result.Widget)
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (flags RequestFlags) opts() []controller.SendOpt {
	var opts []controller.SendOpt
	if flags.SystemPrompt != "" {
		opts = append(opts, controller.WithSystemPrompt(flags.SystemPrompt))
	}
	if flags.UserName != "" {
		opts = append(opts, controller.WithUserName(flags.UserName))
	}
	if flags.Context != "" {
		opts = append(opts, controller.WithContextDescription(flags.Context))
	}
	return opts
}

// history loads the transcript, or returns an empty history
func (flags RequestFlags) history() (*history.History, error) {
	if flags.History == "" {
		return history.New(flags.Limit), nil
	}
	return history.Load(flags.History, flags.Limit)
}

// record saves a completed turn to the transcript
func (flags RequestFlags) record(h *history.History, prompt string, result schema.Result) error {
	if flags.History == "" {
		return nil
	}
	reply := result.Content
	if result.Widget != nil {
		reply = strings.TrimSpace(reply + "\n" + schema.MarkerData + string(result.Widget.Data))
	}
	if err := h.Append(schema.RoleUser, prompt); err != nil {
		return err
	}
	if err := h.Append(schema.RoleAssistant, reply); err != nil {
		return err
	}
	return h.Save(flags.History)
}

// printDelta prints the part of text not yet printed. Text which no
// longer extends what was printed is skipped.
func printDelta(printed, text string) string {
	if !strings.HasPrefix(text, printed) {
		return printed
	}
	fmt.Print(text[len(printed):])
	return text
}

func printWidget(widget *schema.Widget) {
	data, err := table.Widget(widget)
	if err != nil {
		fmt.Println(string(widget.Data))
		return
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}
	fmt.Println(table.Render(data, width))
}
