package controller

import (
	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// CallbackFuncs adapts plain functions to chatstream.Callbacks. Any nil
// function is ignored.
type CallbackFuncs struct {
	Start    func(id string)
	Update   func(id string, update schema.Update)
	Complete func(id, text string, widget *schema.Widget)
	Error    func(id, message string)
}

var _ chatstream.Callbacks = CallbackFuncs{}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (f CallbackFuncs) OnStreamStart(id string) {
	if f.Start != nil {
		f.Start(id)
	}
}

func (f CallbackFuncs) OnStreamUpdate(id string, update schema.Update) {
	if f.Update != nil {
		f.Update(id, update)
	}
}

func (f CallbackFuncs) OnStreamComplete(id, text string, widget *schema.Widget) {
	if f.Complete != nil {
		f.Complete(id, text, widget)
	}
}

func (f CallbackFuncs) OnError(id, message string) {
	if f.Error != nil {
		f.Error(id, message)
	}
}
