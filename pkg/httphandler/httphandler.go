// Package httphandler implements a chat backend which replays scripted
// replies in the streaming wire format, for local development and tests.
package httphandler

import (
	"errors"
	"net/http"

	// Packages
	server "github.com/mutablelogic/go-server"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

type Router interface {
	RegisterFunc(path string, handler http.HandlerFunc, middleware bool, spec *openapi.PathItem) error
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// RegisterHandlers registers the chat and health handlers with the router
func RegisterHandlers(backend *Backend, router server.HTTPRouter, middleware bool) error {
	var result error

	// Convenience function to register a handler and accumulate any errors
	register := func(path string, handler http.HandlerFunc, spec *openapi.PathItem) {
		result = errors.Join(result, router.(Router).RegisterFunc(path, handler, middleware, spec))
	}

	// Register handlers
	register(ChatHandler(backend))
	register(HealthHandler(backend))

	// Return any errors
	return result
}

// ServeMux returns a mux with the handlers registered, for use without
// the router
func ServeMux(backend *Backend) *http.ServeMux {
	mux := http.NewServeMux()
	path, handler, _ := ChatHandler(backend)
	mux.HandleFunc(path, handler)
	path, handler, _ = HealthHandler(backend)
	mux.HandleFunc(path, handler)
	return mux
}
