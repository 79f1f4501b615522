package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	// Packages
	httpclient "github.com/mutablelogic/go-chatstream/pkg/httpclient"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	defaultUnavailable = "Cannot reach the chat backend. Start the local backend server (for example with \"chatstream serve\") and try again."
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Message returns the user-facing text for an error raised while
// streaming. Transport failures tell the operator to start the local
// backend; error responses carry their status code and details.
func Message(err error) string {
	return message(err, defaultUnavailable)
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func message(err error, unavailable string) string {
	var statusErr *httpclient.StatusError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &statusErr):
		if statusErr.Details == "" {
			return fmt.Sprintf("Server error (%d): %s", statusErr.Status, http.StatusText(statusErr.Status))
		}
		return fmt.Sprintf("Server error (%d): %s", statusErr.Status, statusErr.Details)
	case httpclient.IsUnavailable(err):
		return unavailable
	case errors.Is(err, context.DeadlineExceeded):
		return "The chat backend did not respond in time."
	default:
		return "Unexpected error: " + err.Error()
	}
}
