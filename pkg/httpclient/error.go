package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// StatusError is returned for a response with a non-success status code.
// Details holds the best-effort error text read from the body.
type StatusError struct {
	Status  int
	Details string
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	maxErrorBody = 64 * 1024
)

// networkFailures are substrings of errors raised when the server cannot
// be reached at all
var networkFailures = []string{
	"connection refused",
	"econnrefused",
	"no such host",
	"network is unreachable",
	"connection reset",
	"failed to fetch",
	"networkerror",
	"fetch failed",
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

func (e *StatusError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Details)
}

func (e *StatusError) Unwrap() error {
	return chatstream.ErrBadResponse
}

// IsUnavailable returns true if the error indicates the server could not
// be reached
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	} else if errors.Is(err, chatstream.ErrUnavailable) {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}
	text := strings.ToLower(err.Error())
	for _, failure := range networkFailures {
		if strings.Contains(text, failure) {
			return true
		}
	}
	return false
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// readStatusError reads the body of a non-success response. JSON bodies
// contribute their details or error field; other bodies their raw text.
func readStatusError(resp *http.Response) error {
	result := &StatusError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return result
	}

	mimetype, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mimetype == client.ContentTypeJson {
		var body schema.ErrorResponse
		if err := json.Unmarshal(data, &body); err == nil {
			result.Details = strings.TrimSpace(body.Details)
			if result.Details == "" {
				result.Details = strings.TrimSpace(body.Error)
			}
			if result.Details != "" {
				return result
			}
		}
	}

	// Fall back to the raw body text
	result.Details = strings.TrimSpace(string(data))
	return result
}
