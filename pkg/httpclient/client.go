package httpclient

import (
	"context"
	"net/http"
	"strings"

	// Packages
	client "github.com/mutablelogic/go-client"
	otel "github.com/mutablelogic/go-client/pkg/otel"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	trace "go.opentelemetry.io/otel/trace"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Client is a chat backend HTTP client that wraps the base HTTP client.
// Streaming responses are read from the raw body so that chunks reach the
// decoder as they arrive.
type Client struct {
	*client.Client
	url    string
	tracer trace.Tracer
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	chatPath   = "chat"
	healthPath = "health"
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// New creates a new client with the given base URL and options. The url
// parameter should point to the API prefix, e.g. "http://localhost:8084/api".
// The tracer may be nil.
func New(url string, tracer trace.Tracer, opts ...client.ClientOpt) (*Client, error) {
	c := new(Client)
	c.url = strings.TrimSuffix(url, "/")
	c.tracer = tracer

	// Set endpoint and tracer
	defaults := []client.ClientOpt{
		client.OptEndpoint(url),
	}
	if tracer != nil {
		defaults = append(defaults, client.OptTracer(tracer))
	}
	if httpClient, err := client.New(append(defaults, opts...)...); err != nil {
		return nil, err
	} else {
		c.Client = httpClient
	}
	return c, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Health returns the backend health status
func (c *Client) Health(ctx context.Context) (_ *schema.Health, err error) {
	ctx, endSpan := otel.StartSpan(c.tracer, ctx, "Health")
	defer func() { endSpan(err) }()

	req := client.NewRequest()
	var response schema.Health
	if err := c.DoWithContext(ctx, req, &response, client.OptPath(healthPath)); err != nil {
		return nil, err
	}
	return &response, nil
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// path returns the absolute URL for a path under the API prefix
func (c *Client) path(path string) string {
	return c.url + "/" + path
}

// streamClient returns a copy of the underlying HTTP client without an
// overall timeout, since a reply stream only ends when the server closes
// it or the context is cancelled
func (c *Client) streamClient() *http.Client {
	hc := *c.Client.Client
	hc.Timeout = 0
	return &hc
}
