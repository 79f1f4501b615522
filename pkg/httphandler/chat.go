package httphandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	httprequest "github.com/mutablelogic/go-server/pkg/httprequest"
	httpresponse "github.com/mutablelogic/go-server/pkg/httpresponse"
	openapi "github.com/mutablelogic/go-server/pkg/openapi/schema"
	types "github.com/mutablelogic/go-server/pkg/types"
)

///////////////////////////////////////////////////////////////////////////////
// HANDLER FUNCTIONS

// Path: /chat
func ChatHandler(backend *Backend) (string, http.HandlerFunc, *openapi.PathItem) {
	return "/chat", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var req schema.ChatRequest
				if err := httprequest.Read(r, &req); err != nil {
					errorResponse(w, http.StatusBadRequest, "invalid request", err.Error())
					return
				} else if strings.TrimSpace(req.Message) == "" {
					errorResponse(w, http.StatusBadRequest, "message is required", "")
					return
				}

				// Select the reply
				reply := backend.script.Reply(req.Message)
				backend.log.Info().
					Int("history", len(req.ConversationHistory)).
					Str("reply", reply.String()).
					Msg("chat request")
				if reply.Status != 0 {
					errorResponse(w, reply.Status, reply.Error, reply.Details)
					return
				}
				fragments, err := reply.Fragments(backend.size)
				if err != nil {
					errorResponse(w, http.StatusInternalServerError, "invalid reply", err.Error())
					return
				}

				// Stream the reply
				backend.stream(w, r, fragments)
			default:
				_ = httpresponse.Error(w, httpresponse.Err(http.StatusMethodNotAllowed), r.Method)
			}
		}, types.Ptr(openapi.PathItem{
			Post: &openapi.Operation{
				Description: "Send a message and stream the reply as data frames",
			},
		})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// stream writes each fragment as a data frame followed by the
// termination sentinel. It stops early when the client goes away.
func (b *Backend) stream(w http.ResponseWriter, r *http.Request, fragments []string) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	write := func(data string) error {
		if _, err := fmt.Fprintf(w, "%s %s\n\n", schema.FramePrefix, data); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	for _, fragment := range fragments {
		if b.delay > 0 {
			select {
			case <-r.Context().Done():
				b.log.Debug().Msg("client went away")
				return
			case <-time.After(b.delay):
			}
		}
		data, err := json.Marshal(schema.Frame{Text: types.Ptr(fragment)})
		if err != nil {
			b.log.Error().Err(err).Msg("marshal frame")
			return
		}
		if err := write(string(data)); err != nil {
			b.log.Debug().Err(err).Msg("write frame")
			return
		}
	}
	if err := write(schema.FrameDone); err != nil {
		b.log.Debug().Err(err).Msg("write sentinel")
	}
}

// errorResponse writes a JSON error body which carries the error and
// optional details
func errorResponse(w http.ResponseWriter, status int, message, details string) {
	_ = httpresponse.JSON(w, status, 0, schema.ErrorResponse{
		Error:   message,
		Details: details,
	})
}
