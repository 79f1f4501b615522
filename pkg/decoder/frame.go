package decoder

import (
	"encoding/json"
	"strings"

	// Packages
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// ParseFrame decodes a single protocol line. It returns false for lines
// which are not frames (blank keep-alives, comments, other fields) and
// for frames whose payload is not valid JSON.
func ParseFrame(line string) (schema.Frame, bool) {
	line = strings.TrimSuffix(line, "\r")
	payload, ok := strings.CutPrefix(line, schema.FramePrefix)
	if !ok {
		return schema.Frame{}, false
	}

	// A single space after the colon is part of the framing
	payload = strings.TrimPrefix(payload, " ")
	if strings.TrimSpace(payload) == schema.FrameDone {
		return schema.Frame{Done: true}, true
	}

	var frame schema.Frame
	if err := json.Unmarshal([]byte(payload), &frame); err != nil {
		return schema.Frame{}, false
	}
	return frame, true
}
