package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	DirPerm  os.FileMode = 0o700 // Directory permission for transcripts
	FilePerm os.FileMode = 0o600 // File permission for transcripts
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// transcript is the on-disk form of a history
type transcript struct {
	ID       string           `json:"id"`
	Messages []schema.Message `json:"messages"`
	Created  time.Time        `json:"created"`
	Modified time.Time        `json:"modified"`
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Load reads a transcript written by Save. A missing file returns an
// empty history.
func Load(path string, limit int) (*History, error) {
	h := New(limit)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return h, nil
	} else if err != nil {
		return nil, chatstream.ErrInternalServerError.Withf("read: %v", err)
	}

	var t transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, chatstream.ErrBadParameter.Withf("%s: %v", path, err)
	}
	for _, message := range t.Messages {
		if err := h.Append(message.Role, message.Content); err != nil {
			return nil, err
		}
	}
	if t.ID != "" {
		h.id = t.ID
	}
	if !t.Created.IsZero() {
		h.created = t.Created
	}
	if !t.Modified.IsZero() {
		h.modified = t.Modified
	}
	return h, nil
}

// Save writes the full history to path as JSON, creating the parent
// directory if needed
func (h *History) Save(path string) error {
	h.mu.RLock()
	data, err := json.MarshalIndent(transcript{
		ID:       h.id,
		Messages: h.messages,
		Created:  h.created,
		Modified: h.modified,
	}, "", "  ")
	h.mu.RUnlock()
	if err != nil {
		return chatstream.ErrInternalServerError.Withf("marshal: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return chatstream.ErrInternalServerError.Withf("mkdir: %v", err)
	}

	// Write to a temporary file and rename, so a failed write leaves the
	// previous transcript intact
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, FilePerm); err != nil {
		return chatstream.ErrInternalServerError.Withf("write: %v", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return chatstream.ErrInternalServerError.Withf("rename: %v", err)
	}
	return nil
}
