package history_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	// Packages
	chatstream "github.com/mutablelogic/go-chatstream"
	history "github.com/mutablelogic/go-chatstream/pkg/history"
	schema "github.com/mutablelogic/go-chatstream/pkg/schema"
	assert "github.com/stretchr/testify/assert"
)

func Test_history_001(t *testing.T) {
	assert := assert.New(t)
	h := history.New(0)
	assert.NotEmpty(h.ID())
	assert.Equal(0, h.Len())
	assert.NotNil(h.Messages())
	assert.Empty(h.Messages())
}

func Test_history_002(t *testing.T) {
	assert := assert.New(t)
	h := history.New(0)
	assert.NoError(h.Append(schema.RoleUser, "hello"))
	assert.NoError(h.Append(schema.RoleAssistant, "hi there"))
	assert.NoError(h.Append(schema.RoleAssistant, "   "))
	assert.ErrorIs(h.Append("system", "be brief"), chatstream.ErrBadParameter)
	assert.Equal([]schema.Message{
		{Role: schema.RoleUser, Content: "hello"},
		{Role: schema.RoleAssistant, Content: "hi there"},
	}, h.Messages())
}

func Test_history_003(t *testing.T) {
	assert := assert.New(t)
	h := history.New(2)
	for _, content := range []string{"one", "two", "three"} {
		assert.NoError(h.Append(schema.RoleUser, content))
	}
	assert.Equal(3, h.Len())
	messages := h.Messages()
	assert.Len(messages, 2)
	assert.Equal("two", messages[0].Content)
	assert.Equal("three", messages[1].Content)

	// The returned slice is a copy
	messages[0].Content = "changed"
	assert.Equal("two", h.Messages()[0].Content)
}

func Test_history_004(t *testing.T) {
	assert := assert.New(t)
	h := history.New(0)
	id := h.ID()
	assert.NoError(h.Append(schema.RoleUser, "hello"))
	h.Reset()
	assert.Equal(0, h.Len())
	assert.NotEqual(id, h.ID())
}

func Test_history_005(t *testing.T) {
	assert := assert.New(t)
	h := history.New(0)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(schema.RoleUser, "hello")
			h.Messages()
		}()
	}
	wg.Wait()
	assert.Equal(10, h.Len())
}

func Test_file_001(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "nested", "chat.json")

	h := history.New(0)
	assert.NoError(h.Append(schema.RoleUser, "hello"))
	assert.NoError(h.Append(schema.RoleAssistant, "hi there"))
	assert.NoError(h.Save(path))

	info, err := os.Stat(path)
	if assert.NoError(err) {
		assert.Equal(history.FilePerm, info.Mode().Perm())
	}

	loaded, err := history.Load(path, 1)
	if assert.NoError(err) {
		assert.Equal(h.ID(), loaded.ID())
		assert.Equal(2, loaded.Len())
		assert.Equal([]schema.Message{{Role: schema.RoleAssistant, Content: "hi there"}}, loaded.Messages())
	}
}

func Test_file_002(t *testing.T) {
	assert := assert.New(t)
	h, err := history.Load(filepath.Join(t.TempDir(), "missing.json"), 0)
	assert.NoError(err)
	assert.Equal(0, h.Len())
}

func Test_file_003(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "corrupt.json")
	assert.NoError(os.WriteFile(path, []byte("{not json"), 0o600))
	_, err := history.Load(path, 0)
	assert.ErrorIs(err, chatstream.ErrBadParameter)
}
