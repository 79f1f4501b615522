package decoder_test

import (
	"testing"

	// Packages
	decoder "github.com/mutablelogic/go-chatstream/pkg/decoder"
	assert "github.com/stretchr/testify/assert"
)

func Test_frame_001(t *testing.T) {
	assert := assert.New(t)
	tests := []struct {
		line string
		ok   bool
		done bool
		text *string
	}{
		{"", false, false, nil},
		{": comment", false, false, nil},
		{"event: message", false, false, nil},
		{"data: [DONE]", true, true, nil},
		{"data:[DONE]\r", true, true, nil},
		{"data: {\"text\":\"hi\"}", true, false, ptr("hi")},
		{"data:{\"text\":\" padded\"}\r", true, false, ptr(" padded")},
		{"data: {\"text\":\"\"}", true, false, ptr("")},
		{"data: {\"text\":null}", true, false, nil},
		{"data: {\"text\":42}", false, false, nil},
		{"data: {\"delta\":\"x\"}", true, false, nil},
		{"data: {\"text\":\"cut", false, false, nil},
	}
	for _, test := range tests {
		frame, ok := decoder.ParseFrame(test.line)
		assert.Equal(test.ok, ok, test.line)
		assert.Equal(test.done, frame.Done, test.line)
		assert.Equal(test.text, frame.Text, test.line)
	}
}

func ptr(s string) *string {
	return &s
}
