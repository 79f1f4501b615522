package version_test

import (
	"encoding/json"
	"testing"

	// Packages
	version "github.com/mutablelogic/go-chatstream/pkg/version"
	assert "github.com/stretchr/testify/assert"
)

func Test_version_001(t *testing.T) {
	assert := assert.New(t)
	assert.NotEmpty(version.Version())

	version.GitTag = "v1.0.0"
	defer func() { version.GitTag = "" }()
	assert.Equal("v1.0.0", version.Version())

	var build version.Build
	assert.NoError(json.Unmarshal(version.JSON("chatstream"), &build))
	assert.Equal("chatstream", build.Name)
	assert.Equal("v1.0.0", build.Version)
	assert.Equal("v1.0.0", build.Tag)
	assert.NotEmpty(build.Compiler)
}
