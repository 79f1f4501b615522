// Package version reports build metadata set with ldflags or read from
// the embedded build info.
package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Build describes the running binary
type Build struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Compiler  string `json:"compiler"`
	Source    string `json:"source,omitempty"`
	Tag       string `json:"tag,omitempty"`
	Branch    string `json:"branch,omitempty"`
	Hash      string `json:"hash,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	Platform  string `json:"platform,omitempty"`
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

var (
	GitTag    string
	GitBranch string
)

////////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Version returns the tag, the branch, or the short revision of the build
func Version() string {
	if GitTag != "" {
		return GitTag
	}
	if GitBranch != "" {
		return GitBranch
	}
	if hash := Get("").Hash; len(hash) >= 12 {
		return hash[:12]
	}
	return "dev"
}

// Get returns the build metadata for the named executable
func Get(execName string) Build {
	build := Build{
		Name:     execName,
		Compiler: runtime.Version(),
		Tag:      GitTag,
		Branch:   GitBranch,
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return build
	}

	build.Source = info.Main.Path
	var goos, goarch string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			build.Hash = s.Value
		case "vcs.time":
			build.BuildTime = s.Value
		case "vcs.modified":
			build.Modified = s.Value == "true"
		case "GOOS":
			goos = s.Value
		case "GOARCH":
			goarch = s.Value
		}
	}
	if goos != "" && goarch != "" {
		build.Platform = goos + "/" + goarch
	}
	return build
}

// JSON returns the build metadata as indented JSON
func JSON(execName string) []byte {
	build := Get(execName)
	build.Version = Version()
	data, err := json.MarshalIndent(build, "", "  ")
	if err != nil {
		return nil
	}
	return data
}
