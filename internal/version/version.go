// Package version exposes build metadata injected through ldflags.
package version

import "runtime"

var (
	// Version is the current application version.
	// It is populated by the build system (ldflags) and falls back to the last release.
	Version = "v1.0.0"

	// Commit is the git short hash of the build.
	Commit = "unknown"

	// Date is the build timestamp.
	Date = "unknown"
)

// APIVersion is the version of the public response schema.
const APIVersion = "v1"

// Info is a JSON-friendly snapshot of the build metadata.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Get returns the build metadata of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: Date,
		GoVersion: runtime.Version(),
	}
}
