// Package version carries build metadata injected at link time.
package version

var (
	// Version is the semantic version, overridden via -ldflags.
	Version = "0.2.0"
	// Commit is the git commit hash of the build.
	Commit = ""
	// BuildDate is the UTC build timestamp.
	BuildDate = ""
)
