// Package version provides build-time version information for scmrev itself.
// These variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/jmgilman/scmrev/internal/version.Version=v1.0.0 \
//	                   -X github.com/jmgilman/scmrev/internal/version.Commit=abc123 \
//	                   -X github.com/jmgilman/scmrev/internal/version.Date=2026-01-01"
package version

import "runtime/debug"

var (
	// Version is the semantic version of the build.
	Version = "dev"

	// Commit is the git commit SHA of the build.
	Commit = "none"

	// Date is the build date in ISO 8601 format.
	Date = "unknown"
)

func init() {
	// Fall back to the VCS stamp of `go build` when ldflags were not used.
	if Commit != "none" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			Commit = s.Value
		}
	}
}
