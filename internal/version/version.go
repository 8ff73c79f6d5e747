// Package version holds build metadata injected via -ldflags.
package version

// Set at build time:
//
//	go build -ldflags "-X github.com/sydlexius/spotilytics/internal/version.Version=v1.0.0 -X github.com/sydlexius/spotilytics/internal/version.Commit=abc123"
var (
	Version = "dev"
	Commit  = "unknown"
)
