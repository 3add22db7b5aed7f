// Package version exposes build version information.
package version

// These can be set at build time via ldflags:
//
//	go build -ldflags="-X github.com/pcurrier/gogogate2/internal/version.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
)
