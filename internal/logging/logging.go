// Package logging builds the zap loggers used by the daemon and CLI.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a logger for the given mode: "production" (JSON, the
// default), "development" (console), or "silent".
func New(mode string) (*zap.Logger, error) {
	switch mode {
	case "", "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	case "silent":
		return zap.NewNop(), nil
	default:
		return nil, fmt.Errorf("unknown log mode %q", mode)
	}
}
