// Package logging builds the structured logger shared across polysafe's
// packages and CLI commands.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger at the given level. verbose switches to a
// development encoder (capitalized level, caller line, stack traces on
// warn+) the way a human driving the CLI interactively wants; otherwise
// production JSON output is used, suited to piping into a log collector.
func New(level string, verbose bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Nop returns a logger that discards everything, for callers (library
// code, tests) that have no opinion about where logs go.
func Nop() *zap.Logger {
	return zap.NewNop()
}
