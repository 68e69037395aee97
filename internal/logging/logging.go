// Package logging builds the zap-backed logr.Logger used across the
// simulator.
//
// Verbosity follows logr conventions: V(0) is always on, higher V levels
// are progressively chattier. The FIFO itself only logs at DEBUG and TRACE
// because it may be stepped millions of times per second.
package logging

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	uberzap "go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DEFAULT = 0
	VERBOSE = 3
	DEBUG   = 4
	TRACE   = 5
)

// New returns a logger that emits every record up to verbosity.
// development switches to zap's console encoder with stack traces on warnings.
func New(verbosity int, development bool) (logr.Logger, error) {
	cfg := uberzap.NewProductionConfig()
	if development {
		cfg = uberzap.NewDevelopmentConfig()
	}
	// Per-tick records must not be sampled away.
	cfg.Sampling = nil
	cfg.Level = uberzap.NewAtomicLevelAt(zapcore.Level(-1 * verbosity))

	z, err := cfg.Build(uberzap.AddCaller())
	if err != nil {
		return logr.Discard(), fmt.Errorf("building zap logger: %w", err)
	}
	return zapr.NewLogger(z), nil
}

// NewTestLogger creates a new Zap logger using the dev mode at TRACE.
func NewTestLogger() logr.Logger {
	logger, err := New(TRACE, true)
	if err != nil {
		return logr.Discard()
	}
	return logger
}
