// Package clock paces and drives the simulated clock of a lookahead FIFO.
//
// A Pacer decides when the next clock edge is due. Implementations:
//   - FreeRun: every poll is an edge (fastest possible simulation)
//   - StdPacer: standard library time.Ticker wrapper
//   - BatchPacer: checks wall time only every N polls
//   - AtomicPacer: atomic timestamp comparison using runtime.nanotime
//
// The Driver polls its Pacer in a hot loop and advances a Stepper by one
// tick per edge, feeding it the next stimulus from a queue.
package clock

import "time"

// Pacer signals when the next clock edge is due.
//
// Implementations are polled from a single driver goroutine; AtomicPacer
// and StdPacer are additionally safe to poll from several goroutines.
type Pacer interface {
	// Tick returns true if the next edge is due.
	// This is a non-blocking check.
	Tick() bool

	// Reset restarts the current period from now.
	Reset()

	// Stop releases any resources held by the pacer.
	// After Stop, the pacer should not be used.
	Stop()
}

// DefaultInterval is the default clock period of a paced run.
const DefaultInterval = 10 * time.Microsecond

// FreeRun is a Pacer whose every poll is an edge.
type FreeRun struct{}

// Tick always returns true.
func (FreeRun) Tick() bool { return true }

// Reset is a no-op.
func (FreeRun) Reset() {}

// Stop is a no-op.
func (FreeRun) Stop() {}
