// Package cancel provides the stop signal polled by the clock driver.
//
// The driver checks Done once per loop iteration, between ticks, so a stop
// never lands in the middle of a tick. Implementations:
//   - ContextCanceler: for runs tied to a signal handler or parent context
//   - AtomicCanceler: one atomic load per poll, for tight simulation loops
package cancel

import "errors"

// ErrStopped is the cause reported after a plain Cancel on an
// AtomicCanceler.
var ErrStopped = errors.New("cancel: stopped")

// Canceler signals a running driver to stop. All methods are safe for
// concurrent use.
type Canceler interface {
	// Done reports whether the canceler has fired.
	Done() bool

	// Cancel fires the canceler. Calls after the first do nothing.
	Cancel()

	// Err returns why the canceler fired, or nil if it has not.
	Err() error
}
