package cancel

import "sync/atomic"

type stopCause struct {
	err error
}

// AtomicCanceler is a stop flag held in one atomic pointer.
//
// Done is a single atomic load, cheap enough to poll between every
// simulated tick. The first cause stored wins.
type AtomicCanceler struct {
	cause atomic.Pointer[stopCause]
}

// NewAtomic creates an AtomicCanceler that has not fired.
func NewAtomic() *AtomicCanceler {
	return &AtomicCanceler{}
}

// Done reports whether the canceler has fired.
func (a *AtomicCanceler) Done() bool {
	return a.cause.Load() != nil
}

// Cancel fires the canceler with ErrStopped.
func (a *AtomicCanceler) Cancel() {
	a.CancelCause(ErrStopped)
}

// CancelCause fires the canceler with err as the reason. A nil err means
// ErrStopped. Calls after the first do nothing.
func (a *AtomicCanceler) CancelCause(err error) {
	if err == nil {
		err = ErrStopped
	}
	a.cause.CompareAndSwap(nil, &stopCause{err: err})
}

// Err returns the cause, or nil if the canceler has not fired.
func (a *AtomicCanceler) Err() error {
	if c := a.cause.Load(); c != nil {
		return c.err
	}
	return nil
}

// Reset re-arms the canceler for another run. It must not race with
// CancelCause.
func (a *AtomicCanceler) Reset() {
	a.cause.Store(nil)
}
