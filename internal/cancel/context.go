package cancel

import "context"

// ContextCanceler fires when its own cancel is called or its parent
// context ends, whichever comes first. Tie it to signal.NotifyContext to
// stop a run on SIGINT.
//
// Done is a non-blocking receive on the context's done channel.
type ContextCanceler struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
}

// NewContext derives a ContextCanceler from parent.
func NewContext(parent context.Context) *ContextCanceler {
	ctx, cancel := context.WithCancelCause(parent)
	return &ContextCanceler{ctx: ctx, cancel: cancel}
}

// Done reports whether the context has ended.
func (c *ContextCanceler) Done() bool {
	select {
	case <-c.ctx.Done():
		return true
	default:
		return false
	}
}

// Cancel ends the context with context.Canceled.
func (c *ContextCanceler) Cancel() {
	c.cancel(nil)
}

// CancelCause ends the context with err as its cause.
func (c *ContextCanceler) CancelCause(err error) {
	c.cancel(err)
}

// Err returns the cause the context ended with: the error given to
// CancelCause, or the parent's cause, or context.Canceled.
func (c *ContextCanceler) Err() error {
	return context.Cause(c.ctx)
}

// Context returns the context, for code that selects on it.
func (c *ContextCanceler) Context() context.Context {
	return c.ctx
}
