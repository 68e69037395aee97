package clock

import (
	"sync/atomic"
	"time"
	_ "unsafe" // go:linkname
)

// nanotime is the runtime's monotonic clock. It skips building a
// time.Time, which matters at one call per poll.
//
//go:linkname nanotime runtime.nanotime
func nanotime() int64

// AtomicPacer keeps its next deadline in an atomic and reads the clock
// with runtime.nanotime.
//
// Like BatchPacer it stays phase-locked and counts missed edges. Several
// goroutines may poll it; a compare-and-swap on the deadline hands each
// edge to exactly one of them.
type AtomicPacer struct {
	interval int64
	deadline atomic.Int64
	missed   atomic.Uint64
}

// NewAtomic creates an AtomicPacer with the given period.
func NewAtomic(interval time.Duration) *AtomicPacer {
	a := &AtomicPacer{interval: int64(max(interval, time.Nanosecond))}
	a.Reset()
	return a
}

// Tick reports whether an edge is due and claims it.
func (a *AtomicPacer) Tick() bool {
	now := nanotime()
	deadline := a.deadline.Load()
	if now < deadline {
		return false
	}
	periods := (now - deadline) / a.interval
	if !a.deadline.CompareAndSwap(deadline, deadline+(periods+1)*a.interval) {
		return false
	}
	a.missed.Add(uint64(periods))
	return true
}

// Reset puts the next deadline one period from now.
func (a *AtomicPacer) Reset() {
	a.deadline.Store(nanotime() + a.interval)
}

// Stop does nothing; an AtomicPacer holds no resources.
func (a *AtomicPacer) Stop() {}

// Missed returns how many edges were skipped because polls came too late.
func (a *AtomicPacer) Missed() uint64 {
	return a.missed.Load()
}

// Interval returns the clock period.
func (a *AtomicPacer) Interval() time.Duration {
	return time.Duration(a.interval)
}
