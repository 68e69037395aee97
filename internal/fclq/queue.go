package fclq

import (
	"sync"

	"github.com/go-logr/logr"

	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
)

// Queue is a State behind a single mutex.
//
// Each Step is one critical section, so concurrent callers see whole ticks
// only. Observers run inside that critical section, in tick order, and
// must not call back into the Queue.
type Queue struct {
	mu        sync.Mutex
	state     *State
	logger    logr.Logger
	observers []Observer
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogger sets the logger. Trips and releases are logged at DEBUG,
// dropped writes and empty pops at TRACE.
func WithLogger(logger logr.Logger) Option {
	return func(q *Queue) {
		q.logger = logger
	}
}

// WithObserver registers an observer for every tick.
func WithObserver(o Observer) Option {
	return func(q *Queue) {
		q.observers = append(q.observers, o)
	}
}

// New creates a Queue. The queue starts as if reset were held: all outputs
// are quiescent until the first tick.
func New(p Params, opts ...Option) (*Queue, error) {
	s, err := NewState(p)
	if err != nil {
		return nil, err
	}
	q := &Queue{
		state:  s,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q, nil
}

// Step advances the queue by one tick and returns the new outputs.
func (q *Queue) Step(in Inputs) Outputs {
	q.mu.Lock()
	defer q.mu.Unlock()

	ev := q.state.Step(in)
	q.log(ev)
	for _, o := range q.observers {
		o.Observe(ev)
	}
	return ev.Out
}

func (q *Queue) log(ev Event) {
	if ev.Tripped {
		q.logger.V(logging.DEBUG).Info("Backpressure asserted",
			"cycle", ev.Cycle, "occupancy", ev.Occupancy, "countdown", ev.Countdown)
	}
	if ev.Released {
		q.logger.V(logging.DEBUG).Info("Backpressure released",
			"cycle", ev.Cycle, "occupancy", ev.Occupancy)
	}
	if ev.Dropped {
		q.logger.V(logging.TRACE).Info("Write dropped on full queue",
			"cycle", ev.Cycle, "data", ev.In.DataIn)
	}
	if ev.Underflow {
		q.logger.V(logging.TRACE).Info("Pop ignored on empty queue", "cycle", ev.Cycle)
	}
}

// Outputs returns the outputs registered by the last tick.
func (q *Queue) Outputs() Outputs {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.Outputs()
}

// Occupancy returns the number of buffered entries.
func (q *Queue) Occupancy() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.Occupancy()
}

// Snapshot copies the current state.
func (q *Queue) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state.Snapshot()
}

// Params returns the construction parameters.
func (q *Queue) Params() Params {
	return q.state.Params()
}
