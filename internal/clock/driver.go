package clock

import (
	"runtime"
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/randomizedcoder/lookahead-fifo/internal/cancel"
	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
	"github.com/randomizedcoder/lookahead-fifo/internal/queue"
)

// Stepper is anything advanced one clock tick at a time.
// *fclq.Queue is the Stepper the simulator drives.
type Stepper interface {
	Step(fclq.Inputs) fclq.Outputs
}

// Driver advances a Stepper once per pacer edge.
//
// On every edge the driver pops the next Inputs from its source. An empty
// source is not an error: the tick runs with the idle inputs instead, the
// same way a clock keeps running while no one drives the bus.
type Driver struct {
	stepper Stepper
	pacer   Pacer
	source  queue.Queue[fclq.Inputs]
	stop    cancel.Canceler
	limit   uint64
	idle    fclq.Inputs
	onTick  func(tick uint64, in fclq.Inputs, out fclq.Outputs)
	logger  logr.Logger

	ticks  atomic.Uint64
	starve atomic.Uint64
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithPacer sets the pacer. The default is FreeRun.
func WithPacer(p Pacer) DriverOption {
	return func(d *Driver) { d.pacer = p }
}

// WithSource sets the stimulus queue.
func WithSource(src queue.Queue[fclq.Inputs]) DriverOption {
	return func(d *Driver) { d.source = src }
}

// WithCanceler sets the stop signal. The default is an AtomicCanceler
// reachable through Driver.Stop.
func WithCanceler(c cancel.Canceler) DriverOption {
	return func(d *Driver) { d.stop = c }
}

// WithLimit stops the run after n ticks. Zero means no limit.
func WithLimit(n uint64) DriverOption {
	return func(d *Driver) { d.limit = n }
}

// WithIdle sets the inputs used on ticks the source has nothing for.
func WithIdle(in fclq.Inputs) DriverOption {
	return func(d *Driver) { d.idle = in }
}

// WithTickFunc registers a callback run after every tick on the driver
// goroutine.
func WithTickFunc(f func(tick uint64, in fclq.Inputs, out fclq.Outputs)) DriverOption {
	return func(d *Driver) { d.onTick = f }
}

// WithDriverLogger sets the logger.
func WithDriverLogger(logger logr.Logger) DriverOption {
	return func(d *Driver) { d.logger = logger }
}

// NewDriver creates a Driver for s.
func NewDriver(s Stepper, opts ...DriverOption) *Driver {
	d := &Driver{
		stepper: s,
		pacer:   FreeRun{},
		stop:    cancel.NewAtomic(),
		logger:  logr.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run drives ticks until the limit is reached or the canceler fires. It
// returns the number of ticks driven by this call and, if the canceler
// stopped the run, the canceler's error.
//
// Run must not be called concurrently with itself.
func (d *Driver) Run() (uint64, error) {
	start := d.ticks.Load()
	d.pacer.Reset()
	d.logger.V(logging.VERBOSE).Info("Clock started", "limit", d.limit)

	for {
		driven := d.ticks.Load() - start
		if d.stop.Done() {
			d.logger.V(logging.VERBOSE).Info("Clock stopped", "ticks", driven, "reason", d.stop.Err())
			return driven, d.stop.Err()
		}
		if d.limit > 0 && driven >= d.limit {
			d.logger.V(logging.VERBOSE).Info("Clock reached tick limit", "ticks", driven)
			return driven, nil
		}
		if !d.pacer.Tick() {
			runtime.Gosched()
			continue
		}
		d.edge()
	}
}

// edge runs one tick.
func (d *Driver) edge() {
	in := d.idle
	if d.source != nil {
		if next, ok := d.source.Pop(); ok {
			in = next
		} else {
			d.starve.Add(1)
		}
	}
	out := d.stepper.Step(in)
	n := d.ticks.Add(1)
	if d.onTick != nil {
		d.onTick(n, in, out)
	}
}

// Stop asks a running Run to return before its next tick.
func (d *Driver) Stop() {
	d.stop.Cancel()
}

// Ticks returns the total number of ticks driven.
func (d *Driver) Ticks() uint64 {
	return d.ticks.Load()
}

// Starved returns how many ticks ran with the idle inputs because the
// source was empty.
func (d *Driver) Starved() uint64 {
	return d.starve.Load()
}
