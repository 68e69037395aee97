// Package fclq implements the flow-controlled lookahead queue: a clocked
// FIFO with a peek window over its head and a hysteretic ready signal.
//
// The queue has one write port and one read/pop port and advances exactly
// one tick per Step call. Every tick samples the full input tuple, computes
// the next state from the current one in a single transition, and commits
// it atomically. Illegal requests never fail: writes into a full buffer are
// dropped, pops of an empty buffer do nothing, and peeks past the tail read
// the sentinel 0. Callers detect those outcomes through NonEmpty and Ready.
//
// Backpressure: a tick that leaves the buffer above the high watermark
// drops Ready and loads a countdown of HoldOffCycles. The countdown then
// decrements once per tick no matter how fast the buffer drains, and Ready
// returns on the first tick that starts with the countdown at zero. A
// producer that stops writing within HoldOffCycles ticks of seeing Ready
// fall therefore cannot overrun the buffer.
package fclq

// Entry is a single value stored in the queue.
type Entry uint32

// Inputs are the signals sampled on one tick.
type Inputs struct {
	// Reset is a level-sensitive synchronous clear. All other inputs are
	// ignored while it is asserted.
	Reset bool

	WriteEnable bool
	DataIn      Entry

	Pop bool

	// PeekIndex selects the window offset presented on DataOut.
	PeekIndex int
}

// Outputs are the signals presented after one tick.
type Outputs struct {
	// DataOut is the entry at PeekIndex before this tick's pop, or 0.
	DataOut Entry

	// NonEmpty is true iff the buffer holds at least one entry.
	NonEmpty bool

	// Ready is the advisory clear-to-write signal.
	Ready bool
}

// Event describes everything that happened on one tick.
type Event struct {
	// Cycle counts ticks since construction, starting at 1.
	Cycle uint64

	In  Inputs
	Out Outputs

	Accepted bool // write appended at the tail
	Dropped  bool // write requested while full

	Popped      bool  // head removed
	PoppedEntry Entry // value of the removed head
	Underflow   bool  // pop requested while empty

	Occupancy int
	Countdown int
	Phase     Phase

	Tripped  bool // ready fell on this tick
	Released bool // ready rose after a hold-off
}

// Observer receives one Event per tick, in tick order.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) {
	f(ev)
}
