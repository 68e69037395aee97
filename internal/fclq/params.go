package fclq

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

const (
	// DefaultCapacity is the number of entries the buffer holds.
	DefaultCapacity = 52
	// DefaultHighWatermark is the occupancy above which ready drops.
	DefaultHighWatermark = 51
	// DefaultHoldOffCycles is the countdown loaded when ready drops.
	DefaultHoldOffCycles = 47
	// DefaultPeekWidth is the number of head entries addressable by peek.
	DefaultPeekWidth = 4
	// DefaultEntryWidth is the entry width in bits.
	DefaultEntryWidth = 6

	maxEntryWidth = 32
)

// ErrInvalidParams is wrapped by every construction-parameter error.
var ErrInvalidParams = errors.New("fclq: invalid parameters")

// Params are the construction-time parameters of a Queue.
// They cannot change once the Queue exists.
type Params struct {
	// Capacity is the buffer depth C.
	Capacity int `json:"capacity"`

	// HighWatermark is the almost-full threshold. A tick that leaves more
	// than HighWatermark entries in the buffer drops ready and (re)loads
	// the hold-off countdown. Must be below Capacity so a full buffer is
	// always above it.
	HighWatermark int `json:"highWatermark"`

	// HoldOffCycles is the length of the hold-off countdown. It should be
	// at least the round-trip latency of whatever producer reacts to ready.
	HoldOffCycles int `json:"holdOffCycles"`

	// PeekWidth is the read window W; peek indexes run 0..W-1.
	PeekWidth int `json:"peekWidth"`

	// EntryWidth is the entry width in bits. Written values are truncated.
	EntryWidth int `json:"entryWidth"`
}

// DefaultParams returns the parameters of the reference 52-entry FIFO.
func DefaultParams() Params {
	return Params{
		Capacity:      DefaultCapacity,
		HighWatermark: DefaultHighWatermark,
		HoldOffCycles: DefaultHoldOffCycles,
		PeekWidth:     DefaultPeekWidth,
		EntryWidth:    DefaultEntryWidth,
	}
}

// Validate reports every problem with p at once. Each reported problem
// wraps ErrInvalidParams.
func (p Params) Validate() error {
	var err error
	if p.Capacity < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: capacity must be at least 1, got %d", ErrInvalidParams, p.Capacity))
	}
	if p.HighWatermark < 0 || p.HighWatermark >= p.Capacity {
		err = multierr.Append(err, fmt.Errorf("%w: highWatermark must be in [0, %d), got %d", ErrInvalidParams, p.Capacity, p.HighWatermark))
	}
	if p.HoldOffCycles < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: holdOffCycles must not be negative, got %d", ErrInvalidParams, p.HoldOffCycles))
	}
	if p.PeekWidth < 1 || p.PeekWidth > p.Capacity {
		err = multierr.Append(err, fmt.Errorf("%w: peekWidth must be in [1, %d], got %d", ErrInvalidParams, p.Capacity, p.PeekWidth))
	}
	if p.EntryWidth < 1 || p.EntryWidth > maxEntryWidth {
		err = multierr.Append(err, fmt.Errorf("%w: entryWidth must be in [1, %d], got %d", ErrInvalidParams, maxEntryWidth, p.EntryWidth))
	}
	return err
}

// EntryMask returns the bit mask applied to written values.
func (p Params) EntryMask() Entry {
	return Entry(uint64(1)<<uint(p.EntryWidth) - 1)
}

// MaxEntry returns the largest storable value.
func (p Params) MaxEntry() Entry {
	return p.EntryMask()
}
