package fclq

// Phase is the state of the backpressure machine.
type Phase uint8

const (
	// PhaseReset: reset is or was just asserted, ready is low but no
	// countdown is running. The next tick re-arms the machine.
	PhaseReset Phase = iota
	// PhaseReady: ready is high.
	PhaseReady
	// PhaseHeld: ready is low and the hold-off countdown is running.
	PhaseHeld
)

func (p Phase) String() string {
	switch p {
	case PhaseReset:
		return "reset"
	case PhaseReady:
		return "ready"
	case PhaseHeld:
		return "held"
	default:
		return "unknown"
	}
}

// HoldOff is the backpressure register pair: the phase (which drives the
// ready output) and the hold-off countdown.
//
// It is a value type. Next returns the registers after one tick and never
// looks at the buffer; the caller reduces the buffer to one bit, whether
// the buffer was above the high watermark at either end of the tick.
type HoldOff struct {
	length    int
	remaining int
	phase     Phase
}

// NewHoldOff returns the register pair as it is right after reset.
func NewHoldOff(length int) HoldOff {
	if length < 0 {
		length = 0
	}
	return HoldOff{length: length, phase: PhaseReset}
}

// Next advances the registers by one tick.
//
// over is true when the buffer was above the high watermark before or
// after this tick. That (re)loads the countdown. Otherwise a running countdown decrements,
// and ready returns on the first tick that starts with the countdown at
// zero. Drain activity cannot shorten the countdown: only over, which
// reloads it, and Clear touch it besides the per-tick decrement.
func (h HoldOff) Next(over bool) HoldOff {
	switch {
	case over:
		h.remaining = h.length
		h.phase = PhaseHeld
	case h.remaining > 0:
		h.remaining--
		h.phase = PhaseHeld
	default:
		h.phase = PhaseReady
	}
	return h
}

// Clear returns the registers as reset leaves them.
func (h HoldOff) Clear() HoldOff {
	return NewHoldOff(h.length)
}

// Ready reports the ready output.
func (h HoldOff) Ready() bool {
	return h.phase == PhaseReady
}

// Phase returns the machine state.
func (h HoldOff) Phase() Phase {
	return h.phase
}

// Remaining returns the countdown value.
func (h HoldOff) Remaining() int {
	return h.remaining
}

// Length returns the value the countdown is loaded with.
func (h HoldOff) Length() int {
	return h.length
}
