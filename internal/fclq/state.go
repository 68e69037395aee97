package fclq

import (
	"fmt"

	"github.com/randomizedcoder/lookahead-fifo/internal/queue"
)

// State is the complete register state of the queue: the buffer, the
// backpressure registers, and the registered outputs.
//
// State is not safe for concurrent use; Queue adds the locking.
type State struct {
	params Params
	mask   Entry

	buf   *queue.Ring[Entry]
	hold  HoldOff
	out   Outputs
	cycle uint64
}

// NewState returns a State as it is while reset is held.
func NewState(p Params) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &State{
		params: p,
		mask:   p.EntryMask(),
		buf:    queue.NewRing[Entry](p.Capacity),
		hold:   NewHoldOff(p.HoldOffCycles),
	}, nil
}

// transition is the whole effect of one tick, decided from the pre-tick
// state. Nothing in it is applied until commit.
type transition struct {
	reset     bool
	accept    bool
	drop      bool
	pop       bool
	underflow bool
	data      Entry
	occupancy int
	hold      HoldOff
	out       Outputs
}

// plan decides the tick without touching the state.
func (s *State) plan(in Inputs) transition {
	if in.Reset {
		return transition{
			reset: true,
			hold:  s.hold.Clear(),
		}
	}

	var t transition
	occ := s.buf.Len()

	// Overflow protection does not trust ready.
	if in.WriteEnable {
		if occ < s.params.Capacity {
			t.accept = true
			t.data = in.DataIn & s.mask
		} else {
			t.drop = true
		}
	}
	if in.Pop {
		if occ > 0 {
			t.pop = true
		} else {
			t.underflow = true
		}
	}

	t.occupancy = occ
	if t.accept {
		t.occupancy++
	}
	if t.pop {
		t.occupancy--
	}

	// A tick that starts or ends above the watermark reloads the
	// countdown, so the pop that takes a full queue down to the watermark
	// still counts as a full tick.
	over := occ > s.params.HighWatermark || t.occupancy > s.params.HighWatermark
	t.hold = s.hold.Next(over)

	// The window is read before this tick's pop lands.
	if in.PeekIndex >= 0 && in.PeekIndex < s.params.PeekWidth {
		t.out.DataOut, _ = s.buf.Peek(in.PeekIndex)
	}
	t.out.NonEmpty = t.occupancy > 0
	t.out.Ready = t.hold.Ready()
	return t
}

// commit applies a planned tick and returns its Event.
func (s *State) commit(in Inputs, t transition) Event {
	s.cycle++
	ev := Event{
		Cycle:     s.cycle,
		In:        in,
		Accepted:  t.accept,
		Dropped:   t.drop,
		Underflow: t.underflow,
		Tripped:   s.hold.Phase() != PhaseHeld && t.hold.Phase() == PhaseHeld,
		Released:  s.hold.Phase() == PhaseHeld && t.hold.Ready(),
	}

	if t.reset {
		s.buf.Reset()
	} else {
		if t.pop {
			ev.PoppedEntry, ev.Popped = s.buf.Pop()
		}
		if t.accept {
			s.buf.Push(t.data)
		}
	}
	s.hold = t.hold
	s.out = t.out

	ev.Out = s.out
	ev.Occupancy = s.buf.Len()
	ev.Countdown = s.hold.Remaining()
	ev.Phase = s.hold.Phase()
	return ev
}

// Step advances the state by one tick.
func (s *State) Step(in Inputs) Event {
	return s.commit(in, s.plan(in))
}

// Outputs returns the outputs registered by the last tick.
func (s *State) Outputs() Outputs {
	return s.out
}

// Occupancy returns the number of buffered entries.
func (s *State) Occupancy() int {
	return s.buf.Len()
}

// Params returns the construction parameters.
func (s *State) Params() Params {
	return s.params
}

// Snapshot is a read-only copy of the state between ticks.
type Snapshot struct {
	Cycle     uint64
	Entries   []Entry // head first
	Countdown int
	Phase     Phase
	Out       Outputs
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Cycle:     s.cycle,
		Entries:   s.buf.Snapshot(nil),
		Countdown: s.hold.Remaining(),
		Phase:     s.hold.Phase(),
		Out:       s.out,
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("cycle=%d occupancy=%d phase=%s countdown=%d out=%+v",
		s.Cycle, len(s.Entries), s.Phase, s.Countdown, s.Out)
}
