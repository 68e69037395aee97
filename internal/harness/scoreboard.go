package harness

import (
	"fmt"
	"sync"

	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// maxReported bounds the number of mismatches kept as errors. The count
// keeps going.
const maxReported = 32

// Stats are the scoreboard's running totals.
type Stats struct {
	Ticks      uint64
	Accepted   uint64
	Dropped    uint64
	Popped     uint64
	Underflows uint64
	Mismatches uint64
}

// Scoreboard checks every tick of a queue against a reference FIFO.
//
// It checks that accepted writes come out in order and unchanged, that a
// write is accepted exactly when the queue has room, that data_out shows
// the addressed window entry, that occupancy stays within capacity, that
// non_empty tracks occupancy, and that ready follows a reference hold-off
// countdown: low on any tick that starts or ends above the high watermark
// and for the hold-off after it.
type Scoreboard struct {
	params fclq.Params
	mask   fclq.Entry

	mu        sync.Mutex
	ref       []fclq.Entry
	countdown int
	held      bool
	stats     Stats
	err       error
}

// NewScoreboard creates a Scoreboard for a queue built with p.
func NewScoreboard(p fclq.Params) *Scoreboard {
	return &Scoreboard{
		params: p,
		mask:   p.EntryMask(),
		ref:    make([]fclq.Entry, 0, p.Capacity),
	}
}

func (s *Scoreboard) fail(ev fclq.Event, format string, args ...any) {
	s.stats.Mismatches++
	if s.stats.Mismatches > maxReported {
		return
	}
	s.err = multierr.Append(s.err, fmt.Errorf("%w: scoreboard: cycle %d: %s",
		ErrMismatch, ev.Cycle, fmt.Sprintf(format, args...)))
}

// Observe implements fclq.Observer.
func (s *Scoreboard) Observe(ev fclq.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.Ticks++
	if ev.In.Reset {
		s.ref = s.ref[:0]
		s.countdown = 0
		s.held = false
		if ev.Out != (fclq.Outputs{}) {
			s.fail(ev, "outputs %+v under reset, expected quiescent", ev.Out)
		}
		if ev.Occupancy != 0 {
			s.fail(ev, "occupancy %d under reset", ev.Occupancy)
		}
		return
	}

	pre := len(s.ref)
	in := ev.In

	var want fclq.Entry
	if in.PeekIndex >= 0 && in.PeekIndex < s.params.PeekWidth && in.PeekIndex < pre {
		want = s.ref[in.PeekIndex]
	}
	if ev.Out.DataOut != want {
		s.fail(ev, "data_out %d at peek %d, expected %d", ev.Out.DataOut, in.PeekIndex, want)
	}

	if in.Pop {
		switch {
		case pre == 0:
			s.stats.Underflows++
			if ev.Popped || !ev.Underflow {
				s.fail(ev, "pop on empty queue was not ignored")
			}
		case !ev.Popped:
			s.fail(ev, "pop with %d entries did not remove the head", pre)
		default:
			s.stats.Popped++
			if ev.PoppedEntry != s.ref[0] {
				s.fail(ev, "popped %d, expected %d", ev.PoppedEntry, s.ref[0])
			}
			s.ref = s.ref[1:]
		}
	}

	if in.WriteEnable {
		room := pre < s.params.Capacity
		switch {
		case room && !ev.Accepted:
			s.fail(ev, "write refused with %d entries", pre)
		case !room && !ev.Dropped:
			s.fail(ev, "write into full queue was not dropped")
		}
		if room {
			s.stats.Accepted++
			s.ref = append(s.ref, in.DataIn&s.mask)
		} else {
			s.stats.Dropped++
		}
	}

	occ := len(s.ref)
	if ev.Occupancy != occ {
		s.fail(ev, "occupancy %d, expected %d", ev.Occupancy, occ)
	}
	if ev.Occupancy > s.params.Capacity {
		s.fail(ev, "occupancy %d exceeds capacity %d", ev.Occupancy, s.params.Capacity)
	}
	if ev.Out.NonEmpty != (occ > 0) {
		s.fail(ev, "non_empty %t with %d entries", ev.Out.NonEmpty, occ)
	}

	switch {
	case pre > s.params.HighWatermark || occ > s.params.HighWatermark:
		s.countdown = s.params.HoldOffCycles
		s.held = true
	case s.countdown > 0:
		s.countdown--
		s.held = true
	default:
		s.held = false
	}
	if ev.Out.Ready == s.held {
		s.fail(ev, "ready %t with %d entries (%d before), expected %t with %d hold-off ticks left",
			ev.Out.Ready, occ, pre, !s.held, s.countdown)
	}
}

// Occupancy returns the reference FIFO length.
func (s *Scoreboard) Occupancy() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ref)
}

// Stats returns the running totals.
func (s *Scoreboard) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Err returns every recorded mismatch, or nil.
func (s *Scoreboard) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
