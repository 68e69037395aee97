package harness

import (
	"fmt"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// SweepRow is one line of the hold-off table.
type SweepRow struct {
	// Pops is how many entries were popped right after the queue was full.
	Pops int
	// Idle is how many idle ticks followed the pops, including the one on
	// which ready rose.
	Idle int
	// Total is Pops+Idle: ticks from the last full tick to ready.
	Total int
}

// Sweep measures how long ready stays low after the queue was last full,
// for every pop count that brings the queue to the high watermark or below
// before the countdown runs out. Each row starts from a freshly reset and
// filled queue.
func Sweep(p fclq.Params) ([]SweepRow, error) {
	above := p.Capacity - 1 - p.HighWatermark
	limit := p.HoldOffCycles + p.Capacity + 1
	var rows []SweepRow
	for pops := above + 1; pops < min(releaseAfterFull(p), p.Capacity+1); pops++ {
		b, err := NewBench(p)
		if err != nil {
			return nil, err
		}
		b.ResetFor(resetCycles)
		b.Cycles(1)
		b.SetWrite(true, 1)
		b.Cycles(p.Capacity)
		b.SetWrite(false, 0)

		b.SetPop(true)
		out := b.Cycles(pops)
		b.SetPop(false)

		idle := 0
		for !out.Ready {
			if idle == limit {
				return nil, fmt.Errorf("%w: sweep: ready still low %d ticks after %d pops", ErrMismatch, idle, pops)
			}
			out = b.Cycles(1)
			idle++
		}
		if err := b.Scoreboard().Err(); err != nil {
			return nil, err
		}
		rows = append(rows, SweepRow{Pops: pops, Idle: idle, Total: pops + idle})
	}
	return rows, nil
}
