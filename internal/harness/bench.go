package harness

import (
	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// Bench holds a queue and the levels currently driven onto its inputs.
// Levels persist across ticks until changed.
type Bench struct {
	q     *fclq.Queue
	sb    *Scoreboard
	in    fclq.Inputs
	out   fclq.Outputs
	cycle uint64
}

// NewBench creates a queue with a Scoreboard attached.
func NewBench(p fclq.Params, opts ...fclq.Option) (*Bench, error) {
	sb := NewScoreboard(p)
	q, err := fclq.New(p, append(opts, fclq.WithObserver(sb))...)
	if err != nil {
		return nil, err
	}
	return &Bench{q: q, sb: sb}, nil
}

// SetReset drives the reset input.
func (b *Bench) SetReset(on bool) {
	b.in.Reset = on
}

// SetWrite drives write_enable and data_in.
func (b *Bench) SetWrite(enable bool, v fclq.Entry) {
	b.in.WriteEnable = enable
	b.in.DataIn = v
}

// SetPop drives the pop input.
func (b *Bench) SetPop(on bool) {
	b.in.Pop = on
}

// SetPeek drives the peek index.
func (b *Bench) SetPeek(i int) {
	b.in.PeekIndex = i
}

// Apply replaces every input level and runs one tick.
func (b *Bench) Apply(in fclq.Inputs) fclq.Outputs {
	b.in = in
	return b.Cycles(1)
}

// Cycles runs n ticks with the current levels and returns the outputs of
// the last one.
func (b *Bench) Cycles(n int) fclq.Outputs {
	for i := 0; i < n; i++ {
		b.out = b.q.Step(b.in)
		b.cycle++
	}
	return b.out
}

// ResetFor drives every input low, holds reset for n ticks and then
// releases it. The returned outputs are those seen while reset was held.
func (b *Bench) ResetFor(n int) fclq.Outputs {
	b.in = fclq.Inputs{Reset: true}
	out := b.Cycles(n)
	b.in.Reset = false
	return out
}

// Out returns the outputs of the last tick.
func (b *Bench) Out() fclq.Outputs {
	return b.out
}

// Cycle returns the number of ticks run.
func (b *Bench) Cycle() uint64 {
	return b.cycle
}

// Queue returns the queue under test.
func (b *Bench) Queue() *fclq.Queue {
	return b.q
}

// Scoreboard returns the attached scoreboard.
func (b *Bench) Scoreboard() *Scoreboard {
	return b.sb
}
