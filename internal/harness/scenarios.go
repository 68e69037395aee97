package harness

import (
	"fmt"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// resetCycles is how long the directed scenarios hold reset.
const resetCycles = 10

// releaseAfterFull returns how many ticks after the queue was last full
// ready rises again when those ticks pop the queue down one entry at a
// time. Every pop that starts above the watermark reloads the countdown;
// the last of them is the one that lands on the watermark. The countdown
// then runs out and the next tick releases.
func releaseAfterFull(p fclq.Params) int {
	return p.Capacity - p.HighWatermark + p.HoldOffCycles + 1
}

// startup holds reset, checks the quiescent outputs, releases reset and
// checks that ready rises on the first tick.
func startup(c *checker) {
	b := c.b
	out := b.ResetFor(resetCycles)
	c.outputs("reset", out, 0, false, false)
	out = b.Cycles(1)
	c.ready("reset release", out, true)
}

// overfill writes Capacity+3 entries, 1, 2, 3, ... Ready falls on the
// first write that leaves the queue above the high watermark.
func overfill(c *checker, mask fclq.Entry) {
	b := c.b
	p := b.Queue().Params()
	b.SetPop(false)
	for i := 0; i < p.Capacity+3; i++ {
		b.SetWrite(true, fclq.Entry(1+i)&mask)
		out := b.Cycles(1)
		step := fmt.Sprintf("overfill write %d", i)
		c.nonEmpty(step, out, true)
		c.ready(step, out, i < p.HighWatermark)
	}
	b.SetWrite(false, 0)
}

// fillPeekDrain writes n entries while ready stays high, peeks the window,
// pops them all and checks the queue reads empty afterwards.
func fillPeekDrain(c *checker, n int, value func(int) fclq.Entry) {
	b := c.b
	p := b.Queue().Params()

	for i := 0; i < n; i++ {
		b.SetWrite(true, value(i))
		out := b.Cycles(1)
		step := fmt.Sprintf("write %d", i)
		c.nonEmpty(step, out, true)
		c.ready(step, out, true)
	}
	b.SetWrite(false, 0)

	for i := 0; i < p.PeekWidth && i < n; i++ {
		b.SetPeek(i)
		out := b.Cycles(1)
		step := fmt.Sprintf("peek %d", i)
		c.outputs(step, out, value(i), true, true)
	}

	b.SetPeek(0)
	b.SetPop(true)
	for i := 0; i < n; i++ {
		out := b.Cycles(1)
		step := fmt.Sprintf("pop %d", i)
		c.outputs(step, out, value(i), i < n-1, true)
	}

	b.SetPop(false)
	out := b.Cycles(1)
	c.outputs("pop clears", out, 0, false, true)
}

// Basic is the directed push, peek and pop walk: a single entry, a short
// burst, an overfill with drain through the hold-off, an empty pop and a
// final burst showing the queue still works.
func Basic(b *Bench) error {
	c := &checker{b: b, name: "basic"}
	p := b.Queue().Params()
	mask := p.EntryMask()

	startup(c)

	// One entry at the top of the range.
	b.SetWrite(true, p.MaxEntry())
	out := b.Cycles(1)
	c.ready("push", out, true)

	b.SetWrite(false, 0)
	out = b.Cycles(1)
	c.outputs("peek", out, p.MaxEntry(), true, true)

	b.SetPop(true)
	out = b.Cycles(1)
	c.outputs("pop", out, p.MaxEntry(), false, true)

	b.SetPop(false)
	out = b.Cycles(1)
	c.outputs("pop clears", out, 0, false, true)

	fillPeekDrain(c, min(9, p.HighWatermark), func(i int) fclq.Entry {
		return fclq.Entry(1+3*i) & mask
	})

	overfill(c, mask)

	for i := 0; i < p.PeekWidth; i++ {
		b.SetPeek(i)
		out = b.Cycles(1)
		step := fmt.Sprintf("peek full %d", i)
		c.outputs(step, out, fclq.Entry(1+i)&mask, true, false)
	}

	// Ready rises a fixed number of ticks after the last full tick, while
	// the pops are still going on.
	release := releaseAfterFull(p)
	b.SetPeek(0)
	b.SetPop(true)
	for i := 0; i < p.Capacity; i++ {
		out = b.Cycles(1)
		step := fmt.Sprintf("drain pop %d", i)
		c.outputs(step, out, fclq.Entry(1+i)&mask, i < p.Capacity-1, i+1 >= release)
	}

	b.SetPop(false)
	out = b.Cycles(1)
	c.outputs("drain clears", out, 0, false, p.Capacity+1 >= release)
	if wait := release - p.Capacity - 1; wait > 0 {
		out = b.Cycles(wait)
		c.ready("hold-off expiry", out, true)
	}

	b.SetPop(true)
	out = b.Cycles(1)
	c.outputs("pop empty", out, 0, false, true)

	b.SetPop(false)
	out = b.Cycles(1)
	c.outputs("idle", out, 0, false, true)

	fillPeekDrain(c, min(20, p.HighWatermark), func(i int) fclq.Entry {
		return fclq.Entry(1+2*i) & mask
	})

	return c.result()
}

// Full sweeps the hold-off. After an overfill, every round pops i entries,
// idles until just before ready must return, checks ready is still low,
// checks it rises one tick later, and refills the i entries, which trips
// ready again on the write that crosses the watermark.
//
// Rounds run for every i that lands the queue at or below the watermark
// before ready may return. With the default parameters that is 48 rounds
// of i pops and 48-i idle ticks.
func Full(b *Bench) error {
	c := &checker{b: b, name: "full"}
	p := b.Queue().Params()
	mask := p.EntryMask()

	startup(c)
	overfill(c, mask)

	// Pops that start above the watermark keep reloading the countdown.
	above := p.Capacity - 1 - p.HighWatermark
	hold := releaseAfterFull(p) - 1
	first := above + 1
	last := min(hold, p.Capacity)

	for i := first; i <= last; i++ {
		b.SetWrite(false, 0)
		b.SetPop(true)
		for j := 0; j < i; j++ {
			out := b.Cycles(1)
			step := fmt.Sprintf("round %d pop %d", i, j)
			c.nonEmpty(step, out, j < p.Capacity-1)
			c.ready(step, out, false)
		}

		b.SetPop(false)
		out := b.Cycles(hold - i)
		c.ready(fmt.Sprintf("round %d hold", i), out, false)
		out = b.Cycles(1)
		c.ready(fmt.Sprintf("round %d release", i), out, true)

		for j := 0; j < i; j++ {
			b.SetWrite(true, fclq.Entry(1+j)&mask)
			out = b.Cycles(1)
			step := fmt.Sprintf("round %d refill %d", i, j)
			c.nonEmpty(step, out, true)
			c.ready(step, out, j < i-above-1)
		}
	}
	b.SetWrite(false, 0)

	return c.result()
}
