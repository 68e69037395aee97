package harness

import (
	"fmt"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// RandomReport summarizes a Random run.
type RandomReport struct {
	Ticks    uint64
	Accepted uint64
	Dropped  uint64
	Popped   uint64
	Latency  int
}

// Random resets the bench, drives ticks inputs from prod and then drains
// the queue. It fails if the scoreboard saw a lost, reordered or altered
// entry, if anything is left after the drain, or if a producer reacting to
// ready without delay had a write dropped.
func Random(b *Bench, prod *Producer, ticks int) (RandomReport, error) {
	c := &checker{b: b, name: "random"}
	startup(c)

	for i := 0; i < ticks; i++ {
		b.Apply(prod.Next(b.Out().Ready))
	}

	// Drain: one pop per tick until the queue reads empty.
	depth := b.Queue().Params().Capacity
	for i := 0; i < depth && b.Out().NonEmpty; i++ {
		b.Apply(fclq.Inputs{Pop: true})
	}
	c.expect(!b.Out().NonEmpty, "drain", "queue not empty after %d pops", depth)

	st := b.Scoreboard().Stats()
	rep := RandomReport{
		Ticks:    st.Ticks,
		Accepted: st.Accepted,
		Dropped:  st.Dropped,
		Popped:   st.Popped,
		Latency:  prod.Config().Latency,
	}
	c.expect(rep.Popped == rep.Accepted, "drain", "popped %d of %d accepted entries", rep.Popped, rep.Accepted)
	if rep.Latency == 0 {
		c.expect(rep.Dropped == 0, "writes", "%d writes dropped with zero reaction latency", rep.Dropped)
	}

	if err := c.result(); err != nil {
		return rep, fmt.Errorf("seed %d: %w", prod.Config().Seed, err)
	}
	return rep, nil
}
