package harness

import (
	"math/rand/v2"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

const (
	defaultWriteRate = 0.6
	defaultPopRate   = 0.5

	// pcgStream is the second PCG seed word; the first is the run seed.
	pcgStream = 0x5deece66d
)

// ProducerConfig controls a Producer.
type ProducerConfig struct {
	// Seed makes the stimulus reproducible.
	Seed uint64

	// Latency is how many ticks late the producer sees ready. Zero means it
	// reacts on the tick right after ready changes.
	Latency int

	// WriteRate is the chance of writing on a tick while ready is seen high.
	WriteRate float64

	// PopRate is the chance of popping on any tick.
	PopRate float64
}

// Producer generates randomized inputs that honour ready.
//
// Written values count up from 1 and wrap at the entry width, so the
// scoreboard can tell a lost or reordered entry from a dropped write.
// Producer is not safe for concurrent use.
type Producer struct {
	rng       *rand.Rand
	cfg       ProducerConfig
	peekWidth int
	mask      fclq.Entry

	// seen is a delay line of ready values, newest at pos.
	seen []bool
	pos  int
	next fclq.Entry
}

// NewProducer creates a Producer for a queue built with p. Rates outside
// (0, 1] fall back to the defaults; a negative latency is zero.
func NewProducer(p fclq.Params, cfg ProducerConfig) *Producer {
	if cfg.WriteRate <= 0 || cfg.WriteRate > 1 {
		cfg.WriteRate = defaultWriteRate
	}
	if cfg.PopRate <= 0 || cfg.PopRate > 1 {
		cfg.PopRate = defaultPopRate
	}
	if cfg.Latency < 0 {
		cfg.Latency = 0
	}
	return &Producer{
		rng:       rand.New(rand.NewPCG(cfg.Seed, pcgStream)),
		cfg:       cfg,
		peekWidth: p.PeekWidth,
		mask:      p.EntryMask(),
		seen:      make([]bool, cfg.Latency+1),
		next:      1,
	}
}

// Next records the ready output of the tick just run and returns the
// inputs for the next one.
func (p *Producer) Next(ready bool) fclq.Inputs {
	p.pos = (p.pos + 1) % len(p.seen)
	p.seen[p.pos] = ready
	delayed := p.seen[(p.pos+1)%len(p.seen)]

	var in fclq.Inputs
	if delayed && p.rng.Float64() < p.cfg.WriteRate {
		in.WriteEnable = true
		in.DataIn = p.next & p.mask
		p.next++
	}
	in.Pop = p.rng.Float64() < p.cfg.PopRate
	in.PeekIndex = p.rng.IntN(p.peekWidth)
	return in
}

// Config returns the effective configuration.
func (p *Producer) Config() ProducerConfig {
	return p.cfg
}
