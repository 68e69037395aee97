package harness_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/harness"
)

func TestProducer_Latency(t *testing.T) {
	prod := harness.NewProducer(fclq.DefaultParams(), harness.ProducerConfig{
		Seed:      1,
		Latency:   3,
		WriteRate: 1,
	})

	for i := 0; i < 3; i++ {
		in := prod.Next(true)
		assert.False(t, in.WriteEnable, "call %d saw ready too early", i)
	}
	in := prod.Next(true)
	assert.True(t, in.WriteEnable)
	assert.Equal(t, fclq.Entry(1), in.DataIn)

	// A low ready takes the same time to reach the producer.
	for i := 0; i < 3; i++ {
		assert.True(t, prod.Next(false).WriteEnable, "call %d", i)
	}
	assert.False(t, prod.Next(false).WriteEnable)
}

func TestProducer_ValuesWrap(t *testing.T) {
	p := fclq.DefaultParams()
	p.EntryWidth = 2
	prod := harness.NewProducer(p, harness.ProducerConfig{Seed: 1, WriteRate: 1})

	var got []fclq.Entry
	for i := 0; i < 6; i++ {
		in := prod.Next(true)
		require.True(t, in.WriteEnable)
		got = append(got, in.DataIn)
		assert.Less(t, in.PeekIndex, p.PeekWidth)
	}
	assert.Equal(t, []fclq.Entry{1, 2, 3, 0, 1, 2}, got)
}

func TestProducer_Defaults(t *testing.T) {
	prod := harness.NewProducer(fclq.DefaultParams(), harness.ProducerConfig{Latency: -1, WriteRate: 2})
	cfg := prod.Config()
	assert.Equal(t, 0, cfg.Latency)
	assert.Greater(t, cfg.WriteRate, 0.0)
	assert.LessOrEqual(t, cfg.WriteRate, 1.0)
	assert.Greater(t, cfg.PopRate, 0.0)
}

func TestRandom_NoDropsWithoutLatency(t *testing.T) {
	for seed := uint64(1); seed <= 5; seed++ {
		b := newBench(t, fclq.DefaultParams())
		prod := harness.NewProducer(b.Queue().Params(), harness.ProducerConfig{Seed: seed})
		rep, err := harness.Random(b, prod, 5000)
		require.NoError(t, err, "seed %d", seed)
		assert.Zero(t, rep.Dropped)
		assert.Equal(t, rep.Accepted, rep.Popped)
		assert.NotZero(t, rep.Accepted)
	}
}

func TestRandom_LateProducerDrops(t *testing.T) {
	b := newBench(t, fclq.DefaultParams())
	prod := harness.NewProducer(b.Queue().Params(), harness.ProducerConfig{
		Seed:      7,
		Latency:   60,
		WriteRate: 1,
		PopRate:   0.1,
	})
	rep, err := harness.Random(b, prod, 2000)
	require.NoError(t, err)
	assert.Positive(t, rep.Dropped)
	assert.Equal(t, rep.Accepted, rep.Popped)
	assert.Equal(t, 60, rep.Latency)
}
