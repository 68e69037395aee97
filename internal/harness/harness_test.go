package harness_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/harness"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
)

// paramSets covers the reference queue, a queue whose ready falls before it
// is full and releases mid-drain, and one whose hold-off outlasts a drain.
var paramSets = map[string]fclq.Params{
	"default": fclq.DefaultParams(),
	"early watermark": {
		Capacity: 8, HighWatermark: 5, HoldOffCycles: 3, PeekWidth: 2, EntryWidth: 4,
	},
	"long hold-off": {
		Capacity: 4, HighWatermark: 3, HoldOffCycles: 10, PeekWidth: 1, EntryWidth: 3,
	},
}

func newBench(t *testing.T, p fclq.Params) *harness.Bench {
	t.Helper()
	b, err := harness.NewBench(p, fclq.WithLogger(logging.NewTestLogger()))
	require.NoError(t, err)
	return b
}

func TestBench_ResetFor(t *testing.T) {
	b := newBench(t, fclq.DefaultParams())

	out := b.ResetFor(10)
	assert.Equal(t, fclq.Outputs{}, out)
	assert.Equal(t, uint64(10), b.Cycle())

	out = b.Cycles(1)
	assert.True(t, out.Ready)
	assert.False(t, out.NonEmpty)
}

func TestBench_LevelsPersist(t *testing.T) {
	b := newBench(t, fclq.DefaultParams())
	b.ResetFor(1)

	b.SetWrite(true, 5)
	b.Cycles(3)
	assert.Equal(t, 3, b.Queue().Occupancy())

	b.SetWrite(false, 0)
	b.SetPeek(2)
	out := b.Cycles(1)
	assert.Equal(t, fclq.Entry(5), out.DataOut)

	b.SetPop(true)
	b.Cycles(5)
	assert.Equal(t, 0, b.Queue().Occupancy())
	assert.NoError(t, b.Scoreboard().Err())
}

func TestBench_InvalidParams(t *testing.T) {
	_, err := harness.NewBench(fclq.Params{})
	assert.ErrorIs(t, err, fclq.ErrInvalidParams)
}

func TestBasic(t *testing.T) {
	for name, p := range paramSets {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, harness.Basic(newBench(t, p)))
		})
	}
}

func TestFull(t *testing.T) {
	for name, p := range paramSets {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, harness.Full(newBench(t, p)))
		})
	}
}

// TestBasic_DefaultSequence replays the basic bring-up on the default
// queue with every constant written out, independent of the scenario code.
func TestBasic_DefaultSequence(t *testing.T) {
	b := newBench(t, fclq.DefaultParams())
	assert.Equal(t, fclq.Outputs{}, b.ResetFor(10))
	require.True(t, b.Cycles(1).Ready)

	b.SetWrite(true, 63)
	assert.True(t, b.Cycles(1).Ready, "push")
	b.SetWrite(false, 0)
	assert.Equal(t, fclq.Outputs{DataOut: 63, NonEmpty: true, Ready: true}, b.Cycles(1), "peek")
	b.SetPop(true)
	assert.Equal(t, fclq.Outputs{DataOut: 63, Ready: true}, b.Cycles(1), "pop")
	b.SetPop(false)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "pop clears")

	for i := 0; i < 9; i++ {
		b.SetWrite(true, fclq.Entry(1+3*i))
		out := b.Cycles(1)
		assert.True(t, out.NonEmpty && out.Ready, "write %d: %+v", i, out)
	}
	b.SetWrite(false, 0)
	for i := 0; i < 4; i++ {
		b.SetPeek(i)
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + 3*i), NonEmpty: true, Ready: true}, b.Cycles(1), "peek %d", i)
	}
	b.SetPeek(0)
	b.SetPop(true)
	for i := 0; i < 9; i++ {
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + 3*i), NonEmpty: i < 8, Ready: true}, b.Cycles(1), "pop %d", i)
	}
	b.SetPop(false)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "pop clears")

	// Overfill: ready falls on the 52nd write, writes 53 to 55 are dropped.
	for i := 0; i < 55; i++ {
		b.SetWrite(true, fclq.Entry(1+i))
		out := b.Cycles(1)
		assert.True(t, out.NonEmpty, "overfill %d", i)
		assert.Equal(t, i < 51, out.Ready, "overfill %d", i)
	}
	b.SetWrite(false, 0)
	for i := 0; i < 4; i++ {
		b.SetPeek(i)
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + i), NonEmpty: true}, b.Cycles(1), "peek full %d", i)
	}

	// Ready stays low through pop 47 and rises on pop 48.
	b.SetPeek(0)
	b.SetPop(true)
	for i := 0; i < 52; i++ {
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + i), NonEmpty: i < 51, Ready: i >= 48}, b.Cycles(1), "drain pop %d", i)
	}
	b.SetPop(false)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "drain clears")
	b.SetPop(true)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "pop empty")
	b.SetPop(false)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "idle")

	for i := 0; i < 20; i++ {
		b.SetWrite(true, fclq.Entry(1+2*i))
		out := b.Cycles(1)
		assert.True(t, out.NonEmpty && out.Ready, "write %d: %+v", i, out)
	}
	b.SetWrite(false, 0)
	for i := 0; i < 4; i++ {
		b.SetPeek(i)
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + 2*i), NonEmpty: true, Ready: true}, b.Cycles(1), "peek %d", i)
	}
	b.SetPeek(0)
	b.SetPop(true)
	for i := 0; i < 20; i++ {
		assert.Equal(t, fclq.Outputs{DataOut: fclq.Entry(1 + 2*i), NonEmpty: i < 19, Ready: true}, b.Cycles(1), "pop %d", i)
	}
	b.SetPop(false)
	assert.Equal(t, fclq.Outputs{Ready: true}, b.Cycles(1), "pop clears")

	assert.NoError(t, b.Scoreboard().Err())
}

// TestFull_DefaultSequence replays the hold-off sweep on the default queue
// with every constant written out: i pops, 48-i idle ticks with ready low,
// ready high on the next tick, then i refills.
func TestFull_DefaultSequence(t *testing.T) {
	b := newBench(t, fclq.DefaultParams())
	b.ResetFor(10)
	require.True(t, b.Cycles(1).Ready)

	for i := 0; i < 55; i++ {
		b.SetWrite(true, fclq.Entry(1+i))
		out := b.Cycles(1)
		require.True(t, out.NonEmpty, "overfill %d", i)
		require.Equal(t, i < 51, out.Ready, "overfill %d", i)
	}

	for i := 1; i < 49; i++ {
		b.SetWrite(false, 0)
		b.SetPop(true)
		for j := 0; j < i; j++ {
			out := b.Cycles(1)
			require.True(t, out.NonEmpty, "round %d pop %d", i, j)
			require.False(t, out.Ready, "round %d pop %d", i, j)
		}

		b.SetPop(false)
		require.False(t, b.Cycles(48-i).Ready, "round %d: ready after %d pops and %d idle ticks", i, i, 48-i)
		require.True(t, b.Cycles(1).Ready, "round %d: ready still low on the 49th tick", i)

		for j := 0; j < i; j++ {
			b.SetWrite(true, fclq.Entry(1+j))
			out := b.Cycles(1)
			require.True(t, out.NonEmpty, "round %d refill %d", i, j)
			require.Equal(t, j < i-1, out.Ready, "round %d refill %d", i, j)
		}
	}

	assert.NoError(t, b.Scoreboard().Err())
}

func TestScenarios_Registered(t *testing.T) {
	for _, name := range []string{"basic", "full"} {
		s, ok := harness.Scenarios[name]
		require.True(t, ok, name)
		assert.NoError(t, s(newBench(t, fclq.DefaultParams())), name)
	}
}

func TestSweep_Default(t *testing.T) {
	p := fclq.DefaultParams()
	rows, err := harness.Sweep(p)
	require.NoError(t, err)
	require.Len(t, rows, 48)

	// Ready rises on the 49th tick after the last full tick, however the
	// ticks before it split between pops and idling.
	for i, row := range rows {
		assert.Equal(t, i+1, row.Pops)
		assert.Equal(t, 49-row.Pops, row.Idle, "pops %d", row.Pops)
		assert.Equal(t, 49, row.Total, "pops %d", row.Pops)
	}
}

func TestSweep_EarlyWatermark(t *testing.T) {
	p := paramSets["early watermark"]
	rows, err := harness.Sweep(p)
	require.NoError(t, err)

	// The first three pops start above the watermark and reload the
	// countdown, so ready returns four ticks after the third.
	want := []harness.SweepRow{
		{Pops: 3, Idle: 4, Total: 7},
		{Pops: 4, Idle: 3, Total: 7},
		{Pops: 5, Idle: 2, Total: 7},
		{Pops: 6, Idle: 1, Total: 7},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("unexpected sweep (-want +got):\n%s", diff)
	}
}
