// Package harness drives an fclq.Queue the way a logic testbench drives a
// device under test: input levels are set, the clock advances, and
// outputs are checked after the edge.
//
// Components:
//   - Bench: input levels, clock and reset sequencing
//   - Scoreboard: reference FIFO checked on every tick
//   - Basic, Full: the directed scenarios
//   - Producer, Random: ready-aware randomized stimulus
//   - Sweep: the hold-off release table
package harness

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

// ErrMismatch is wrapped by every check failure.
var ErrMismatch = errors.New("harness: mismatch")

// Scenario is a directed test run on a Bench.
type Scenario func(*Bench) error

// Scenarios lists the directed scenarios by name.
var Scenarios = map[string]Scenario{
	"basic": Basic,
	"full":  Full,
}

// checker collects failed expectations for one scenario run.
type checker struct {
	b    *Bench
	name string
	err  error
}

func (c *checker) expect(ok bool, step, format string, args ...any) {
	if ok {
		return
	}
	c.err = multierr.Append(c.err, fmt.Errorf("%w: %s: cycle %d: %s: %s",
		ErrMismatch, c.name, c.b.Cycle(), step, fmt.Sprintf(format, args...)))
}

func (c *checker) ready(step string, out fclq.Outputs, want bool) {
	c.expect(out.Ready == want, step, "ready = %t, expected %t", out.Ready, want)
}

func (c *checker) nonEmpty(step string, out fclq.Outputs, want bool) {
	c.expect(out.NonEmpty == want, step, "non_empty = %t, expected %t", out.NonEmpty, want)
}

func (c *checker) data(step string, out fclq.Outputs, want fclq.Entry) {
	c.expect(out.DataOut == want, step, "data_out = %d, expected %d", out.DataOut, want)
}

// outputs checks all three outputs.
func (c *checker) outputs(step string, out fclq.Outputs, data fclq.Entry, nonEmpty, ready bool) {
	c.data(step, out, data)
	c.nonEmpty(step, out, nonEmpty)
	c.ready(step, out, ready)
}

// result joins the scenario's own failures with the scoreboard's.
func (c *checker) result() error {
	return multierr.Append(c.err, c.b.Scoreboard().Err())
}
