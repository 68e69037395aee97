// Command holdoff prints how long ready stays low after the FIFO was full.
//
// For every number of entries popped right after the last full tick it
// shows the idle ticks until ready rose and the total. The total is the
// same for every row: the hold-off cannot be shortened by draining.
//
// Usage:
//
//	go run ./cmd/holdoff
//	go run ./cmd/holdoff --capacity 16 --high-watermark 12 --hold-off 8
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/harness"
)

func main() {
	p := fclq.DefaultParams()
	pflag.IntVar(&p.Capacity, "capacity", p.Capacity, "queue depth in entries")
	pflag.IntVar(&p.HighWatermark, "high-watermark", p.HighWatermark, "occupancy above which ready drops")
	pflag.IntVar(&p.HoldOffCycles, "hold-off", p.HoldOffCycles, "hold-off countdown length")
	pflag.Parse()

	if err := p.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "holdoff: %v\n", err)
		os.Exit(2)
	}

	rows, err := harness.Sweep(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "holdoff: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Hold-off sweep (capacity %d, high watermark %d, hold-off %d)\n",
		p.Capacity, p.HighWatermark, p.HoldOffCycles)
	fmt.Println("─────────────────────────────────────────────────────────")
	fmt.Printf("  %6s  %6s  %6s\n", "pops", "idle", "total")
	for _, r := range rows {
		fmt.Printf("  %6d  %6d  %6d\n", r.Pops, r.Idle, r.Total)
	}
	fmt.Println()

	if len(rows) == 0 {
		fmt.Println("No pop count releases ready before the countdown ends.")
		return
	}
	fmt.Printf("Ready returns %d ticks after the last full tick.\n", rows[0].Total)
}
