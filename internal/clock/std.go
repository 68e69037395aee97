package clock

import "time"

// StdPacer wraps time.Ticker for the Pacer interface.
//
// Each call to Tick() performs a non-blocking select on the ticker's
// channel. The runtime drops edges the driver was too slow to consume, so
// a StdPacer never bursts to catch up.
type StdPacer struct {
	ticker   *time.Ticker
	interval time.Duration
}

// NewStd creates a StdPacer with the specified clock period.
func NewStd(interval time.Duration) *StdPacer {
	return &StdPacer{
		ticker:   time.NewTicker(interval),
		interval: interval,
	}
}

// Tick returns true if the period has elapsed.
func (p *StdPacer) Tick() bool {
	select {
	case <-p.ticker.C:
		return true
	default:
		return false
	}
}

// Reset restarts the period from now.
func (p *StdPacer) Reset() {
	p.ticker.Reset(p.interval)
}

// Stop stops the ticker and releases resources.
func (p *StdPacer) Stop() {
	p.ticker.Stop()
}

// Interval returns the clock period.
func (p *StdPacer) Interval() time.Duration {
	return p.interval
}
