package clock

import "time"

// BatchPacer reads the wall clock only on every Nth poll.
//
// Edges stay phase-locked to the first deadline: each edge moves the
// deadline forward by whole periods, so late polls do not stretch the
// clock. Periods that passed entirely between two reads count as missed.
type BatchPacer struct {
	interval time.Duration
	every    int
	count    int
	deadline time.Time
	missed   uint64
}

// NewBatch creates a BatchPacer with the given period that reads the clock
// once per every polls. every is at least 1.
func NewBatch(interval time.Duration, every int) *BatchPacer {
	b := &BatchPacer{
		interval: max(interval, time.Nanosecond),
		every:    max(every, 1),
	}
	b.Reset()
	return b
}

// Tick reports whether an edge is due. Only every Nth call looks at the
// time; the others return false.
func (b *BatchPacer) Tick() bool {
	b.count++
	if b.count < b.every {
		return false
	}
	b.count = 0

	late := time.Since(b.deadline)
	if late < 0 {
		return false
	}
	periods := late / b.interval
	b.deadline = b.deadline.Add((periods + 1) * b.interval)
	b.missed += uint64(periods)
	return true
}

// Reset puts the next deadline one period from now.
func (b *BatchPacer) Reset() {
	b.count = 0
	b.deadline = time.Now().Add(b.interval)
}

// Stop does nothing; a BatchPacer holds no resources.
func (b *BatchPacer) Stop() {}

// Missed returns how many edges were skipped because polls came too late.
func (b *BatchPacer) Missed() uint64 {
	return b.missed
}

// Every returns how many polls share one clock read.
func (b *BatchPacer) Every() int {
	return b.every
}

// Interval returns the clock period.
func (b *BatchPacer) Interval() time.Duration {
	return b.interval
}
