// Package metrics exports per-tick FIFO activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
)

const subsystem = "fclq"

// Collector is an fclq.Observer that counts what happens on every tick.
type Collector struct {
	ticks      prometheus.Counter
	resets     prometheus.Counter
	accepted   prometheus.Counter
	dropped    prometheus.Counter
	popped     prometheus.Counter
	underflows prometheus.Counter
	trips      prometheus.Counter
	releases   prometheus.Counter

	occupancy prometheus.Gauge
	countdown prometheus.Gauge
	ready     prometheus.Gauge

	occupancyAtPop prometheus.Histogram
}

// NewCollector creates the collectors for a queue of the given capacity.
// constLabels are attached to every series.
func NewCollector(capacity int, constLabels prometheus.Labels) *Collector {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Subsystem:   subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: constLabels,
		})
	}
	if capacity < 1 {
		capacity = 1
	}
	return &Collector{
		ticks:      counter("ticks_total", "Clock ticks applied to the queue."),
		resets:     counter("reset_ticks_total", "Ticks with reset asserted."),
		accepted:   counter("writes_accepted_total", "Writes appended at the tail."),
		dropped:    counter("writes_dropped_total", "Writes dropped because the queue was full."),
		popped:     counter("pops_total", "Entries removed from the head."),
		underflows: counter("pop_underflows_total", "Pops requested while the queue was empty."),
		trips:      counter("backpressure_trips_total", "Transitions of ready from high to low."),
		releases:   counter("backpressure_releases_total", "Transitions of ready from low to high after a hold-off."),
		occupancy:  gauge("occupancy", "Entries in the queue after the last tick."),
		countdown:  gauge("holdoff_remaining", "Hold-off countdown after the last tick."),
		ready:      gauge("ready", "Ready output after the last tick (1 or 0)."),
		occupancyAtPop: prometheus.NewHistogram(prometheus.HistogramOpts{
			Subsystem:   subsystem,
			Name:        "occupancy_at_pop",
			Help:        "Queue occupancy observed on each successful pop.",
			ConstLabels: constLabels,
			Buckets:     prometheus.LinearBuckets(0, float64(capacity)/8, 9),
		}),
	}
}

func (c *Collector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.ticks, c.resets, c.accepted, c.dropped, c.popped, c.underflows,
		c.trips, c.releases, c.occupancy, c.countdown, c.ready, c.occupancyAtPop,
	}
}

// Register registers every collector with reg and reports all failures.
func (c *Collector) Register(reg prometheus.Registerer) error {
	var err error
	for _, col := range c.collectors() {
		err = multierr.Append(err, reg.Register(col))
	}
	return err
}

// Observe implements fclq.Observer.
func (c *Collector) Observe(ev fclq.Event) {
	c.ticks.Inc()
	if ev.In.Reset {
		c.resets.Inc()
	}
	if ev.Accepted {
		c.accepted.Inc()
	}
	if ev.Dropped {
		c.dropped.Inc()
	}
	if ev.Popped {
		c.popped.Inc()
		c.occupancyAtPop.Observe(float64(preTickOccupancy(ev)))
	}
	if ev.Underflow {
		c.underflows.Inc()
	}
	if ev.Tripped {
		c.trips.Inc()
	}
	if ev.Released {
		c.releases.Inc()
	}

	c.occupancy.Set(float64(ev.Occupancy))
	c.countdown.Set(float64(ev.Countdown))
	if ev.Out.Ready {
		c.ready.Set(1)
	} else {
		c.ready.Set(0)
	}
}

// preTickOccupancy undoes the tick's own write and pop.
func preTickOccupancy(ev fclq.Event) int {
	occ := ev.Occupancy
	if ev.Accepted {
		occ--
	}
	if ev.Popped {
		occ++
	}
	return occ
}
