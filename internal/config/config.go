// Package config holds the simulator configuration: the queue's
// construction parameters and the run settings. Values come from the
// defaults, then an optional YAML file, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"sigs.k8s.io/yaml"

	"github.com/randomizedcoder/lookahead-fifo/internal/clock"
	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
)

const (
	PacerStd    = "std"
	PacerBatch  = "batch"
	PacerAtomic = "atomic"
	PacerFree   = "free"

	SourceChannel = "channel"
	SourceRing    = "ring"

	ScenarioRun    = "run"
	ScenarioBasic  = "basic"
	ScenarioFull   = "full"
	ScenarioRandom = "random"
)

const (
	defaultTicks      = 100_000
	defaultBatchEvery = 64
	defaultSourceSize = 1024
	defaultSeed       = 1
	defaultWriteRate  = 0.6
	defaultPopRate    = 0.5
)

var (
	pacers    = []string{PacerStd, PacerBatch, PacerAtomic, PacerFree}
	sources   = []string{SourceChannel, SourceRing}
	scenarios = []string{ScenarioRun, ScenarioBasic, ScenarioFull, ScenarioRandom}
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("config: invalid")

// RunConfig controls how the simulator drives the queue.
type RunConfig struct {
	// Scenario is run (paced free-running simulation), basic, full or
	// random.
	Scenario string `json:"scenario"`

	// Ticks bounds a run or random scenario. Zero runs a paced simulation
	// until interrupted.
	Ticks uint64 `json:"ticks"`

	// Interval is the clock period of a paced run.
	Interval Duration `json:"interval"`

	// Pacer selects the clock implementation: std, batch, atomic or free.
	Pacer string `json:"pacer"`

	// BatchEvery is how many polls the batch pacer skips between time reads.
	BatchEvery int `json:"batchEvery"`

	// Source selects the stimulus transport: channel or ring.
	Source string `json:"source"`

	// SourceSize is the channel source buffer size.
	SourceSize int `json:"sourceSize"`

	// Seed seeds the randomized producer.
	Seed uint64 `json:"seed"`

	// ProducerLatency is how many ticks late the producer sees ready.
	ProducerLatency int `json:"producerLatency"`

	// WriteRate and PopRate are per-tick probabilities.
	WriteRate float64 `json:"writeRate"`
	PopRate   float64 `json:"popRate"`

	// MetricsAddr is the listen address for /metrics. Empty disables it.
	MetricsAddr string `json:"metricsAddr"`

	// TracePath is the JSON-lines trace file. Empty disables tracing.
	TracePath string `json:"tracePath"`

	// Verbosity is the log verbosity.
	Verbosity int `json:"verbosity"`

	// Development selects the human-readable console logger.
	Development bool `json:"development"`
}

// Config is the full simulator configuration.
type Config struct {
	Queue fclq.Params `json:"queue"`
	Run   RunConfig   `json:"run"`

	// internal
	path string
	fs   *pflag.FlagSet
}

// Default returns the reference queue with a paced run.
func Default() *Config {
	return &Config{
		Queue: fclq.DefaultParams(),
		Run: RunConfig{
			Scenario:   ScenarioRun,
			Ticks:      defaultTicks,
			Interval:   Duration(clock.DefaultInterval),
			Pacer:      PacerStd,
			BatchEvery: defaultBatchEvery,
			Source:     SourceChannel,
			SourceSize: defaultSourceSize,
			Seed:       defaultSeed,
			WriteRate:  defaultWriteRate,
			PopRate:    defaultPopRate,
			Verbosity:  logging.DEFAULT,
		},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are errors.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// AddFlags binds the configuration fields to command-line flags on fs.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	if fs == nil {
		fs = pflag.CommandLine
	}
	c.fs = fs

	fs.StringVar(&c.path, "config", c.path,
		"YAML config file. Flags given on the command line override it.")

	fs.IntVar(&c.Queue.Capacity, "capacity", c.Queue.Capacity,
		"Queue depth in entries.")
	fs.IntVar(&c.Queue.HighWatermark, "high-watermark", c.Queue.HighWatermark,
		"Occupancy above which ready drops.")
	fs.IntVar(&c.Queue.HoldOffCycles, "hold-off", c.Queue.HoldOffCycles,
		"Ticks ready stays low after the queue was last above the watermark.")
	fs.IntVar(&c.Queue.PeekWidth, "peek-width", c.Queue.PeekWidth,
		"Number of head entries addressable by peek.")
	fs.IntVar(&c.Queue.EntryWidth, "entry-width", c.Queue.EntryWidth,
		"Entry width in bits.")

	fs.StringVar(&c.Run.Scenario, "scenario", c.Run.Scenario,
		"What to run: run, basic, full or random.")
	fs.Uint64Var(&c.Run.Ticks, "ticks", c.Run.Ticks,
		"Ticks to run. 0 runs until interrupted.")
	fs.DurationVar((*time.Duration)(&c.Run.Interval), "interval", c.Run.Interval.Std(),
		"Clock period of a paced run.")
	fs.StringVar(&c.Run.Pacer, "pacer", c.Run.Pacer,
		"Clock implementation: std, batch, atomic or free.")
	fs.IntVar(&c.Run.BatchEvery, "batch-every", c.Run.BatchEvery,
		"Polls between time reads for the batch pacer.")
	fs.StringVar(&c.Run.Source, "source", c.Run.Source,
		"Stimulus transport: channel or ring.")
	fs.IntVar(&c.Run.SourceSize, "source-size", c.Run.SourceSize,
		"Channel source buffer size.")
	fs.Uint64Var(&c.Run.Seed, "seed", c.Run.Seed,
		"Seed for the randomized producer.")
	fs.IntVar(&c.Run.ProducerLatency, "producer-latency", c.Run.ProducerLatency,
		"Ticks the producer takes to see ready change.")
	fs.Float64Var(&c.Run.WriteRate, "write-rate", c.Run.WriteRate,
		"Chance of a write per tick while ready is seen high.")
	fs.Float64Var(&c.Run.PopRate, "pop-rate", c.Run.PopRate,
		"Chance of a pop per tick.")
	fs.StringVar(&c.Run.MetricsAddr, "metrics-addr", c.Run.MetricsAddr,
		"Listen address for Prometheus metrics. Empty disables.")
	fs.StringVar(&c.Run.TracePath, "trace", c.Run.TracePath,
		"Write a JSON-lines tick trace to this file.")
	fs.IntVarP(&c.Run.Verbosity, "v", "v", c.Run.Verbosity,
		"Number for the log level verbosity.")
	fs.BoolVar(&c.Run.Development, "development", c.Run.Development,
		"Human-readable console logs.")
}

// Complete runs after the flags are parsed. If --config was given it loads
// the file and re-applies every flag set on the command line on top, then
// validates the result.
func (c *Config) Complete() (*Config, error) {
	base := c
	if c.path != "" {
		loaded, err := Load(c.path)
		if err != nil {
			return nil, err
		}
		overlay := pflag.NewFlagSet("overlay", pflag.ContinueOnError)
		loaded.AddFlags(overlay)
		var setErr error
		c.fs.Visit(func(f *pflag.Flag) {
			if f.Name == "config" {
				return
			}
			setErr = multierr.Append(setErr, overlay.Set(f.Name, f.Value.String()))
		})
		if setErr != nil {
			return nil, setErr
		}
		base = loaded
	}
	return base.ValidateAndApplyDefaults()
}

// ValidateAndApplyDefaults returns a copy of c with zero values replaced by
// defaults, or every validation problem at once.
func (c *Config) ValidateAndApplyDefaults() (*Config, error) {
	out := &Config{Queue: c.Queue, Run: c.Run}
	def := Default().Run
	r := &out.Run

	if r.Scenario == "" {
		r.Scenario = def.Scenario
	}
	if r.Pacer == "" {
		r.Pacer = def.Pacer
	}
	if r.Source == "" {
		r.Source = def.Source
	}
	if r.Interval == 0 {
		r.Interval = def.Interval
	}
	if r.BatchEvery == 0 {
		r.BatchEvery = def.BatchEvery
	}
	if r.SourceSize == 0 {
		r.SourceSize = def.SourceSize
	}
	if r.WriteRate == 0 {
		r.WriteRate = def.WriteRate
	}
	if r.PopRate == 0 {
		r.PopRate = def.PopRate
	}

	err := out.Queue.Validate()
	if !slices.Contains(scenarios, r.Scenario) {
		err = multierr.Append(err, fmt.Errorf("%w: scenario must be one of %v, got %q", ErrInvalidConfig, scenarios, r.Scenario))
	}
	if !slices.Contains(pacers, r.Pacer) {
		err = multierr.Append(err, fmt.Errorf("%w: pacer must be one of %v, got %q", ErrInvalidConfig, pacers, r.Pacer))
	}
	if !slices.Contains(sources, r.Source) {
		err = multierr.Append(err, fmt.Errorf("%w: source must be one of %v, got %q", ErrInvalidConfig, sources, r.Source))
	}
	if r.Interval < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidConfig, r.Interval.Std()))
	}
	if r.BatchEvery < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: batchEvery must be at least 1, got %d", ErrInvalidConfig, r.BatchEvery))
	}
	if r.SourceSize < 1 {
		err = multierr.Append(err, fmt.Errorf("%w: sourceSize must be at least 1, got %d", ErrInvalidConfig, r.SourceSize))
	}
	if r.ProducerLatency < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: producerLatency must not be negative, got %d", ErrInvalidConfig, r.ProducerLatency))
	}
	if r.WriteRate < 0 || r.WriteRate > 1 {
		err = multierr.Append(err, fmt.Errorf("%w: writeRate must be in [0, 1], got %g", ErrInvalidConfig, r.WriteRate))
	}
	if r.PopRate < 0 || r.PopRate > 1 {
		err = multierr.Append(err, fmt.Errorf("%w: popRate must be in [0, 1], got %g", ErrInvalidConfig, r.PopRate))
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// NewPacer builds the configured clock.
func (r RunConfig) NewPacer() clock.Pacer {
	switch r.Pacer {
	case PacerBatch:
		return clock.NewBatch(r.Interval.Std(), r.BatchEvery)
	case PacerAtomic:
		return clock.NewAtomic(r.Interval.Std())
	case PacerFree:
		return clock.FreeRun{}
	default:
		return clock.NewStd(r.Interval.Std())
	}
}
