// Command fclqsim drives a lookahead FIFO.
//
// With --scenario run (the default) it runs a paced simulation: a producer
// goroutine feeds randomized, ready-aware stimulus through a transport
// queue to a clock driver that advances the FIFO once per tick, while a
// scoreboard checks every tick. The other scenarios (basic, full, random)
// run the directed and randomized test benches and exit non-zero on any
// mismatch.
//
// Usage:
//
//	go run ./cmd/fclqsim --ticks 1000000 --pacer batch --metrics-addr :9090
//	go run ./cmd/fclqsim --scenario full -v 4
//	go run ./cmd/fclqsim --config fclqsim.yaml --trace run.jsonl
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"

	"github.com/randomizedcoder/lookahead-fifo/internal/config"
	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/harness"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
	"github.com/randomizedcoder/lookahead-fifo/internal/metrics"
	"github.com/randomizedcoder/lookahead-fifo/internal/trace"
)

func main() {
	fs := pflag.NewFlagSet("fclqsim", pflag.ExitOnError)
	opts := config.Default()
	opts.AddFlags(fs)
	_ = fs.Parse(os.Args[1:])

	cfg, err := opts.Complete()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fclqsim: %v\n", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.Run.Verbosity, cfg.Run.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fclqsim: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, logger)
	stop()
	if err != nil {
		logger.Error(err, "Run failed")
		os.Exit(1)
	}
}

// sim is everything one run shares.
type sim struct {
	cfg     *config.Config
	logger  logr.Logger
	runID   string
	reg     *prometheus.Registry
	tracer  *trace.Writer
	options []fclq.Option
}

func run(ctx context.Context, cfg *config.Config, logger logr.Logger) (err error) {
	s := &sim{
		cfg:   cfg,
		runID: uuid.NewString(),
		reg:   prometheus.NewRegistry(),
	}
	s.logger = logger.WithValues("run", s.runID)
	s.logger.Info("Starting",
		"scenario", cfg.Run.Scenario,
		"capacity", cfg.Queue.Capacity,
		"highWatermark", cfg.Queue.HighWatermark,
		"holdOff", cfg.Queue.HoldOffCycles,
		"peekWidth", cfg.Queue.PeekWidth,
		"entryWidth", cfg.Queue.EntryWidth)

	collector := metrics.NewCollector(cfg.Queue.Capacity, prometheus.Labels{"run": s.runID})
	if err := collector.Register(s.reg); err != nil {
		return fmt.Errorf("registering metrics: %w", err)
	}
	s.options = []fclq.Option{
		fclq.WithLogger(s.logger.WithName("fclq")),
		fclq.WithObserver(collector),
	}

	if path := cfg.Run.TracePath; path != "" {
		h := trace.NewHeader(cfg.Queue)
		h.RunID = s.runID
		h.Scenario = cfg.Run.Scenario
		h.Seed = cfg.Run.Seed
		s.tracer, err = trace.Create(path, h)
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, s.tracer.Close())
			s.logger.Info("Trace written", "path", path, "records", s.tracer.Records())
		}()
		s.options = append(s.options, fclq.WithObserver(s.tracer))
	}

	switch cfg.Run.Scenario {
	case config.ScenarioRun:
		return s.paced(ctx)
	case config.ScenarioRandom:
		return s.random()
	default:
		return s.directed(cfg.Run.Scenario)
	}
}

func (s *sim) bench() (*harness.Bench, error) {
	return harness.NewBench(s.cfg.Queue, s.options...)
}

func (s *sim) directed(name string) error {
	scenario, ok := harness.Scenarios[name]
	if !ok {
		return fmt.Errorf("unknown scenario %q", name)
	}
	b, err := s.bench()
	if err != nil {
		return err
	}
	err = scenario(b)
	s.summary(b.Scoreboard().Stats())
	if err != nil {
		for _, e := range multierr.Errors(err) {
			s.logger.Info("Mismatch", "error", e.Error())
		}
		return fmt.Errorf("scenario %s: %d mismatches: %w", name, len(multierr.Errors(err)), harness.ErrMismatch)
	}
	s.logger.Info("Scenario passed", "scenario", name, "cycles", b.Cycle())
	return nil
}

func (s *sim) random() error {
	b, err := s.bench()
	if err != nil {
		return err
	}
	prod := harness.NewProducer(s.cfg.Queue, s.producerConfig())
	rep, err := harness.Random(b, prod, int(s.cfg.Run.Ticks))
	s.summary(b.Scoreboard().Stats())
	if err != nil {
		return err
	}
	s.logger.Info("Random scenario passed",
		"ticks", rep.Ticks, "accepted", rep.Accepted, "dropped", rep.Dropped, "latency", rep.Latency)
	return nil
}

func (s *sim) producerConfig() harness.ProducerConfig {
	return harness.ProducerConfig{
		Seed:      s.cfg.Run.Seed,
		Latency:   s.cfg.Run.ProducerLatency,
		WriteRate: s.cfg.Run.WriteRate,
		PopRate:   s.cfg.Run.PopRate,
	}
}

func (s *sim) summary(st harness.Stats) {
	s.logger.Info("Summary",
		"ticks", st.Ticks,
		"accepted", st.Accepted,
		"dropped", st.Dropped,
		"popped", st.Popped,
		"underflows", st.Underflows,
		"mismatches", st.Mismatches)
}

// interrupted reports whether err only says the run was stopped by a
// signal.
func interrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
