package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/randomizedcoder/lookahead-fifo/internal/cancel"
	"github.com/randomizedcoder/lookahead-fifo/internal/clock"
	"github.com/randomizedcoder/lookahead-fifo/internal/config"
	"github.com/randomizedcoder/lookahead-fifo/internal/fclq"
	"github.com/randomizedcoder/lookahead-fifo/internal/harness"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
	"github.com/randomizedcoder/lookahead-fifo/internal/queue"
)

// errClockDone stops the producer and the metrics server once the driver
// returns.
var errClockDone = errors.New("clock stopped")

const (
	shutdownTimeout = 5 * time.Second
	resetCycles     = 10
)

// missCounter is implemented by pacers that keep phase and count the edges
// a slow driver skipped.
type missCounter interface {
	Missed() uint64
}

func (s *sim) source() (queue.Queue[fclq.Inputs], error) {
	if s.cfg.Run.Source == config.SourceRing {
		return queue.NewSharded[fclq.Inputs]()
	}
	return queue.NewChannel[fclq.Inputs](s.cfg.Run.SourceSize), nil
}

// paced runs the free-running simulation. Stimulus reaches the driver
// through the source queue, so the producer sees ready up to the queue's
// depth late on top of its configured latency.
func (s *sim) paced(ctx context.Context) error {
	sb := harness.NewScoreboard(s.cfg.Queue)
	q, err := fclq.New(s.cfg.Queue, append(s.options, fclq.WithObserver(sb))...)
	if err != nil {
		return err
	}
	src, err := s.source()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	stop := cancel.NewContext(gctx)

	var ready atomic.Bool
	pacer := s.cfg.Run.NewPacer()
	defer pacer.Stop()

	driver := clock.NewDriver(q,
		clock.WithPacer(pacer),
		clock.WithSource(src),
		clock.WithCanceler(stop),
		clock.WithLimit(s.cfg.Run.Ticks),
		clock.WithDriverLogger(s.logger.WithName("clock")),
		clock.WithTickFunc(func(_ uint64, _ fclq.Inputs, out fclq.Outputs) {
			ready.Store(out.Ready)
		}),
	)

	// Reset sequence before the stimulus starts.
	for i := 0; i < resetCycles; i++ {
		q.Step(fclq.Inputs{Reset: true})
	}

	g.Go(func() error {
		defer stop.CancelCause(errClockDone)
		ticks, err := driver.Run()
		s.logger.V(logging.VERBOSE).Info("Driver finished", "ticks", ticks)
		if err != nil && !interrupted(err) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		prod := harness.NewProducer(s.cfg.Queue, s.producerConfig())
		for !stop.Done() {
			in := prod.Next(ready.Load())
			for !src.Push(in) {
				if stop.Done() {
					return nil
				}
				runtime.Gosched()
			}
		}
		return nil
	})

	if addr := s.cfg.Run.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: shutdownTimeout}

		g.Go(func() error {
			s.logger.Info("Serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-stop.Context().Done()
			shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancelShutdown()
			return srv.Shutdown(shutdownCtx)
		})
	}

	start := time.Now()
	err = g.Wait()
	elapsed := time.Since(start)

	ticks := driver.Ticks()
	s.summary(sb.Stats())
	kv := []any{
		"ticks", ticks,
		"starved", driver.Starved(),
		"elapsed", elapsed,
		"ticksPerSecond", float64(ticks) / elapsed.Seconds(),
		"occupancy", q.Occupancy(),
	}
	if m, ok := pacer.(missCounter); ok {
		kv = append(kv, "missedEdges", m.Missed())
	}
	s.logger.Info("Clock", kv...)

	return multierr.Append(err, sb.Err())
}
