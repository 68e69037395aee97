package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomizedcoder/lookahead-fifo/internal/config"
	"github.com/randomizedcoder/lookahead-fifo/internal/logging"
	"github.com/randomizedcoder/lookahead-fifo/internal/trace"
)

func testConfig(t *testing.T, mutate func(*config.Config)) *config.Config {
	t.Helper()
	cfg := config.Default()
	mutate(cfg)
	out, err := cfg.ValidateAndApplyDefaults()
	require.NoError(t, err)
	return out
}

func TestRun_Scenarios(t *testing.T) {
	for _, name := range []string{config.ScenarioBasic, config.ScenarioFull, config.ScenarioRandom} {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig(t, func(c *config.Config) {
				c.Run.Scenario = name
				c.Run.Ticks = 2000
			})
			assert.NoError(t, run(context.Background(), cfg, logging.NewTestLogger()))
		})
	}
}

func TestRun_PacedWithTrace(t *testing.T) {
	for _, source := range []string{config.SourceChannel, config.SourceRing} {
		t.Run(source, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "run.jsonl")
			cfg := testConfig(t, func(c *config.Config) {
				c.Run.Pacer = config.PacerFree
				c.Run.Source = source
				c.Run.Ticks = 3000
				c.Run.TracePath = path
			})
			require.NoError(t, run(context.Background(), cfg, logging.NewTestLogger()))

			f, err := os.Open(path)
			require.NoError(t, err)
			defer f.Close()
			h, recs, err := trace.Read(f)
			require.NoError(t, err)
			assert.Equal(t, config.ScenarioRun, h.Scenario)
			// Ten reset ticks, then the driven ones.
			assert.Len(t, recs, 3010)
		})
	}
}

func TestRun_PacedStopsOnCancel(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) {
		c.Run.Pacer = config.PacerFree
		c.Run.Ticks = 0
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, run(ctx, cfg, logging.NewTestLogger()))
}
