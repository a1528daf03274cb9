package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"paepcke.de/sphincsplus/bench"
)

func TestOverride(t *testing.T) {
	cfg := bench.DefaultConfig()
	cfg.Iterations = 3
	cfg.HistoryPath = "from-file.db"
	cli := bench.DefaultConfig()
	cli.ParameterSets = []string{"128f"}
	cli.Iterations = 50
	cli.Backend = bench.BackendReference

	for _, name := range []string{"params", "backend", "unknown"} {
		override(&cfg, cli, name)
	}
	require.Equal(t, []string{"128f"}, cfg.ParameterSets)
	require.Equal(t, bench.BackendReference, cfg.Backend)
	require.Equal(t, 3, cfg.Iterations)
	require.Equal(t, "from-file.db", cfg.HistoryPath)
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger("warn")
	require.NoError(t, err)
	require.False(t, log.Core().Enabled(-1))
	require.True(t, log.Core().Enabled(1))

	_, err = newLogger("loud")
	require.Error(t, err)
}
