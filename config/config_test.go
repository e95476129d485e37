package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashbourne/goishi/board"
)

func TestLoadWithNoOverridesReturnsDefaults(t *testing.T) {
	cfg := Load("")
	require.Equal(t, board.DefaultRules(), cfg.Board)
}

func TestLoadInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("GOISHI_BOARD_SIZE", "not-a-number")
	t.Setenv("GOISHI_NUM_THREADS", "-4")
	cfg := Load("")
	require.Equal(t, board.DefaultRules().BoardSize, cfg.Board.BoardSize)
	require.Equal(t, 1, cfg.Search.NumThreads)
}

func TestLoadValidEnvOverridesApply(t *testing.T) {
	t.Setenv("GOISHI_BOARD_SIZE", "13")
	t.Setenv("GOISHI_KOMI", "6.5")
	t.Setenv("GOISHI_KO_RULE", "simple")
	cfg := Load("")
	require.Equal(t, 13, cfg.Board.BoardSize)
	require.Equal(t, 6.5, cfg.Board.Komi)
	require.Equal(t, board.SimpleKo, cfg.Board.KoRule)
}

func TestLoadBenchDefaultsWithNoOverrides(t *testing.T) {
	opts := LoadBench(20, 256)
	require.Equal(t, 20, opts.Plies)
	require.Equal(t, 256, opts.Playouts)
}

func TestLoadBenchEnvOverridesApply(t *testing.T) {
	t.Setenv("GOISHI_BENCH_PLIES", "5")
	t.Setenv("GOISHI_BENCH_PLAYOUTS", "64")
	opts := LoadBench(20, 256)
	require.Equal(t, 5, opts.Plies)
	require.Equal(t, 64, opts.Playouts)
}

func TestLoadBenchInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("GOISHI_BENCH_PLIES", "-3")
	opts := LoadBench(20, 256)
	require.Equal(t, 20, opts.Plies)
	require.Equal(t, 256, opts.Playouts)
}
