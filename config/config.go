// Package config loads board.Rules and search.Config from layered
// sources (built-in defaults, an optional YAML file, then GOISHI_*
// environment variables) using github.com/spf13/viper. A value that
// fails to parse is logged and the default is kept rather than aborting
// startup.
package config

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/search"
)

// Config is the engine's full runtime configuration.
type Config struct {
	Board  board.Rules
	Search search.Config
}

// Default returns the engine's out-of-the-box configuration: default
// board rules and default search tuning.
func Default() Config {
	return Config{
		Board:  board.DefaultRules(),
		Search: search.DefaultConfig(),
	}
}

// Load builds a viper instance seeded with Default's values, optionally
// layers in a YAML file at path (ignored if path is empty or unreadable),
// then applies GOISHI_* environment overrides, and returns the resolved
// Config. Every override is validated; an invalid value is logged and the
// running default is kept instead of failing Load.
func Load(path string) Config {
	defaults := Default()
	v := viper.New()
	v.SetEnvPrefix("goishi")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("board_size", defaults.Board.BoardSize)
	v.SetDefault("komi", defaults.Board.Komi)
	v.SetDefault("allow_suicide", defaults.Board.AllowSuicide)
	v.SetDefault("ko_rule", koRuleName(defaults.Board.KoRule))
	v.SetDefault("scoring_rule", scoringRuleName(defaults.Board.ScoringRule))

	v.SetDefault("max_playouts", defaults.Search.MaxPlayouts)
	v.SetDefault("random_playouts_min", defaults.Search.RandomPlayoutsMin)
	v.SetDefault("random_playouts_max", defaults.Search.RandomPlayoutsMax)
	v.SetDefault("num_threads", defaults.Search.NumThreads)
	v.SetDefault("cpuct", defaults.Search.Cpuct)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("config: could not read file, using defaults/env only")
		}
	}

	result := defaults

	if size := v.GetInt("board_size"); validBoardSize(size) {
		result.Board.BoardSize = size
	} else {
		log.Warn().Int("board_size", size).Msg("config: invalid board size, keeping default")
	}
	if komi, err := strconv.ParseFloat(v.GetString("komi"), 64); err == nil {
		result.Board.Komi = komi
	} else {
		log.Warn().Str("komi", v.GetString("komi")).Msg("config: invalid komi, keeping default")
	}
	result.Board.AllowSuicide = v.GetBool("allow_suicide")

	if ko, ok := parseKoRule(v.GetString("ko_rule")); ok {
		result.Board.KoRule = ko
	} else {
		log.Warn().Str("ko_rule", v.GetString("ko_rule")).Msg("config: invalid ko rule, keeping default")
	}
	if scoring, ok := parseScoringRule(v.GetString("scoring_rule")); ok {
		result.Board.ScoringRule = scoring
	} else {
		log.Warn().Str("scoring_rule", v.GetString("scoring_rule")).Msg("config: invalid scoring rule, keeping default")
	}

	if n := v.GetInt("max_playouts"); n > 0 {
		result.Search.MaxPlayouts = n
	} else {
		log.Warn().Int("max_playouts", n).Msg("config: invalid max playouts, keeping default")
	}
	if lo, hi := v.GetInt("random_playouts_min"), v.GetInt("random_playouts_max"); lo > 0 && hi >= lo {
		result.Search.RandomPlayoutsMin = lo
		result.Search.RandomPlayoutsMax = hi
	} else {
		log.Warn().Int("random_playouts_min", lo).Int("random_playouts_max", hi).
			Msg("config: invalid random playout bounds, keeping defaults")
	}
	if n := v.GetInt("num_threads"); n > 0 {
		result.Search.NumThreads = n
	} else {
		log.Warn().Int("num_threads", n).Msg("config: invalid thread count, keeping default")
	}
	if c := v.GetFloat64("cpuct"); c > 0 {
		result.Search.Cpuct = c
	} else {
		log.Warn().Float64("cpuct", c).Msg("config: invalid cpuct, keeping default")
	}

	return result
}

// BenchOptions holds the cmd/bench knobs that are overridable via
// GOISHI_BENCH_PLIES and GOISHI_BENCH_PLAYOUTS, loaded through the same
// viper layering as Load.
type BenchOptions struct {
	Plies    int
	Playouts int
}

// LoadBench resolves BenchOptions from GOISHI_BENCH_PLIES/GOISHI_BENCH_PLAYOUTS,
// falling back to defaultPlies/defaultPlayouts when unset or invalid.
func LoadBench(defaultPlies, defaultPlayouts int) BenchOptions {
	v := viper.New()
	v.SetEnvPrefix("goishi")
	v.AutomaticEnv()
	v.SetDefault("bench_plies", defaultPlies)
	v.SetDefault("bench_playouts", defaultPlayouts)

	opts := BenchOptions{Plies: defaultPlies, Playouts: defaultPlayouts}
	if n := v.GetInt("bench_plies"); n > 0 {
		opts.Plies = n
	} else {
		log.Warn().Int("bench_plies", n).Msg("config: invalid bench plies, keeping default")
	}
	if n := v.GetInt("bench_playouts"); n > 0 {
		opts.Playouts = n
	} else {
		log.Warn().Int("bench_playouts", n).Msg("config: invalid bench playouts, keeping default")
	}
	return opts
}

func validBoardSize(n int) bool { return n >= 1 && n <= 25 }

func koRuleName(k board.KoRule) string {
	if k == board.SimpleKo {
		return "simple"
	}
	return "superko"
}

func scoringRuleName(s board.ScoringRule) string {
	if s == board.Territory {
		return "territory"
	}
	return "area"
}

func parseKoRule(s string) (board.KoRule, bool) {
	switch strings.ToLower(s) {
	case "simple":
		return board.SimpleKo, true
	case "superko":
		return board.PositionalSuperko, true
	default:
		return 0, false
	}
}

func parseScoringRule(s string) (board.ScoringRule, bool) {
	switch strings.ToLower(s) {
	case "area":
		return board.TrompTaylorArea, true
	case "territory":
		return board.Territory, true
	default:
		return 0, false
	}
}
