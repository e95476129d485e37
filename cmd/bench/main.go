// Command bench measures search throughput across thread counts, in the
// spirit of the reference engine's search_benchmark tool: a CSV of
// threads/mean playouts-per-second/95% CI half-width, plus a histogram
// of the root visit counts reached on the final ply, so a reader can
// sanity-check the tree isn't just spinning on one child.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/config"
	"github.com/ashbourne/goishi/evaluator"
	"github.com/ashbourne/goishi/search"
)

var (
	boardSize  = flag.Int("board-size", 19, "board size")
	playouts   = flag.Int("playouts", 512, "playouts per move (overridden by GOISHI_BENCH_PLAYOUTS)")
	plies      = flag.Int("plies", 16, "self-play plies per measurement (overridden by GOISHI_BENCH_PLIES)")
	threads    = flag.String("threads", "1,2,4", "comma separated thread counts")
	iterations = flag.Int("iterations", 5, "repeated measurements per thread count, for the reported confidence interval")
	seed       = flag.Uint64("seed", 0x5eed1234, "rng seed")
)

// normal975 is the standard normal distribution used to turn a sample
// stddev into a 95% confidence-interval half-width (1.96 sigma).
var normal975 = distuv.Normal{Mu: 0, Sigma: 1}

func main() {
	flag.Parse()

	threadCounts, err := parseThreads(*threads)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}

	bench := config.LoadBench(*plies, *playouts)

	log.Info().
		Uint64("total_memory_bytes", memory.TotalMemory()).
		Int("board_size", *boardSize).
		Int("playouts", bench.Playouts).
		Int("plies", bench.Plies).
		Msg("bench: starting")

	fmt.Println("# goishi search benchmark")
	fmt.Printf("# board_size=%d playouts=%d plies=%d iterations=%d seed=%d\n",
		*boardSize, bench.Playouts, bench.Plies, *iterations, *seed)
	fmt.Println("threads,mean_playouts_per_second,ci95_half_width")

	var lastVisitCounts []int
	for _, threadCount := range threadCounts {
		rates := make([]float64, 0, *iterations)

		for iter := 0; iter < *iterations; iter++ {
			cfg := search.DefaultConfig()
			cfg.MaxPlayouts = bench.Playouts
			cfg.EnablePlayoutCapRandomization = false
			cfg.DirichletEpsilon = 0
			cfg.Temperature = 0
			cfg.TemperatureMoveCutoff = 0
			cfg.NumThreads = threadCount
			cfg.Seed = *seed ^ uint64(iter)*0x9e3779b9

			rules := board.DefaultRules()
			rules.BoardSize = *boardSize
			b := board.New(rules)
			agent := search.NewAgent(cfg, evaluator.Uniform{})

			start := time.Now()
			for ply := 0; ply < bench.Plies; ply++ {
				toPlay := b.ToPlay()
				move := agent.SelectMove(b, toPlay, ply)
				if iter == *iterations-1 && ply == bench.Plies-1 {
					lastVisitCounts = agent.RootVisitCounts()
				}
				if !b.PlayMove(toPlay, move) {
					break
				}
				agent.NotifyMove(move, b, b.ToPlay())
			}
			elapsed := time.Since(start).Seconds()

			totalPlayouts := float64(bench.Plies * bench.Playouts)
			if elapsed > 0 {
				rates = append(rates, totalPlayouts/elapsed)
			}
		}

		mean, halfWidth := confidenceInterval(rates)
		fmt.Printf("%d,%.2f,%.2f\n", threadCount, mean, halfWidth)
	}

	if len(lastVisitCounts) > 0 {
		fmt.Println("\n# root visit count distribution, final ply")
		values := make([]float64, len(lastVisitCounts))
		for i, c := range lastVisitCounts {
			values[i] = float64(c)
		}
		hist := histogram.Hist(10, values)
		if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(60)); err != nil {
			log.Warn().Err(err).Msg("bench: could not render histogram")
		}
	}
}

// confidenceInterval returns the sample mean and the 95% confidence
// interval half-width (1.96 * stddev / sqrt(n)) for samples. A sample
// set of size 0 or 1 has no defined spread, so the half-width is 0.
func confidenceInterval(samples []float64) (mean, halfWidth float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	if len(samples) < 2 {
		return mean, 0
	}

	var variance float64
	for _, s := range samples {
		d := s - mean
		variance += d * d
	}
	variance /= float64(len(samples) - 1)
	stddev := math.Sqrt(variance)

	z := normal975.Quantile(0.975)
	halfWidth = z * stddev / math.Sqrt(float64(len(samples)))
	return mean, halfWidth
}

func parseThreads(spec string) ([]int, error) {
	var counts []int
	for _, tok := range strings.Split(spec, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("bench: invalid thread count %q", tok)
		}
		counts = append(counts, n)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("bench: --threads must list at least one positive integer")
	}
	return counts, nil
}
