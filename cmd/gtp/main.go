// Command gtp wires a board, search agent and evaluator into a
// gtp.Server and runs it either as a batch GTP filter (reading
// commands from stdin, the default — the mode GUIs like Sabaki and
// GoGui drive an engine in) or as an interactive readline shell for a
// human typing commands directly.
package main

import (
	"flag"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/config"
	"github.com/ashbourne/goishi/evaluator"
	"github.com/ashbourne/goishi/gtp"
)

var (
	configPath  = flag.String("config", "", "path to a YAML config file (optional)")
	interactive = flag.Bool("interactive", false, "run a readline shell instead of reading stdin as a GTP stream")
	verbose     = flag.Bool("verbose", false, "enable debug logging")
)

func filterInput(r rune) (rune, bool) {
	if r == readline.CharCtrlZ {
		return r, false
	}
	return r, true
}

func main() {
	flag.Parse()
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := config.Load(*configPath)
	b := board.New(cfg.Board)

	if !*interactive {
		server := gtp.NewServer(b, cfg.Search, evaluator.Uniform{}, os.Stdin, os.Stdout)
		if err := server.Run(); err != nil {
			log.Fatal().Err(err).Msg("gtp: stream closed with error")
		}
		return
	}

	runInteractive(b, cfg)
}

func runInteractive(b *board.Board, cfg config.Config) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:              "\033[32mgoishi>\033[0m ",
		HistoryFile:         "/tmp/goishi_gtp_history.tmp",
		EOFPrompt:           "quit",
		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("gtp: could not start readline shell")
	}
	defer rl.Close()

	server := gtp.NewServer(b, cfg.Search, evaluator.Uniform{}, strings.NewReader(""), os.Stdout)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "help" {
			io.WriteString(rl.Stderr(), usage())
			continue
		}

		done, err := server.Feed(line)
		if err != nil {
			log.Warn().Err(err).Msg("gtp: command error")
			continue
		}
		if done {
			break
		}
	}
}

func usage() string {
	var sb strings.Builder
	sb.WriteString("GTP commands: protocol_version, name, version, boardsize <n>, clear_board,\n")
	sb.WriteString("komi <x>, play <color> <vertex>, genmove <color>, final_score, showboard, quit\n")
	return sb.String()
}
