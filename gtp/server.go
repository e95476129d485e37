// Package gtp implements a Go Text Protocol shell around a board.Board
// and a search.Agent: a line-oriented command loop, vertex parsing and
// formatting, and the handful of commands needed to play a full game
// (boardsize, komi, play, genmove, final_score, showboard).
package gtp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/evaluator"
	"github.com/ashbourne/goishi/search"
)

type handlerFunc func(args []string) (bool, string)

// Server is a GTP command loop bound to one board and search agent.
type Server struct {
	board  *board.Board
	agent  *search.Agent
	evalFn evaluator.Evaluator
	config search.Config

	moveNumber int

	in       *bufio.Scanner
	out      io.Writer
	handlers map[string]handlerFunc
}

// NewServer wires a Server over an already-configured board, reading
// commands from in and writing responses to out. eval may be nil, in
// which case the agent falls back to evaluator.Uniform{}.
func NewServer(b *board.Board, cfg search.Config, eval evaluator.Evaluator, in io.Reader, out io.Writer) *Server {
	s := &Server{
		board:  b,
		config: cfg,
		evalFn: eval,
		in:     bufio.NewScanner(in),
		out:    out,
	}
	s.registerHandlers()
	s.resetSearch()
	return s
}

func (s *Server) resetSearch() {
	s.moveNumber = 0
	if s.agent != nil {
		s.agent.Reset()
		return
	}
	s.agent = search.NewAgent(s.config, s.evalFn)
}

// Run reads commands from the server's input until EOF or a quit
// command, writing a GTP-formatted response for each.
func (s *Server) Run() error {
	for s.in.Scan() {
		if done, _ := s.Feed(s.in.Text()); done {
			break
		}
	}
	return s.in.Err()
}

// Feed processes a single line of GTP input, writing its response to
// the server's output, and reports whether the line was a quit command.
// It is the per-line primitive Run loops over; callers driving the
// server interactively (e.g. from a readline shell) can call it
// directly instead of routing lines through an io.Reader.
func (s *Server) Feed(line string) (bool, error) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	tokens, err := shellquote.Split(line)
	if err != nil || len(tokens) == 0 {
		return false, err
	}

	id := ""
	command := tokens[0]
	rest := tokens[1:]
	if len(command) > 0 && command[0] >= '0' && command[0] <= '9' {
		id = command
		if len(rest) == 0 {
			fmt.Fprint(s.out, formatFailure(id, "missing_command"))
			return false, nil
		}
		command = rest[0]
		rest = rest[1:]
	}

	commandLower := strings.ToLower(command)
	handler, ok := s.handlers[commandLower]
	var success bool
	var payload string
	if ok {
		success, payload = handler(rest)
	} else {
		success, payload = false, "unknown_command"
	}

	if success {
		fmt.Fprint(s.out, formatSuccess(id, payload))
	} else {
		fmt.Fprint(s.out, formatFailure(id, payload))
	}

	return commandLower == "quit", nil
}

func (s *Server) registerHandlers() {
	s.handlers = map[string]handlerFunc{
		"protocol_version": s.handleProtocolVersion,
		"name":             s.handleName,
		"version":          s.handleVersion,
		"boardsize":        s.handleBoardsize,
		"clear_board":      s.handleClearBoard,
		"komi":             s.handleKomi,
		"play":             s.handlePlay,
		"genmove":          s.handleGenmove,
		"final_score":      s.handleFinalScore,
		"showboard":        s.handleShowboard,
		"quit":             s.handleQuit,
	}
}

func (s *Server) handleProtocolVersion(_ []string) (bool, string) { return true, "2" }
func (s *Server) handleName(_ []string) (bool, string)            { return true, "goishi" }
func (s *Server) handleVersion(_ []string) (bool, string)         { return true, "0.1" }

func (s *Server) handleBoardsize(args []string) (bool, string) {
	if len(args) == 0 {
		return false, "boardsize requires argument"
	}
	size, err := strconv.Atoi(args[0])
	if err != nil || size <= 0 || size > 25 {
		return false, "invalid boardsize"
	}
	rules := s.board.Rules()
	rules.BoardSize = size
	s.board = board.New(rules)
	s.resetSearch()
	return true, ""
}

func (s *Server) handleClearBoard(_ []string) (bool, string) {
	s.board.Clear()
	s.resetSearch()
	return true, ""
}

func (s *Server) handleKomi(args []string) (bool, string) {
	if len(args) == 0 {
		return false, "komi requires value"
	}
	komi, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return false, "invalid komi"
	}
	rules := s.board.Rules()
	rules.Komi = komi
	s.board = board.New(rules)
	s.resetSearch()
	return true, ""
}

func (s *Server) handlePlay(args []string) (bool, string) {
	if len(args) < 2 {
		return false, "play requires color and vertex"
	}
	color, ok := parseColor(args[0])
	if !ok {
		return false, "invalid color"
	}

	move := board.Pass()
	if !strings.EqualFold(args[1], "pass") {
		parsed, ok := s.parseVertex(args[1])
		if !ok {
			return false, "invalid vertex"
		}
		move = parsed
	}

	s.board.SetToPlay(color)
	if !s.board.PlayMove(color, move) {
		return false, "illegal move"
	}
	s.moveNumber++
	s.agent.NotifyMove(move, s.board, s.board.ToPlay())
	return true, ""
}

func (s *Server) handleGenmove(args []string) (bool, string) {
	color := s.board.ToPlay()
	if len(args) > 0 {
		parsed, ok := parseColor(args[0])
		if !ok {
			return false, "invalid color"
		}
		color = parsed
	}

	s.board.SetToPlay(color)
	move := s.agent.SelectMove(s.board, color, s.moveNumber)
	if !s.board.PlayMove(color, move) {
		return false, "genmove failed"
	}
	s.moveNumber++
	s.agent.NotifyMove(move, s.board, s.board.ToPlay())

	if move.IsPass() {
		return true, "pass"
	}
	return true, s.vertexToString(move.VertexIndex())
}

func (s *Server) handleFinalScore(_ []string) (bool, string) {
	score, err := s.board.Score()
	if err != nil {
		log.Err(err).Msg("gtp: final_score")
		return false, "cannot score"
	}
	diff := score.Black - score.White
	switch {
	case diff > -1e-6 && diff < 1e-6:
		return true, "0"
	case diff > 0:
		return true, fmt.Sprintf("B+%.1f", diff)
	default:
		return true, fmt.Sprintf("W+%.1f", -diff)
	}
}

func (s *Server) handleShowboard(_ []string) (bool, string) {
	var sb strings.Builder
	size := s.board.BoardSize()

	writeColumnHeader := func() {
		sb.WriteString("  ")
		for x := 0; x < size; x++ {
			sb.WriteByte(columnLetter(x))
			sb.WriteByte(' ')
		}
	}

	writeColumnHeader()
	sb.WriteByte('\n')

	for y := 0; y < size; y++ {
		row := size - y
		fmt.Fprintf(&sb, "%2d ", row)
		for x := 0; x < size; x++ {
			vertex := y*size + x
			symbol := byte('.')
			switch s.board.PointState(vertex) {
			case board.BlackStone:
				symbol = 'X'
			case board.WhiteStone:
				symbol = 'O'
			}
			sb.WriteByte(symbol)
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%d\n", row)
	}

	writeColumnHeader()
	return true, sb.String()
}

func (s *Server) handleQuit(_ []string) (bool, string) { return true, "" }

func parseColor(token string) (board.Player, bool) {
	if token == "" {
		return board.Black, false
	}
	switch token[0] {
	case 'b', 'B':
		return board.Black, true
	case 'w', 'W':
		return board.White, true
	default:
		return board.Black, false
	}
}

// parseVertex decodes a GTP coordinate like "Q16" into a vertex index.
// Columns run A-Z skipping I; rows are 1-based counting from the bottom.
func (s *Server) parseVertex(vertex string) (board.Move, bool) {
	if vertex == "" {
		return board.Pass(), false
	}
	upper := strings.ToUpper(vertex)
	columnChar := upper[0]
	if columnChar < 'A' || columnChar > 'Z' {
		return board.Pass(), false
	}

	column := int(columnChar - 'A')
	if columnChar >= 'I' {
		column--
	}

	rowStr := upper[1:]
	if rowStr == "" {
		return board.Pass(), false
	}
	row, err := strconv.Atoi(rowStr)
	if err != nil || row <= 0 || row > s.board.BoardSize() {
		return board.Pass(), false
	}
	if column < 0 || column >= s.board.BoardSize() {
		return board.Pass(), false
	}

	size := s.board.BoardSize()
	x := column
	y := size - row
	return board.Vertex(y*size + x), true
}

func (s *Server) vertexToString(vertex int) string {
	size := s.board.BoardSize()
	x := vertex % size
	y := vertex / size
	row := size - y
	return fmt.Sprintf("%c%d", columnLetter(x), row)
}

func columnLetter(x int) byte {
	letter := byte('A' + x)
	if letter >= 'I' {
		letter++
	}
	return letter
}

func formatSuccess(id, payload string) string {
	var sb strings.Builder
	sb.WriteByte('=')
	sb.WriteString(id)
	if payload != "" {
		sb.WriteByte(' ')
		sb.WriteString(payload)
	}
	sb.WriteString("\n\n")
	return sb.String()
}

func formatFailure(id, message string) string {
	var sb strings.Builder
	sb.WriteByte('?')
	sb.WriteString(id)
	if message != "" {
		sb.WriteByte(' ')
		sb.WriteString(message)
	}
	sb.WriteString("\n\n")
	return sb.String()
}
