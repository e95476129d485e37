// Package sgf reads and writes a minimal subset of Smart Game Format
// game records: board size, komi, and a linear sequence of black/white
// moves. It never panics on malformed input — a move it can't parse is
// skipped rather than aborting the whole record.
package sgf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ashbourne/goishi/board"
)

// MoveRecord is one played ply in a GameTree.
type MoveRecord struct {
	Player board.Player
	Move   board.Move
}

// GameTree is a parsed (or to-be-written) SGF game record.
type GameTree struct {
	BoardSize int
	Komi      float64
	Moves     []MoveRecord
}

const (
	defaultBoardSize = 19
	defaultKomi      = 7.5
)

// Load reads a GameTree from r. Whitespace is stripped before parsing, so
// records spanning multiple lines are read correctly. SZ[n] and KM[x] are
// read from anywhere in the record (the reference writer always places
// them first); BoardSize is clamped to [1, 25]. Malformed move nodes are
// skipped rather than causing an error.
func Load(r io.Reader) (GameTree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return GameTree{}, err
	}

	game := GameTree{BoardSize: defaultBoardSize, Komi: defaultKomi}
	stripped := stripWhitespace(string(data))
	if stripped == "" {
		return game, nil
	}

	if sz, ok := extractProperty(stripped, "SZ"); ok {
		if n, err := strconv.Atoi(sz); err == nil {
			game.BoardSize = clampBoardSize(n)
		}
	}
	if km, ok := extractProperty(stripped, "KM"); ok {
		if komi, err := strconv.ParseFloat(km, 64); err == nil {
			game.Komi = komi
		}
	}

	pos := 0
	for pos < len(stripped) {
		if stripped[pos] != ';' || pos+2 >= len(stripped) {
			pos++
			continue
		}
		colorChar := stripped[pos+1]
		pos += 2
		if pos >= len(stripped) || stripped[pos] != '[' {
			continue
		}
		pos++
		start := pos
		for pos < len(stripped) && stripped[pos] != ']' {
			pos++
		}
		if pos >= len(stripped) {
			break
		}
		value := stripped[start:pos]
		pos++ // skip ']'

		var player board.Player
		switch colorChar {
		case 'B', 'b':
			player = board.Black
		case 'W', 'w':
			player = board.White
		default:
			continue
		}

		move := board.Pass()
		if value != "" {
			if len(value) != 2 {
				continue
			}
			x, okX := decodeCoord(value[0])
			y, okY := decodeCoord(value[1])
			if !okX || !okY || x >= game.BoardSize || y >= game.BoardSize {
				continue
			}
			move = board.Vertex(y*game.BoardSize + x)
		}
		game.Moves = append(game.Moves, MoveRecord{Player: player, Move: move})
	}

	return game, nil
}

// Save writes g in the same textual form Load expects, so round-tripping
// through Save then Load reproduces BoardSize, Komi and Moves exactly.
func Save(g GameTree, w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "(;SZ[%d]KM[%s]", g.BoardSize, formatKomi(g.Komi))
	for _, record := range g.Moves {
		bw.WriteByte(';')
		if record.Player == board.Black {
			bw.WriteByte('B')
		} else {
			bw.WriteByte('W')
		}
		bw.WriteByte('[')
		if !record.Move.IsPass() {
			size := g.BoardSize
			v := record.Move.VertexIndex()
			x, y := v%size, v/size
			cx, okX := encodeCoord(x)
			cy, okY := encodeCoord(y)
			if okX && okY {
				bw.WriteByte(cx)
				bw.WriteByte(cy)
			}
		}
		bw.WriteByte(']')
	}
	bw.WriteByte(')')
	return bw.Flush()
}

func formatKomi(komi float64) string {
	return strconv.FormatFloat(komi, 'g', -1, 64)
}

func clampBoardSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > 25 {
		return 25
	}
	return n
}

func decodeCoord(c byte) (int, bool) {
	if c < 'a' || c > 'z' {
		return 0, false
	}
	return int(c - 'a'), true
}

func encodeCoord(v int) (byte, bool) {
	if v < 0 || v >= 26 {
		return 0, false
	}
	return byte('a' + v), true
}

func stripWhitespace(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func extractProperty(data, prop string) (string, bool) {
	idx := strings.Index(data, prop+"[")
	if idx < 0 {
		return "", false
	}
	start := idx + len(prop) + 1
	var sb strings.Builder
	pos := start
	for pos < len(data) && data[pos] != ']' {
		if data[pos] == '\\' && pos+1 < len(data) {
			pos++
			sb.WriteByte(data[pos])
			pos++
			continue
		}
		sb.WriteByte(data[pos])
		pos++
	}
	return sb.String(), true
}
