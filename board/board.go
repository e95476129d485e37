// Package board implements the Go board state machine: stone placement,
// capture and liberty analysis, ko/superko enforcement, incremental Zobrist
// hashing, and Tromp-Taylor area scoring.
package board

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/ashbourne/goishi/zobrist"
)

var neighborDx = [4]int{1, -1, 0, 0}
var neighborDy = [4]int{0, 0, 1, -1}

// Board is a mutable Go position. A Board must not be shared across
// goroutines without external synchronization; the search agent works
// around this by operating on private copies (see search.Agent).
type Board struct {
	rules Rules
	zob   *zobrist.Table

	points []PointState
	toPlay Player
	koVtx  int // -1 when unset
	hash   uint64

	seen    map[uint64]bool
	history []uint64
}

// New allocates a Board for the given rules. It panics if rules.BoardSize is
// out of [1, 25] — an invalid board size is a configuration error, not a
// recoverable one.
func New(rules Rules) *Board {
	if err := rules.validate(); err != nil {
		panic(err)
	}
	b := &Board{
		rules: rules,
		zob:   zobrist.NewTable(rules.BoardSize),
	}
	b.points = make([]PointState, rules.BoardSize*rules.BoardSize)
	b.Clear()
	return b
}

// Clear empties the grid, resets to_play to Black, clears ko, and reseeds
// the seen-set/history-stack with the empty-board hash.
func (b *Board) Clear() {
	for i := range b.points {
		b.points[i] = Empty
	}
	b.toPlay = Black
	b.koVtx = -1
	b.hash = 0
	b.seen = map[uint64]bool{b.hash: true}
	b.history = []uint64{b.hash}
}

// Rules returns the board's immutable configuration.
func (b *Board) Rules() Rules { return b.rules }

// BoardSize is the board's edge length.
func (b *Board) BoardSize() int { return b.rules.BoardSize }

// ToPlay is the player whose turn follows the last applied ply.
func (b *Board) ToPlay() Player { return b.toPlay }

// SetToPlay overrides whose turn it is, without altering the grid or hash.
// Used when seeding a board from an externally recorded position (e.g. SGF).
func (b *Board) SetToPlay(p Player) { b.toPlay = p }

// KoVertex returns the point forbidden by simple ko, if any.
func (b *Board) KoVertex() (int, bool) {
	if b.koVtx < 0 {
		return 0, false
	}
	return b.koVtx, true
}

// PositionHash is the current Zobrist hash of the position (including the
// ko-point key, if any, but not the side-to-move key — see StateKey).
func (b *Board) PositionHash() uint64 { return b.hash }

// StateKey is PositionHash XORed with the side-to-move key when it is
// White's turn; this is the key the search agent uses to identify roots.
func (b *Board) StateKey() uint64 {
	if b.toPlay == White {
		return b.hash ^ b.zob.SideToMove()
	}
	return b.hash
}

// PointState returns the occupant of vertex. It panics on an out-of-range
// vertex: reading outside the board is a programmer error.
func (b *Board) PointState(vertex int) PointState {
	if vertex < 0 || vertex >= len(b.points) {
		panic(fmt.Errorf("board: vertex %d out of range", vertex))
	}
	return b.points[vertex]
}

// Copy returns an independent deep copy of the board.
func (b *Board) Copy() *Board {
	cp := &Board{
		rules:  b.rules,
		zob:    b.zob,
		points: append([]PointState(nil), b.points...),
		toPlay: b.toPlay,
		koVtx:  b.koVtx,
		hash:   b.hash,
		seen:   make(map[uint64]bool, len(b.seen)),
	}
	for k := range b.seen {
		cp.seen[k] = true
	}
	cp.history = append([]uint64(nil), b.history...)
	return cp
}

func (b *Board) index(x, y int) int { return y*b.rules.BoardSize + x }

func (b *Board) inBounds(x, y int) bool {
	n := b.rules.BoardSize
	return x >= 0 && y >= 0 && x < n && y < n
}

// neighborCandidate is one of the (at most 4) grid-adjacent points of a
// vertex, before bounds are checked.
type neighborCandidate struct {
	x, y  int
	valid bool
}

func (b *Board) neighbors(vertex int) []int {
	n := b.rules.BoardSize
	x, y := vertex%n, vertex/n

	candidates := make([]neighborCandidate, 4)
	for dir := 0; dir < 4; dir++ {
		nx, ny := x+neighborDx[dir], y+neighborDy[dir]
		candidates[dir] = neighborCandidate{x: nx, y: ny, valid: b.inBounds(nx, ny)}
	}

	inBounds := lo.Filter(candidates, func(c neighborCandidate, _ int) bool { return c.valid })
	return lo.Map(inBounds, func(c neighborCandidate, _ int) int { return b.index(c.x, c.y) })
}

// collectGroup returns every vertex in the maximal same-color group
// reachable from vertex, and the number of distinct liberties it has.
func (b *Board) collectGroup(vertex int, color PointState) ([]int, int) {
	visited := make(map[int]bool)
	libertySeen := make(map[int]bool)
	queue := []int{vertex}
	visited[vertex] = true
	group := make([]int, 0, 4)

	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		group = append(group, v)
		for _, n := range b.neighbors(v) {
			switch b.points[n] {
			case Empty:
				libertySeen[n] = true
			case color:
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			}
		}
	}
	return group, len(libertySeen)
}

func (b *Board) liberties(vertex int, color PointState) int {
	_, liberties := b.collectGroup(vertex, color)
	return liberties
}

func (b *Board) placeStone(vertex int, color PointState) {
	b.points[vertex] = color
	b.hash ^= b.stoneKey(vertex, color)
}

func (b *Board) removeStone(vertex int) {
	color := b.points[vertex]
	b.hash ^= b.stoneKey(vertex, color)
	b.points[vertex] = Empty
}

func (b *Board) stoneKey(vertex int, color PointState) uint64 {
	if color == BlackStone {
		return b.zob.BlackStone(vertex)
	}
	return b.zob.WhiteStone(vertex)
}

func (b *Board) setKo(vertex int) {
	if b.koVtx >= 0 {
		b.hash ^= b.zob.Ko(b.koVtx)
	}
	b.koVtx = vertex
	if b.koVtx >= 0 {
		b.hash ^= b.zob.Ko(b.koVtx)
	}
}

func (b *Board) violatesSuperko(prospective uint64) bool {
	if b.rules.KoRule != PositionalSuperko {
		return false
	}
	return b.seen[prospective]
}

// PlayMove applies a move for player and advances the turn. It returns false
// (with no observable mutation) if the move is illegal: out of range,
// occupied, the simple-ko point, a disallowed suicide, or a superko
// violation.
func (b *Board) PlayMove(player Player, move Move) bool {
	if move.IsPass() {
		b.setKo(-1)
		b.toPlay = player.Other()
		b.history = append(b.history, b.hash)
		b.seen[b.hash] = true
		return true
	}

	v := move.vertex
	if v < 0 || v >= len(b.points) {
		return false
	}
	if b.points[v] != Empty {
		return false
	}
	if b.koVtx >= 0 && b.koVtx == v {
		return false
	}

	stone := toPoint(player)
	opponent := toPoint(player.Other())
	previousKo := b.koVtx

	b.placeStone(v, stone)

	captured := make([]int, 0, 4*b.rules.BoardSize)
	for _, n := range b.neighbors(v) {
		if b.points[n] != opponent {
			continue
		}
		group, liberties := b.collectGroup(n, opponent)
		if liberties == 0 {
			for _, g := range group {
				b.removeStone(g)
				captured = append(captured, g)
			}
		}
	}

	liberties := b.liberties(v, stone)
	if liberties == 0 && len(captured) == 0 && !b.rules.AllowSuicide {
		b.removeStone(v)
		for _, c := range captured {
			b.placeStone(c, opponent)
		}
		b.setKo(previousKo)
		return false
	}

	newKo := -1
	if len(captured) == 1 {
		if b.liberties(v, stone) == 1 {
			newKo = captured[0]
		}
	}
	b.setKo(newKo)

	if b.violatesSuperko(b.hash) {
		b.setKo(previousKo)
		b.removeStone(v)
		for _, c := range captured {
			b.placeStone(c, opponent)
		}
		return false
	}

	b.toPlay = player.Other()
	b.history = append(b.history, b.hash)
	b.seen[b.hash] = true
	return true
}

// IsLegal is a read-only predicate: it trial-plays move on a private copy of
// b and reports success, leaving b untouched.
func (b *Board) IsLegal(player Player, move Move) bool {
	cp := b.Copy()
	return cp.PlayMove(player, move)
}

// LegalMoves returns every empty vertex that is legal for player to play,
// in ascending vertex order. Pass is never included; callers that need a
// Pass option add it themselves (see search's tryExpand).
func (b *Board) LegalMoves(player Player) []int {
	candidates := make([]int, 0, len(b.points))
	for v, s := range b.points {
		if s == Empty {
			candidates = append(candidates, v)
		}
	}
	return lo.Filter(candidates, func(v int, _ int) bool {
		return b.IsLegal(player, Vertex(v))
	})
}

// Score is the result of an area scoring pass: points credited to each
// player, with komi already folded into White's total.
type Score struct {
	Black float64
	White float64
}

// TrompTaylorScore computes area score: stones plus strictly single-colored
// empty regions, with komi added to White.
func (b *Board) TrompTaylorScore() Score {
	var result Score
	visited := make([]bool, len(b.points))

	for v, s := range b.points {
		switch s {
		case BlackStone:
			result.Black++
		case WhiteStone:
			result.White++
		default:
			if visited[v] {
				continue
			}
			region, bordersBlack, bordersWhite := b.floodEmptyRegion(v, visited)
			if bordersBlack && !bordersWhite {
				result.Black += float64(region)
			} else if bordersWhite && !bordersBlack {
				result.White += float64(region)
			}
		}
	}

	result.White += b.rules.Komi
	return result
}

func (b *Board) floodEmptyRegion(start int, visited []bool) (size int, bordersBlack, bordersWhite bool) {
	queue := []int{start}
	visited[start] = true
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		size++
		for _, n := range b.neighbors(v) {
			switch b.points[n] {
			case Empty:
				if !visited[n] {
					visited[n] = true
					queue = append(queue, n)
				}
			case BlackStone:
				bordersBlack = true
			case WhiteStone:
				bordersWhite = true
			}
		}
	}
	return size, bordersBlack, bordersWhite
}

// Score dispatches on rules.ScoringRule. Territory scoring is declared but
// never implemented; selecting it is an error.
func (b *Board) Score() (Score, error) {
	switch b.rules.ScoringRule {
	case TrompTaylorArea:
		return b.TrompTaylorScore(), nil
	default:
		return Score{}, fmt.Errorf("board: scoring rule %v is not implemented", b.rules.ScoringRule)
	}
}
