// Package zobrist builds the per-board-size key tables used by board.Board
// to maintain an incremental position hash.
package zobrist

import (
	"crypto/sha256"

	"lukechampine.com/frand"
)

// seed fixes the key stream so that two Tables built for the same board size
// are bit-for-bit identical across runs and processes. This is what makes
// board.Board.PositionHash reproducible, which the search agent relies on
// for its root/state keys. frand.NewCustom requires a 32-byte seed, so the
// human-readable label is expanded to that length via SHA-256.
var seedBytes = sha256.Sum256([]byte("goishi-zobrist-v1"))
var seed = seedBytes[:]

// Table holds the random keys for one board size: one key per point per
// stone color, one key per potential ko point, and a single side-to-move
// key, all XORed together to form a position hash.
type Table struct {
	boardSize int

	black []uint64
	white []uint64
	ko    []uint64

	sideToMove uint64
}

// NewTable builds the key tables for a board of the given size. Keys are
// drawn from a fixed-seeded stream, so the same boardSize always yields the
// same keys.
func NewTable(boardSize int) *Table {
	n := boardSize * boardSize
	rng := frand.NewCustom(seed, 32, 20)

	t := &Table{
		boardSize: boardSize,
		black:     make([]uint64, n),
		white:     make([]uint64, n),
		ko:        make([]uint64, n),
	}
	for i := 0; i < n; i++ {
		t.black[i] = rng.Uint64n(1<<63-2) + 1
		t.white[i] = rng.Uint64n(1<<63-2) + 1
		t.ko[i] = rng.Uint64n(1<<63-2) + 1
	}
	t.sideToMove = rng.Uint64n(1<<63-2) + 1
	return t
}

// BlackStone returns the key XORed in when a black stone occupies vertex.
func (t *Table) BlackStone(vertex int) uint64 { return t.black[vertex] }

// WhiteStone returns the key XORed in when a white stone occupies vertex.
func (t *Table) WhiteStone(vertex int) uint64 { return t.white[vertex] }

// Ko returns the key XORed in while vertex is the forbidden ko point.
func (t *Table) Ko(vertex int) uint64 { return t.ko[vertex] }

// SideToMove is XORed into state keys when it is White's turn to play.
func (t *Table) SideToMove() uint64 { return t.sideToMove }
