package search

import (
	"sync"

	"github.com/ashbourne/goishi/board"
)

// passMove is the sentinel child move key standing in for board.Pass().
const passMove = -1

// child is one outgoing edge of a node: a candidate move, its prior, and
// the accumulated visit statistics. node is nil until the edge has been
// walked at least once.
type child struct {
	move             int
	prior            float64
	valueSum         float64
	visitCount       int
	virtualLossCount int
	node             *node
}

// node is one position in the search tree. All fields besides toPlay are
// guarded by mu; toPlay is set at creation and changed afterwards only by
// ensureRoot (on an existing root) and NotifyMove (on the promoted child).
type node struct {
	mu sync.Mutex
	cv *sync.Cond

	toPlay           board.Player
	expanded         bool
	expanding        bool
	noiseApplied     bool
	visitCount       int
	valueSum         float64
	virtualLossCount int

	children    []*child
	moveToIndex map[int]int
}

func newNode(toPlay board.Player) *node {
	n := &node{toPlay: toPlay}
	n.cv = sync.NewCond(&n.mu)
	return n
}

func moveKey(m board.Move) int {
	if m.IsPass() {
		return passMove
	}
	return m.VertexIndex()
}

func moveFromKey(k int) board.Move {
	if k == passMove {
		return board.Pass()
	}
	return board.Vertex(k)
}
