// Package evaluator supplies the policy/value oracle the search agent
// consults at each expanded node. Concrete network-backed evaluators are
// out of scope; Uniform is the only implementation shipped here.
package evaluator

import "github.com/ashbourne/goishi/board"

// Result is a policy/value pair for one board position: policy holds one
// non-negative weight per vertex (legal or not), in vertex order, plus a
// trailing entry for pass, and value is the position's estimated outcome
// from toPlay's perspective in [-1, 1]. The search normalizes the weights
// of the legal moves itself.
type Result struct {
	Policy []float64
	Value  float64
}

// Evaluator scores a position for the player to move. Implementations must
// not mutate b.
type Evaluator interface {
	Evaluate(b *board.Board, toPlay board.Player) Result
}

// Uniform assigns every move (including pass) equal prior probability and
// a value of zero. It is the engine's default evaluator, standing in for a
// learned policy/value network.
type Uniform struct{}

// Evaluate implements Evaluator.
func (Uniform) Evaluate(b *board.Board, _ board.Player) Result {
	totalMoves := b.BoardSize()*b.BoardSize() + 1
	policy := make([]float64, totalMoves)
	p := 1.0 / float64(totalMoves)
	for i := range policy {
		policy[i] = p
	}
	return Result{Policy: policy, Value: 0}
}
