// Package search implements a PUCT-style Monte Carlo Tree Search agent:
// root expansion against a pluggable evaluator, virtual-loss parallel
// playouts, Dirichlet root noise, and temperature-based move selection,
// with tree reuse across successive moves via NotifyMove.
package search

import (
	"math"
	randv2 "math/rand/v2"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/evaluator"
)

const epsilon = 1e-8

// Agent is a stateful search tree bound to one evaluator. It is not safe
// for concurrent calls to SelectMove/NotifyMove/Reset from multiple
// goroutines; the parallelism it exposes is internal, across the
// playouts of a single SelectMove call.
type Agent struct {
	config    Config
	evaluator evaluator.Evaluator

	root       *node
	rootHash   uint64
	rootPlayer board.Player
	rootReady  bool

	rng *randv2.Rand
}

// NewAgent builds an Agent. A nil evaluator falls back to
// evaluator.Uniform{}, matching the reference engine's constructor.
func NewAgent(config Config, eval evaluator.Evaluator) *Agent {
	if eval == nil {
		eval = evaluator.Uniform{}
	}
	return &Agent{
		config:    config,
		evaluator: eval,
		rng:       randv2.New(randv2.NewPCG(config.Seed, config.Seed)),
	}
}

// Config returns the agent's tuning parameters.
func (a *Agent) Config() Config { return a.config }

// RootVisitCounts reports the visit count of every root child, in child
// order, with unvisited children reported as 0. It is meant for
// diagnostics (benchmark histograms, analysis tools) rather than search
// itself; it returns nil when the agent has no root.
func (a *Agent) RootVisitCounts() []int {
	if a.root == nil {
		return nil
	}
	a.root.mu.Lock()
	defer a.root.mu.Unlock()
	counts := make([]int, len(a.root.children))
	for i, c := range a.root.children {
		counts[i] = c.visitCount
	}
	return counts
}

func stateKey(b *board.Board) uint64 { return b.StateKey() }

func (a *Agent) ensureRoot(b *board.Board, toPlay board.Player) {
	key := stateKey(b)
	if a.root == nil || !a.rootReady || a.rootHash != key {
		a.root = newNode(toPlay)
		a.rootHash = key
		a.rootPlayer = toPlay
		a.rootReady = true
	} else {
		a.root.mu.Lock()
		a.root.toPlay = toPlay
		a.root.mu.Unlock()
	}

	if !a.root.expanded {
		a.expand(a.root, b)
	}

	if a.config.DirichletEpsilon > 0 {
		a.root.mu.Lock()
		needsNoise := !a.root.noiseApplied && len(a.root.children) > 0
		if needsNoise {
			a.root.noiseApplied = true
		}
		a.root.mu.Unlock()
		if needsNoise {
			a.applyDirichletNoise(a.root)
		}
	}
}

// SelectMove runs the configured number of playouts from b (to_play to
// move) and returns the chosen move. moveNumber is the ply count so far,
// used for the temperature cutoff.
func (a *Agent) SelectMove(b *board.Board, toPlay board.Player, moveNumber int) board.Move {
	a.ensureRoot(b, toPlay)

	playouts := a.config.MaxPlayouts
	if playouts < 1 {
		playouts = 1
	}
	if a.config.EnablePlayoutCapRandomization && a.config.RandomPlayoutsMax > a.config.RandomPlayoutsMin {
		span := a.config.RandomPlayoutsMax - a.config.RandomPlayoutsMin + 1
		playouts = a.config.RandomPlayoutsMin + int(a.rng.Int64N(int64(span)))
	}

	threads := a.config.NumThreads
	if threads < 1 {
		threads = 1
	}

	if threads <= 1 {
		for i := 0; i < playouts; i++ {
			a.runSimulation(b, a.rng)
		}
	} else {
		var counter atomic.Int64
		var g errgroup.Group
		for t := 0; t < threads; t++ {
			seedOffset := uint64(t+1) * 0x9e3779b9
			seed := a.config.Seed ^ seedOffset ^ uint64(moveNumber*17+playouts)
			g.Go(func() error {
				localRng := randv2.New(randv2.NewPCG(seed, seed))
				for {
					idx := counter.Add(1) - 1
					if idx >= int64(playouts) {
						return nil
					}
					a.runSimulation(b, localRng)
				}
			})
		}
		_ = g.Wait()
	}

	move := a.selectMoveFromRoot(moveNumber)
	log.Info().
		Int("move_number", moveNumber).
		Int("playouts", playouts).
		Int("threads", threads).
		Uint64("root_hash", a.rootHash).
		Bool("pass", move.IsPass()).
		Msg("search: select_move")
	return move
}

// NotifyMove advances the tree to the subtree rooted at move, if one was
// already explored, so future search reuses its statistics. boardAfterMove
// is the position after move has been applied, and toPlay is whose turn
// it is there.
func (a *Agent) NotifyMove(move board.Move, boardAfterMove *board.Board, toPlay board.Player) {
	newHash := stateKey(boardAfterMove)

	if a.root == nil || !a.rootReady {
		a.rootHash = newHash
		a.rootPlayer = toPlay
		a.rootReady = false
		return
	}

	key := moveKey(move)
	var next *node
	a.root.mu.Lock()
	if idx, ok := a.root.moveToIndex[key]; ok {
		next = a.root.children[idx].node
	}
	a.root.mu.Unlock()

	if next != nil {
		next.mu.Lock()
		next.toPlay = toPlay
		next.noiseApplied = false
		next.virtualLossCount = 0
		for _, c := range next.children {
			c.virtualLossCount = 0
		}
		visits := next.visitCount
		next.mu.Unlock()
		a.root = next
		a.rootHash = newHash
		a.rootPlayer = toPlay
		a.rootReady = true
		log.Info().Uint64("root_hash", newHash).Int("reused_visits", visits).Msg("search: notify_move reused subtree")
	} else {
		a.root = nil
		a.rootHash = newHash
		a.rootPlayer = toPlay
		a.rootReady = false
		log.Info().Uint64("root_hash", newHash).Msg("search: notify_move discarded tree")
	}
}

// Reset discards the tree entirely. The next SelectMove starts fresh.
func (a *Agent) Reset() {
	a.root = nil
	a.rootHash = 0
	a.rootPlayer = board.Black
	a.rootReady = false
}

// dirichletSource adapts the agent's seeded math/rand/v2 stream to the
// rand.Source interface gonum's distuv distributions draw from, so
// Dirichlet noise is reproducible from config.Seed like every other RNG
// consumer in this package, instead of silently falling back to gonum's
// unseeded global source.
type dirichletSource struct {
	rng *randv2.Rand
}

func (s dirichletSource) Uint64() uint64 { return s.rng.Uint64() }
func (dirichletSource) Seed(uint64)      {}

func (a *Agent) applyDirichletNoise(n *node) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.children) == 0 {
		return
	}

	alpha := a.config.DirichletAlpha
	gamma := distuv.Gamma{Alpha: alpha, Beta: 1, Src: dirichletSource{rng: a.rng}}
	noise := make([]float64, len(n.children))
	var sum float64
	for i := range noise {
		noise[i] = gamma.Rand()
		sum += noise[i]
	}
	if sum <= epsilon {
		uniform := 1.0 / float64(len(noise))
		for i := range noise {
			noise[i] = uniform
		}
	} else {
		for i := range noise {
			noise[i] /= sum
		}
	}

	eps := a.config.DirichletEpsilon
	for i, c := range n.children {
		c.prior = c.prior*(1-eps) + eps*noise[i]
	}
}

// runSimulation walks one simulation from a private copy of the root
// board, so concurrent playouts never observe each other's moves.
func (a *Agent) runSimulation(rootBoard *board.Board, rng *randv2.Rand) float64 {
	value := a.simulate(rootBoard.Copy(), a.root, rng)
	log.Debug().Float64("value", value).Msg("search: simulation")
	return value
}

func (a *Agent) simulate(b *board.Board, root *node, rng *randv2.Rand) float64 {
	current := root
	path := []*node{current}
	var childIndices []int

	for {
		if value, expanded := a.tryExpand(current, b); expanded {
			a.backpropagate(path, childIndices, value)
			return value
		}

		current.mu.Lock()
		if len(current.children) == 0 {
			current.mu.Unlock()
			a.backpropagate(path, childIndices, 0)
			return 0
		}
		current.mu.Unlock()

		childIdx := a.selectChild(current, rng)

		current.mu.Lock()
		c := current.children[childIdx]
		if c.node == nil {
			c.node = newNode(current.toPlay.Other())
		}
		current.mu.Unlock()

		move := moveFromKey(c.move)
		legal := b.PlayMove(current.toPlay, move)
		if !legal {
			current.mu.Lock()
			a.revertVirtualLoss(current, childIdx)
			c.prior = 0
			c.visitCount = 0
			c.valueSum = 0
			c.node = nil
			current.mu.Unlock()
			continue
		}

		current = c.node
		childIndices = append(childIndices, childIdx)
		path = append(path, current)
	}
}

// selectChild picks the highest-PUCT-score child, applies virtual loss to
// it, and returns its index. Ties are broken with a tiny random jitter so
// repeated equal-score children don't always resolve to the same index.
func (a *Agent) selectChild(n *node, rng *randv2.Rand) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	sqrtTotal := math.Sqrt(float64(n.visitCount) + 1.0)
	var parentQ float64
	if n.visitCount > 0 {
		parentQ = n.valueSum / float64(n.visitCount)
	}

	bestScore := math.Inf(-1)
	bestIndex := 0
	for idx, c := range n.children {
		var q float64
		if c.visitCount > 0 {
			q = c.valueSum / float64(c.visitCount)
		} else {
			q = parentQ - a.config.FpuReduction
		}
		q = clamp(q, -1, 1)
		u := a.config.Cpuct * c.prior * sqrtTotal / (1.0 + float64(c.visitCount))
		score := q + u + 1e-6*rng.Float64()
		if score > bestScore {
			bestScore = score
			bestIndex = idx
		}
	}

	a.applyVirtualLoss(n, bestIndex)
	return bestIndex
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (a *Agent) applyVirtualLoss(n *node, idx int) {
	if !a.config.UseVirtualLoss {
		return
	}
	c := n.children[idx]
	c.virtualLossCount++
	c.visitCount += a.config.VirtualLossVisits
	c.valueSum -= a.config.VirtualLoss
	n.virtualLossCount++
	n.visitCount += a.config.VirtualLossVisits
	n.valueSum -= a.config.VirtualLoss
}

// revertVirtualLoss undoes applyVirtualLoss on n and its child idx. The
// caller holds n.mu.
func (a *Agent) revertVirtualLoss(n *node, idx int) {
	if !a.config.UseVirtualLoss {
		return
	}
	c := n.children[idx]
	if c.virtualLossCount > 0 {
		c.virtualLossCount--
		c.visitCount = maxInt(0, c.visitCount-a.config.VirtualLossVisits)
		c.valueSum += a.config.VirtualLoss
	}
	if n.virtualLossCount > 0 {
		n.virtualLossCount--
		n.visitCount = maxInt(0, n.visitCount-a.config.VirtualLossVisits)
		n.valueSum += a.config.VirtualLoss
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// tryExpand expands n against b's current position if it hasn't been
// expanded yet, blocking until whichever goroutine got there first
// finishes if one is already in flight. It returns (value, true) when
// this call performed the expansion (the caller should back-propagate
// value and stop descending); (0, false) otherwise, meaning the caller
// should keep walking n's now-populated children.
func (a *Agent) tryExpand(n *node, b *board.Board) (float64, bool) {
	n.mu.Lock()
	if n.expanded {
		n.mu.Unlock()
		return 0, false
	}
	for n.expanding {
		n.cv.Wait()
		if n.expanded {
			n.mu.Unlock()
			return 0, false
		}
	}
	n.expanding = true
	n.mu.Unlock()

	result := a.evaluator.Evaluate(b, n.toPlay)
	boardArea := b.BoardSize() * b.BoardSize()
	expectedPolicySize := boardArea + 1
	if len(result.Policy) != expectedPolicySize {
		uniform := 1.0 / float64(expectedPolicySize)
		result.Policy = make([]float64, expectedPolicySize)
		for i := range result.Policy {
			result.Policy[i] = uniform
		}
	}

	legalVertices := b.LegalMoves(n.toPlay)
	moves := make([]int, 0, len(legalVertices)+1)
	priors := make([]float64, 0, len(legalVertices)+1)
	var priorSum float64

	for _, vertex := range legalVertices {
		prior := math.Max(result.Policy[vertex], 0)
		moves = append(moves, vertex)
		priors = append(priors, prior)
		priorSum += prior
	}

	passPrior := math.Max(result.Policy[len(result.Policy)-1], 0)
	moves = append(moves, passMove)
	priors = append(priors, passPrior)
	priorSum += passPrior

	if priorSum <= epsilon {
		uniform := 1.0 / float64(len(priors))
		for i := range priors {
			priors[i] = uniform
		}
	} else {
		for i := range priors {
			priors[i] /= priorSum
		}
	}

	children := make([]*child, len(moves))
	moveToIndex := make(map[int]int, len(moves))
	for i, m := range moves {
		children[i] = &child{move: m, prior: priors[i]}
		moveToIndex[m] = i
	}

	n.mu.Lock()
	n.children = children
	n.moveToIndex = moveToIndex
	n.expanded = true
	n.noiseApplied = false
	n.expanding = false
	n.cv.Broadcast()
	n.mu.Unlock()

	return result.Value, true
}

// expand is the root-only wrapper around tryExpand used by ensureRoot; it
// discards the value, so a root expansion adds no visit or value to the
// root.
func (a *Agent) expand(n *node, b *board.Board) {
	a.tryExpand(n, b)
}

// backpropagate walks path from leaf to root, adding value (sign-flipped
// at each ply, since each node's value is from its own to_play's
// perspective) to every visited node and the edge that led to it, and
// reverting any virtual loss staged on the way down.
func (a *Agent) backpropagate(path []*node, childIndices []int, value float64) {
	current := value
	for idx := len(path) - 1; idx >= 0; idx-- {
		n := path[idx]
		a.backpropagateNode(n, current)
		if idx > 0 {
			parent := path[idx-1]
			a.backpropagateEdge(parent, childIndices[idx-1], current)
		}
		current = -current
	}
}

func (a *Agent) backpropagateNode(n *node, value float64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if a.config.UseVirtualLoss && n.virtualLossCount > 0 {
		n.virtualLossCount--
		n.visitCount = maxInt(0, n.visitCount-a.config.VirtualLossVisits)
		n.valueSum += a.config.VirtualLoss
	}
	n.visitCount++
	n.valueSum += value
}

func (a *Agent) backpropagateEdge(parent *node, childIndex int, value float64) {
	parent.mu.Lock()
	defer parent.mu.Unlock()
	c := parent.children[childIndex]
	if a.config.UseVirtualLoss && c.virtualLossCount > 0 {
		c.virtualLossCount--
		c.visitCount = maxInt(0, c.visitCount-a.config.VirtualLossVisits)
		c.valueSum += a.config.VirtualLoss
	}
	c.visitCount++
	c.valueSum += value
}

// selectMoveFromRoot applies the temperature policy to the root's child
// visit counts. moveNumber >= TemperatureMoveCutoff forces greedy
// (argmax-visits) selection regardless of config.Temperature.
func (a *Agent) selectMoveFromRoot(moveNumber int) board.Move {
	a.root.mu.Lock()
	defer a.root.mu.Unlock()

	if len(a.root.children) == 0 {
		return board.Pass()
	}

	temperature := a.config.Temperature
	if moveNumber >= a.config.TemperatureMoveCutoff {
		temperature = 0
	}

	if temperature <= epsilon {
		bestIndex := 0
		bestVisits := -1
		for idx, c := range a.root.children {
			if c.visitCount > bestVisits {
				bestVisits = c.visitCount
				bestIndex = idx
			}
		}
		return moveFromKey(a.root.children[bestIndex].move)
	}

	weights := make([]float64, len(a.root.children))
	var sum float64
	for i, c := range a.root.children {
		w := math.Pow(float64(c.visitCount)+epsilon, 1.0/temperature)
		weights[i] = w
		sum += w
	}
	if sum <= epsilon {
		uniform := 1.0 / float64(len(weights))
		for i := range weights {
			weights[i] = uniform
		}
		sum = 1.0
	}

	r := a.rng.Float64() * sum
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return moveFromKey(a.root.children[i].move)
		}
	}
	return moveFromKey(a.root.children[len(a.root.children)-1].move)
}
