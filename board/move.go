package board

// Player identifies whose turn it is.
type Player uint8

const (
	Black Player = iota
	White
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == Black {
		return White
	}
	return Black
}

func (p Player) String() string {
	if p == Black {
		return "black"
	}
	return "white"
}

// PointState is what occupies a single board point.
type PointState uint8

const (
	Empty PointState = iota
	BlackStone
	WhiteStone
)

func toPoint(p Player) PointState {
	if p == Black {
		return BlackStone
	}
	return WhiteStone
}

// Move is either Pass or a vertex index v = y*boardSize + x.
type Move struct {
	vertex int
	pass   bool
}

// Pass is the move that ends the turn without placing a stone.
func Pass() Move { return Move{pass: true} }

// Vertex constructs a stone-placement move at v.
func Vertex(v int) Move { return Move{vertex: v} }

// IsPass reports whether m is a pass.
func (m Move) IsPass() bool { return m.pass }

// VertexIndex returns the linear vertex index. Only meaningful if !IsPass().
func (m Move) VertexIndex() int { return m.vertex }
