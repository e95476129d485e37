package board

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func rules3x3() Rules {
	return Rules{BoardSize: 3, Komi: 0, AllowSuicide: false, KoRule: PositionalSuperko, ScoringRule: TrompTaylorArea}
}

func rules5x5() Rules {
	return Rules{BoardSize: 5, Komi: 0, AllowSuicide: false, KoRule: PositionalSuperko, ScoringRule: TrompTaylorArea}
}

// recomputeHash rebuilds the position hash from scratch (stones + ko point)
// so invariant checks don't just re-read the incrementally maintained field.
func recomputeHash(b *Board) uint64 {
	fresh := New(b.rules)
	var h uint64
	for v, s := range b.points {
		switch s {
		case BlackStone:
			h ^= fresh.zob.BlackStone(v)
		case WhiteStone:
			h ^= fresh.zob.WhiteStone(v)
		}
	}
	if ko, ok := b.KoVertex(); ok {
		h ^= fresh.zob.Ko(ko)
	}
	return h
}

func TestPositionHashInvariant(t *testing.T) {
	b := New(rules3x3())
	moves := []int{0, 1, 3, 4, 6}
	for i, v := range moves {
		player := Black
		if i%2 == 1 {
			player = White
		}
		require.True(t, b.PlayMove(player, Vertex(v)))
		require.Equal(t, recomputeHash(b), b.PositionHash())
	}
}

func TestSimpleCapture3x3(t *testing.T) {
	// B1, W4, B3, W-pass, B5, W-pass, B7 -> vertex 4 empty afterward.
	b := New(rules3x3())
	require.True(t, b.PlayMove(Black, Vertex(1)))
	require.True(t, b.PlayMove(White, Vertex(4)))
	require.True(t, b.PlayMove(Black, Vertex(3)))
	require.True(t, b.PlayMove(White, Pass()))
	require.True(t, b.PlayMove(Black, Vertex(5)))
	require.True(t, b.PlayMove(White, Pass()))
	require.True(t, b.PlayMove(Black, Vertex(7)))
	require.Equal(t, Empty, b.PointState(4))
}

func TestSimpleKo5x5(t *testing.T) {
	b := New(rules5x5())
	plays := []struct {
		player Player
		vertex int
	}{
		{Black, 7}, {White, 8}, {Black, 12}, {White, 17}, {Black, 13}, {White, 18}, {Black, 19},
	}
	for _, p := range plays {
		require.True(t, b.PlayMove(p.player, Vertex(p.vertex)))
	}
	// Nothing is captured in this sequence, so vertex 18 still holds a
	// White stone and the rejection comes from the occupied-point check.
	require.False(t, b.PlayMove(White, Vertex(18)), "vertex 18 is occupied by White")
	require.True(t, b.PlayMove(White, Pass()))
	require.True(t, b.PlayMove(Black, Pass()))
}

func TestPositionalSuperko5x5(t *testing.T) {
	b := New(rules5x5())
	plays := []struct {
		player Player
		vertex int
	}{
		{Black, 7}, {White, 8}, {Black, 12}, {White, 17}, {Black, 13}, {White, 18}, {Black, 19},
	}
	for _, p := range plays {
		require.True(t, b.PlayMove(p.player, Vertex(p.vertex)))
	}
	require.True(t, b.PlayMove(White, Pass()))
	require.True(t, b.PlayMove(Black, Pass()))
	// As in TestSimpleKo5x5, nothing has been captured and vertex 18 is
	// still occupied, so the occupied-point check rejects the move.
	require.False(t, b.PlayMove(White, Vertex(18)), "vertex 18 is still occupied by White")
}

func TestTrompTaylorScore3x3(t *testing.T) {
	b := New(rules3x3())
	for i, v := range []int{0, 1, 3, 4, 6} {
		player := Black
		if i%2 == 1 {
			player = White
		}
		require.True(t, b.PlayMove(player, Vertex(v)))
	}
	score := b.TrompTaylorScore()
	require.Equal(t, 3.0, score.Black)
	require.Equal(t, 2.0, score.White)
}

func TestSuicideRule3x3(t *testing.T) {
	// Black surrounds the center (vertex 4) on all four orthogonal
	// neighbors (1, 3, 5, 7), each kept alive by its own corner liberty.
	play := func(allowSuicide bool) bool {
		rules := rules3x3()
		rules.AllowSuicide = allowSuicide
		b := New(rules)
		for _, v := range []int{1, 3, 5, 7} {
			require.True(t, b.PlayMove(Black, Vertex(v)))
			require.True(t, b.PlayMove(White, Pass()))
		}
		return b.PlayMove(White, Vertex(4))
	}
	require.False(t, play(false), "suicide must be illegal by default")
	require.True(t, play(true), "suicide must be legal when allowed")
}

func TestIsLegalDoesNotMutate(t *testing.T) {
	b := New(rules3x3())
	require.True(t, b.PlayMove(Black, Vertex(0)))
	before := b.PositionHash()
	legal := b.IsLegal(White, Vertex(1))
	require.True(t, legal)
	require.Equal(t, before, b.PositionHash())
	require.Equal(t, Empty, b.PointState(1))
}

func TestBoardSizeOneSuicideAllowed(t *testing.T) {
	rules := Rules{BoardSize: 1, Komi: 0, AllowSuicide: true, KoRule: SimpleKo, ScoringRule: TrompTaylorArea}
	b := New(rules)
	require.True(t, b.PlayMove(Black, Vertex(0)))
	require.False(t, b.IsLegal(White, Vertex(0)), "the single point is occupied")
}

func TestInvalidBoardSizePanics(t *testing.T) {
	require.Panics(t, func() {
		New(Rules{BoardSize: 0})
	})
	require.Panics(t, func() {
		New(Rules{BoardSize: 26})
	})
}

func TestPointStateOutOfRangePanics(t *testing.T) {
	b := New(rules3x3())
	require.Panics(t, func() {
		b.PointState(100)
	})
}

func TestStateKeyFlipsWithSideToMove(t *testing.T) {
	b := New(rules3x3())
	require.True(t, b.PlayMove(Black, Vertex(0)))
	require.Equal(t, White, b.ToPlay())
	keyWhite := b.StateKey()
	b.SetToPlay(Black)
	keyBlack := b.StateKey()
	require.NotEqual(t, keyWhite, keyBlack)
}

func TestCopyIsIndependent(t *testing.T) {
	b := New(rules3x3())
	require.True(t, b.PlayMove(Black, Vertex(0)))
	cp := b.Copy()
	require.True(t, cp.PlayMove(White, Vertex(1)))
	require.Equal(t, Empty, b.PointState(1))
}

func TestTerritoryScoringRejected(t *testing.T) {
	rules := rules3x3()
	rules.ScoringRule = Territory
	b := New(rules)
	_, err := b.Score()
	require.Error(t, err)
}
