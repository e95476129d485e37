package sgf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashbourne/goishi/board"
)

func TestSaveThenLoadRoundTrips(t *testing.T) {
	original := GameTree{
		BoardSize: 9,
		Komi:      6.5,
		Moves: []MoveRecord{
			{Player: board.Black, Move: board.Vertex(20)},
			{Player: board.White, Move: board.Vertex(21)},
			{Player: board.Black, Move: board.Pass()},
			{Player: board.White, Move: board.Vertex(0)},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Save(original, &buf))

	loaded, err := Load(&buf)
	require.NoError(t, err)
	require.Equal(t, original.BoardSize, loaded.BoardSize)
	require.Equal(t, original.Komi, loaded.Komi)
	require.Equal(t, original.Moves, loaded.Moves)
}

func TestLoadMatchesDirectBoardReplay(t *testing.T) {
	sgfText := "(;SZ[5]KM[0];B[bb];W[cb];B[bc])"
	game, err := Load(strings.NewReader(sgfText))
	require.NoError(t, err)

	b := board.New(board.Rules{BoardSize: game.BoardSize, Komi: game.Komi, KoRule: board.PositionalSuperko, ScoringRule: board.TrompTaylorArea})
	for _, m := range game.Moves {
		require.True(t, b.PlayMove(m.Player, m.Move))
	}

	direct := board.New(board.Rules{BoardSize: 5, Komi: 0, KoRule: board.PositionalSuperko, ScoringRule: board.TrompTaylorArea})
	require.True(t, direct.PlayMove(board.Black, board.Vertex(1*5+1)))
	require.True(t, direct.PlayMove(board.White, board.Vertex(1*5+2)))
	require.True(t, direct.PlayMove(board.Black, board.Vertex(2*5+1)))

	require.Equal(t, direct.PositionHash(), b.PositionHash())
}

func TestLoadWhitespaceIsStripped(t *testing.T) {
	sgfText := "(;SZ[9]\n  KM[7.5]\n  ;B[  dd  ]\n)"
	game, err := Load(strings.NewReader(sgfText))
	require.NoError(t, err)
	require.Equal(t, 9, game.BoardSize)
	require.Equal(t, 7.5, game.Komi)
	require.Equal(t, []MoveRecord{{Player: board.Black, Move: board.Vertex(3*9 + 3)}}, game.Moves)
}

func TestLoadMalformedInputNeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"(;SZ[",
		";B[",
		";X[aa]",
		";B[a]",
		"not sgf at all",
	}
	for _, in := range inputs {
		require.NotPanics(t, func() {
			_, err := Load(strings.NewReader(in))
			require.NoError(t, err)
		})
	}
}

func TestLoadClampsBoardSize(t *testing.T) {
	game, err := Load(strings.NewReader("(;SZ[99])"))
	require.NoError(t, err)
	require.Equal(t, 25, game.BoardSize)
}

func TestLoadEmptyInputReturnsDefaults(t *testing.T) {
	game, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	require.Equal(t, 19, game.BoardSize)
	require.Equal(t, 7.5, game.Komi)
	require.Empty(t, game.Moves)
}
