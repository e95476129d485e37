package gtp

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ashbourne/goishi/board"
	"github.com/ashbourne/goishi/evaluator"
	"github.com/ashbourne/goishi/search"
)

func newTestServer(t *testing.T, script string) (*Server, *bytes.Buffer) {
	t.Helper()
	rules := board.Rules{BoardSize: 9, Komi: 7.5, KoRule: board.PositionalSuperko, ScoringRule: board.TrompTaylorArea}
	b := board.New(rules)
	cfg := search.DefaultConfig()
	cfg.MaxPlayouts = 4
	cfg.EnablePlayoutCapRandomization = false
	out := &bytes.Buffer{}
	s := NewServer(b, cfg, evaluator.Uniform{}, strings.NewReader(script), out)
	return s, out
}

func TestProtocolVersionNameVersion(t *testing.T) {
	s, out := newTestServer(t, "protocol_version\nname\nversion\nquit\n")
	require.NoError(t, s.Run())
	text := out.String()
	require.Contains(t, text, "= 2")
	require.Contains(t, text, "= goishi")
	require.Contains(t, text, "= 0.1")
}

func TestPlayAndShowboard(t *testing.T) {
	s, out := newTestServer(t, "play black C3\nshowboard\nquit\n")
	require.NoError(t, s.Run())
	text := out.String()
	require.Contains(t, text, "X")
}

func TestPlayIllegalMove(t *testing.T) {
	s, out := newTestServer(t, "play black C3\nplay white C3\nquit\n")
	require.NoError(t, s.Run())
	require.Contains(t, out.String(), "? illegal move")
}

func TestGenmoveReturnsVertexOrPass(t *testing.T) {
	s, out := newTestServer(t, "genmove black\nquit\n")
	require.NoError(t, s.Run())
	text := out.String()
	require.True(t, strings.Contains(text, "= pass") || strings.HasPrefix(text, "= "))
}

func TestBoardsizeResetsBoard(t *testing.T) {
	s, out := newTestServer(t, "play black C3\nboardsize 13\nfinal_score\nquit\n")
	require.NoError(t, s.Run())
	require.Equal(t, 13, s.board.BoardSize())
	require.Contains(t, out.String(), "=")
}

func TestVertexRoundTrip(t *testing.T) {
	rules := board.Rules{BoardSize: 9, KoRule: board.PositionalSuperko, ScoringRule: board.TrompTaylorArea}
	s := &Server{board: board.New(rules)}
	move, ok := s.parseVertex("C3")
	require.True(t, ok)
	require.Equal(t, "C3", s.vertexToString(move.VertexIndex()))

	// Column letters skip 'I'.
	move, ok = s.parseVertex("J1")
	require.True(t, ok)
	require.Equal(t, "J1", s.vertexToString(move.VertexIndex()))
}

func TestUnknownCommand(t *testing.T) {
	s, out := newTestServer(t, "bogus\nquit\n")
	require.NoError(t, s.Run())
	require.Contains(t, out.String(), "? unknown_command")
}
