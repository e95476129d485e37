package zobrist

import (
	"testing"

	"github.com/matryer/is"
)

func TestNewTableDeterministic(t *testing.T) {
	is := is.New(t)
	a := NewTable(9)
	b := NewTable(9)
	is.Equal(a.BlackStone(0), b.BlackStone(0))
	is.Equal(a.WhiteStone(17), b.WhiteStone(17))
	is.Equal(a.Ko(5), b.Ko(5))
	is.Equal(a.SideToMove(), b.SideToMove())
}

func TestNewTableKeysAreDistinct(t *testing.T) {
	is := is.New(t)
	tbl := NewTable(9)
	seen := map[uint64]bool{}
	for i := 0; i < 81; i++ {
		for _, k := range []uint64{tbl.BlackStone(i), tbl.WhiteStone(i), tbl.Ko(i)} {
			is.True(!seen[k])
			seen[k] = true
		}
	}
	is.True(!seen[tbl.SideToMove()])
}

func TestNewTableDifferentSizesIndependent(t *testing.T) {
	is := is.New(t)
	small := NewTable(5)
	big := NewTable(9)
	is.True(len(small.black) != len(big.black))
}
