package board

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStacks_SingletonsGetZeroOffset(t *testing.T) {
	got := ResolveStacks([]Placed{
		{Key: PieceKey{0, 0}, At: ResolvePixel(0, 0, 3)},
		{Key: PieceKey{1, 0}, At: ResolvePixel(1, 0, 3)},
	})
	for _, s := range got {
		assert.Equal(t, Stack{Index: 0, Count: 1}, s)
		assert.Equal(t, Point{}, StackOffset(s, 8))
	}
}

func TestResolveStacks_TwoOwnersSameCell(t *testing.T) {
	// owner 0 at 26 and owner 2 at 0 share global cell 26
	pieces := []Placed{
		{Key: PieceKey{2, 1}, At: ResolvePixel(2, 1, 0)},
		{Key: PieceKey{0, 3}, At: ResolvePixel(0, 3, 26)},
	}
	got := ResolveStacks(pieces)
	assert.Equal(t, Stack{Index: 0, Count: 2}, got[PieceKey{0, 3}])
	assert.Equal(t, Stack{Index: 1, Count: 2}, got[PieceKey{2, 1}])
}

func TestResolveStacks_RoundsAwayJitter(t *testing.T) {
	base := ResolvePixel(0, 0, 5)
	got := ResolveStacks([]Placed{
		{Key: PieceKey{0, 0}, At: base},
		{Key: PieceKey{0, 1}, At: base.Add(Point{0.2, -0.3})},
	})
	assert.Equal(t, 2, got[PieceKey{0, 0}].Count)
	assert.Equal(t, 2, got[PieceKey{0, 1}].Count)
}

func TestResolveStacks_DenseIndicesAnyOrder(t *testing.T) {
	at := ResolvePixel(1, 0, 8)
	var pieces []Placed
	for owner := 0; owner < 4; owner++ {
		for slot := 0; slot < 4; slot++ {
			pieces = append(pieces, Placed{Key: PieceKey{owner, slot}, At: at})
		}
	}
	r := rand.New(rand.NewPCG(1, 2))
	for round := 0; round < 5; round++ {
		r.Shuffle(len(pieces), func(i, j int) { pieces[i], pieces[j] = pieces[j], pieces[i] })
		got := ResolveStacks(pieces)
		require.Len(t, got, 16)

		idx := map[int]bool{}
		for key, s := range got {
			require.Equal(t, 16, s.Count)
			require.False(t, idx[s.Index], "duplicate index %d", s.Index)
			idx[s.Index] = true
			require.Equal(t, key.Owner*4+key.Slot, s.Index)
		}
		for i := 0; i < 16; i++ {
			require.True(t, idx[i])
		}
	}
}

func TestStackOffset_CollisionFree(t *testing.T) {
	const r = 8.0
	for n := 2; n <= 8; n++ {
		seen := map[Point]bool{}
		for i := 0; i < n; i++ {
			off := StackOffset(Stack{Index: i, Count: n}, r)
			assert.LessOrEqual(t, off.Dist(Point{}), r*1.5)
			for p := range seen {
				require.Greater(t, p.Dist(off), 1.0, "n=%d index=%d overlaps", n, i)
			}
			seen[off] = true
		}
	}
}

func TestStackOffset_BadIndexIsZero(t *testing.T) {
	assert.Equal(t, Point{}, StackOffset(Stack{Index: 5, Count: 2}, 8))
	assert.Equal(t, Point{}, StackOffset(Stack{Index: -1, Count: 3}, 8))
}
