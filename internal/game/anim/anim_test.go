package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ludo/client/internal/game/board"
	"ludo/client/internal/protocol"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func tok(pos int) protocol.Token { return protocol.Token{Position: pos} }

func TestObserve_FirstSightingSnaps(t *testing.T) {
	a := New(800 * time.Millisecond)
	key := board.PieceKey{Owner: 1, Slot: 2}
	a.Observe(key, tok(10), at(0))

	assert.False(t, a.IsMoving(key))
	p, ok := a.Displayed(key)
	require.True(t, ok)
	assert.Equal(t, board.ResolvePixel(1, 2, 10), p)
}

func TestObserve_UnchangedNeverAnimates(t *testing.T) {
	a := New(800 * time.Millisecond)
	key := board.PieceKey{Owner: 0, Slot: 0}
	for i := 0; i < 5; i++ {
		a.Observe(key, tok(7), at(i*100))
		a.Step(at(i*100 + 50))
		require.False(t, a.IsMoving(key))
	}
	assert.False(t, a.AnyMoving())
}

func TestStep_FollowsTrackAndSnapsAtEnd(t *testing.T) {
	var settled []board.PieceKey
	a := New(800 * time.Millisecond)
	a.OnSettled = func(k board.PieceKey) { settled = append(settled, k) }
	key := board.PieceKey{Owner: 0, Slot: 1}

	a.Observe(key, tok(2), at(0))
	a.Observe(key, tok(8), at(0))
	require.True(t, a.IsMoving(key))

	a.Step(at(0))
	p, _ := a.Displayed(key)
	assert.Equal(t, board.ResolvePixel(0, 1, 2), p)

	// mid-move the piece sits on the track polyline, not on the chord
	a.Step(at(400))
	p, _ = a.Displayed(key)
	assert.True(t, onPolyline(board.Waypoints(0, 1, 2, 8), p), "point %+v left the track", p)
	assert.Empty(t, settled)

	a.Step(at(800))
	p, _ = a.Displayed(key)
	assert.Equal(t, board.ResolvePixel(0, 1, 8), p)
	assert.False(t, a.IsMoving(key))
	assert.Equal(t, []board.PieceKey{key}, settled)

	// settles once
	a.Step(at(900))
	assert.Len(t, settled, 1)
}

func TestStep_YardExitIsStraight(t *testing.T) {
	a := New(time.Second)
	key := board.PieceKey{Owner: 2, Slot: 0}
	a.Observe(key, tok(protocol.YardPosition), at(0))
	a.Observe(key, tok(0), at(0))

	a.Step(at(500))
	p, _ := a.Displayed(key)
	from := board.ResolvePixel(2, 0, -1)
	to := board.ResolvePixel(2, 0, 0)
	mid := from.Add(to.Sub(from).Scale(0.5))
	assert.InDelta(t, mid.X, p.X, 1e-6)
	assert.InDelta(t, mid.Y, p.Y, 1e-6)
}

func TestObserve_RestartMidMoveEndsAtLatestTarget(t *testing.T) {
	a := New(800 * time.Millisecond)
	key := board.PieceKey{Owner: 3, Slot: 3}
	a.Observe(key, tok(0), at(0))
	a.Observe(key, tok(6), at(0))
	a.Step(at(300))
	mid, _ := a.Displayed(key)

	a.Observe(key, tok(10), at(300))
	require.True(t, a.IsMoving(key))
	a.Step(at(300))
	p, _ := a.Displayed(key)
	assert.Equal(t, mid, p, "restart must not jump")

	a.Step(at(1100))
	p, _ = a.Displayed(key)
	assert.Equal(t, board.ResolvePixel(3, 3, 10), p)
	assert.False(t, a.IsMoving(key))
}

func TestObserve_FinishedMovesToHome(t *testing.T) {
	a := New(100 * time.Millisecond)
	key := board.PieceKey{Owner: 1, Slot: 0}
	a.Observe(key, tok(protocol.TerminalPosition), at(0))
	a.Observe(key, protocol.Token{Position: protocol.TerminalPosition, Finished: true}, at(0))
	require.True(t, a.IsMoving(key))
	a.Step(at(100))
	p, _ := a.Displayed(key)
	home, _ := board.FinishSpot(1)
	assert.Equal(t, home, p)
}

func TestReset_ClearsTracks(t *testing.T) {
	a := New(0)
	assert.Equal(t, DefaultDuration, a.Duration)
	a.Observe(board.PieceKey{}, tok(1), at(0))
	a.Observe(board.PieceKey{}, tok(3), at(0))
	a.Reset()
	assert.False(t, a.AnyMoving())
	assert.Empty(t, a.Keys())
}

func TestTrack_TargetLeadsDisplayed(t *testing.T) {
	a := New(800 * time.Millisecond)
	key := board.PieceKey{Owner: 2, Slot: 3}
	a.Observe(key, tok(4), at(0))
	a.Observe(key, tok(9), at(0))
	a.Step(at(200))

	tr, ok := a.Track(key)
	require.True(t, ok)
	assert.Equal(t, Animating, tr.Phase)
	assert.Equal(t, board.ResolvePixel(2, 3, 9), tr.Target)
	assert.NotEqual(t, tr.Target, tr.Displayed)

	_, ok = a.Track(board.PieceKey{Owner: 3})
	assert.False(t, ok)
}

func TestForget_DropsOnePiece(t *testing.T) {
	a := New(0)
	gone := board.PieceKey{Owner: 3, Slot: 0}
	kept := board.PieceKey{Owner: 0, Slot: 0}
	a.Observe(gone, tok(1), at(0))
	a.Observe(gone, tok(5), at(0))
	a.Observe(kept, tok(2), at(0))

	a.Forget(gone)
	assert.Equal(t, []board.PieceKey{kept}, a.Keys())
	assert.False(t, a.AnyMoving())
}

func TestEaseInOut(t *testing.T) {
	assert.Equal(t, 0.0, easeInOut(0))
	assert.Equal(t, 1.0, easeInOut(1))
	assert.InDelta(t, 0.5, easeInOut(0.5), 1e-9)
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := easeInOut(float64(i) / 100)
		require.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func onPolyline(path []board.Point, p board.Point) bool {
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		if abs(a.Dist(p)+p.Dist(b)-a.Dist(b)) < 1e-6 {
			return true
		}
	}
	return false
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
