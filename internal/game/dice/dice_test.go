package dice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ludo/client/internal/protocol"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func snap(turn int, rolls ...int) *protocol.Snapshot {
	s := &protocol.Snapshot{Started: true, CurrentPlayerIndex: turn}
	for _, r := range rolls {
		s.DiceRolls = append(s.DiceRolls, protocol.DiceRoll{Move: r})
	}
	return s
}

func withLast(s *protocol.Snapshot, player, move int) *protocol.Snapshot {
	s.LastDiceRoll = &protocol.LastDiceRoll{PlayerIndex: player, Move: move}
	return s
}

func face(m *Machine, now time.Time) int {
	v, _ := m.Face(now)
	return v
}

func TestRemoteRollResolvesImmediately(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	assert.Equal(t, Idle, m.Phase())
	assert.Equal(t, Placeholder, face(m, at(0)))

	m.Observe(snap(0, 4), at(100))
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, 4, face(m, at(100)))
	assert.Equal(t, at(100), m.ShownAt())
}

func TestRollShowsAtLeastMinDuration(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	require.True(t, m.BeginRoll(at(0)))
	require.False(t, m.BeginRoll(at(10)), "second roll while spinning")

	resp := snap(0, 4)
	m.Settle(resp, at(50))
	m.Observe(resp, at(50))

	v, spinning := m.Face(at(50))
	assert.True(t, spinning)
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, 6)
	assert.Equal(t, Rolling, m.Phase())

	m.Tick(at(999))
	assert.Equal(t, Rolling, m.Phase())

	m.Tick(at(1000))
	assert.Equal(t, Resolved, m.Phase())
	v, spinning = m.Face(at(1000))
	assert.False(t, spinning)
	assert.Equal(t, 4, v)
	assert.Equal(t, at(1000), m.ShownAt())
}

func TestLateResponseResolvesAtOnce(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	m.BeginRoll(at(0))
	m.Settle(snap(0, 2), at(1400))
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, 2, face(m, at(1400)))
	assert.Equal(t, at(1400), m.ShownAt())
}

func TestObserveIsIdempotent(t *testing.T) {
	m := NewSeeded(1)
	s := snap(0, 6)
	m.Observe(s, at(0))
	first, ok := m.LastRoll()
	require.True(t, ok)

	m.Observe(s, at(300))
	m.Observe(snap(0, 6), at(600))
	again, _ := m.LastRoll()
	assert.Equal(t, first, again)
	assert.Equal(t, at(0), m.ShownAt(), "a repeated roll must not restart the dwell")
	assert.Equal(t, 6, face(m, at(600)))
}

func TestSecondRollOfTurnIsNew(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 6), at(0))
	m.Observe(snap(0, 6, 6), at(500))
	id, _ := m.LastRoll()
	assert.Equal(t, 2, id.Count)
	assert.Equal(t, at(500), m.ShownAt())
}

func TestTurnChangeWaitsForDwell(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 3), at(0))
	require.Equal(t, 3, face(m, at(0)))

	m.Observe(withLast(snap(1), 0, 3), at(200))
	assert.Equal(t, 3, face(m, at(200)), "the face stays up until it has been seen")
	assert.Equal(t, at(0), m.ShownAt(), "the echoed last roll is not a new roll")
	due, queued := m.ResetDue()
	require.True(t, queued)
	assert.Equal(t, at(1500), due)

	m.Tick(at(1499))
	assert.Equal(t, 3, face(m, at(1499)))

	m.Tick(at(1500))
	assert.Equal(t, Idle, m.Phase())
	assert.Equal(t, Placeholder, face(m, at(1500)), "player 1 has not rolled yet")
	assert.Equal(t, 1, m.Turn())

	// player 1 rolls, then the turn comes back to player 0
	m.Observe(snap(1, 5), at(2000))
	m.Observe(withLast(snap(0), 1, 5), at(2100))
	m.Tick(at(3500))
	assert.Equal(t, 3, face(m, at(3500)), "player 0's last face comes back")
}

func TestRollArrivingWithTurnChangeIsProcessedOnce(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))

	// player 1 rolled before we polled again
	m.Observe(snap(1, 6), at(100))
	require.Equal(t, Resolved, m.Phase())
	require.Equal(t, at(100), m.ShownAt())
	first, _ := m.LastRoll()

	m.Observe(snap(1, 6), at(600))
	again, _ := m.LastRoll()
	assert.Equal(t, first, again)
	assert.Equal(t, at(100), m.ShownAt())

	m.Tick(at(3000))
	m.Observe(snap(1, 6), at(3100))
	assert.Equal(t, Resolved, m.Phase(), "the new player's roll replaced the turn reset")
	assert.Equal(t, 6, face(m, at(3100)))
	assert.Equal(t, at(100), m.ShownAt())
}

func TestOldRollDoesNotAnswerLocalSpin(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	m.Observe(snap(1, 6), at(100))
	m.Tick(at(1600))

	m.BeginRoll(at(2000))
	m.Observe(snap(1, 6), at(2050))
	m.Tick(at(3000))
	_, spinning := m.Face(at(3000))
	assert.True(t, spinning, "nothing new arrived yet")
	assert.Equal(t, Rolling, m.Phase())

	// the server refused the roll
	m.Abort()
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, 6, face(m, at(3100)))
	assert.Equal(t, at(100), m.ShownAt())
}

func TestSpinRemembersNewestRollAtStart(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 4), at(0))
	base, _ := m.LastRoll()

	m.BeginRoll(at(100))
	assert.True(t, m.predates(base))
	assert.False(t, m.predates(RollID{Epoch: base.Epoch, Player: 0, Count: 2, Value: 4}))

	m.Settle(snap(0, 4, 2), at(1200))
	require.Equal(t, Resolved, m.Phase())
	assert.False(t, m.predates(base), "only a spinning die has a base")
}

func TestTurnPassingRollDuringLocalSpin(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	m.BeginRoll(at(0))

	// no legal move: the same answer carries the roll and the next turn
	resp := withLast(snap(1), 0, 2)
	m.Settle(resp, at(100))
	m.Observe(resp, at(100))
	assert.Equal(t, Rolling, m.Phase())

	m.Tick(at(1000))
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, 2, face(m, at(1000)))

	m.Tick(at(2499))
	assert.Equal(t, 2, face(m, at(2499)))
	m.Tick(at(2500))
	assert.Equal(t, Idle, m.Phase())
	assert.Equal(t, Placeholder, face(m, at(2500)))
}

func TestSameRollInLaterTurnIsNew(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 5), at(0))
	m.Observe(snap(1), at(100))
	m.Observe(snap(1, 2), at(2000))
	m.Observe(snap(0), at(2100))
	m.Tick(at(4000))

	m.Observe(snap(0, 5), at(4100))
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, at(4100), m.ShownAt())
}

func TestSettleTakesAnAlreadySeenIdentity(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 5), at(0))
	m.Tick(at(2000))

	// a whole round went by between polls; our next roll looks the same
	m.BeginRoll(at(3000))
	m.Settle(snap(0, 5), at(3100))
	m.Tick(at(4000))
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, at(4000), m.ShownAt())
}

func TestAbortRestoresPreviousFace(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0, 4), at(0))
	m.BeginRoll(at(100))
	m.Abort()
	assert.Equal(t, Resolved, m.Phase())
	assert.Equal(t, 4, face(m, at(200)))

	fresh := NewSeeded(2)
	fresh.BeginRoll(at(0))
	fresh.Abort()
	assert.Equal(t, Idle, fresh.Phase())
	assert.Equal(t, Placeholder, face(fresh, at(0)))
}

func TestAbandonedRollClearsOnTurnChange(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	m.BeginRoll(at(0))
	m.Observe(snap(1), at(100))

	m.Tick(at(999))
	assert.Equal(t, Rolling, m.Phase())
	m.Tick(at(1000))
	assert.Equal(t, Idle, m.Phase())
	assert.Equal(t, 1, m.Turn())
}

func TestResetCancelsDeadlines(t *testing.T) {
	m := NewSeeded(1)
	m.Observe(snap(0), at(0))
	m.BeginRoll(at(0))
	m.Settle(snap(0, 6), at(10))
	m.Reset()

	m.Tick(at(5000))
	assert.Equal(t, Idle, m.Phase())
	assert.Equal(t, Placeholder, face(m, at(5000)))
	_, queued := m.ResetDue()
	assert.False(t, queued)
	_, ok := m.LastRoll()
	assert.False(t, ok)
}

func TestSpinFaceChanges(t *testing.T) {
	m := NewSeeded(7)
	m.BeginRoll(at(0))
	prev, spinning := m.Face(at(0))
	require.True(t, spinning)
	for i := 1; i <= 20; i++ {
		now := at(i * int(SpinInterval/time.Millisecond))
		v, _ := m.Face(now)
		assert.NotEqual(t, prev, v)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
		prev = v
	}
}

func TestNextUsable(t *testing.T) {
	tests := []struct {
		name  string
		rolls []protocol.DiceRoll
		want  int
		ok    bool
	}{
		{"none", nil, 0, false},
		{"single", []protocol.DiceRoll{{Move: 3}}, 3, true},
		{"first used", []protocol.DiceRoll{{Move: 6, IsUsed: true}, {Move: 4}}, 4, true},
		{"all used", []protocol.DiceRoll{{Move: 6, IsUsed: true}, {Move: 2, IsUsed: true}}, 0, false},
		{"earliest wins", []protocol.DiceRoll{{Move: 6}, {Move: 6}, {Move: 1}}, 6, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := NextUsable(tc.rolls)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestServerRefsTellEqualRollsApart(t *testing.T) {
	m := NewSeeded(1)
	s := snap(0, 6, 6)
	s.LastDiceRoll = &protocol.LastDiceRoll{PlayerIndex: 0, Move: 6, RollID: "r2"}
	m.Observe(s, at(0))

	// third six: the server clears the rolls and passes the turn
	third := withLast(snap(1), 0, 6)
	third.LastDiceRoll.RollID = "r3"
	m.Observe(third, at(400))
	id, _ := m.LastRoll()
	assert.Equal(t, "r3", id.Ref)
	assert.Equal(t, at(400), m.ShownAt())

	// the same leftover again is not new
	m.Observe(third, at(900))
	assert.Equal(t, at(400), m.ShownAt())
}
