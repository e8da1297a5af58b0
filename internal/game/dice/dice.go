// Package dice sequences what the die shows against a polled, eventually
// consistent server feed. Every timer is a deadline checked by Tick, so
// cancelling one is clearing a field and nothing can fire after Reset.
package dice

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"ludo/client/internal/protocol"
)

const (
	// MinRollDuration is the shortest time the spinning placeholder shows.
	MinRollDuration = 1000 * time.Millisecond
	// MinDwellDuration is how long a resolved face stays up before a turn change clears it.
	MinDwellDuration = 1500 * time.Millisecond
	// SpinInterval is how often the placeholder changes face.
	SpinInterval = 80 * time.Millisecond
)

// Placeholder is the face value shown when nothing is known.
const Placeholder = 0

type Phase int

const (
	Idle Phase = iota
	Rolling
	Resolved
)

func (p Phase) String() string {
	switch p {
	case Rolling:
		return "rolling"
	case Resolved:
		return "resolved"
	}
	return "idle"
}

// RollID identifies one roll as seen in snapshots. Epoch counts acting-player
// changes observed by this machine so equal rolls in different turns differ.
type RollID struct {
	Epoch  int
	Player int
	Count  int
	Value  int

	// Ref is the server's own id for the roll when it sends one.
	Ref string
}

func (r RollID) String() string {
	if r.Ref != "" {
		return fmt.Sprintf("%d/%d/%d/%d#%s", r.Epoch, r.Player, r.Count, r.Value, r.Ref)
	}
	return fmt.Sprintf("%d/%d/%d/%d", r.Epoch, r.Player, r.Count, r.Value)
}

// Machine is the die of one game view. Drive it from the UI goroutine only.
type Machine struct {
	phase Phase
	face  int

	rollStart time.Time
	shownAt   time.Time

	// deferred resolution
	pendingValue  int
	pendingPlayer int
	resolveAt     time.Time

	// deferred turn reset
	turn        int
	haveTurn    bool
	epoch       int
	resetTo     int
	resetQueued bool

	preRollFace int
	// newest roll when the local spin began; a later sighting of it is not
	// the answer to that spin
	rollBase RollID
	haveBase bool

	last        RollID
	haveLast    bool
	lastFaces   map[int]int

	rng      *rand.Rand
	spinFace int
	spinAt   time.Time
}

func New() *Machine {
	return NewSeeded(uint64(time.Now().UnixNano()))
}

// NewSeeded fixes the placeholder spin sequence; handy in tests.
func NewSeeded(seed uint64) *Machine {
	return &Machine{
		lastFaces: make(map[int]int),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

func (m *Machine) Phase() Phase { return m.phase }

// Turn is the acting player the die currently belongs to.
func (m *Machine) Turn() int { return m.turn }

// ShownAt is when the current face was resolved, zero if none.
func (m *Machine) ShownAt() time.Time { return m.shownAt }

// LastRoll is the identity of the last processed roll.
func (m *Machine) LastRoll() (RollID, bool) { return m.last, m.haveLast }

// BeginRoll starts the optimistic spin for a local roll. It refuses while a
// roll is already spinning.
func (m *Machine) BeginRoll(now time.Time) bool {
	if m.phase == Rolling {
		return false
	}
	m.preRollFace = m.face
	m.rollBase, m.haveBase = m.last, m.haveLast
	m.phase = Rolling
	m.rollStart = now
	m.resolveAt = time.Time{}
	m.spinAt = time.Time{}
	m.nextSpinFace(now)
	return true
}

// Abort unwinds a roll the server rejected or never answered. A roll whose
// result already arrived is left to resolve.
func (m *Machine) Abort() {
	if m.phase != Rolling || !m.resolveAt.IsZero() {
		return
	}
	m.face = m.preRollFace
	if m.shownAt.IsZero() || m.face == Placeholder {
		m.phase = Idle
	} else {
		m.phase = Resolved
	}
	m.rollStart = time.Time{}
}

// Observe reconciles the machine with a freshly applied snapshot.
func (m *Machine) Observe(s *protocol.Snapshot, now time.Time) {
	if s == nil {
		return
	}
	if !m.haveTurn {
		m.turn = s.CurrentPlayerIndex
		m.haveTurn = true
	}

	// the turn change comes first so the rolls of the new turn carry its
	// epoch from their first sighting on
	if s.CurrentPlayerIndex != m.turn {
		m.epoch++
		m.turn = s.CurrentPlayerIndex
		m.resetTo = s.CurrentPlayerIndex
		m.resetQueued = true
	}

	if id, ok := m.newestRoll(s); ok && !m.seen(id) && !m.predates(id) {
		m.last = id
		m.haveLast = true
		m.accept(id, now)
	}
	m.Tick(now)
}

// Settle resolves a local roll with the server's answer to it. The answer
// always carries that roll, so it is taken even when its identity matches
// one already processed, which happens when a whole round of turns went by
// between two polls.
func (m *Machine) Settle(s *protocol.Snapshot, now time.Time) {
	if s == nil || m.phase != Rolling {
		return
	}
	id, ok := m.newestRoll(s)
	if !ok || id.Value < 1 || id.Value > protocol.DiceSix {
		m.Abort()
		return
	}
	m.last = id
	m.haveLast = true
	m.accept(id, now)
}

// newestRoll picks the latest roll a snapshot shows: the tail of the current
// turn's rolls, or the server's display-only last roll once those are gone.
// The latter has no position in the turn, so its Count is zero, and when it
// belongs to someone other than the acting player it is from the turn before.
func (m *Machine) newestRoll(s *protocol.Snapshot) (RollID, bool) {
	lr := s.LastDiceRoll
	if n := len(s.DiceRolls); n > 0 {
		id := RollID{Epoch: m.epoch, Player: s.CurrentPlayerIndex, Count: n, Value: s.DiceRolls[n-1].Move}
		if lr != nil && lr.PlayerIndex == id.Player && lr.Move == id.Value {
			id.Ref = rollRef(lr)
		}
		return id, true
	}
	if lr == nil || lr.Move < 1 || lr.Move > protocol.DiceSix {
		return RollID{}, false
	}
	epoch := m.epoch
	if lr.PlayerIndex != m.turn {
		epoch--
	}
	return RollID{Epoch: epoch, Player: lr.PlayerIndex, Value: lr.Move, Ref: rollRef(lr)}, true
}

func rollRef(lr *protocol.LastDiceRoll) string {
	switch {
	case lr.RollID != "":
		return lr.RollID
	case lr.Timestamp != 0:
		return strconv.FormatInt(lr.Timestamp, 10)
	}
	return ""
}

// seen reports whether id was already processed.
func (m *Machine) seen(id RollID) bool {
	return m.haveLast && sameRoll(id, m.last)
}

// predates reports whether id is the roll that was already newest when the
// local spin began.
func (m *Machine) predates(id RollID) bool {
	return m.phase == Rolling && m.haveBase && sameRoll(id, m.rollBase)
}

// sameRoll compares two identities. Server refs decide when both sides have
// one; otherwise a last-roll identity matches the turn-roll it echoes
// regardless of count.
func sameRoll(a, b RollID) bool {
	if a.Ref != "" && b.Ref != "" {
		return a.Ref == b.Ref
	}
	if a.Count == 0 || b.Count == 0 {
		return a.Epoch == b.Epoch && a.Player == b.Player && a.Value == b.Value
	}
	return a.Epoch == b.Epoch && a.Player == b.Player && a.Count == b.Count && a.Value == b.Value
}

func (m *Machine) accept(id RollID, now time.Time) {
	if id.Value < 1 || id.Value > protocol.DiceSix {
		return
	}
	if m.resetQueued && id.Player == m.resetTo {
		// the new player already rolled; their face replaces the reset
		m.resetQueued = false
	}
	if m.phase == Rolling {
		m.pendingValue = id.Value
		m.pendingPlayer = id.Player
		m.resolveAt = m.rollStart.Add(MinRollDuration)
		if !now.Before(m.resolveAt) {
			m.resolve(now)
		}
		return
	}
	m.pendingValue = id.Value
	m.pendingPlayer = id.Player
	m.resolve(now)
}

func (m *Machine) resolve(now time.Time) {
	m.phase = Resolved
	m.face = m.pendingValue
	m.lastFaces[m.pendingPlayer] = m.pendingValue
	m.shownAt = now
	m.resolveAt = time.Time{}
	m.rollStart = time.Time{}
}

// Tick fires any deadline that has passed.
func (m *Machine) Tick(now time.Time) {
	if m.phase == Rolling && !m.resolveAt.IsZero() && !now.Before(m.resolveAt) {
		m.resolve(m.resolveAt)
	}
	if m.resetQueued && m.resetReady(now) {
		m.applyReset()
	}
}

// resetReady reports whether a queued turn reset may happen: a spinning roll
// must have lasted MinRollDuration (and resolves first if its value is in),
// and a shown face must have had MinDwellDuration.
func (m *Machine) resetReady(now time.Time) bool {
	if m.phase == Rolling {
		if !m.resolveAt.IsZero() {
			return false
		}
		if now.Before(m.rollStart.Add(MinRollDuration)) {
			return false
		}
		// the turn moved on without our roll ever showing up
		m.Abort()
	}
	if !m.shownAt.IsZero() && now.Before(m.shownAt.Add(MinDwellDuration)) {
		return false
	}
	return true
}

func (m *Machine) applyReset() {
	m.resetQueued = false
	m.face = m.lastFaces[m.resetTo]
	m.phase = Idle
	m.shownAt = time.Time{}
}

// ResetDue is when a queued turn reset becomes possible, if one is queued.
func (m *Machine) ResetDue() (time.Time, bool) {
	if !m.resetQueued {
		return time.Time{}, false
	}
	due := time.Time{}
	if m.phase == Rolling {
		due = m.rollStart.Add(MinRollDuration)
	}
	if !m.shownAt.IsZero() {
		if d := m.shownAt.Add(MinDwellDuration); d.After(due) {
			due = d
		}
	}
	return due, true
}

// Face is what to draw: a value 1..6, or Placeholder, and whether it is the
// spinning placeholder of an unresolved roll.
func (m *Machine) Face(now time.Time) (value int, spinning bool) {
	if m.phase == Rolling {
		if !now.Before(m.spinAt) {
			m.nextSpinFace(now)
		}
		return m.spinFace, true
	}
	return m.face, false
}

func (m *Machine) nextSpinFace(now time.Time) {
	f := m.rng.IntN(protocol.DiceSix) + 1
	if f == m.spinFace {
		f = f%protocol.DiceSix + 1
	}
	m.spinFace = f
	m.spinAt = now.Add(SpinInterval)
}

// Reset drops all state and cancels every deadline.
func (m *Machine) Reset() {
	*m = Machine{lastFaces: make(map[int]int), rng: m.rng}
}

// NextUsable is the earliest unused roll of the turn. It only tells the
// player which value the server will consume next.
func NextUsable(rolls []protocol.DiceRoll) (int, bool) {
	for _, r := range rolls {
		if !r.IsUsed {
			return r.Move, true
		}
	}
	return 0, false
}
