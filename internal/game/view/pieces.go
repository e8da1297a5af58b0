package view

import (
	"slices"

	"ludo/client/internal/game/anim"
	"ludo/client/internal/game/board"
	"ludo/client/internal/game/dice"
)

// PieceRadius is the drawn radius of a piece in board pixels.
const PieceRadius = board.CellSize * 0.32

// Piece is one piece ready to draw, in board pixels.
type Piece struct {
	Key    board.PieceKey
	At     board.Point
	Moving bool
	Hint   bool
	Mine   bool
}

// Pieces lists every piece in draw order with stacked pieces spread apart.
// Stacks come from the snapshot's resolved cells, so a piece keeps its place
// in a stack while a partner walks away, and a moving piece already takes
// its slot at the destination.
func (m *Model) Pieces() []Piece {
	keys := m.Anim.Keys()
	slices.SortFunc(keys, func(a, b board.PieceKey) int {
		if a.Owner != b.Owner {
			return a.Owner - b.Owner
		}
		return a.Slot - b.Slot
	})

	tracks := make([]anim.Track, 0, len(keys))
	targets := make([]board.Placed, 0, len(keys))
	for _, k := range keys {
		tr, _ := m.Anim.Track(k)
		tracks = append(tracks, tr)
		targets = append(targets, board.Placed{Key: k, At: tr.Target})
	}
	stacks := board.ResolveStacks(targets)
	hints := m.Hints()
	me := m.Session.MyIndex()

	out := make([]Piece, 0, len(tracks))
	for _, tr := range tracks {
		out = append(out, Piece{
			Key:    tr.Key,
			At:     tr.Displayed.Add(board.StackOffset(stacks[tr.Key], PieceRadius)),
			Moving: tr.Phase == anim.Animating,
			Hint:   hints[tr.Key],
			Mine:   tr.Key.Owner == me,
		})
	}
	return out
}

// Hints marks our pieces that could use the next unused roll. It is only a
// hint: clicking any of our pieces still sends the move.
func (m *Model) Hints() map[board.PieceKey]bool {
	if !m.haveSnap || !m.Session.IsMyTurn() || MustRollAgain(m.snap) {
		return nil
	}
	roll, ok := dice.NextUsable(m.snap.DiceRolls)
	if !ok {
		return nil
	}
	me := m.Session.MyIndex()
	toks, _ := m.snap.TokensFor(me)
	out := make(map[board.PieceKey]bool)
	for _, slot := range board.Movable(toks, roll) {
		out[board.PieceKey{Owner: me, Slot: slot}] = true
	}
	return out
}

// PieceAt finds our piece under a board pixel, top-most first.
func (m *Model) PieceAt(p board.Point) (board.PieceKey, bool) {
	pieces := m.Pieces()
	for i := len(pieces) - 1; i >= 0; i-- {
		pc := pieces[i]
		if pc.Mine && pc.At.Dist(p) <= PieceRadius+2 {
			return pc.Key, true
		}
	}
	return board.PieceKey{}, false
}
