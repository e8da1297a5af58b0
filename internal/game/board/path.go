package board

import "ludo/client/internal/protocol"

// Waypoints returns the pixel path a piece travels from one logical position
// to another, both endpoints included. Forward moves along the track or into
// the home stretch visit every intermediate cell; leaving or returning to the
// yard (and any backward jump) is a straight segment between the two points.
func Waypoints(owner, slot, from, to int) []Point {
	start := ResolvePixel(owner, slot, from)
	end := ResolvePixel(owner, slot, to)
	if from == to {
		return []Point{end}
	}
	if !onPath(from) || !onPath(to) || to < from {
		return []Point{start, end}
	}
	pts := make([]Point, 0, to-from+1)
	pts = append(pts, start)
	for pos := from + 1; pos <= to; pos++ {
		pts = append(pts, ResolvePixel(owner, slot, pos))
	}
	return pts
}

func onPath(pos int) bool { return pos >= 0 && pos <= protocol.TerminalPosition }

// Project returns where a piece at pos would land with the given roll, and
// whether that move is worth offering. It is a hint only; the server decides.
func Project(pos, roll int) (int, bool) {
	if roll < 1 || roll > protocol.DiceSix {
		return pos, false
	}
	if pos == protocol.YardPosition {
		if roll == protocol.DiceSix {
			return 0, true
		}
		return pos, false
	}
	if !onPath(pos) {
		return pos, false
	}
	next := pos + roll
	if next > protocol.TerminalPosition {
		return pos, false
	}
	return next, true
}

// Movable lists the slots of tokens that Project accepts for roll. Finished
// pieces are never offered.
func Movable(tokens []protocol.Token, roll int) []int {
	var out []int
	for slot, t := range tokens {
		if t.Finished {
			continue
		}
		if _, ok := Project(t.Position, roll); ok {
			out = append(out, slot)
		}
	}
	return out
}
