// Package board maps logical piece positions to pixels on a fixed 15x15
// Ludo board and resolves pieces that share a cell. Nothing here holds
// state or does I/O.
package board

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"ludo/client/internal/protocol"
)

const (
	BoardPx  = 600.0
	GridDim  = 15
	CellSize = BoardPx / GridDim
)

// Point is a pixel position on the board, origin top-left.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) Scale(f float64) Point { return Point{p.X * f, p.Y * f} }

func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// PieceKey identifies one piece for the lifetime of a game view.
type PieceKey struct {
	Owner, Slot int
}

// String is stable and doubles as the piece's visual id.
func (k PieceKey) String() string { return fmt.Sprintf("%d-%d", k.Owner, k.Slot) }

type cell struct{ r, c int }

// trackCells is the 52-cell loop, clockwise from owner 0's entry cell.
// Each arm contributes 13 cells.
var trackCells = [protocol.TrackLength]cell{
	{6, 1}, {6, 2}, {6, 3}, {6, 4}, {6, 5},
	{5, 6}, {4, 6}, {3, 6}, {2, 6}, {1, 6}, {0, 6},
	{0, 7}, {0, 8},
	{1, 8}, {2, 8}, {3, 8}, {4, 8}, {5, 8},
	{6, 9}, {6, 10}, {6, 11}, {6, 12}, {6, 13}, {6, 14},
	{7, 14}, {8, 14},
	{8, 13}, {8, 12}, {8, 11}, {8, 10}, {8, 9},
	{9, 8}, {10, 8}, {11, 8}, {12, 8}, {13, 8}, {14, 8},
	{14, 7}, {14, 6},
	{13, 6}, {12, 6}, {11, 6}, {10, 6}, {9, 6},
	{8, 5}, {8, 4}, {8, 3}, {8, 2}, {8, 1}, {8, 0},
	{7, 0}, {6, 0},
}

// StartOffsets is each owner's entry cell on the loop.
var StartOffsets = [protocol.MaxPlayers]int{0, 13, 26, 39}

// safeCells must match the server: every entry cell plus the cell eight
// steps past it.
var safeCells = map[int]bool{
	0: true, 8: true, 13: true, 21: true, 26: true, 34: true, 39: true, 47: true,
}

// stretchCells are the five coloured home-lane cells per owner, outermost first.
var stretchCells = [protocol.MaxPlayers][protocol.StretchLength]cell{
	{{7, 1}, {7, 2}, {7, 3}, {7, 4}, {7, 5}},
	{{1, 7}, {2, 7}, {3, 7}, {4, 7}, {5, 7}},
	{{7, 13}, {7, 12}, {7, 11}, {7, 10}, {7, 9}},
	{{13, 7}, {12, 7}, {11, 7}, {10, 7}, {9, 7}},
}

// yardSlots are in cell units, measured from the board's top-left corner.
var yardSlots = [protocol.MaxPlayers][protocol.TokensPerPlayer]Point{
	{{2, 2}, {4, 2}, {2, 4}, {4, 4}},
	{{11, 2}, {13, 2}, {11, 4}, {13, 4}},
	{{11, 11}, {13, 11}, {11, 13}, {13, 13}},
	{{2, 11}, {4, 11}, {2, 13}, {4, 13}},
}

// finishSpots sit inside each owner's home triangle, in cell units.
var finishSpots = [protocol.MaxPlayers]Point{
	{6.65, 7.5}, {7.5, 6.65}, {8.35, 7.5}, {7.5, 8.35},
}

var logger = zap.NewNop()

// SetLogger installs the logger used for malformed-position diagnostics.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l.Named("board")
}

func cellCenter(c cell) Point {
	return Point{float64(c.c)*CellSize + CellSize/2, float64(c.r)*CellSize + CellSize/2}
}

func cellUnits(p Point) Point { return p.Scale(CellSize) }

// Center of the board; the fallback for anything that cannot be placed.
func Center() Point { return Point{BoardPx / 2, BoardPx / 2} }

// InBounds reports whether p lies on the board.
func InBounds(p Point) bool {
	return p.X >= 0 && p.X <= BoardPx && p.Y >= 0 && p.Y <= BoardPx
}

func validOwner(owner int) bool { return owner >= 0 && owner < protocol.MaxPlayers }

func validSlot(slot int) bool { return slot >= 0 && slot < protocol.TokensPerPlayer }

// GlobalIndex converts an owner-relative track position to a loop index.
// ok is false for positions that are not on the shared track.
func GlobalIndex(owner, pos int) (int, bool) {
	if !validOwner(owner) || pos < 0 || pos > protocol.LastTrackPos {
		return 0, false
	}
	return (StartOffsets[owner] + pos) % protocol.TrackLength, true
}

// TrackCell returns the pixel centre of a loop cell, wrapping the index.
func TrackCell(global int) Point {
	g := ((global % protocol.TrackLength) + protocol.TrackLength) % protocol.TrackLength
	return cellCenter(trackCells[g])
}

// StretchCell returns the pixel centre of an owner's home-lane cell.
func StretchCell(owner, i int) (Point, bool) {
	if !validOwner(owner) || i < 0 || i >= protocol.StretchLength {
		return Center(), false
	}
	return cellCenter(stretchCells[owner][i]), true
}

// YardSlot returns the fixed yard point of a piece.
func YardSlot(owner, slot int) (Point, bool) {
	if !validOwner(owner) || !validSlot(slot) {
		return Center(), false
	}
	return cellUnits(yardSlots[owner][slot]), true
}

// FinishSpot is where an owner's finished pieces gather.
func FinishSpot(owner int) (Point, bool) {
	if !validOwner(owner) {
		return Center(), false
	}
	return cellUnits(finishSpots[owner]), true
}

// Resolve maps a logical position to pixels. ok is false when the input was
// out of range and the board centre was substituted.
func Resolve(owner, slot, pos int) (Point, bool) {
	if !validOwner(owner) || !validSlot(slot) {
		return Center(), false
	}
	switch {
	case pos == protocol.YardPosition:
		return YardSlot(owner, slot)
	case pos >= protocol.StretchStart && pos <= protocol.TerminalPosition:
		return StretchCell(owner, pos-protocol.StretchStart)
	case pos >= 0 && pos <= protocol.LastTrackPos:
		g, _ := GlobalIndex(owner, pos)
		return TrackCell(g), true
	}
	return Center(), false
}

// ResolvePixel is Resolve without the flag. Bad input lands on the board
// centre and is logged; it never panics.
func ResolvePixel(owner, slot, pos int) Point {
	p, ok := Resolve(owner, slot, pos)
	if !ok {
		logger.Warn("unplaceable piece position",
			zap.Int("owner", owner),
			zap.Int("slot", slot),
			zap.Int("position", pos))
	}
	return p
}

// ResolvePiece places a piece as the server reports it. Finished pieces at the
// terminal position are drawn in the owner's home triangle.
func ResolvePiece(owner, slot int, t protocol.Token) Point {
	if t.Finished && t.Position == protocol.TerminalPosition {
		if p, ok := FinishSpot(owner); ok {
			return p
		}
	}
	return ResolvePixel(owner, slot, t.Position)
}

// IsSafeCell reports whether a piece at pos cannot be captured. Yard and home
// stretch are always safe.
func IsSafeCell(owner, pos int) bool {
	if pos == protocol.YardPosition || (pos >= protocol.StretchStart && pos <= protocol.TerminalPosition) {
		return true
	}
	g, ok := GlobalIndex(owner, pos)
	return ok && safeCells[g]
}

// IsSafeGlobal reports whether a loop cell carries the safe marker.
func IsSafeGlobal(global int) bool {
	return safeCells[((global%protocol.TrackLength)+protocol.TrackLength)%protocol.TrackLength]
}
