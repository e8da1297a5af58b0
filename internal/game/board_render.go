package game

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"

	"ludo/client/internal/game/board"
	"ludo/client/internal/game/view"
	"ludo/client/internal/protocol"
)

var (
	boardBG    = color.NRGBA{246, 242, 232, 255}
	cellLine   = color.NRGBA{150, 146, 136, 255}
	safeMarker = color.NRGBA{90, 90, 90, 200}
)

// yardOrigins are the yard corners in cells.
var yardOrigins = [protocol.MaxPlayers]board.Point{{X: 0, Y: 0}, {X: 9, Y: 0}, {X: 9, Y: 9}, {X: 0, Y: 9}}

// renderBoard draws everything that never changes. The result is cached.
func renderBoard() *ebiten.Image {
	img := ebiten.NewImage(int(board.BoardPx), int(board.BoardPx))
	img.Fill(boardBG)
	cs := float32(board.CellSize)

	for owner, o := range yardOrigins {
		x, y := float32(o.X)*cs, float32(o.Y)*cs
		vector.DrawFilledRect(img, x, y, 6*cs, 6*cs, ownerColor(owner), false)
		vector.DrawFilledRect(img, x+cs, y+cs, 4*cs, 4*cs, boardBG, false)
		for slot := 0; slot < protocol.TokensPerPlayer; slot++ {
			p, _ := board.YardSlot(owner, slot)
			vector.StrokeCircle(img, float32(p.X), float32(p.Y), float32(view.PieceRadius)+3, 2, fade(ownerColor(owner), 160), true)
		}
	}

	for g := 0; g < protocol.TrackLength; g++ {
		fill := color.NRGBA{255, 255, 255, 255}
		for owner, start := range board.StartOffsets {
			if g == start {
				fill = fade(ownerColor(owner), 200)
			}
		}
		drawCell(img, board.TrackCell(g), fill)
		if board.IsSafeGlobal(g) {
			c := board.TrackCell(g)
			vector.StrokeCircle(img, float32(c.X), float32(c.Y), cs*0.38, 1.5, safeMarker, true)
		}
	}

	for owner := 0; owner < protocol.MaxPlayers; owner++ {
		for i := 0; i < protocol.StretchLength; i++ {
			c, _ := board.StretchCell(owner, i)
			drawCell(img, c, fade(ownerColor(owner), 170))
		}
	}

	// home triangles meet in the centre
	mid := board.Center()
	lo, hi := 6*board.CellSize, 9*board.CellSize
	corners := [protocol.MaxPlayers][2]board.Point{
		{{X: lo, Y: lo}, {X: lo, Y: hi}},
		{{X: lo, Y: lo}, {X: hi, Y: lo}},
		{{X: hi, Y: lo}, {X: hi, Y: hi}},
		{{X: lo, Y: hi}, {X: hi, Y: hi}},
	}
	for owner, c := range corners {
		fillTriangle(img, c[0], c[1], mid, ownerColor(owner))
	}
	return img
}

func drawCell(dst *ebiten.Image, center board.Point, fill color.NRGBA) {
	half := board.CellSize / 2
	x, y := float32(center.X-half), float32(center.Y-half)
	cs := float32(board.CellSize)
	vector.DrawFilledRect(dst, x, y, cs, cs, fill, false)
	vector.StrokeRect(dst, x, y, cs, cs, 1, cellLine, false)
}

func (g *Game) drawBoard(dst *ebiten.Image) {
	if g.boardImg == nil {
		g.boardImg = renderBoard()
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(boardX, boardY)
	dst.DrawImage(g.boardImg, op)
}

func (g *Game) drawPieces(dst *ebiten.Image) {
	pending, awaiting := g.view.AwaitingMove()
	for _, p := range g.view.Pieces() {
		g.drawPiece(dst, p, awaiting && p.Key == pending)
	}
}

// drawPiece draws one piece. A bad piece is logged and skipped so it cannot
// take the frame down with it.
func (g *Game) drawPiece(dst *ebiten.Image, p view.Piece, pending bool) {
	defer func() {
		if r := recover(); r != nil {
			g.log.Error("piece draw failed", zap.Stringer("piece", p.Key), zap.Any("panic", r))
		}
	}()

	x := float32(p.At.X) + boardX
	y := float32(p.At.Y) + boardY
	r := float32(view.PieceRadius)

	if p.Hint {
		vector.StrokeCircle(dst, x, y, r+5, 2.5, color.NRGBA{255, 255, 255, 230}, true)
	}
	vector.DrawFilledCircle(dst, x, y+2, r, color.NRGBA{0, 0, 0, 70}, true)
	vector.DrawFilledCircle(dst, x, y, r, ownerColor(p.Key.Owner), true)
	vector.StrokeCircle(dst, x, y, r, 2, color.NRGBA{30, 30, 30, 255}, true)
	vector.DrawFilledCircle(dst, x, y, r*0.4, color.NRGBA{255, 255, 255, 120}, true)
	if pending || p.Moving {
		vector.StrokeCircle(dst, x, y, r+2, 1.5, color.NRGBA{255, 240, 140, 255}, true)
	}
}
