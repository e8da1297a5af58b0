package game

import (
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"ludo/client/internal/game/board"
	"ludo/client/internal/game/session"
	"ludo/client/internal/game/view"
	"ludo/client/internal/protocol"
)

const (
	playersY = topBarH + 12
	dieY     = topBarH + 150
	stripY   = dieY + dieSize + 34
	startY   = stripY + 60
)

func (g *Game) layoutTable() {
	g.copyBtn = rect{360, 6, 90, 28}
	g.leaveBtn = rect{screenW - 100, 6, 90, 28}
	g.rollBtn = rect{panelX + dieSize + 20, dieY + (dieSize-btnH)/2, btnW, btnH}
	g.startBtn = rect{panelX, startY, panelW, btnH}
}

func canStart(s protocol.Snapshot) bool {
	n := len(s.Players)
	return !s.Started && n >= protocol.MinPlayers && n <= protocol.MaxPlayers
}

func (g *Game) updateTable(now time.Time) {
	v := g.view
	v.Update(now)
	if v.Gone() {
		g.forgetGame()
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && v.CanRoll() {
		g.roll(now)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copyGameID(now)
	}
	if !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}

	mx, my := ebiten.CursorPosition()
	snap, _ := v.Snapshot()
	switch {
	case g.leaveBtn.hit(mx, my):
		g.leave()
	case g.copyBtn.hit(mx, my):
		g.copyGameID(now)
	case g.rollBtn.hit(mx, my) && v.CanRoll():
		g.roll(now)
	case g.startBtn.hit(mx, my) && canStart(snap):
		g.report(v.Start(), now)
	case mx >= boardX && mx < boardX+boardW && my >= boardY && my < boardY+boardW:
		at := board.Point{X: float64(mx - boardX), Y: float64(my - boardY)}
		if key, ok := v.PieceAt(at); ok {
			g.report(v.Move(key.Slot), now)
		}
	}
}

func (g *Game) roll(now time.Time) {
	g.report(g.view.Roll(now), now)
}

// report shows a locally refused intent. Server answers arrive through the
// view and are reported there.
func (g *Game) report(err error, now time.Time) {
	switch {
	case err == nil:
	case errors.Is(err, session.ErrBusy), errors.Is(err, view.ErrRolling):
		// a click during a request; ignore
	default:
		g.view.Notify(err.Error(), now)
	}
}

func (g *Game) copyGameID(now time.Time) {
	id := g.view.GameID()
	if id == "" {
		return
	}
	if err := clipboard.WriteAll(id); err != nil {
		g.log.Warn("clipboard", zap.Error(err))
		g.view.Notify("Could not copy the game ID", now)
		return
	}
	g.view.Notify("Game ID copied", now)
}

func (g *Game) drawTable(dst *ebiten.Image, now time.Time) {
	g.drawBoard(dst)
	g.drawPieces(dst)
	g.drawTopBar(dst)
	g.drawPanel(dst, now)
	g.drawStatus(dst, now)
	g.drawToast(dst, now)
	g.drawBanner(dst, now)
}
