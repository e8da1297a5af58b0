package game

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"ludo/client/internal/game/dice"
	"ludo/client/internal/protocol"
)

var (
	hudText  = color.NRGBA{220, 224, 235, 255}
	hudMuted = color.NRGBA{150, 156, 176, 255}
	hudGold  = color.NRGBA{240, 196, 25, 255}
)

func (g *Game) drawTopBar(dst *ebiten.Image) {
	vector.DrawFilledRect(dst, 0, 0, screenW, topBarH, color.NRGBA{20, 23, 32, 255}, false)
	id := g.view.GameID()
	text.Draw(dst, "Game: "+shorten(id, 40), basicfont.Face7x13, pad, 25, hudText)
	drawButton(dst, g.copyBtn, "Copy ID", id != "", hovered(g.copyBtn))
	drawButton(dst, g.leaveBtn, "Leave", true, hovered(g.leaveBtn))
}

func (g *Game) drawPanel(dst *ebiten.Image, now time.Time) {
	face := basicfont.Face7x13
	snap, ok := g.view.Snapshot()

	text.Draw(dst, "Players", face, panelX, playersY+10, hudGold)
	me := g.view.Session.Name()
	for i := 0; i < protocol.MaxPlayers; i++ {
		y := playersY + 20 + i*(rowH+4)
		if !ok || i >= len(snap.Players) {
			text.Draw(dst, "- open seat -", face, panelX+22, y+14, hudMuted)
			continue
		}
		p := snap.Players[i]
		vector.DrawFilledRect(dst, float32(panelX), float32(y+3), 14, 14, playerColor(i, p.Color), false)
		line := p.Name
		if p.Name == me {
			line += " (you)"
		}
		if snap.IsWinner(p.Name) {
			line += "  winner"
		}
		clr := hudText
		if snap.Started && !snap.End && i == snap.CurrentPlayerIndex {
			text.Draw(dst, ">", face, panelX-10, y+14, hudGold)
			clr = hudGold
		}
		text.Draw(dst, line, face, panelX+22, y+14, clr)
	}

	face2, spinning := g.view.Dice.Face(now)
	drawDie(dst, panelX, dieY, dieSize, face2, spinning)
	if ok && snap.Started && !snap.End {
		drawButton(dst, g.rollBtn, "Roll", g.view.CanRoll(), hovered(g.rollBtn))
	}

	if ok && len(snap.DiceRolls) > 0 {
		text.Draw(dst, "This turn", face, panelX, stripY, hudMuted)
		next, hasNext := dice.NextUsable(snap.DiceRolls)
		marked := false
		for i, r := range snap.DiceRolls {
			isNext := hasNext && !marked && !r.IsUsed && r.Move == next
			if isNext {
				marked = true
			}
			drawMiniDie(dst, rect{panelX + i*34, stripY + 8, 28, 28}, r.Move, r.IsUsed, isNext)
		}
	}

	if ok && !snap.Started {
		label := fmt.Sprintf("Start game (%d/%d)", len(snap.Players), protocol.MaxPlayers)
		drawButton(dst, g.startBtn, label, canStart(snap) && !g.view.Session.Busy(), hovered(g.startBtn))
	}
}

func (g *Game) drawStatus(dst *ebiten.Image, now time.Time) {
	y := float32(boardY + boardW)
	vector.DrawFilledRect(dst, 0, y, screenW, statusH, color.NRGBA{20, 23, 32, 255}, false)
	text.Draw(dst, g.view.Status(now), basicfont.Face7x13, pad, int(y)+statusH/2+5, hudText)
}

func (g *Game) drawToast(dst *ebiten.Image, now time.Time) {
	msg, ok := g.view.Toast(now)
	if !ok {
		return
	}
	w := text.BoundString(basicfont.Face7x13, msg).Dx() + 2*12
	x := boardX + (boardW-w)/2
	y := boardY + boardW - 48
	vector.DrawFilledRect(dst, float32(x), float32(y), float32(w), 28, color.NRGBA{20, 20, 28, 220}, false)
	drawTextCentered(dst, msg, boardX+boardW/2, y+19, color.White)
}

func (g *Game) drawBanner(dst *ebiten.Image, now time.Time) {
	b, ok := g.view.Banner(now)
	if !ok {
		return
	}
	h := 56
	if b.GameOver {
		h = 90
	}
	y := boardY + (boardW-h)/2
	vector.DrawFilledRect(dst, boardX, float32(y), boardW, float32(h), color.NRGBA{10, 12, 20, 210}, false)
	drawTextCentered(dst, b.Text, boardX+boardW/2, y+h/2+5, hudGold)
	if b.GameOver {
		drawTextCentered(dst, "Press Leave to return to the lobby", boardX+boardW/2, y+h-14, hudMuted)
	}
}
