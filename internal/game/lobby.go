package game

import (
	"image/color"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"ludo/client/internal/protocol"
)

const (
	cardW = 380
	cardH = 330
	cardX = (screenW - cardW) / 2
	cardY = 120

	maxNameRunes = 20
)

func (g *Game) layoutLobby() {
	fieldW := cardW - 2*24
	g.nameBox = newTextBox("Your name", rect{cardX + 24, cardY + 80, fieldW, 30}, maxNameRunes)
	g.gameBox = newTextBox("Game ID (to join)", rect{cardX + 24, cardY + 150, fieldW, 30}, 64)
	g.createBtn = rect{cardX + 24, cardY + 204, btnW + 30, btnH}
	g.joinBtn = rect{cardX + cardW - 24 - btnW - 30, cardY + 204, btnW + 30, btnH}
	g.resumeBtn = rect{cardX + 24, cardY + 252, fieldW, btnH}
}

func (g *Game) updateLobby(now time.Time) {
	g.nameBox.update(now)
	g.gameBox.update(now)

	enter := inpututil.IsKeyJustPressed(ebiten.KeyEnter)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		mx, my := ebiten.CursorPosition()
		switch {
		case g.createBtn.hit(mx, my):
			g.begin(false)
		case g.joinBtn.hit(mx, my):
			g.begin(true)
		case g.lastGame != "" && g.resumeBtn.hit(mx, my):
			g.resume()
		}
	case enter && g.gameBox.focused:
		g.begin(true)
	case enter && g.nameBox.focused:
		g.begin(strings.TrimSpace(g.gameBox.Value) != "")
	}
}

// begin creates a game, or joins the one typed in.
func (g *Game) begin(join bool) {
	name := strings.TrimSpace(g.nameBox.Value)
	if name == "" {
		g.lobbyMsg = "Enter a name first"
		return
	}
	gameID := strings.TrimSpace(g.gameBox.Value)
	if join && gameID == "" {
		g.lobbyMsg = "Enter the game ID to join"
		return
	}
	if err := g.prof.SaveName(name); err != nil {
		g.log.Warn("save player name", zap.Error(err))
	}

	v := g.openView()
	var err error
	if join {
		err = v.Join(gameID, name)
	} else {
		err = v.Create(name)
	}
	if err != nil {
		v.Close()
		g.lobbyMsg = err.Error()
		return
	}
	g.view = v
	g.lobbyMsg = ""
	g.scr = screenJoining
}

func (g *Game) resume() {
	name := strings.TrimSpace(g.nameBox.Value)
	if name == "" {
		g.lobbyMsg = "Enter the name you joined with"
		return
	}
	g.view = g.openView()
	g.view.Resume(g.lastGame, name)
	g.enterTable()
}

func (g *Game) updateJoining(now time.Time) {
	g.view.Update(now)
	switch {
	case g.view.Joined():
		g.enterTable()
	case g.view.JoinError() != "":
		g.lobbyMsg = g.view.JoinError()
		g.leave()
	}
}

func (g *Game) drawLobby(dst *ebiten.Image, now time.Time) {
	face := basicfont.Face7x13
	vector.DrawFilledRect(dst, cardX, cardY, cardW, cardH, color.NRGBA{38, 44, 62, 255}, false)
	vector.StrokeRect(dst, cardX, cardY, cardW, cardH, 1, color.NRGBA{90, 100, 130, 255}, false)
	text.Draw(dst, protocol.GameName, face, cardX+24, cardY+32, color.NRGBA{240, 196, 25, 255})
	text.Draw(dst, "Create a game, or join one with its ID.", face, cardX+24, cardY+50, color.NRGBA{200, 205, 220, 255})

	g.nameBox.draw(dst, "e.g. Ann")
	g.gameBox.draw(dst, "paste a game ID")

	joining := g.scr == screenJoining
	drawButton(dst, g.createBtn, "Create game", !joining, hovered(g.createBtn))
	drawButton(dst, g.joinBtn, "Join game", !joining, hovered(g.joinBtn))
	if g.lastGame != "" {
		drawButton(dst, g.resumeBtn, "Back to "+shorten(g.lastGame, 28), !joining, hovered(g.resumeBtn))
	}

	msgY := cardY + cardH + 24
	switch {
	case joining:
		drawTextCentered(dst, "Contacting server...", screenW/2, msgY, color.White)
	case g.lobbyMsg != "":
		drawTextCentered(dst, g.lobbyMsg, screenW/2, msgY, color.NRGBA{255, 140, 140, 255})
	}
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
