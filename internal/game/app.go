// Package game is the Ludo client's ebiten front end: the lobby, the table
// and the input that turns clicks into intents.
package game

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"ludo/client/internal/game/api"
	"ludo/client/internal/game/board"
	"ludo/client/internal/game/profile"
	"ludo/client/internal/game/view"
	"ludo/client/internal/netcfg"
)

type Game struct {
	cfg  netcfg.Config
	log  *zap.Logger
	api  *api.Client
	prof profile.Profile

	scr  screen
	view *view.Model

	// lobby
	nameBox   *textBox
	gameBox   *textBox
	createBtn rect
	joinBtn   rect
	resumeBtn rect
	lastGame  string
	lobbyMsg  string

	// table
	rollBtn  rect
	startBtn rect
	copyBtn  rect
	leaveBtn rect
	boardImg *ebiten.Image
}

// New creates the game. The logger is shared with every layer below.
func New(cfg netcfg.Config, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	board.SetLogger(log)
	g := &Game{
		cfg:  cfg,
		log:  log,
		api:  api.New(cfg.APIBase, cfg.RequestTimeout, log),
		prof: profile.Open(cfg.Profile),
		scr:  screenLobby,
	}
	g.layoutLobby()
	g.layoutTable()

	name, err := g.prof.Name()
	if err != nil {
		log.Warn("load player name", zap.Error(err))
	}
	g.nameBox.Value = name
	if g.lastGame, err = g.prof.LastGame(); err != nil {
		log.Warn("load last game", zap.Error(err))
	}
	log.Info("client ready", zap.String("api", cfg.APIBase), zap.String("profile", g.prof.ID()))
	return g
}

func (g *Game) Update() error {
	now := time.Now()
	switch g.scr {
	case screenLobby:
		g.updateLobby(now)
	case screenJoining:
		g.updateJoining(now)
	case screenTable:
		g.updateTable(now)
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	now := time.Now()
	screen.Fill(color.NRGBA{28, 32, 44, 255})
	switch g.scr {
	case screenLobby, screenJoining:
		g.drawLobby(screen, now)
	case screenTable:
		g.drawTable(screen, now)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenW, screenH
}

func (g *Game) openView() *view.Model {
	return view.New(g.api, view.Options{
		PollInterval: g.cfg.PollInterval,
		AnimDuration: g.cfg.AnimDuration,
		Logger:       g.log,
	})
}

func (g *Game) enterTable() {
	id := g.view.GameID()
	if err := g.prof.SaveLastGame(id); err != nil {
		g.log.Warn("save last game", zap.Error(err))
	}
	g.lastGame = id
	g.lobbyMsg = ""
	g.scr = screenTable
	g.log.Info("joined game", zap.String("game", id), zap.String("player", g.view.Session.Name()))
}

// forgetGame leaves a game the server has dropped and stops offering it.
func (g *Game) forgetGame() {
	g.log.Info("game gone", zap.String("game", g.lastGame))
	if err := g.prof.ForgetLastGame(); err != nil {
		g.log.Warn("forget last game", zap.Error(err))
	}
	g.lastGame = ""
	g.leave()
	g.lobbyMsg = "That game no longer exists"
}

// leave tears the table down; the game itself goes on without us.
func (g *Game) leave() {
	if g.view != nil {
		g.view.Close()
		g.view = nil
	}
	g.scr = screenLobby
}
