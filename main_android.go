//go:build android

package main

import (
	"github.com/hajimehoshi/ebiten/v2/mobile"

	"ludo/client/internal/game"
	"ludo/client/internal/logging"
	"ludo/client/internal/netcfg"
)

func init() {
	cfg := netcfg.Load()
	mobile.SetGame(game.New(cfg, logging.New(cfg.Debug)))
}

func main() {}
