// Package mobile is the ebitenmobile bind target for the Android build.
package mobile

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

// Dummy forces gomobile to export the package.
func Dummy() {}
