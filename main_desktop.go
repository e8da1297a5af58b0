//go:build !android

package main

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"ludo/client/internal/game"
	"ludo/client/internal/logging"
	"ludo/client/internal/netcfg"
)

func main() {
	cfg := netcfg.Load()
	logger := logging.New(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	logger.Info("desktop main() starting", zap.String("api", cfg.APIBase), zap.Duration("poll", cfg.PollInterval))
	game.ConfigureWindow()
	if err := ebiten.RunGame(game.New(cfg, logger)); err != nil {
		log.Fatal(err)
	}
}
