package game

import (
	"ludo/client/internal/protocol"

	"github.com/hajimehoshi/ebiten/v2"
)

// ConfigureWindow sets up the desktop window. The logical size is fixed and
// ebiten scales it to whatever the window is resized to.
func ConfigureWindow() {
	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle(protocol.GameName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSizeLimits(screenW/2, screenH/2, -1, -1)
}
