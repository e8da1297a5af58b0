package game

import "time"

// ---- Screens / layout constants ----

type screen int

const (
	screenLobby screen = iota
	screenJoining
	screenTable
)

const (
	topBarH = 40
	statusH = 36

	boardX = 0
	boardY = topBarH
	boardW = 600

	panelX = boardW + 16
	panelW = 268

	screenW = panelX + panelW + 16
	screenH = topBarH + boardW + statusH

	pad  = 8
	btnW = 120
	btnH = 32
	rowH = 20

	dieSize = 72

	caretBlink = 500 * time.Millisecond
)

// ---- Small utility types ----

type rect struct{ x, y, w, h int }

func (r rect) hit(mx, my int) bool {
	return r.w > 0 && mx >= r.x && mx <= r.x+r.w && my >= r.y && my <= r.y+r.h
}
