package game

import (
	"image/color"
	"strconv"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ludo/client/internal/game/dice"
)

// pips per face on a 3x3 grid, (col,row) from the top-left.
var pips = [7][][2]int{
	1: {{1, 1}},
	2: {{0, 0}, {2, 2}},
	3: {{0, 0}, {1, 1}, {2, 2}},
	4: {{0, 0}, {2, 0}, {0, 2}, {2, 2}},
	5: {{0, 0}, {2, 0}, {1, 1}, {0, 2}, {2, 2}},
	6: {{0, 0}, {2, 0}, {0, 1}, {2, 1}, {0, 2}, {2, 2}},
}

func drawDie(dst *ebiten.Image, x, y, size int, value int, spinning bool) {
	fx, fy, fs := float32(x), float32(y), float32(size)
	body := color.NRGBA{250, 250, 250, 255}
	edge := color.NRGBA{40, 40, 40, 255}
	if spinning {
		body = color.NRGBA{235, 235, 245, 255}
		edge = color.NRGBA{240, 196, 25, 255}
	}
	vector.DrawFilledRect(dst, fx+3, fy+4, fs, fs, color.NRGBA{0, 0, 0, 80}, false)
	vector.DrawFilledRect(dst, fx, fy, fs, fs, body, false)
	vector.StrokeRect(dst, fx, fy, fs, fs, 2, edge, false)

	if value == dice.Placeholder || value < 1 || value >= len(pips) {
		drawTextCentered(dst, "?", x+size/2, y+size/2+5, color.NRGBA{90, 90, 90, 255})
		return
	}
	step := fs / 4
	r := fs / 11
	for _, p := range pips[value] {
		cx := fx + step*float32(p[0]+1)
		cy := fy + step*float32(p[1]+1)
		vector.DrawFilledCircle(dst, cx, cy, r, color.NRGBA{30, 30, 30, 255}, true)
	}
}

// drawMiniDie is the small face used in the per-turn dice strip.
func drawMiniDie(dst *ebiten.Image, r rect, value int, used, next bool) {
	fill := color.NRGBA{245, 245, 245, 255}
	switch {
	case used:
		fill = color.NRGBA{120, 120, 120, 255}
	case next:
		fill = color.NRGBA{255, 226, 120, 255}
	}
	vector.DrawFilledRect(dst, float32(r.x), float32(r.y), float32(r.w), float32(r.h), fill, false)
	vector.StrokeRect(dst, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, color.NRGBA{40, 40, 40, 255}, false)
	drawTextCentered(dst, strconv.Itoa(value), r.x+r.w/2, r.y+r.h/2+5, color.Black)
}
