package game

import (
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"ludo/client/internal/game/board"
)

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// ownerColors follow the yards: top-left, top-right, bottom-right, bottom-left.
var ownerColors = [...]color.NRGBA{
	{214, 56, 56, 255},
	{46, 158, 82, 255},
	{232, 190, 40, 255},
	{52, 104, 210, 255},
}

var namedColors = map[string]color.NRGBA{
	"red":    ownerColors[0],
	"green":  ownerColors[1],
	"yellow": ownerColors[2],
	"blue":   ownerColors[3],
}

func ownerColor(owner int) color.NRGBA {
	if owner < 0 || owner >= len(ownerColors) {
		return color.NRGBA{160, 160, 160, 255}
	}
	return ownerColors[owner]
}

// playerColor prefers the colour the server assigned.
func playerColor(owner int, name string) color.NRGBA {
	if c, ok := namedColors[name]; ok {
		return c
	}
	return ownerColor(owner)
}

func fade(c color.NRGBA, a uint8) color.NRGBA {
	c.A = a
	return c
}

func fillTriangle(dst *ebiten.Image, a, b, c board.Point, clr color.NRGBA) {
	var p vector.Path
	p.MoveTo(float32(a.X), float32(a.Y))
	p.LineTo(float32(b.X), float32(b.Y))
	p.LineTo(float32(c.X), float32(c.Y))
	p.Close()

	vs, is := p.AppendVerticesAndIndicesForFilling(nil, nil)
	for i := range vs {
		vs[i].SrcX, vs[i].SrcY = 1, 1
		vs[i].ColorR = float32(clr.R) / 0xff
		vs[i].ColorG = float32(clr.G) / 0xff
		vs[i].ColorB = float32(clr.B) / 0xff
		vs[i].ColorA = float32(clr.A) / 0xff
	}
	dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

func drawButton(dst *ebiten.Image, r rect, label string, enabled, hovered bool) {
	col := color.NRGBA{54, 63, 88, 255}
	switch {
	case !enabled:
		col = color.NRGBA{44, 46, 56, 255}
	case hovered:
		col = color.NRGBA{74, 86, 120, 255}
	}
	vector.DrawFilledRect(dst, float32(r.x), float32(r.y), float32(r.w), float32(r.h), col, false)
	vector.StrokeRect(dst, float32(r.x), float32(r.y), float32(r.w), float32(r.h), 1, color.NRGBA{110, 120, 150, 255}, false)

	fg := color.Color(color.White)
	if !enabled {
		fg = color.NRGBA{120, 120, 130, 255}
	}
	drawTextCentered(dst, label, r.x+r.w/2, r.y+r.h/2+5, fg)
}

func drawTextCentered(dst *ebiten.Image, s string, cx, baseline int, clr color.Color) {
	w := text.BoundString(basicfont.Face7x13, s).Dx()
	text.Draw(dst, s, basicfont.Face7x13, cx-w/2, baseline, clr)
}

func hovered(r rect) bool {
	return r.hit(ebiten.CursorPosition())
}
