package game

import (
	"image/color"
	"time"
	"unicode/utf8"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

type textBox struct {
	Title    string
	Value    string
	MaxRunes int
	r        rect

	focused   bool
	cursorOn  bool
	lastBlink time.Time
}

func newTextBox(title string, r rect, maxRunes int) *textBox {
	return &textBox{Title: title, r: r, MaxRunes: maxRunes, lastBlink: time.Now()}
}

func (t *textBox) update(now time.Time) {
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		t.focused = t.r.hit(ebiten.CursorPosition())
	}
	if now.Sub(t.lastBlink) > caretBlink {
		t.cursorOn = !t.cursorOn
		t.lastBlink = now
	}
	if !t.focused {
		return
	}
	t.insert(ebiten.AppendInputChars(nil))
	// single step so a held key does not eat the whole field
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		t.backspace()
	}
}

func (t *textBox) insert(rs []rune) {
	for _, r := range rs {
		if r < 32 || r == 127 {
			continue
		}
		if t.MaxRunes > 0 && utf8.RuneCountInString(t.Value) >= t.MaxRunes {
			return
		}
		t.Value += string(r)
	}
}

func (t *textBox) backspace() {
	if _, size := utf8.DecodeLastRuneInString(t.Value); size > 0 {
		t.Value = t.Value[:len(t.Value)-size]
	}
}

func (t *textBox) draw(dst *ebiten.Image, placeholder string) {
	face := basicfont.Face7x13
	text.Draw(dst, t.Title, face, t.r.x, t.r.y-6, color.NRGBA{200, 205, 220, 255})

	border := color.NRGBA{120, 130, 160, 255}
	if t.focused {
		border = color.NRGBA{240, 196, 25, 255}
	}
	x, y, w, h := float32(t.r.x), float32(t.r.y), float32(t.r.w), float32(t.r.h)
	vector.DrawFilledRect(dst, x, y, w, h, color.NRGBA{22, 26, 38, 255}, false)
	vector.StrokeRect(dst, x, y, w, h, 1, border, false)

	baseline := t.r.y + (t.r.h+10)/2
	if t.Value == "" && !t.focused {
		text.Draw(dst, placeholder, face, t.r.x+pad, baseline, color.NRGBA{120, 126, 150, 255})
		return
	}
	text.Draw(dst, t.Value, face, t.r.x+pad, baseline, color.White)
	if t.focused && t.cursorOn {
		cw := text.BoundString(face, t.Value).Dx()
		text.Draw(dst, "|", face, t.r.x+pad+cw, baseline, color.White)
	}
}
