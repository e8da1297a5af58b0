// Command boardview shows how the client maps logical positions onto the
// board: every track cell with its index, the safe cells, home lanes and a
// sample of stacked pieces. It can also dump the whole coordinate table.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/font/basicfont"

	"ludo/client/internal/game/board"
	"ludo/client/internal/logging"
	"ludo/client/internal/protocol"
)

const (
	infoH   = 60
	screenW = int(board.BoardPx)
	screenH = int(board.BoardPx) + infoH
)

type viewer struct {
	log     *zap.Logger
	owner   int  // perspective for relative positions
	stacked bool // show the overlap sample
	status  string
}

func main() {
	dump := flag.String("dump", "", "write the coordinate table as JSON to this file (- for stdout) and exit")
	debug := flag.Bool("debug", false, "debug logging")
	flag.Parse()

	logger := logging.New(*debug)
	defer func() { _ = logger.Sync() }()
	board.SetLogger(logger)

	if *dump != "" {
		if err := writeTable(*dump); err != nil {
			logger.Fatal("dump", zap.Error(err))
		}
		return
	}

	ebiten.SetWindowSize(screenW, screenH)
	ebiten.SetWindowTitle(protocol.GameName + " board view")
	if err := ebiten.RunGame(&viewer{log: logger}); err != nil {
		log.Fatal(err)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		v.owner = (v.owner + 1) % protocol.MaxPlayers
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.stacked = !v.stacked
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		const name = "board_coords.json"
		if err := writeTable(name); err != nil {
			v.status = "save failed: " + err.Error()
			v.log.Warn("save", zap.Error(err))
		} else {
			v.status = "saved " + name
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	face := basicfont.Face7x13
	screen.Fill(color.NRGBA{246, 242, 232, 255})
	cs := float32(board.CellSize)
	label := color.NRGBA{70, 70, 70, 255}

	for g := 0; g < protocol.TrackLength; g++ {
		c := board.TrackCell(g)
		x, y := float32(c.X)-cs/2, float32(c.Y)-cs/2
		fill := color.NRGBA{255, 255, 255, 255}
		if board.IsSafeGlobal(g) {
			fill = color.NRGBA{210, 235, 210, 255}
		}
		vector.DrawFilledRect(screen, x, y, cs, cs, fill, false)
		vector.StrokeRect(screen, x, y, cs, cs, 1, color.NRGBA{150, 146, 136, 255}, false)
		rel := (g - board.StartOffsets[v.owner] + protocol.TrackLength) % protocol.TrackLength
		text.Draw(screen, fmt.Sprint(rel), face, int(x)+4, int(y)+14, label)
	}
	for i := 0; i < protocol.StretchLength; i++ {
		c, _ := board.StretchCell(v.owner, i)
		vector.StrokeRect(screen, float32(c.X)-cs/2, float32(c.Y)-cs/2, cs, cs, 2, color.NRGBA{214, 56, 56, 255}, false)
		text.Draw(screen, fmt.Sprint(protocol.StretchStart+i), face, int(c.X)-8, int(c.Y)+4, label)
	}
	for slot := 0; slot < protocol.TokensPerPlayer; slot++ {
		p, _ := board.YardSlot(v.owner, slot)
		vector.StrokeCircle(screen, float32(p.X), float32(p.Y), 10, 2, color.NRGBA{52, 104, 210, 255}, true)
	}
	if fs, ok := board.FinishSpot(v.owner); ok {
		vector.DrawFilledCircle(screen, float32(fs.X), float32(fs.Y), 6, color.NRGBA{232, 190, 40, 255}, true)
	}
	if v.stacked {
		v.drawSample(screen)
	}

	mx, my := ebiten.CursorPosition()
	info := fmt.Sprintf("owner %d perspective  [O] next owner  [P] stack sample  [S] save table", v.owner)
	text.Draw(screen, info, face, 8, screenH-infoH+18, color.Black)
	text.Draw(screen, v.hover(board.Point{X: float64(mx), Y: float64(my)}), face, 8, screenH-infoH+36, color.Black)
	if v.status != "" {
		text.Draw(screen, v.status, face, 8, screenH-infoH+54, color.NRGBA{120, 40, 40, 255})
	}
}

// drawSample puts one piece of every owner on each owner's entry cell, so
// every entry cell holds a stack of four.
func (v *viewer) drawSample(screen *ebiten.Image) {
	var placed []board.Placed
	for owner := 0; owner < protocol.MaxPlayers; owner++ {
		for slot := 0; slot < protocol.TokensPerPlayer; slot++ {
			entry := board.StartOffsets[slot]
			pos := (entry - board.StartOffsets[owner] + protocol.TrackLength) % protocol.TrackLength
			if pos > protocol.LastTrackPos {
				// past the owner's lane turn-off; show it in the yard instead
				pos = protocol.YardPosition
			}
			key := board.PieceKey{Owner: owner, Slot: slot}
			placed = append(placed, board.Placed{Key: key, At: board.ResolvePixel(owner, slot, pos)})
		}
	}
	stacks := board.ResolveStacks(placed)
	colors := []color.NRGBA{{214, 56, 56, 255}, {46, 158, 82, 255}, {232, 190, 40, 255}, {52, 104, 210, 255}}
	r := board.CellSize * 0.32
	for _, p := range placed {
		at := p.At.Add(board.StackOffset(stacks[p.Key], r))
		vector.DrawFilledCircle(screen, float32(at.X), float32(at.Y), float32(r), colors[p.Key.Owner], true)
		vector.StrokeCircle(screen, float32(at.X), float32(at.Y), float32(r), 1, color.Black, true)
	}
}

func (v *viewer) hover(p board.Point) string {
	for g := 0; g < protocol.TrackLength; g++ {
		c := board.TrackCell(g)
		if abs(c.X-p.X) <= board.CellSize/2 && abs(c.Y-p.Y) <= board.CellSize/2 {
			rel := (g - board.StartOffsets[v.owner] + protocol.TrackLength) % protocol.TrackLength
			return fmt.Sprintf("global %d, owner %d position %d, safe=%v", g, v.owner, rel, board.IsSafeGlobal(g))
		}
	}
	return fmt.Sprintf("(%d, %d)", int(p.X), int(p.Y))
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

type coord struct {
	Owner    int     `json:"owner"`
	Slot     int     `json:"slot"`
	Position int     `json:"position"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Safe     bool    `json:"safe"`
}

func writeTable(path string) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	var out []coord
	for owner := 0; owner < protocol.MaxPlayers; owner++ {
		for slot := 0; slot < protocol.TokensPerPlayer; slot++ {
			for pos := protocol.YardPosition; pos <= protocol.TerminalPosition; pos++ {
				p := board.ResolvePixel(owner, slot, pos)
				out = append(out, coord{owner, slot, pos, p.X, p.Y, board.IsSafeCell(owner, pos)})
			}
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (v *viewer) Layout(_, _ int) (int, int) { return screenW, screenH }
