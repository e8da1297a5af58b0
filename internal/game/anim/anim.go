// Package anim drives piece movement between consecutive snapshots.
package anim

import (
	"math"
	"time"

	"ludo/client/internal/game/board"
	"ludo/client/internal/protocol"
)

// DefaultDuration is how long one move takes on screen.
const DefaultDuration = 800 * time.Millisecond

// Phase of a single piece.
type Phase int

const (
	Idle Phase = iota
	Animating
)

func (p Phase) String() string {
	if p == Animating {
		return "animating"
	}
	return "idle"
}

// Track is the animation state of one piece.
type Track struct {
	Key       board.PieceKey
	Phase     Phase
	Displayed board.Point
	// Target is the resolved pixel of the latest snapshot position.
	Target board.Point

	pos      int
	finished bool

	path    []board.Point
	lengths []float64 // cumulative, lengths[0] == 0
	started time.Time
}

// Animator owns one Track per piece for the lifetime of a game view. It is
// driven from the UI goroutine only.
type Animator struct {
	Duration time.Duration

	// OnSettled is called once when a piece finishes moving.
	OnSettled func(board.PieceKey)

	tracks map[board.PieceKey]*Track
}

func New(d time.Duration) *Animator {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Animator{Duration: d, tracks: make(map[board.PieceKey]*Track)}
}

// Observe feeds the piece's position from a new snapshot. The first sighting
// places the piece without animating; a changed position starts (or
// restarts) a move from wherever the piece is currently drawn.
func (a *Animator) Observe(key board.PieceKey, t protocol.Token, now time.Time) {
	target := board.ResolvePiece(key.Owner, key.Slot, t)

	tr, ok := a.tracks[key]
	if !ok {
		a.tracks[key] = &Track{
			Key:       key,
			Phase:     Idle,
			Displayed: target,
			Target:    target,
			pos:       t.Position,
			finished:  t.Finished,
		}
		return
	}
	if tr.pos == t.Position && tr.finished == t.Finished {
		return
	}

	path := board.Waypoints(key.Owner, key.Slot, tr.pos, t.Position)
	path[len(path)-1] = target
	// a restart continues from the drawn pixel instead of jumping
	if tr.Displayed != path[0] {
		path = append([]board.Point{tr.Displayed}, path...)
	}
	if len(path) == 1 {
		path = []board.Point{tr.Displayed, target}
	}

	tr.Target = target
	tr.path = path
	tr.lengths = cumulative(path)
	tr.started = now
	tr.pos = t.Position
	tr.finished = t.Finished
	tr.Phase = Animating
}

// Step advances every moving piece to now.
func (a *Animator) Step(now time.Time) {
	for _, tr := range a.tracks {
		if tr.Phase != Animating {
			continue
		}
		p := progress(now.Sub(tr.started), a.Duration)
		if p >= 1 {
			tr.Displayed = tr.path[len(tr.path)-1]
			tr.Phase = Idle
			tr.path, tr.lengths = nil, nil
			if a.OnSettled != nil {
				a.OnSettled(tr.Key)
			}
			continue
		}
		tr.Displayed = along(tr.path, tr.lengths, easeInOut(p))
	}
}

// Displayed returns where a piece should be drawn.
func (a *Animator) Displayed(key board.PieceKey) (board.Point, bool) {
	tr, ok := a.tracks[key]
	if !ok {
		return board.Point{}, false
	}
	return tr.Displayed, true
}

// Track returns a copy of the piece's state.
func (a *Animator) Track(key board.PieceKey) (Track, bool) {
	tr, ok := a.tracks[key]
	if !ok {
		return Track{}, false
	}
	return *tr, true
}

// IsMoving reports whether a piece is mid-move.
func (a *Animator) IsMoving(key board.PieceKey) bool {
	tr, ok := a.tracks[key]
	return ok && tr.Phase == Animating
}

// AnyMoving reports whether any piece is mid-move.
func (a *Animator) AnyMoving() bool {
	for _, tr := range a.tracks {
		if tr.Phase == Animating {
			return true
		}
	}
	return false
}

// Forget drops one piece, e.g. when a player leaves the snapshot.
func (a *Animator) Forget(key board.PieceKey) {
	delete(a.tracks, key)
}

// Keys lists every tracked piece.
func (a *Animator) Keys() []board.PieceKey {
	out := make([]board.PieceKey, 0, len(a.tracks))
	for k := range a.tracks {
		out = append(out, k)
	}
	return out
}

// Reset tears down all state; nothing fires afterwards.
func (a *Animator) Reset() {
	clear(a.tracks)
}

func progress(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(elapsed) / float64(total)
	return math.Max(0, math.Min(1, p))
}

// easeInOut is the cubic ease-in-out curve on [0,1].
func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

func cumulative(path []board.Point) []float64 {
	out := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		out[i] = out[i-1] + path[i].Dist(path[i-1])
	}
	return out
}

// along returns the point at fraction t of the polyline's arc length.
func along(path []board.Point, lengths []float64, t float64) board.Point {
	if len(path) == 0 {
		return board.Center()
	}
	total := lengths[len(lengths)-1]
	if total == 0 || t <= 0 {
		return path[0]
	}
	if t >= 1 {
		return path[len(path)-1]
	}
	d := t * total
	for i := 1; i < len(path); i++ {
		if d <= lengths[i] {
			seg := lengths[i] - lengths[i-1]
			if seg == 0 {
				return path[i]
			}
			f := (d - lengths[i-1]) / seg
			return path[i-1].Add(path[i].Sub(path[i-1]).Scale(f))
		}
	}
	return path[len(path)-1]
}
