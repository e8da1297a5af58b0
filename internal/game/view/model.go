// Package view holds everything one open game needs between frames: the
// session, the animator, the die and the banners derived from snapshots.
// It draws nothing; package game renders it.
package view

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"ludo/client/internal/game/anim"
	"ludo/client/internal/game/api"
	"ludo/client/internal/game/board"
	"ludo/client/internal/game/dice"
	"ludo/client/internal/game/session"
	"ludo/client/internal/protocol"
)

const (
	TurnBannerDuration = 3 * time.Second
	ToastDuration      = 4 * time.Second
)

var (
	ErrNotYourTurn = errors.New("it is not your turn")
	ErrPieceMoving = errors.New("that piece is still moving")
	ErrRolling     = errors.New("the die is still rolling")
)

type Banner struct {
	Text     string
	Until    time.Time // zero: stays up
	GameOver bool
}

func (b Banner) Visible(now time.Time) bool {
	return b.Text != "" && (b.Until.IsZero() || now.Before(b.Until))
}

type Options struct {
	PollInterval time.Duration
	AnimDuration time.Duration
	Logger       *zap.Logger
}

// Model is one game view. All methods except Close run on the UI goroutine.
type Model struct {
	Session *session.Session
	Anim    *anim.Animator
	Dice    *dice.Machine

	log    *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	sub    <-chan session.Update

	snap     protocol.Snapshot
	haveSnap bool
	joined   bool
	joinErr  string
	gone     bool

	turn      int
	haveTurn  bool
	sawEnd    bool
	banner    Banner
	toast     string
	toastTill time.Time

	// piece we asked the server to move, until it settles or is refused
	moving    board.PieceKey
	awaitMove bool
}

// New wires a view to backend and starts polling. Close it when the view goes.
func New(backend session.Backend, opts Options) *Model {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		Session: session.New(backend, session.Options{PollInterval: opts.PollInterval, Logger: log}),
		Anim:    anim.New(opts.AnimDuration),
		Dice:    dice.New(),
		log:     log.Named("view"),
		ctx:     ctx,
		cancel:  cancel,
	}
	m.sub = m.Session.Store().Subscribe()
	m.Anim.OnSettled = m.settled
	go m.Session.Run(ctx)
	return m
}

// Close stops polling and drops every timer and animation. Requests already
// sent still complete on the server; their answers are ignored.
func (m *Model) Close() {
	m.cancel()
	m.Session.Store().Unsubscribe(m.sub)
	m.Session.Close()
	m.Anim.Reset()
	m.Dice.Reset()
	m.awaitMove = false
}

func (m *Model) Snapshot() (protocol.Snapshot, bool) { return m.snap, m.haveSnap }

// Joined reports whether Create or Join succeeded.
func (m *Model) Joined() bool { return m.joined }

// JoinError is why the last Create or Join failed, empty if it did not.
func (m *Model) JoinError() string { return m.joinErr }

// Gone reports that the server no longer knows the game being watched.
func (m *Model) Gone() bool { return m.gone }

func (m *Model) GameID() string { return m.Session.Store().GameID() }

func (m *Model) Banner(now time.Time) (Banner, bool) {
	return m.banner, m.banner.Visible(now)
}

func (m *Model) Toast(now time.Time) (string, bool) {
	return m.toast, m.toast != "" && now.Before(m.toastTill)
}

func (m *Model) Notify(msg string, now time.Time) {
	m.toast = msg
	m.toastTill = now.Add(ToastDuration)
}

// Update drains everything the network delivered since the last frame and
// advances the clocks.
func (m *Model) Update(now time.Time) {
	for drained := false; !drained; {
		select {
		case u, ok := <-m.sub:
			if !ok {
				drained = true
				break
			}
			m.apply(u, now)
		case r := <-m.Session.Results():
			m.handle(r, now)
		default:
			drained = true
		}
	}
	m.Dice.Tick(now)
	m.Anim.Step(now)
}

func (m *Model) apply(u session.Update, now time.Time) {
	s := u.Snapshot
	for owner := range s.Players {
		toks, ok := s.TokensFor(owner)
		if !ok {
			m.log.Debug("snapshot missing pieces", zap.Int("owner", owner))
		}
		for slot, t := range toks {
			m.Anim.Observe(board.PieceKey{Owner: owner, Slot: slot}, t, now)
		}
	}
	for _, k := range m.Anim.Keys() {
		if k.Owner >= len(s.Players) {
			// the seat is gone, e.g. after the server dropped a player
			m.Anim.Forget(k)
		}
	}
	m.Dice.Observe(&s, now)

	if u.Previous != nil {
		m.noteSkippedTurn(*u.Previous, s, now)
	}
	switch {
	case s.End && !m.sawEnd:
		m.sawEnd = true
		m.banner = Banner{Text: gameOverText(s), GameOver: true}
	case s.Started && !s.End && (!m.haveTurn || s.CurrentPlayerIndex != m.turn):
		m.banner = Banner{Text: m.turnText(s), Until: now.Add(TurnBannerDuration)}
	}
	if s.Started {
		m.turn, m.haveTurn = s.CurrentPlayerIndex, true
	}
	m.snap, m.haveSnap = s, true
}

// noteSkippedTurn tells the table when a third six cost someone their turn.
// The server clears the rolls as it passes the turn, so it shows only as a
// jump from two sixes to the next player.
func (m *Model) noteSkippedTurn(prev, cur protocol.Snapshot, now time.Time) {
	lr := cur.LastDiceRoll
	if lr == nil || lr.Move != protocol.DiceSix || prev.SixCount() != protocol.MaxRollsPerTurn-1 {
		return
	}
	if cur.CurrentPlayerIndex == prev.CurrentPlayerIndex || lr.PlayerIndex != prev.CurrentPlayerIndex {
		return
	}
	p, _ := prev.CurrentPlayer()
	m.Notify(fmt.Sprintf("%s rolled three sixes, turn skipped", m.who(p.Name)), now)
}

func (m *Model) handle(r session.Result, now time.Time) {
	switch r.Kind {
	case session.KindCreate, session.KindJoin:
		if r.Err != nil {
			m.joinErr = fmt.Sprintf("Could not %s game: %s", r.Kind, errText(r.Err))
			m.Notify(m.joinErr, now)
			return
		}
		m.joined, m.joinErr = true, ""
	case session.KindRoll:
		if r.Err != nil {
			m.Dice.Abort()
			m.Notify("Roll refused: "+errText(r.Err), now)
			return
		}
		m.Dice.Settle(r.Snapshot, now)
	case session.KindMove:
		if r.Err != nil {
			m.awaitMove = false
			m.Notify("Move refused: "+errText(r.Err), now)
		}
	case session.KindStart:
		if r.Err != nil {
			m.Notify("Could not start: "+errText(r.Err), now)
		}
	case session.KindPoll:
		if api.IsNotFound(r.Err) {
			m.gone = true
		}
		m.Notify("Connection problem: "+errText(r.Err), now)
	}
	if r.Err != nil {
		m.log.Info("request failed", zap.Stringer("kind", r.Kind),
			zap.Bool("rejected", r.Rejected()), zap.Error(r.Err))
	}
}

func (m *Model) settled(key board.PieceKey) {
	if m.awaitMove && key == m.moving {
		m.awaitMove = false
	}
}

// Create starts a new game as name.
func (m *Model) Create(name string) error { return m.Session.Create(m.ctx, name) }

// Join enters gameID as name.
func (m *Model) Join(gameID, name string) error { return m.Session.Join(m.ctx, gameID, name) }

// Resume goes back to a game this profile already joined.
func (m *Model) Resume(gameID, name string) {
	m.Session.Watch(gameID, name)
	m.joined = true
}

func (m *Model) Start() error { return m.Session.Start(m.ctx) }

// CanRoll is whether the roll control should be offered at all. The server
// still has the last word.
func (m *Model) CanRoll() bool {
	return m.Session.IsMyTurn() && m.Dice.Phase() != dice.Rolling && !m.Session.Busy()
}

// Roll starts the die spinning and asks the server for the roll.
func (m *Model) Roll(now time.Time) error {
	if !m.Session.IsMyTurn() {
		return ErrNotYourTurn
	}
	if !m.Dice.BeginRoll(now) {
		return ErrRolling
	}
	if err := m.Session.Roll(m.ctx); err != nil {
		m.Dice.Abort()
		return err
	}
	return nil
}

// Move asks to move one of our pieces. It is sent whether or not the piece
// looks movable; only a piece still in motion is held back.
func (m *Model) Move(slot int) error {
	me := m.Session.MyIndex()
	if me < 0 {
		return session.ErrNotPlayer
	}
	key := board.PieceKey{Owner: me, Slot: slot}
	if m.Anim.IsMoving(key) {
		return ErrPieceMoving
	}
	if err := m.Session.Move(m.ctx, slot); err != nil {
		return err
	}
	m.moving, m.awaitMove = key, true
	return nil
}

// AwaitingMove is the piece whose move was sent and has not landed yet.
func (m *Model) AwaitingMove() (board.PieceKey, bool) { return m.moving, m.awaitMove }

func (m *Model) who(name string) string {
	if name != "" && name == m.Session.Name() {
		return "You"
	}
	return name
}

func (m *Model) turnText(s protocol.Snapshot) string {
	p, ok := s.CurrentPlayer()
	switch {
	case !ok:
		return "Next turn"
	case p.Name == m.Session.Name():
		return "Your turn!"
	}
	return p.Name + "'s turn"
}

func gameOverText(s protocol.Snapshot) string {
	if len(s.Winners) == 0 {
		return "Game over"
	}
	names := make([]string, len(s.Winners))
	for i, w := range s.Winners {
		names[i] = w.Name
	}
	return "Game over! Winners: " + strings.Join(names, ", ")
}

func errText(err error) string {
	var (
		e  *api.Error
		ue *url.Error
	)
	switch {
	case errors.As(err, &e) && e.Message != "":
		return e.Message
	case errors.As(err, &e):
		return fmt.Sprintf("server said %d", e.Status)
	case errors.As(err, &ue):
		return "server unreachable"
	}
	return err.Error()
}
