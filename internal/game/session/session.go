// Package session keeps one client's view of one game in step with the
// server: it polls, relays the player's intents one at a time and feeds every
// answer through a sequence-gated Store.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"ludo/client/internal/game/api"
	"ludo/client/internal/protocol"
)

var (
	ErrBusy       = errors.New("another request is still running")
	ErrNoGame     = errors.New("no game selected")
	ErrNotPlayer  = errors.New("you are not in this game")
	ErrNameNeeded = errors.New("enter a name first")
)

const DefaultPollInterval = 5 * time.Second

// Backend is the part of the game server a session talks to.
type Backend interface {
	CreateGame(ctx context.Context) (protocol.Snapshot, error)
	AddPlayer(ctx context.Context, gameID, name string) (protocol.Snapshot, error)
	StartGame(ctx context.Context, gameID string) (protocol.Snapshot, error)
	RollDice(ctx context.Context, gameID string, player int) (protocol.Snapshot, error)
	MoveToken(ctx context.Context, gameID string, player, slot int) (protocol.Snapshot, error)
	GameState(ctx context.Context, gameID string) (protocol.Snapshot, error)
}

type Kind int

const (
	KindPoll Kind = iota
	KindCreate
	KindJoin
	KindStart
	KindRoll
	KindMove
)

func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindJoin:
		return "join"
	case KindStart:
		return "start"
	case KindRoll:
		return "roll"
	case KindMove:
		return "move"
	}
	return "poll"
}

// Result is the outcome of one request. Snapshot is set on success; Applied
// tells whether it made it through the sequence gate.
type Result struct {
	Kind     Kind
	Slot     int
	Snapshot *protocol.Snapshot
	Applied  bool
	Err      error
}

// Rejected reports whether the server refused the intent.
func (r Result) Rejected() bool { return api.IsRejected(r.Err) }

type Options struct {
	PollInterval time.Duration
	Logger       *zap.Logger
}

type Session struct {
	backend  Backend
	store    *Store
	log      *zap.Logger
	interval time.Duration

	mu   sync.Mutex
	name string

	inFlight atomic.Bool
	wake     chan struct{}
	results  chan Result
	done     chan struct{}
	once     sync.Once
}

func New(backend Backend, opts Options) *Session {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		backend:  backend,
		store:    NewStore(),
		log:      opts.Logger.Named("session"),
		interval: opts.PollInterval,
		wake:     make(chan struct{}, 1),
		results:  make(chan Result, 16),
		done:     make(chan struct{}),
	}
}

func (s *Session) Store() *Store { return s.store }

// Results delivers the outcome of every intent and every failed poll.
func (s *Session) Results() <-chan Result { return s.results }

// Name is the player name this client acts as.
func (s *Session) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *Session) setName(n string) {
	s.mu.Lock()
	s.name = n
	s.mu.Unlock()
}

// MyIndex is this client's player index in the latest snapshot, or -1.
func (s *Session) MyIndex() int {
	snap, ok := s.store.Latest()
	if !ok {
		return -1
	}
	return snap.PlayerIndex(s.Name())
}

// IsMyTurn reports whether the acting player is this client.
func (s *Session) IsMyTurn() bool {
	snap, ok := s.store.Latest()
	if !ok || !snap.Started || snap.End {
		return false
	}
	p, ok := snap.CurrentPlayer()
	return ok && p.Name != "" && p.Name == s.Name()
}

// Busy reports whether an intent is in flight.
func (s *Session) Busy() bool { return s.inFlight.Load() }

// Wake asks the poll loop for an immediate fetch.
func (s *Session) Wake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Run polls the current game until ctx ends or Close is called. The first
// fetch happens at once.
func (s *Session) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.poll(ctx)
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
		case <-s.wake:
			ticker.Reset(s.interval)
		}
	}
}

func (s *Session) poll(ctx context.Context) {
	id := s.store.GameID()
	if id == "" {
		return
	}
	seq := s.store.Reserve()
	snap, err := s.backend.GameState(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.log.Warn("poll failed", zap.String("game", id), zap.Error(err))
		s.deliver(Result{Kind: KindPoll, Err: err}, false)
		return
	}
	if !s.store.Apply(seq, snap) {
		s.log.Debug("stale poll dropped", zap.Uint64("seq", seq))
	}
}

// Create makes a new game and joins it as name.
func (s *Session) Create(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameNeeded
	}
	return s.dispatch(ctx, KindCreate, 0, func(ctx context.Context) (protocol.Snapshot, uint64, error) {
		g, err := s.backend.CreateGame(ctx)
		if err != nil {
			return g, 0, err
		}
		if g.GameID == "" {
			return g, 0, fmt.Errorf("create game: empty game id")
		}
		s.store.Switch(g.GameID)
		s.setName(name)
		seq := s.store.Reserve()
		g, err = s.backend.AddPlayer(ctx, g.GameID, name)
		if err != nil {
			s.store.Switch("")
		}
		return g, seq, err
	})
}

// Join adds name to an existing game.
func (s *Session) Join(ctx context.Context, gameID, name string) error {
	gameID, name = strings.TrimSpace(gameID), strings.TrimSpace(name)
	if name == "" {
		return ErrNameNeeded
	}
	if gameID == "" {
		return ErrNoGame
	}
	return s.dispatch(ctx, KindJoin, 0, func(ctx context.Context) (protocol.Snapshot, uint64, error) {
		s.store.Switch(gameID)
		s.setName(name)
		seq := s.store.Reserve()
		g, err := s.backend.AddPlayer(ctx, gameID, name)
		if err != nil {
			s.store.Switch("")
		}
		return g, seq, err
	})
}

// Watch follows a game without joining it, as name. Used to come back to a
// game this client already joined.
func (s *Session) Watch(gameID, name string) {
	s.store.Switch(strings.TrimSpace(gameID))
	s.setName(strings.TrimSpace(name))
	s.Wake()
}

func (s *Session) Start(ctx context.Context) error {
	id := s.store.GameID()
	if id == "" {
		return ErrNoGame
	}
	return s.dispatch(ctx, KindStart, 0, func(ctx context.Context) (protocol.Snapshot, uint64, error) {
		seq := s.store.Reserve()
		g, err := s.backend.StartGame(ctx, id)
		return g, seq, err
	})
}

// Roll asks the server to roll for this client. Whether it is our turn is
// the server's call.
func (s *Session) Roll(ctx context.Context) error {
	id, me, err := s.player()
	if err != nil {
		return err
	}
	return s.dispatch(ctx, KindRoll, 0, func(ctx context.Context) (protocol.Snapshot, uint64, error) {
		seq := s.store.Reserve()
		g, err := s.backend.RollDice(ctx, id, me)
		return g, seq, err
	})
}

// Move asks the server to move one of this client's pieces.
func (s *Session) Move(ctx context.Context, slot int) error {
	id, me, err := s.player()
	if err != nil {
		return err
	}
	return s.dispatch(ctx, KindMove, slot, func(ctx context.Context) (protocol.Snapshot, uint64, error) {
		seq := s.store.Reserve()
		g, err := s.backend.MoveToken(ctx, id, me, slot)
		return g, seq, err
	})
}

func (s *Session) player() (string, int, error) {
	id := s.store.GameID()
	if id == "" {
		return "", 0, ErrNoGame
	}
	me := s.MyIndex()
	if me < 0 {
		return "", 0, ErrNotPlayer
	}
	return id, me, nil
}

type call func(ctx context.Context) (protocol.Snapshot, uint64, error)

// dispatch runs fn in the background unless another intent is in flight.
// Intents are never retried.
func (s *Session) dispatch(ctx context.Context, kind Kind, slot int, fn call) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	go func() {
		start := time.Now()
		snap, seq, err := fn(ctx)
		res := Result{Kind: kind, Slot: slot, Err: err}
		if err == nil {
			res.Snapshot = &snap
			res.Applied = s.store.Apply(seq, snap)
			s.Wake()
		}
		s.log.Debug("intent done",
			zap.Stringer("kind", kind), zap.Duration("took", time.Since(start)),
			zap.Bool("applied", res.Applied), zap.Error(err))
		s.inFlight.Store(false)
		s.deliver(res, true)
	}()
	return nil
}

// deliver hands r to the UI. Poll failures are dropped when nobody keeps up.
func (s *Session) deliver(r Result, wait bool) {
	if !wait {
		select {
		case s.results <- r:
		default:
		}
		return
	}
	select {
	case s.results <- r:
	case <-s.done:
	}
}

// Close stops the poll loop and ends all store subscriptions. Requests in
// flight finish but their results go nowhere.
func (s *Session) Close() {
	s.once.Do(func() {
		close(s.done)
		s.store.Close()
	})
}
