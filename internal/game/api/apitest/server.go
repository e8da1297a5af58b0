// Package apitest runs an in-memory game server speaking the real wire
// format, for tests of code built on package api.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ludo/client/internal/game/board"
	"ludo/client/internal/protocol"
)

var colors = [protocol.MaxPlayers]string{"red", "green", "yellow", "blue"}

// Server is a deliberately small referee: it knows turns, dice and how far a
// piece may go, and nothing about captures.
type Server struct {
	*httptest.Server

	mu    sync.Mutex
	games map[string]*protocol.Snapshot
	dice  []int
	next  int
	rolls int

	hold chan struct{}

	requests atomic.Int64
	lastRID  atomic.Value
}

// NewServer starts a server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	s := &Server{games: make(map[string]*protocol.Snapshot)}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Get("/createGame", s.createGame)
	r.Post("/addPlayer", s.addPlayer)
	r.Post("/startGame", s.startGame)
	r.Post("/rollDice/playerIndex", s.rollDice)
	r.Post("/moveToken/playerIndex", s.moveToken)
	r.Get("/getGameState", s.gameState)
	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Dice queues the values the next rolls produce. Once used up every roll is 3.
func (s *Server) Dice(values ...int) {
	s.mu.Lock()
	s.dice = append(s.dice, values...)
	s.mu.Unlock()
}

// Hold makes getGameState block until the returned func is called.
func (s *Server) Hold() (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.hold = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.hold == ch {
				s.hold = nil
			}
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) Requests() int64 { return s.requests.Load() }

func (s *Server) LastRequestID() string {
	v, _ := s.lastRID.Load().(string)
	return v
}

// Game returns a copy of the stored state of id.
func (s *Server) Game(id string) (protocol.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[id]
	if !ok {
		return protocol.Snapshot{}, false
	}
	return clone(g), true
}

// Edit changes a stored game in place, for setting up positions.
func (s *Server) Edit(id string, fn func(*protocol.Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g, ok := s.games[id]; ok {
		fn(g)
	}
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		s.lastRID.Store(r.Header.Get("X-Request-ID"))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.next++
	id := fmt.Sprintf("game-%d", s.next)
	g := &protocol.Snapshot{GameID: id, Pieces: map[int][]protocol.Token{}}
	s.games[id] = g
	out := clone(g)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) addPlayer(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	name := r.URL.Query().Get("playerName")
	switch {
	case name == "":
		reject(w, "INVALID_NAME", "player name is required")
		return
	case g.Started:
		reject(w, "GAME_STARTED", "game already started")
		return
	case len(g.Players) >= protocol.MaxPlayers:
		reject(w, "GAME_FULL", "game is full")
		return
	case g.PlayerIndex(name) >= 0:
		reject(w, "NAME_TAKEN", "name already taken")
		return
	}
	idx := len(g.Players)
	g.Players = append(g.Players, protocol.Player{ID: strconv.Itoa(idx), Name: name, Color: colors[idx]})
	toks := make([]protocol.Token, protocol.TokensPerPlayer)
	for i := range toks {
		toks[i].Position = protocol.YardPosition
	}
	g.Pieces[idx] = toks
	writeJSON(w, http.StatusOK, clone(g))
}

func (s *Server) startGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if len(g.Players) < protocol.MinPlayers {
		reject(w, "NOT_ENOUGH_PLAYERS", "need at least two players")
		return
	}
	g.Started = true
	g.CurrentPlayerIndex = 0
	g.CurrentPlayerID = g.Players[0].ID
	writeJSON(w, http.StatusOK, clone(g))
}

func (s *Server) rollDice(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, player, ok := s.turn(w, r)
	if !ok {
		return
	}
	if n := len(g.DiceRolls); n > 0 && g.DiceRolls[n-1].Move != protocol.DiceSix {
		reject(w, "ALREADY_ROLLED", "move before rolling again")
		return
	}
	v := 3
	if len(s.dice) > 0 {
		v, s.dice = s.dice[0], s.dice[1:]
	}
	g.DiceRolls = append(g.DiceRolls, protocol.DiceRoll{Move: v})
	s.rolls++
	g.LastDiceRoll = &protocol.LastDiceRoll{
		PlayerIndex: player, Move: v,
		Timestamp: time.Now().UnixMilli(), RollID: fmt.Sprintf("roll-%d", s.rolls),
	}

	switch {
	case g.SixCount() == protocol.MaxRollsPerTurn:
		passTurn(g)
	case v != protocol.DiceSix && !canUseAny(g, player):
		passTurn(g)
	}
	writeJSON(w, http.StatusOK, clone(g))
}

func (s *Server) moveToken(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, player, ok := s.turn(w, r)
	if !ok {
		return
	}
	slot, err := strconv.Atoi(r.URL.Query().Get("tokenIndex"))
	if err != nil || slot < 0 || slot >= protocol.TokensPerPlayer {
		reject(w, "INVALID_TOKEN", "bad token index")
		return
	}
	ri := -1
	for i, d := range g.DiceRolls {
		if !d.IsUsed {
			ri = i
			break
		}
	}
	if ri < 0 {
		reject(w, "NO_ROLL", "roll first")
		return
	}
	if n := len(g.DiceRolls); g.DiceRolls[n-1].Move == protocol.DiceSix && n < protocol.MaxRollsPerTurn {
		reject(w, "MUST_ROLL_AGAIN", "rolled a six, roll again first")
		return
	}
	tok := &g.Pieces[player][slot]
	to, ok := board.Project(tok.Position, g.DiceRolls[ri].Move)
	if tok.Finished || !ok {
		reject(w, "INVALID_MOVE", "that piece cannot move")
		return
	}
	tok.Position = to
	tok.Finished = to == protocol.TerminalPosition
	g.DiceRolls[ri].IsUsed = true

	if finishedAll(g.Pieces[player]) && !g.IsWinner(g.Players[player].Name) {
		g.Winners = append(g.Winners, g.Players[player])
		if len(g.Winners) >= len(g.Players)-1 {
			g.End = true
		}
	}
	if !g.End && !canUseAny(g, player) {
		passTurn(g)
	}
	writeJSON(w, http.StatusOK, clone(g))
}

func (s *Server) gameState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	hold := s.hold
	s.mu.Unlock()
	if hold != nil {
		<-hold
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, clone(g))
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*protocol.Snapshot, bool) {
	g, ok := s.games[r.URL.Query().Get("gameId")]
	if !ok {
		writeJSON(w, http.StatusNotFound, protocol.ErrorBody{
			Status: http.StatusNotFound, Error: "Not Found",
			Message: "game not found", ErrorCode: "GAME_NOT_FOUND",
		})
		return nil, false
	}
	return g, true
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request) (*protocol.Snapshot, int, bool) {
	g, ok := s.lookup(w, r)
	if !ok {
		return nil, 0, false
	}
	player, err := strconv.Atoi(r.URL.Query().Get("playerIndex"))
	switch {
	case !g.Started || g.End:
		reject(w, "NOT_IN_PROGRESS", "game is not in progress")
	case err != nil || player != g.CurrentPlayerIndex:
		reject(w, "NOT_YOUR_TURN", "not your turn")
	default:
		return g, player, true
	}
	return nil, 0, false
}

func canUseAny(g *protocol.Snapshot, player int) bool {
	v, ok := nextUnused(g)
	if !ok {
		return false
	}
	return len(board.Movable(g.Pieces[player], v)) > 0
}

func nextUnused(g *protocol.Snapshot) (int, bool) {
	for _, d := range g.DiceRolls {
		if !d.IsUsed {
			return d.Move, true
		}
	}
	return 0, false
}

func finishedAll(toks []protocol.Token) bool {
	for _, t := range toks {
		if !t.Finished {
			return false
		}
	}
	return true
}

func passTurn(g *protocol.Snapshot) {
	g.DiceRolls = nil
	n := len(g.Players)
	for i := 1; i <= n; i++ {
		next := (g.CurrentPlayerIndex + i) % n
		if !g.IsWinner(g.Players[next].Name) {
			g.CurrentPlayerIndex = next
			break
		}
	}
	g.CurrentPlayerID = g.Players[g.CurrentPlayerIndex].ID
}

func clone(g *protocol.Snapshot) protocol.Snapshot {
	out := *g
	out.Players = append([]protocol.Player(nil), g.Players...)
	out.Winners = append([]protocol.Player(nil), g.Winners...)
	out.DiceRolls = append([]protocol.DiceRoll(nil), g.DiceRolls...)
	out.Pieces = make(map[int][]protocol.Token, len(g.Pieces))
	for k, v := range g.Pieces {
		out.Pieces[k] = append([]protocol.Token(nil), v...)
	}
	if g.LastDiceRoll != nil {
		lr := *g.LastDiceRoll
		out.LastDiceRoll = &lr
	}
	return out
}

func reject(w http.ResponseWriter, code, msg string) {
	writeJSON(w, http.StatusBadRequest, protocol.ErrorBody{
		Status: http.StatusBadRequest, Error: "Bad Request", Message: msg, ErrorCode: code,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
