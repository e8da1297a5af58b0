// Package api talks to the Ludo game server. Every call returns the full
// game snapshot the server answered with.
package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ludo/client/internal/protocol"
)

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

// New returns a client for the server at base, e.g.
// http://localhost:8080/ludo/backend/v1. A nil logger disables logging.
func New(base string, timeout time.Duration, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log.Named("api"),
	}
}

func (c *Client) CreateGame(ctx context.Context) (protocol.Snapshot, error) {
	return getJSON[protocol.Snapshot](ctx, c, "/createGame", nil)
}

func (c *Client) AddPlayer(ctx context.Context, gameID, name string) (protocol.Snapshot, error) {
	return postJSON[protocol.Snapshot](ctx, c, "/addPlayer", url.Values{
		"gameId":     {gameID},
		"playerName": {name},
	})
}

func (c *Client) StartGame(ctx context.Context, gameID string) (protocol.Snapshot, error) {
	return postJSON[protocol.Snapshot](ctx, c, "/startGame", url.Values{"gameId": {gameID}})
}

func (c *Client) RollDice(ctx context.Context, gameID string, player int) (protocol.Snapshot, error) {
	return postJSON[protocol.Snapshot](ctx, c, "/rollDice/playerIndex", url.Values{
		"gameId":      {gameID},
		"playerIndex": {strconv.Itoa(player)},
	})
}

func (c *Client) MoveToken(ctx context.Context, gameID string, player, slot int) (protocol.Snapshot, error) {
	return postJSON[protocol.Snapshot](ctx, c, "/moveToken/playerIndex", url.Values{
		"gameId":      {gameID},
		"playerIndex": {strconv.Itoa(player)},
		"tokenIndex":  {strconv.Itoa(slot)},
	})
}

func (c *Client) GameState(ctx context.Context, gameID string) (protocol.Snapshot, error) {
	return getJSON[protocol.Snapshot](ctx, c, "/getGameState", url.Values{"gameId": {gameID}})
}
