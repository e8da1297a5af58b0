package session_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"ludo/client/internal/game/api"
	"ludo/client/internal/game/api/apitest"
	"ludo/client/internal/game/session"
	"ludo/client/internal/protocol"
)

const wait = 2 * time.Second

func newSession(t *testing.T) (*session.Session, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	c := api.New(srv.URL, time.Second, zaptest.NewLogger(t))
	s := session.New(c, session.Options{PollInterval: time.Hour, Logger: zaptest.NewLogger(t)})
	t.Cleanup(s.Close)
	return s, srv
}

func result(t *testing.T, s *session.Session) session.Result {
	t.Helper()
	select {
	case r := <-s.Results():
		return r
	case <-time.After(wait):
		t.Fatal("no result")
	}
	return session.Result{}
}

func TestCreateJoinStart(t *testing.T) {
	ctx := context.Background()
	host, srv := newSession(t)

	require.NoError(t, host.Create(ctx, "  ann "))
	r := result(t, host)
	require.NoError(t, r.Err)
	assert.Equal(t, session.KindCreate, r.Kind)
	assert.True(t, r.Applied)
	assert.Equal(t, "ann", host.Name())
	assert.Equal(t, 0, host.MyIndex())
	assert.False(t, host.IsMyTurn(), "not started")

	id := host.Store().GameID()
	require.NotEmpty(t, id)

	guest := session.New(api.New(srv.URL, time.Second, nil), session.Options{})
	t.Cleanup(guest.Close)
	require.NoError(t, guest.Join(ctx, id, "bob"))
	r = result(t, guest)
	require.NoError(t, r.Err)
	assert.Equal(t, 1, guest.MyIndex())

	require.NoError(t, host.Start(ctx))
	r = result(t, host)
	require.NoError(t, r.Err)
	assert.True(t, r.Snapshot.Started)
	assert.True(t, host.IsMyTurn())
}

func TestRejectedRollIsReported(t *testing.T) {
	ctx := context.Background()
	host, srv := newSession(t)
	require.NoError(t, host.Create(ctx, "ann"))
	require.NoError(t, result(t, host).Err)
	id := host.Store().GameID()
	_, err := api.New(srv.URL, time.Second, nil).AddPlayer(ctx, id, "bob")
	require.NoError(t, err)
	require.NoError(t, host.Start(ctx))
	require.NoError(t, result(t, host).Err)

	guest := session.New(api.New(srv.URL, time.Second, nil), session.Options{})
	t.Cleanup(guest.Close)
	guest.Watch(id, "bob")
	go guest.Run(ctx)
	require.Eventually(t, func() bool { return guest.MyIndex() == 1 }, wait, 10*time.Millisecond)
	assert.False(t, guest.IsMyTurn())

	require.NoError(t, guest.Roll(ctx))
	r := result(t, guest)
	require.Error(t, r.Err)
	assert.True(t, r.Rejected())
	assert.Nil(t, r.Snapshot)
}

func TestRollAndMove(t *testing.T) {
	ctx := context.Background()
	s, srv := newSession(t)
	require.NoError(t, s.Create(ctx, "ann"))
	require.NoError(t, result(t, s).Err)
	id := s.Store().GameID()
	_, err := api.New(srv.URL, time.Second, nil).AddPlayer(ctx, id, "bob")
	require.NoError(t, err)
	require.NoError(t, s.Start(ctx))
	require.NoError(t, result(t, s).Err)

	srv.Dice(6, 4)
	for n := 1; n <= 2; n++ {
		require.NoError(t, s.Roll(ctx))
		r := result(t, s)
		require.NoError(t, r.Err)
		assert.Equal(t, session.KindRoll, r.Kind)
		require.Len(t, r.Snapshot.DiceRolls, n)
	}

	require.NoError(t, s.Move(ctx, 1))
	r := result(t, s)
	require.NoError(t, r.Err)
	assert.Equal(t, 1, r.Slot)
	latest, ok := s.Store().Latest()
	require.True(t, ok)
	assert.Equal(t, 0, latest.Pieces[0][1].Position)
	assert.True(t, s.IsMyTurn(), "the 4 is still to be used")
}

func TestIntentPreconditions(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	assert.ErrorIs(t, s.Create(ctx, " "), session.ErrNameNeeded)
	assert.ErrorIs(t, s.Join(ctx, "", "ann"), session.ErrNoGame)
	assert.ErrorIs(t, s.Start(ctx), session.ErrNoGame)
	assert.ErrorIs(t, s.Roll(ctx), session.ErrNoGame)

	s.Watch("g", "ann")
	assert.ErrorIs(t, s.Move(ctx, 0), session.ErrNotPlayer)
}

// slowBackend holds its first poll and every move until release is closed.
// Only the first poll answers with the stale snapshot.
type slowBackend struct {
	release chan struct{}
	polled  chan struct{}
	polls   atomic.Int32
	stale   protocol.Snapshot
	current protocol.Snapshot
}

func (b *slowBackend) CreateGame(context.Context) (protocol.Snapshot, error) {
	return b.current, nil
}

func (b *slowBackend) AddPlayer(context.Context, string, string) (protocol.Snapshot, error) {
	return b.current, nil
}

func (b *slowBackend) StartGame(context.Context, string) (protocol.Snapshot, error) {
	return b.current, nil
}

func (b *slowBackend) RollDice(context.Context, string, int) (protocol.Snapshot, error) {
	return b.current, nil
}

func (b *slowBackend) MoveToken(context.Context, string, int, int) (protocol.Snapshot, error) {
	<-b.release
	return b.current, nil
}

func (b *slowBackend) GameState(ctx context.Context, _ string) (protocol.Snapshot, error) {
	if b.polls.Add(1) > 1 {
		return b.current, nil
	}
	b.polled <- struct{}{}
	select {
	case <-b.release:
	case <-ctx.Done():
		return protocol.Snapshot{}, ctx.Err()
	}
	return b.stale, nil
}

func newSlowBackend() *slowBackend {
	return &slowBackend{
		release: make(chan struct{}),
		polled:  make(chan struct{}, 1),
		stale:   protocol.Snapshot{GameID: "g"},
		current: protocol.Snapshot{
			GameID: "g", Started: true,
			Players: []protocol.Player{{Name: "ann"}, {Name: "bob"}},
		},
	}
}

func TestSlowPollDoesNotOverwriteNewerAnswer(t *testing.T) {
	b := newSlowBackend()
	s := session.New(b, session.Options{PollInterval: time.Hour})
	t.Cleanup(s.Close)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s.Watch("g", "ann")
	go s.Run(ctx)
	select {
	case <-b.polled:
	case <-time.After(wait):
		t.Fatal("poll never issued")
	}

	require.NoError(t, s.Start(ctx))
	r := result(t, s)
	require.NoError(t, r.Err)
	require.True(t, r.Applied)

	close(b.release)
	// the held poll lands now and is dropped; the woken one follows
	require.Eventually(t, func() bool { return b.polls.Load() >= 2 }, wait, 5*time.Millisecond)
	latest, ok := s.Store().Latest()
	require.True(t, ok)
	assert.True(t, latest.Started, "the poll was issued first and must lose")
}

func TestOneIntentAtATime(t *testing.T) {
	b := newSlowBackend()
	s := session.New(b, session.Options{})
	t.Cleanup(s.Close)
	ctx := context.Background()

	s.Watch("g", "ann")
	require.True(t, s.Store().Apply(s.Store().Reserve(), b.current))

	require.NoError(t, s.Move(ctx, 0))
	assert.True(t, s.Busy())
	assert.ErrorIs(t, s.Roll(ctx), session.ErrBusy)
	assert.ErrorIs(t, s.Move(ctx, 1), session.ErrBusy)

	close(b.release)
	r := result(t, s)
	assert.Equal(t, session.KindMove, r.Kind)
	require.Eventually(t, func() bool { return !s.Busy() }, wait, 5*time.Millisecond)
	require.NoError(t, s.Roll(ctx))
	assert.Equal(t, session.KindRoll, result(t, s).Kind)
}

func TestWakeRefetchesAfterIntent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, srv := newSession(t)
	go s.Run(ctx)

	require.NoError(t, s.Create(ctx, "ann"))
	require.NoError(t, result(t, s).Err)
	// create + add player, then the woken poll
	require.Eventually(t, func() bool { return srv.Requests() >= 3 }, wait, 10*time.Millisecond)
}

func TestCloseStopsRun(t *testing.T) {
	s, _ := newSession(t)
	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()
	s.Close()
	select {
	case <-done:
	case <-time.After(wait):
		t.Fatal("Run did not return")
	}
}
