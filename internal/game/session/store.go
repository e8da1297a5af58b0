package session

import (
	"sync"

	"ludo/client/internal/protocol"
)

// Update is one accepted snapshot together with the one it replaced.
type Update struct {
	Seq      uint64
	Snapshot protocol.Snapshot
	Previous *protocol.Snapshot
}

// Store keeps the latest and previous snapshot of one game. Requests reserve
// a sequence number when they are issued and only an answer newer than the
// last one applied gets in, so a slow poll can never roll the view back.
type Store struct {
	mu       sync.Mutex
	gameID   string
	seq      uint64
	applied  uint64
	latest   *protocol.Snapshot
	previous *protocol.Snapshot

	bcast *Broadcaster
}

func NewStore() *Store {
	return &Store{bcast: NewBroadcaster()}
}

// Reserve hands out the sequence number for a request about to be sent.
func (s *Store) Reserve() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// Apply stores snap if seq is newer than anything applied so far and
// reports whether it did.
func (s *Store) Apply(seq uint64, snap protocol.Snapshot) bool {
	s.mu.Lock()
	if seq <= s.applied {
		s.mu.Unlock()
		return false
	}
	if s.gameID != "" && snap.GameID != "" && snap.GameID != s.gameID {
		// answer for a game this store no longer shows
		s.mu.Unlock()
		return false
	}
	s.applied = seq
	s.previous = s.latest
	cp := snap
	s.latest = &cp
	if s.gameID == "" {
		s.gameID = snap.GameID
	}
	u := Update{Seq: seq, Snapshot: snap, Previous: s.previous}
	s.mu.Unlock()

	s.bcast.Publish(u)
	return true
}

// Latest returns the newest accepted snapshot.
func (s *Store) Latest() (protocol.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return protocol.Snapshot{}, false
	}
	return *s.latest, true
}

func (s *Store) GameID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID
}

// Switch points the store at another game and forgets what it held. The
// sequence keeps counting so answers for the old game stay stale.
func (s *Store) Switch(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gameID = gameID
	s.applied = s.seq
	s.latest = nil
	s.previous = nil
}

func (s *Store) Subscribe() <-chan Update { return s.bcast.Subscribe() }

func (s *Store) Unsubscribe(ch <-chan Update) { s.bcast.Unsubscribe(ch) }

// Close ends every subscription.
func (s *Store) Close() { s.bcast.Close() }
