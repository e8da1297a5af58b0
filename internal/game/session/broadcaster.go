package session

import "sync"

// Broadcaster fans accepted snapshots out to the views watching a game.
// A lagging subscriber misses updates instead of stalling the publisher; the
// next update carries the whole state anyway.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[chan Update]struct{}
	closed bool
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Update]struct{})}
}

// Subscribe registers a new subscriber. On a closed broadcaster the returned
// channel is already closed.
func (b *Broadcaster) Subscribe() <-chan Update {
	ch := make(chan Update, 8)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(sub <-chan Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		if ch == sub {
			delete(b.subs, ch)
			close(ch)
			return
		}
	}
}

func (b *Broadcaster) Publish(u Update) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

// Close drops every subscriber. Later publishes go nowhere.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	clear(b.subs)
}
