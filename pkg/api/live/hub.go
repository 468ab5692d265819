package live

import (
	"sync"

	"github.com/cbodonnell/gameservices/pkg/log"
	"github.com/cbodonnell/gameservices/pkg/repositories/models"
)

// SubscriberBufferSize is the number of events a subscriber may fall behind by
// before events are dropped for it.
const SubscriberBufferSize = 64

// Hub fans accepted scores out to the live subscribers of each leaderboard.
type Hub struct {
	lock        sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
	closed      bool
}

type subscriber struct {
	ch chan models.ScoreEvent
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

// Subscribe registers for events on leaderboardID. The returned function
// unsubscribes and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(leaderboardID string) (<-chan models.ScoreEvent, func()) {
	sub := &subscriber{
		ch: make(chan models.ScoreEvent, SubscriberBufferSize),
	}

	h.lock.Lock()
	if h.closed {
		h.lock.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	if h.subscribers[leaderboardID] == nil {
		h.subscribers[leaderboardID] = make(map[*subscriber]struct{})
	}
	h.subscribers[leaderboardID][sub] = struct{}{}
	h.lock.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.lock.Lock()
			defer h.lock.Unlock()
			if _, ok := h.subscribers[leaderboardID][sub]; !ok {
				// Already closed by Close.
				return
			}
			delete(h.subscribers[leaderboardID], sub)
			if len(h.subscribers[leaderboardID]) == 0 {
				delete(h.subscribers, leaderboardID)
			}
			close(sub.ch)
		})
	}
}

// Publish delivers event to every subscriber of its leaderboard without blocking.
func (h *Hub) Publish(event models.ScoreEvent) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	for sub := range h.subscribers[event.LeaderboardID] {
		select {
		case sub.ch <- event:
		default:
			log.Warn("Dropping score event for slow subscriber on leaderboard %s", event.LeaderboardID)
		}
	}
}

// Subscribers returns the number of subscribers on leaderboardID.
func (h *Hub) Subscribers(leaderboardID string) int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return len(h.subscribers[leaderboardID])
}

// Close ends every subscription. Later subscribers get a closed channel.
func (h *Hub) Close() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.closed = true
	for leaderboardID, subs := range h.subscribers {
		for sub := range subs {
			close(sub.ch)
		}
		delete(h.subscribers, leaderboardID)
	}
}
