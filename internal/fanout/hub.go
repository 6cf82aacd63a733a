package fanout

import (
	"log"
	"sync"
	"time"
)

const defaultQueueSize = 32

// Subscriber is one connected observer. Events arrive on a bounded queue;
// when the queue overflows the subscriber is closed and the client is
// expected to reconnect and resync from the authoritative store.
type Subscriber struct {
	id    string
	roles map[Role]struct{}

	ch        chan Event
	closeOnce sync.Once
}

// Events is the receive side of the subscriber queue. The channel is closed
// on Unsubscribe or on queue overflow.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) ID() string {
	return s.id
}

func (s *Subscriber) wants(ev Event) bool {
	for _, role := range ev.TargetRoles {
		if _, ok := s.roles[role]; ok {
			return true
		}
	}
	return false
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}

type Hub struct {
	mu        sync.Mutex
	subs      map[string]*Subscriber
	queueSize int
}

func NewHub() *Hub {
	return &Hub{
		subs:      make(map[string]*Subscriber),
		queueSize: defaultQueueSize,
	}
}

func (h *Hub) Subscribe(connectionID string, roles []Role) *Subscriber {
	sub := &Subscriber{
		id:    connectionID,
		roles: make(map[Role]struct{}, len(roles)),
		ch:    make(chan Event, h.queueSize),
	}
	for _, role := range roles {
		sub.roles[role] = struct{}{}
	}

	h.mu.Lock()
	if prev, ok := h.subs[connectionID]; ok {
		prev.close()
	}
	h.subs[connectionID] = sub
	h.mu.Unlock()

	return sub
}

func (h *Hub) Unsubscribe(connectionID string) {
	h.mu.Lock()
	sub, ok := h.subs[connectionID]
	if ok {
		delete(h.subs, connectionID)
	}
	h.mu.Unlock()

	if ok {
		sub.close()
	}
}

// Publish delivers ev to every subscriber whose roles intersect the event's
// target roles. It never blocks: a subscriber whose queue is full is dropped
// so the publisher keeps its latency regardless of slow observers.
func (h *Hub) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	var overflowed []*Subscriber
	for _, sub := range h.subs {
		if !sub.wants(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			overflowed = append(overflowed, sub)
		}
	}
	for _, sub := range overflowed {
		delete(h.subs, sub.id)
	}
	h.mu.Unlock()

	for _, sub := range overflowed {
		log.Printf("fanout: subscriber %s overflowed, closing for resync", sub.id)
		sub.close()
	}
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
