// Package realtime fans events out to the live sessions of a user.
package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrNoSubscribers is returned by Publish when no session is attached to the group.
var ErrNoSubscribers = errors.New("no subscribers in group")

// ErrClosed is returned by Publish after the hub has been closed.
var ErrClosed = errors.New("hub closed")

const defaultBuffer = 16

// Event is one message delivered to a subscriber group.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub is an in-process publisher keyed by group id. A group is the set of
// one user's live sessions.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Subscription]struct{}
	buffer int
	closed bool
}

// NewHub creates a hub whose subscriptions buffer up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	return &Hub{
		groups: make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription is one session attached to a group.
type Subscription struct {
	hub     *Hub
	groupID string
	events  chan Event
	once    sync.Once
}

// Events returns the channel the session reads from. It is closed on Close.
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// GroupID returns the group the session is attached to.
func (s *Subscription) GroupID() string {
	return s.groupID
}

// Close detaches the session from its group.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
	})
}

// Subscribe attaches a new session to groupID.
func (h *Hub) Subscribe(groupID string) *Subscription {
	sub := &Subscription{
		hub:     h,
		groupID: groupID,
		events:  make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(sub.events)
		return sub
	}
	group, ok := h.groups[groupID]
	if !ok {
		group = make(map[*Subscription]struct{})
		h.groups[groupID] = group
	}
	group[sub] = struct{}{}
	return sub
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	group, ok := h.groups[sub.groupID]
	if !ok {
		return
	}
	if _, ok := group[sub]; !ok {
		return
	}
	delete(group, sub)
	close(sub.events)
	if len(group) == 0 {
		delete(h.groups, sub.groupID)
	}
}

// Publish delivers an event to every session in groupID without blocking.
// A session whose buffer is full misses the event. There is no delivery
// acknowledgment.
func (h *Hub) Publish(ctx context.Context, groupID, event string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}
	group := h.groups[groupID]
	if len(group) == 0 {
		return ErrNoSubscribers
	}

	ev := Event{Name: event, Payload: payload}
	for sub := range group {
		select {
		case sub.events <- ev:
		default:
		}
	}
	return nil
}

// Subscribers returns how many sessions are attached to groupID.
func (h *Hub) Subscribers(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[groupID])
}

// Close detaches every session and rejects further publishes.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, group := range h.groups {
		for sub := range group {
			close(sub.events)
		}
		delete(h.groups, id)
	}
}
