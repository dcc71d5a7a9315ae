// Package observer fans out "snapshot changed" notifications to display
// surfaces. Notifications carry no diff; receivers re-fetch the snapshot.
package observer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Notification tells an observer that the value stored under Key changed.
type Notification struct {
	Key string    `json:"key"`
	At  time.Time `json:"at"`
}

// Subscription is a registered observer.
type Subscription struct {
	ID uuid.UUID
	C  <-chan Notification
}

// Hub is a publish/subscribe channel independent of any persistence backend.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]chan Notification
	closed      bool
	now         func() time.Time
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[uuid.UUID]chan Notification),
		now:         time.Now,
	}
}

// Subscribe registers a new observer channel.
// A closed hub returns a subscription whose channel is already closed.
func (hub *Hub) Subscribe(buffer int) Subscription {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Notification, buffer)
	id := uuid.New()

	hub.mu.Lock()
	defer hub.mu.Unlock()
	if hub.closed {
		close(ch)
		return Subscription{ID: id, C: ch}
	}
	hub.subscribers[id] = ch
	return Subscription{ID: id, C: ch}
}

// Unsubscribe removes the observer and closes its channel.
func (hub *Hub) Unsubscribe(id uuid.UUID) {
	hub.mu.Lock()
	ch, ok := hub.subscribers[id]
	delete(hub.subscribers, id)
	hub.mu.Unlock()

	if ok {
		close(ch)
	}
}

// Publish notifies every observer that key changed. Delivery never blocks:
// an observer whose buffer is full already has a pending re-fetch.
func (hub *Hub) Publish(key string) {
	notification := Notification{Key: key, At: hub.now()}

	hub.mu.Lock()
	defer hub.mu.Unlock()
	for _, ch := range hub.subscribers {
		select {
		case ch <- notification:
		default:
		}
	}
}

// Watch calls onNotify for every notification until ctx is done or the hub
// closes. It blocks.
func (hub *Hub) Watch(ctx context.Context, buffer int, onNotify func(Notification)) {
	subscription := hub.Subscribe(buffer)
	defer hub.Unsubscribe(subscription.ID)

	for {
		select {
		case <-ctx.Done():
			return
		case notification, ok := <-subscription.C:
			if !ok {
				return
			}
			onNotify(notification)
		}
	}
}

// Len returns the number of registered observers.
func (hub *Hub) Len() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.subscribers)
}

// Close closes every observer channel. Later subscriptions are closed at once.
func (hub *Hub) Close() {
	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		return
	}
	hub.closed = true
	subscribers := hub.subscribers
	hub.subscribers = make(map[uuid.UUID]chan Notification)
	hub.mu.Unlock()

	for _, ch := range subscribers {
		close(ch)
	}
}
