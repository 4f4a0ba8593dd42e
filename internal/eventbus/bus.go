// Package eventbus is the in-process broadcast channel decoupling message
// writers from SSE streams and the webhook dispatcher. Modeled on the
// register/unregister/broadcast hub pattern used for SSE fan-out elsewhere
// in the pack, generalized to carry chatcore.ChatEvent instead of raw JSON.
package eventbus

import (
	"sync"

	"github.com/Humans-Not-Required/agent-chat/internal/chatcore"
)

// subscriberBuffer is the per-subscriber channel capacity (spec target
// 1024 total absorbed across short bursts).
const subscriberBuffer = 1024

// Subscription is a single consumer's view of the bus: Events carries
// ChatEvent values in publication order, optionally preceded by a
// chatcore.Lag marker if this subscriber fell behind.
type Subscription struct {
	Events <-chan chatcore.ChatEvent
	bus    *Bus
	id     uint64
}

// Close unsubscribes; it does not affect other consumers.
func (sub *Subscription) Close() {
	sub.bus.unsubscribe(sub.id)
}

type subscriber struct {
	id      uint64
	ch      chan chatcore.ChatEvent
	dropped int
}

// Bus is a single bounded broadcast channel of ChatEvent values to N
// subscribers. Publish never blocks on a slow subscriber: if that
// subscriber's buffer is full, the event is dropped and a synthetic Lag
// signal is queued for it instead.
type Bus struct {
	mu      sync.Mutex
	subs    map[uint64]*subscriber
	nextID  uint64
	closed  bool
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[uint64]*subscriber)}
}

// Subscribe registers a new consumer and returns its Subscription.
func (b *Bus) Subscribe() *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	sub := &subscriber{id: id, ch: make(chan chatcore.ChatEvent, subscriberBuffer)}
	b.subs[id] = sub
	if b.closed {
		close(sub.ch)
	}
	return &Subscription{Events: sub.ch, bus: b, id: id}
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}

// Publish fans event out to every current subscriber without blocking.
// Publication failures due to zero subscribers are not an error — they are
// simply a no-op.
func (b *Bus) Publish(event chatcore.ChatEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		b.deliverLocked(sub, event)
	}
}

func (b *Bus) deliverLocked(sub *subscriber, event chatcore.ChatEvent) {
	// Drain a pending Lag marker in front of the real event whenever there
	// is room, so a resynchronizing subscriber sees Lag(n) then the event
	// that follows it, never silently missing the notification.
	if sub.dropped > 0 {
		select {
		case sub.ch <- chatcore.Lag{N: sub.dropped}:
			sub.dropped = 0
		default:
			sub.dropped++
			return
		}
	}
	select {
	case sub.ch <- event:
	default:
		sub.dropped++
	}
}

// Close shuts the bus down, delivering a terminal close (by closing each
// subscriber channel) to every current subscriber.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}

// SubscriberCount reports the current number of live subscribers; used by
// /stats and tests.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
