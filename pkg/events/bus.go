package events

import (
	"sync"

	"github.com/cpiprint/zap-notify/pkg/core"
)

// DefaultBuffer is the channel capacity of a subscription.
const DefaultBuffer = 100

// Emitter publishes events.
type Emitter interface {
	Emit(e core.Event)
}

// Nop discards all events.
var Nop Emitter = nopEmitter{}

type nopEmitter struct{}

func (nopEmitter) Emit(core.Event) {}

// Bus fans events out to subscriber channels.
type Bus struct {
	mu   sync.RWMutex
	subs []chan core.Event
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving every subsequent event.
// The caller must call Unsubscribe when done.
func (b *Bus) Subscribe() <-chan core.Event {
	return b.SubscribeBuffered(DefaultBuffer)
}

// SubscribeBuffered is Subscribe with an explicit buffer size.
func (b *Bus) SubscribeBuffered(n int) <-chan core.Event {
	if n < 1 {
		n = 1
	}
	ch := make(chan core.Event, n)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscription. The channel is not closed.
func (b *Bus) Unsubscribe(ch <-chan core.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.subs {
		if sub == ch {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit delivers e to every subscriber that has buffer space.
func (b *Bus) Emit(e core.Event) {
	b.mu.RLock()
	subs := make([]chan core.Event, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
