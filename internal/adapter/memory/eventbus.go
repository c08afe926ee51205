package memory

import (
	"context"
	"sync"

	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	portbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
)

var _ portbus.EventBus = (*EventBus)(nil)

// EventBus delivers events synchronously to in-process subscribers and keeps
// a log of everything published.
type EventBus struct {
	mu        sync.Mutex
	subs      map[event.Channel]map[*subscription]portbus.Handler
	published []event.Event
}

func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[event.Channel]map[*subscription]portbus.Handler)}
}

func (b *EventBus) Publish(ctx context.Context, e event.Event) error {
	b.mu.Lock()
	b.published = append(b.published, e)
	handlers := make([]portbus.Handler, 0, len(b.subs[event.ChannelFor(e.Type)]))
	for _, h := range b.subs[event.ChannelFor(e.Type)] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(ctx, e)
	}
	return nil
}

func (b *EventBus) Subscribe(_ context.Context, ch event.Channel, handler portbus.Handler) (portbus.Subscription, error) {
	sub := &subscription{}
	b.mu.Lock()
	if b.subs[ch] == nil {
		b.subs[ch] = make(map[*subscription]portbus.Handler)
	}
	b.subs[ch][sub] = handler
	b.mu.Unlock()

	sub.cancel = func() {
		b.mu.Lock()
		delete(b.subs[ch], sub)
		b.mu.Unlock()
	}
	return sub, nil
}

// Published returns a copy of every event seen so far.
func (b *EventBus) Published() []event.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]event.Event(nil), b.published...)
}

type subscription struct {
	cancel func()
}

func (s *subscription) Unsubscribe() { s.cancel() }
