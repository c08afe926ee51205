package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MustafaBasol/crm-sub007/internal/adapter/postgres"
	"github.com/MustafaBasol/crm-sub007/internal/domain/event"
	porteventbus "github.com/MustafaBasol/crm-sub007/internal/port/eventbus"
)

var _ porteventbus.EventBus = (*EventBus)(nil)

// maxPayload is the Postgres NOTIFY payload limit in the default build.
const maxPayload = 8000

// reconnectDelay is the pause before a listener re-acquires a dropped
// connection.
var reconnectDelay = time.Second

// EventBus fans CRM events out over Postgres LISTEN/NOTIFY so every server
// instance's websocket and MCP clients see them.
//
// Publish goes through the transaction carried by ctx when there is one, so
// a stage change rolled back never reaches a board.
type EventBus struct {
	pool *pgxpool.Pool

	mu     sync.Mutex
	subs   map[*subscription]struct{}
	closed bool
}

func New(pool *pgxpool.Pool) *EventBus {
	return &EventBus{
		pool: pool,
		subs: make(map[*subscription]struct{}),
	}
}

func (eb *EventBus) Publish(ctx context.Context, e event.Event) error {
	ch := event.ChannelFor(e.Type)
	if ch == "" {
		return fmt.Errorf("publish %s: no channel for event type", e.Type)
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", e.Type, err)
	}
	if len(payload) > maxPayload {
		return fmt.Errorf("publish %s: payload of %d bytes exceeds NOTIFY limit", e.Type, len(payload))
	}

	if _, err := postgres.Conn(ctx, eb.pool).Exec(ctx, "SELECT pg_notify($1, $2)", channelName(ch), string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", channelName(ch), err)
	}
	return nil
}

// Subscribe LISTENs on ch until the subscription is cancelled, ctx ends or
// the bus is closed. A dropped connection is re-acquired; notifications sent
// while it was down are lost.
func (eb *EventBus) Subscribe(ctx context.Context, ch event.Channel, handler porteventbus.Handler) (porteventbus.Subscription, error) {
	eb.mu.Lock()
	if eb.closed {
		eb.mu.Unlock()
		return nil, fmt.Errorf("subscribe %s: event bus closed", ch)
	}
	eb.mu.Unlock()

	l, err := eb.listen(ctx, channelName(ch))
	if err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &subscription{cancel: cancel, done: make(chan struct{})}

	eb.mu.Lock()
	eb.subs[sub] = struct{}{}
	eb.mu.Unlock()

	go func() {
		defer func() {
			eb.mu.Lock()
			delete(eb.subs, sub)
			eb.mu.Unlock()
			close(sub.done)
		}()
		eb.loop(subCtx, l, handler)
	}()

	return sub, nil
}

// Close stops every live subscription and waits for their listeners to
// release their connections. Call it before closing the pool.
func (eb *EventBus) Close() {
	eb.mu.Lock()
	eb.closed = true
	subs := make([]*subscription, 0, len(eb.subs))
	for s := range eb.subs {
		subs = append(subs, s)
	}
	eb.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

func (eb *EventBus) loop(ctx context.Context, l *listener, handler porteventbus.Handler) {
	defer func() {
		if l != nil {
			l.close()
		}
	}()
	for {
		n, err := l.conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("eventbus: listener connection lost", "channel", l.channel, "error", err)
			l.close()
			if l = eb.relisten(ctx, l.channel); l == nil {
				return
			}
			continue
		}

		var e event.Event
		if err := json.Unmarshal([]byte(n.Payload), &e); err != nil {
			slog.Warn("eventbus: dropping malformed notification", "channel", l.channel, "error", err)
			continue
		}
		handler(ctx, e)
	}
}

// relisten retries listen until it succeeds or ctx ends.
func (eb *EventBus) relisten(ctx context.Context, channel string) *listener {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(reconnectDelay):
		}
		l, err := eb.listen(ctx, channel)
		if err == nil {
			slog.Info("eventbus: listener reconnected", "channel", channel)
			return l
		}
		slog.Warn("eventbus: reconnect failed", "channel", channel, "error", err)
	}
}

type listener struct {
	conn    *pgxpool.Conn
	channel string
}

func (eb *EventBus) listen(ctx context.Context, channel string) (*listener, error) {
	conn, err := eb.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection for LISTEN %s: %w", channel, err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	return &listener{conn: conn, channel: channel}, nil
}

func (l *listener) close() {
	if l.conn == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	l.conn.Exec(ctx, "UNLISTEN "+l.channel) //nolint:errcheck
	l.conn.Release()
	l.conn = nil
}

// channelName maps a domain channel to its Postgres identifier.
func channelName(ch event.Channel) string {
	return "crm_" + string(ch)
}

type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func (s *subscription) Unsubscribe() {
	s.cancel()
	<-s.done
}
