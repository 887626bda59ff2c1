package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/metrics"
)

// Event is one decoded change notification from the feed. The bridge
// never mutates state off the back of one; it only tells subscribers
// which cached views went stale.
type Event struct {
	Table     string
	Change    enums.ChangeEventType
	EventType enums.OutboxEventType
	OrderID   int64
	ProductID int64
	UserID    uuid.UUID
}

// Callback receives events matching a subscription.
type Callback func(ctx context.Context, event Event)

// Handle identifies one live subscription for deterministic teardown.
type Handle struct {
	id    uint64
	scope string
	table string
}

type subscription struct {
	handle   Handle
	events   map[enums.ChangeEventType]struct{}
	callback Callback
}

func (s *subscription) matches(change enums.ChangeEventType) bool {
	if len(s.events) == 0 {
		return true
	}
	_, ok := s.events[change]
	return ok
}

// Bridge routes change events to registered invalidation callbacks.
// At most one subscription is live per (scope, table) so a screen that
// forgets to unsubscribe cannot stack duplicate refresh triggers.
type Bridge struct {
	mu      sync.Mutex
	nextID  uint64
	subs    map[string]*subscription
	metrics *metrics.RealtimeMetrics
	logg    *logger.Logger
}

func NewBridge(m *metrics.RealtimeMetrics, logg *logger.Logger) *Bridge {
	return &Bridge{
		subs:    make(map[string]*subscription),
		metrics: m,
		logg:    logg,
	}
}

func subscriptionKey(scope, table string) string {
	return scope + "|" + table
}

// Subscribe registers a callback for change events on table. eventTypes
// narrows the subscription; nil or empty means all change types. A second
// Subscribe for the same (scope, table) fails until the first handle is
// released.
func (b *Bridge) Subscribe(scope, table string, eventTypes []enums.ChangeEventType, callback Callback) (Handle, error) {
	if scope == "" {
		return Handle{}, fmt.Errorf("subscription scope required")
	}
	if table == "" {
		return Handle{}, fmt.Errorf("subscription table required")
	}
	if callback == nil {
		return Handle{}, fmt.Errorf("subscription callback required")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := subscriptionKey(scope, table)
	if _, exists := b.subs[key]; exists {
		return Handle{}, fmt.Errorf("scope %q already subscribed to %s", scope, table)
	}

	b.nextID++
	handle := Handle{id: b.nextID, scope: scope, table: table}

	var events map[enums.ChangeEventType]struct{}
	if len(eventTypes) > 0 {
		events = make(map[enums.ChangeEventType]struct{}, len(eventTypes))
		for _, eventType := range eventTypes {
			events[eventType] = struct{}{}
		}
	}

	b.subs[key] = &subscription{handle: handle, events: events, callback: callback}
	b.metrics.SubscriptionOpened()
	return handle, nil
}

// Unsubscribe tears down the subscription behind handle. It reports
// whether anything was removed, so a double release is visible to the
// caller rather than silently absorbed.
func (b *Bridge) Unsubscribe(handle Handle) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := subscriptionKey(handle.scope, handle.table)
	sub, ok := b.subs[key]
	if !ok || sub.handle.id != handle.id {
		return false
	}
	delete(b.subs, key)
	b.metrics.SubscriptionClosed()
	return true
}

// ActiveSubscriptions returns the number of live subscriptions.
func (b *Bridge) ActiveSubscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Dispatch fans one event out to every matching subscription and
// returns how many callbacks fired. Callbacks run inline on the feed
// goroutine; they must stay cheap (dropping cache keys, not re-fetching
// synchronously).
func (b *Bridge) Dispatch(ctx context.Context, event Event) int {
	b.mu.Lock()
	var matched []*subscription
	for _, sub := range b.subs {
		if sub.handle.table == event.Table && sub.matches(event.Change) {
			matched = append(matched, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range matched {
		sub.callback(ctx, event)
	}

	if len(matched) > 0 {
		b.metrics.IncInvalidation(event.Table, string(event.Change))
		if b.logg != nil {
			logCtx := b.logg.WithFields(ctx, map[string]any{
				"table":       event.Table,
				"change":      string(event.Change),
				"subscribers": len(matched),
			})
			b.logg.Debug(logCtx, "change event dispatched")
		}
	}
	return len(matched)
}
