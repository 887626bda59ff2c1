package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/pkg/enums"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
	"github.com/thandondaba/quickbite-backend/pkg/metrics"
	"github.com/thandondaba/quickbite-backend/pkg/outbox"
)

// Feed delivers decoded change events to the bridge until the context
// is canceled.
type Feed interface {
	Run(ctx context.Context, deliver func(ctx context.Context, event Event)) error
}

// PubSubFeed consumes the order-changes subscription and feeds the
// bridge. Undecodable messages are acked and dropped: replaying them
// cannot make them parse, and the bridge only schedules refreshes.
type PubSubFeed struct {
	subscription *pubsub.Subscriber
	metrics      *metrics.RealtimeMetrics
	logg         *logger.Logger
}

func NewPubSubFeed(subscription *pubsub.Subscriber, m *metrics.RealtimeMetrics, logg *logger.Logger) (*PubSubFeed, error) {
	if subscription == nil {
		return nil, errors.New("changes subscription required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &PubSubFeed{subscription: subscription, metrics: m, logg: logg}, nil
}

// Run receives messages until ctx is canceled.
func (f *PubSubFeed) Run(ctx context.Context, deliver func(ctx context.Context, event Event)) error {
	return f.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		event, err := DecodeMessage(msg.Attributes, msg.Data)
		if err != nil {
			f.metrics.IncDecodeFailure()
			logCtx := f.logg.WithField(ctx, "message_id", msg.ID)
			f.logg.Error(logCtx, "dropping undecodable change event", err)
			msg.Ack()
			return
		}
		deliver(ctx, event)
		msg.Ack()
	})
}

// DecodeMessage turns one published outbox message into a bridge event.
func DecodeMessage(attrs map[string]string, data []byte) (Event, error) {
	eventType := enums.OutboxEventType(attrs["event_type"])

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return Event{}, fmt.Errorf("decoding envelope: %w", err)
	}

	switch eventType {
	case enums.EventOrderCreated:
		var payload outbox.OrderCreatedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", eventType, err)
		}
		return Event{
			Table:     defaultTable(payload.Table, outbox.TableOrders),
			Change:    payload.Change,
			EventType: eventType,
			OrderID:   payload.OrderID,
			UserID:    payload.UserID,
		}, nil

	case enums.EventOrderStatusChanged:
		var payload outbox.OrderStatusChangedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", eventType, err)
		}
		return Event{
			Table:     defaultTable(payload.Table, outbox.TableOrders),
			Change:    payload.Change,
			EventType: eventType,
			OrderID:   payload.OrderID,
			UserID:    payload.UserID,
		}, nil

	case enums.EventOrderDeleted:
		var payload struct {
			OrderID int64     `json:"orderId"`
			UserID  uuid.UUID `json:"userId"`
		}
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", eventType, err)
		}
		return Event{
			Table:     outbox.TableOrders,
			Change:    enums.ChangeEventDelete,
			EventType: eventType,
			OrderID:   payload.OrderID,
			UserID:    payload.UserID,
		}, nil

	case enums.EventProductChanged:
		var payload outbox.ProductChangedEvent
		if err := json.Unmarshal(envelope.Data, &payload); err != nil {
			return Event{}, fmt.Errorf("decoding %s payload: %w", eventType, err)
		}
		return Event{
			Table:     defaultTable(payload.Table, outbox.TableProducts),
			Change:    payload.Change,
			EventType: eventType,
			ProductID: payload.ProductID,
		}, nil

	default:
		return Event{}, fmt.Errorf("unknown event type %q", attrs["event_type"])
	}
}

func defaultTable(table, fallback string) string {
	if table == "" {
		return fallback
	}
	return table
}
