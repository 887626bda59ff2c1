package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/pkg/config"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/enums"
)

type fakeStore struct {
	pending   []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
}

func (f *fakeStore) FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeStore) MarkPublished(ctx context.Context, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, id uuid.UUID, cause error) error {
	f.failed = append(f.failed, id)
	return nil
}

type recordingSink struct {
	messages []map[string]string
	failFor  string
}

func (r *recordingSink) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	if r.failFor != "" && attributes["aggregate_id"] == r.failFor {
		return errors.New("publish failed")
	}
	r.messages = append(r.messages, attributes)
	return nil
}

func pendingEvent(t *testing.T, aggregateID string) models.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(PayloadEnvelope{Version: 1, EventID: uuid.NewString()})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   aggregateID,
		Payload:       payload,
	}
}

func TestPublishBatchMarksPublished(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pending: []models.OutboxEvent{
		pendingEvent(t, "1"),
		pendingEvent(t, "2"),
	}}
	sink := &recordingSink{}
	publisher := NewPublisher(store, sink, config.OutboxConfig{BatchSize: 10, MaxAttempts: 3}, nil)

	published, err := publisher.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("publish batch: %v", err)
	}
	if published != 2 {
		t.Fatalf("expected 2 published, got %d", published)
	}
	if len(store.published) != 2 {
		t.Fatalf("expected 2 rows marked published, got %d", len(store.published))
	}
	if len(sink.messages) != 2 {
		t.Fatalf("expected 2 sink messages, got %d", len(sink.messages))
	}
	if got := sink.messages[0]["event_type"]; got != "order.created" {
		t.Errorf("event_type attribute = %q", got)
	}
}

func TestPublishBatchMarksFailedAndContinues(t *testing.T) {
	t.Parallel()

	store := &fakeStore{pending: []models.OutboxEvent{
		pendingEvent(t, "1"),
		pendingEvent(t, "2"),
	}}
	sink := &recordingSink{failFor: "1"}
	publisher := NewPublisher(store, sink, config.OutboxConfig{BatchSize: 10}, nil)

	published, err := publisher.PublishBatch(context.Background())
	if err != nil {
		t.Fatalf("publish batch: %v", err)
	}
	if published != 1 {
		t.Fatalf("expected 1 published, got %d", published)
	}
	if len(store.failed) != 1 {
		t.Fatalf("expected 1 row marked failed, got %d", len(store.failed))
	}
	if len(store.published) != 1 {
		t.Fatalf("expected 1 row marked published, got %d", len(store.published))
	}
}
