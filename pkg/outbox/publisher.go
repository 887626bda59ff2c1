package outbox

import (
	"context"
	"errors"
	"time"

	pubsublib "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/thandondaba/quickbite-backend/pkg/config"
	"github.com/thandondaba/quickbite-backend/pkg/db/models"
	"github.com/thandondaba/quickbite-backend/pkg/logger"
)

// Sink is where published outbox rows go. The production sink is a
// Pub/Sub topic; tests swap in an in-memory recorder.
type Sink interface {
	Publish(ctx context.Context, data []byte, attributes map[string]string) error
}

// PubSubSink adapts a Pub/Sub v2 publisher handle to the Sink interface.
type PubSubSink struct {
	publisher *pubsublib.Publisher
}

func NewPubSubSink(publisher *pubsublib.Publisher) *PubSubSink {
	return &PubSubSink{publisher: publisher}
}

func (s *PubSubSink) Publish(ctx context.Context, data []byte, attributes map[string]string) error {
	if s == nil || s.publisher == nil {
		return errors.New("publisher not initialized")
	}
	result := s.publisher.Publish(ctx, &pubsublib.Message{
		Data:       data,
		Attributes: attributes,
	})
	_, err := result.Get(ctx)
	return err
}

// pendingStore is the slice of Repository the publisher needs.
type pendingStore interface {
	FetchUnpublished(ctx context.Context, limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, cause error) error
}

// Publisher drains pending outbox rows into the sink on an interval.
type Publisher struct {
	repo pendingStore
	sink Sink
	cfg  config.OutboxConfig
	logg *logger.Logger
}

func NewPublisher(repo pendingStore, sink Sink, cfg config.OutboxConfig, logg *logger.Logger) *Publisher {
	return &Publisher{repo: repo, sink: sink, cfg: cfg, logg: logg}
}

// Run polls until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	interval := time.Duration(p.cfg.PollIntervalMS) * time.Millisecond
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := p.PublishBatch(ctx); err != nil && p.logg != nil {
				p.logg.Error(ctx, "outbox publish batch failed", err)
			}
		}
	}
}

// PublishBatch drains one batch of pending rows and reports how many
// were published.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	batchSize := p.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	rows, err := p.repo.FetchUnpublished(ctx, batchSize, p.cfg.MaxAttempts)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, row := range rows {
		if err := p.publishRow(ctx, row); err != nil {
			if markErr := p.repo.MarkFailed(ctx, row.ID, err); markErr != nil && p.logg != nil {
				p.logg.Error(ctx, "marking outbox row failed", markErr)
			}
			continue
		}
		if err := p.repo.MarkPublished(ctx, row.ID); err != nil {
			return published, err
		}
		published++
	}
	return published, nil
}

func (p *Publisher) publishRow(ctx context.Context, row models.OutboxEvent) error {
	attrs := map[string]string{
		"event_type":     row.EventType.String(),
		"aggregate_type": string(row.AggregateType),
		"aggregate_id":   row.AggregateID,
	}
	return p.sink.Publish(ctx, row.Payload, attrs)
}
