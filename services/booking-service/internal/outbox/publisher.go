package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"bookly/libs/db"
	"bookly/libs/kafkax"
	otelx "bookly/libs/otel"
)

type PublisherConfig struct {
	Brokers   string
	PollEvery time.Duration
	BatchSize int
}

// Publisher drains the outbox into Kafka. It is the only component that
// talks to the broker on the booking side; request handlers never block
// on Kafka.
type Publisher struct {
	pool    *db.Pool
	repo    *Repository
	logger  *slog.Logger
	brokers []string
	poll    time.Duration
	batch   int
}

func NewPublisher(pool *db.Pool, repo *Repository, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	p := &Publisher{
		pool:    pool,
		repo:    repo,
		logger:  logger,
		brokers: kafkax.SplitBrokers(cfg.Brokers),
		poll:    cfg.PollEvery,
		batch:   cfg.BatchSize,
	}
	if p.poll <= 0 {
		p.poll = 2 * time.Second
	}
	if p.batch <= 0 {
		p.batch = 50
	}
	return p
}

// Run polls until the context is cancelled. Publishing is at-least-once:
// a crash between the broker write and MarkPublished re-delivers, and the
// consumer's inbox absorbs the duplicate.
func (p *Publisher) Run(ctx context.Context) {
	if len(p.brokers) == 0 {
		p.logger.Warn("outbox publisher disabled (no kafka brokers configured)")
		return
	}

	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  p.brokers,
		Balancer: &kafka.Hash{},
	})
	defer writer.Close()

	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.drainOnce(ctx, writer); err != nil {
				p.logger.Error("outbox publish failed", "err", err)
			}
		}
	}
}

func (p *Publisher) drainOnce(ctx context.Context, writer *kafka.Writer) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	pending, err := p.repo.ClaimPending(ctx, tx, p.batch)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return tx.Commit(ctx)
	}

	msgs := make([]kafka.Message, 0, len(pending))
	ids := make([]int64, 0, len(pending))
	for _, evt := range pending {
		msgs = append(msgs, p.toMessage(ctx, evt))
		ids = append(ids, evt.ID)
	}
	if err := writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}

	if err := p.repo.MarkPublished(ctx, tx, ids); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	p.logger.Info("outbox events published", "count", len(pending))
	return nil
}

func (p *Publisher) toMessage(ctx context.Context, evt PendingEvent) kafka.Message {
	evtCtx := otelx.ContextWithTraceContext(ctx, evt.Traceparent, evt.Tracestate)
	headers := []kafka.Header{
		{Key: "event_id", Value: []byte(evt.EventID)},
		{Key: "event_type", Value: []byte(evt.EventType)},
	}
	return kafka.Message{
		Topic:   evt.EventType,
		Key:     []byte(evt.AggregateID),
		Value:   evt.Payload,
		Headers: kafkax.InjectTraceHeaders(evtCtx, headers),
	}
}
