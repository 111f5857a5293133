package usecase

import (
	"context"
	"time"

	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/kafka"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/metrics"
)

// OutboxDispatcher drains the identity-sync journal to kafka in the
// background. Entries that keep failing are parked as FAILED after
// maxAttempts and left for operator review.
type OutboxDispatcher struct {
	outboxRepo  repository.Outbox
	producer    kafka.KafkaClient
	metrics     *metrics.Metrics
	logger      logger.LoggerInterface
	interval    time.Duration
	batchSize   int
	maxAttempts int
}

// NewOutboxDispatcher creates a new dispatcher
func NewOutboxDispatcher(
	outboxRepo repository.Outbox,
	producer kafka.KafkaClient,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
	interval time.Duration,
	batchSize int,
	maxAttempts int,
) *OutboxDispatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	if maxAttempts <= 0 {
		maxAttempts = 10
	}
	return &OutboxDispatcher{
		outboxRepo:  outboxRepo,
		producer:    producer,
		metrics:     m,
		logger:      appLogger,
		interval:    interval,
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
	}
}

// Run dispatches pending entries until ctx is cancelled
func (d *OutboxDispatcher) Run(ctx context.Context) {
	d.logger.Info("Outbox dispatcher started", "interval", d.interval.String(), "batch_size", d.batchSize)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.dispatchOnce(ctx)
		}
	}
}

func (d *OutboxDispatcher) dispatchOnce(ctx context.Context) {
	entries, err := d.outboxRepo.FetchPending(ctx, d.batchSize)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to fetch pending outbox entries", "error", err)
		return
	}

	for _, entry := range entries {
		if err := d.producer.Produce(ctx, entry.Topic, []byte(entry.Key), []byte(entry.Payload)); err != nil {
			d.logger.ErrorContext(ctx, "Failed to publish outbox entry",
				"id", entry.ID, "kind", entry.Kind, "attempts", entry.Attempts+1, "error", err)
			if err := d.outboxRepo.MarkFailed(ctx, entry.ID, d.maxAttempts); err != nil {
				d.logger.ErrorContext(ctx, "Failed to record outbox failure", "id", entry.ID, "error", err)
			}
			continue
		}

		if err := d.outboxRepo.MarkPublished(ctx, entry.ID); err != nil {
			// The entry will be re-published on the next tick; consumers
			// of the journal must tolerate duplicates.
			d.logger.ErrorContext(ctx, "Failed to mark outbox entry published", "id", entry.ID, "error", err)
			continue
		}
		d.metrics.OutboxPublished.Inc()
	}
}
