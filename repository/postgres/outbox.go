package postgres

import (
	"context"
	"fmt"
	"time"

	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/logger"

	"gorm.io/gorm"
)

type outboxRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewOutboxRepository creates the PostgreSQL-backed identity-sync journal
func NewOutboxRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Outbox {
	return &outboxRepository{
		db:     db,
		logger: logger,
	}
}

func (r *outboxRepository) Enqueue(ctx context.Context, entry *model.OutboxEntry) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to enqueue outbox entry", "kind", entry.Kind, "key", entry.Key, "error", err)
		return fmt.Errorf("failed to enqueue outbox entry: %w", err)
	}
	return nil
}

func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]*model.OutboxEntry, error) {
	var entries []*model.OutboxEntry
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending outbox entries: %w", err)
	}
	return entries, nil
}

func (r *outboxRepository) MarkPublished(ctx context.Context, id string) error {
	now := time.Now()
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       model.OutboxPublished,
			"published_at": &now,
		}).Error
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark outbox entry published", "id", id, "error", err)
		return fmt.Errorf("failed to mark outbox entry published: %w", err)
	}
	return nil
}

func (r *outboxRepository) MarkFailed(ctx context.Context, id string, maxAttempts int) error {
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Model(&model.OutboxEntry{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts": gorm.Expr("attempts + 1"),
			"status": gorm.Expr(
				"CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
				maxAttempts, string(model.OutboxFailed), string(model.OutboxPending),
			),
		}).Error
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark outbox entry failed", "id", id, "error", err)
		return fmt.Errorf("failed to mark outbox entry failed: %w", err)
	}
	return nil
}
