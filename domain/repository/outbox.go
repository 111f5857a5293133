package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Outbox defines the contract for the identity-sync journal
type Outbox interface {
	// Enqueue inserts a pending entry; called inside the same transaction
	// as the local write it journals
	Enqueue(ctx context.Context, entry *model.OutboxEntry) error
	// FetchPending returns up to limit pending entries, oldest first
	FetchPending(ctx context.Context, limit int) ([]*model.OutboxEntry, error)
	// MarkPublished flags an entry as delivered to the broker
	MarkPublished(ctx context.Context, id string) error
	// MarkFailed increments the attempt counter, flagging the entry as
	// failed once attempts reach maxAttempts
	MarkFailed(ctx context.Context, id string, maxAttempts int) error
}
