// Package postgres provides the PostgreSQL implementations of the
// domain repository interfaces.
package postgres

import (
	"context"

	"pharmachain-service/domain/repository"

	"gorm.io/gorm"
)

// txKey carries an open transaction through a context
type txKey struct{}

// withTx returns a context carrying the given transaction
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// dbFrom returns the transaction carried by ctx, or fallback when none is
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor returns a standalone Transactor for usecases that span
// repositories without going through the bordereau repository.
func NewTransactor(db *gorm.DB) repository.Transactor {
	return &transactor{db: db}
}

func (t *transactor) ExecuteInTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return dbFrom(ctx, t.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
