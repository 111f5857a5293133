// Package repository defines the interfaces for the data access layer
package repository

import "context"

// Transactor runs a function inside a database transaction. The function
// receives a transaction-carrying context that must be passed to every
// repository call made within it.
type Transactor interface {
	ExecuteInTransaction(ctx context.Context, fn func(txCtx context.Context) error) error
}
