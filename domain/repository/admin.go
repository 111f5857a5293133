package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Admin defines the contract for admin-related database operations
type Admin interface {
	// Create adds a new admin row
	Create(ctx context.Context, admin *model.Admin) error
	// GetByCode retrieves an admin by its natural-key code
	GetByCode(ctx context.Context, code string) (*model.Admin, error)
	// GetByExternalID retrieves an admin by its identity provider id
	GetByExternalID(ctx context.Context, externalID string) (*model.Admin, error)
	// ExistsByCode reports whether an admin with the given code exists
	ExistsByCode(ctx context.Context, code string) (bool, error)
	// ExistsByUsername reports whether an admin with the given username exists
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Update persists changes to an existing admin
	Update(ctx context.Context, admin *model.Admin) error
	// DeleteByCode removes an admin by code
	DeleteByCode(ctx context.Context, code string) error
	// List retrieves a page of admins ordered by creation time descending,
	// returning the page and the total count
	List(ctx context.Context, offset, limit int) ([]*model.Admin, int, error)
}
