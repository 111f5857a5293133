package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Bordereau defines the contract for bordereau-related database operations
type Bordereau interface {
	// Save creates or updates a bordereau row (upsert by bordereau number)
	Save(ctx context.Context, bordereau *model.Bordereau) error
	// GetByNumber retrieves a bordereau with its delivery items preloaded
	GetByNumber(ctx context.Context, bordereauNumber string) (*model.Bordereau, error)
	ExistsByNumber(ctx context.Context, bordereauNumber string) (bool, error)
	// DeleteByNumber removes a bordereau; its delivery items cascade
	DeleteByNumber(ctx context.Context, bordereauNumber string) error
	// List retrieves a page ordered by delivery date descending
	List(ctx context.Context, offset, limit int) ([]*model.Bordereau, int, error)
	// GetByCurrentDriverCode lists the bordereaux currently held by a driver
	GetByCurrentDriverCode(ctx context.Context, driverCode string) ([]*model.Bordereau, error)
	// GetBySecteurCode lists the bordereaux of one secteur
	GetBySecteurCode(ctx context.Context, secteurCode string) ([]*model.Bordereau, error)
	Transactor
}
