package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Manager defines the contract for manager-related database operations
type Manager interface {
	Create(ctx context.Context, manager *model.Manager) error
	GetByCode(ctx context.Context, code string) (*model.Manager, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Manager, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// ExistsBySecteurName reports whether a manager already owns the secteur
	ExistsBySecteurName(ctx context.Context, secteurName string) (bool, error)
	Update(ctx context.Context, manager *model.Manager) error
	DeleteByCode(ctx context.Context, code string) error
	List(ctx context.Context, offset, limit int) ([]*model.Manager, int, error)
}
