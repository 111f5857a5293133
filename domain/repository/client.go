package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Client defines the contract for client-related database operations
type Client interface {
	Create(ctx context.Context, client *model.Client) error
	GetByCode(ctx context.Context, clientCode string) (*model.Client, error)
	ExistsByCode(ctx context.Context, clientCode string) (bool, error)
	Update(ctx context.Context, client *model.Client) error
	DeleteByCode(ctx context.Context, clientCode string) error
	List(ctx context.Context, offset, limit int) ([]*model.Client, int, error)
	// GetBySecteurCode lists the clients scoped to one manager's secteur
	GetBySecteurCode(ctx context.Context, secteurCode string) ([]*model.Client, error)
}
