package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// DeliveryItem defines the contract for delivery-item database operations
type DeliveryItem interface {
	// Save creates or updates a delivery item (upsert by BL number)
	Save(ctx context.Context, item *model.DeliveryItem) error
	GetByBLNumber(ctx context.Context, blNumber string) (*model.DeliveryItem, error)
	ExistsByBLNumber(ctx context.Context, blNumber string) (bool, error)
	DeleteByBLNumber(ctx context.Context, blNumber string) error
	List(ctx context.Context, offset, limit int) ([]*model.DeliveryItem, int, error)
	// GetByBordereauNumber lists the items owned by one bordereau
	GetByBordereauNumber(ctx context.Context, bordereauNumber string) ([]*model.DeliveryItem, error)
	// GetByCurrentDriverCode lists the items on bordereaux currently held by a driver
	GetByCurrentDriverCode(ctx context.Context, driverCode string) ([]*model.DeliveryItem, error)
	// GetByClientCode lists the items destined for one client
	GetByClientCode(ctx context.Context, clientCode string) ([]*model.DeliveryItem, error)
}
