package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Transfer defines the contract for custody-transfer database operations
type Transfer interface {
	Create(ctx context.Context, transfer *model.BordereauTransfer) error
	GetByID(ctx context.Context, id string) (*model.BordereauTransfer, error)
	GetByBarcode(ctx context.Context, barcode string) (*model.BordereauTransfer, error)
	Update(ctx context.Context, transfer *model.BordereauTransfer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, offset, limit int) ([]*model.BordereauTransfer, int, error)
	GetByBordereauNumber(ctx context.Context, bordereauNumber string) ([]*model.BordereauTransfer, error)
	GetByFromDriverCode(ctx context.Context, driverCode string) ([]*model.BordereauTransfer, error)
	GetByToDriverCode(ctx context.Context, driverCode string) ([]*model.BordereauTransfer, error)
}
