package repository

import (
	"context"

	"pharmachain-service/domain/model"
)

// Driver defines the contract for driver-related database operations
type Driver interface {
	Create(ctx context.Context, driver *model.Driver) error
	GetByCode(ctx context.Context, code string) (*model.Driver, error)
	GetByExternalID(ctx context.Context, externalID string) (*model.Driver, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByLicenseNumber(ctx context.Context, licenseNumber string) (bool, error)
	Update(ctx context.Context, driver *model.Driver) error
	DeleteByCode(ctx context.Context, code string) error
	List(ctx context.Context, offset, limit int) ([]*model.Driver, int, error)
	// GetByAssignedManagerCode lists the drivers of one manager
	GetByAssignedManagerCode(ctx context.Context, managerCode string) ([]*model.Driver, error)
}
