package postgres

import (
	"context"
	"errors"
	"fmt"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/logger"

	"gorm.io/gorm"
)

type driverRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewDriverRepository creates the PostgreSQL-backed driver repository
func NewDriverRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Driver {
	return &driverRepository{
		db:     db,
		logger: logger,
	}
}

func (r *driverRepository) Create(ctx context.Context, driver *model.Driver) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(driver).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to create driver", "code", driver.Code, "error", err)
		return fmt.Errorf("failed to create driver: %w", err)
	}
	r.logger.InfoContext(ctx, "Driver created", "id", driver.ID, "code", driver.Code)
	return nil
}

func (r *driverRepository) GetByCode(ctx context.Context, code string) (*model.Driver, error) {
	var driver model.Driver
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("AssignedManager").Where("code = ?", code).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Driver, error) {
	var driver model.Driver
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("external_id = ?", externalID).First(&driver).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get driver by external id: %w", err)
	}
	return &driver, nil
}

func (r *driverRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Driver{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check driver code: %w", err)
	}
	return count > 0, nil
}

func (r *driverRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Driver{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check driver username: %w", err)
	}
	return count > 0, nil
}

func (r *driverRepository) ExistsByLicenseNumber(ctx context.Context, licenseNumber string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Driver{}).Where("license_number = ?", licenseNumber).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check license number: %w", err)
	}
	return count > 0, nil
}

func (r *driverRepository) Update(ctx context.Context, driver *model.Driver) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(driver).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to update driver", "id", driver.ID, "error", err)
		return fmt.Errorf("failed to update driver: %w", err)
	}
	r.logger.InfoContext(ctx, "Driver updated", "id", driver.ID, "code", driver.Code)
	return nil
}

func (r *driverRepository) DeleteByCode(ctx context.Context, code string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("code = ?", code).Delete(&model.Driver{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete driver", "code", code, "error", result.Error)
		return fmt.Errorf("failed to delete driver: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Driver deleted", "code", code)
	return nil
}

func (r *driverRepository) List(ctx context.Context, offset, limit int) ([]*model.Driver, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.Driver{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count drivers: %w", err)
	}

	var drivers []*model.Driver
	if err := db.Preload("AssignedManager").Offset(offset).Limit(limit).Order("created_at DESC").Find(&drivers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, int(total), nil
}

func (r *driverRepository) GetByAssignedManagerCode(ctx context.Context, managerCode string) ([]*model.Driver, error) {
	var drivers []*model.Driver
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("assigned_manager_code = ?", managerCode).Find(&drivers).Error; err != nil {
		return nil, fmt.Errorf("failed to get drivers by manager: %w", err)
	}
	return drivers, nil
}
