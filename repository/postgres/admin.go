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

type adminRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewAdminRepository creates the PostgreSQL-backed admin repository
func NewAdminRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Admin {
	return &adminRepository{
		db:     db,
		logger: logger,
	}
}

func (r *adminRepository) Create(ctx context.Context, admin *model.Admin) error {
	db := dbFrom(ctx, r.db)
	if err := db.WithContext(ctx).Create(admin).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to create admin", "code", admin.Code, "error", err)
		return fmt.Errorf("failed to create admin: %w", err)
	}
	r.logger.InfoContext(ctx, "Admin created", "id", admin.ID, "code", admin.Code)
	return nil
}

func (r *adminRepository) GetByCode(ctx context.Context, code string) (*model.Admin, error) {
	var admin model.Admin
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("code = ?", code).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &admin, nil
}

func (r *adminRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Admin, error) {
	var admin model.Admin
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("external_id = ?", externalID).First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get admin by external id: %w", err)
	}
	return &admin, nil
}

func (r *adminRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Admin{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check admin code: %w", err)
	}
	return count > 0, nil
}

func (r *adminRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Admin{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check admin username: %w", err)
	}
	return count > 0, nil
}

func (r *adminRepository) Update(ctx context.Context, admin *model.Admin) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(admin).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to update admin", "id", admin.ID, "error", err)
		return fmt.Errorf("failed to update admin: %w", err)
	}
	r.logger.InfoContext(ctx, "Admin updated", "id", admin.ID, "code", admin.Code)
	return nil
}

func (r *adminRepository) DeleteByCode(ctx context.Context, code string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("code = ?", code).Delete(&model.Admin{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete admin", "code", code, "error", result.Error)
		return fmt.Errorf("failed to delete admin: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Admin deleted", "code", code)
	return nil
}

func (r *adminRepository) List(ctx context.Context, offset, limit int) ([]*model.Admin, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.Admin{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count admins: %w", err)
	}

	var admins []*model.Admin
	if err := db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&admins).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list admins: %w", err)
	}
	return admins, int(total), nil
}
