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

type managerRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewManagerRepository creates the PostgreSQL-backed manager repository
func NewManagerRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Manager {
	return &managerRepository{
		db:     db,
		logger: logger,
	}
}

func (r *managerRepository) Create(ctx context.Context, manager *model.Manager) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(manager).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to create manager", "code", manager.Code, "error", err)
		return fmt.Errorf("failed to create manager: %w", err)
	}
	r.logger.InfoContext(ctx, "Manager created", "id", manager.ID, "code", manager.Code)
	return nil
}

func (r *managerRepository) GetByCode(ctx context.Context, code string) (*model.Manager, error) {
	var manager model.Manager
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("AssignedAdmin").Where("code = ?", code).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get manager: %w", err)
	}
	return &manager, nil
}

func (r *managerRepository) GetByExternalID(ctx context.Context, externalID string) (*model.Manager, error) {
	var manager model.Manager
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("external_id = ?", externalID).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get manager by external id: %w", err)
	}
	return &manager, nil
}

func (r *managerRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Manager{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check manager code: %w", err)
	}
	return count > 0, nil
}

func (r *managerRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Manager{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check manager username: %w", err)
	}
	return count > 0, nil
}

func (r *managerRepository) ExistsBySecteurName(ctx context.Context, secteurName string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Manager{}).Where("secteur_name = ?", secteurName).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check secteur name: %w", err)
	}
	return count > 0, nil
}

func (r *managerRepository) Update(ctx context.Context, manager *model.Manager) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(manager).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to update manager", "id", manager.ID, "error", err)
		return fmt.Errorf("failed to update manager: %w", err)
	}
	r.logger.InfoContext(ctx, "Manager updated", "id", manager.ID, "code", manager.Code)
	return nil
}

func (r *managerRepository) DeleteByCode(ctx context.Context, code string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("code = ?", code).Delete(&model.Manager{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete manager", "code", code, "error", result.Error)
		return fmt.Errorf("failed to delete manager: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Manager deleted", "code", code)
	return nil
}

func (r *managerRepository) List(ctx context.Context, offset, limit int) ([]*model.Manager, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.Manager{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count managers: %w", err)
	}

	var managers []*model.Manager
	if err := db.Preload("AssignedAdmin").Offset(offset).Limit(limit).Order("created_at DESC").Find(&managers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list managers: %w", err)
	}
	return managers, int(total), nil
}
