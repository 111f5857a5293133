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

type deliveryItemRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewDeliveryItemRepository creates the PostgreSQL-backed delivery item repository
func NewDeliveryItemRepository(db *gorm.DB, logger logger.LoggerInterface) repository.DeliveryItem {
	return &deliveryItemRepository{
		db:     db,
		logger: logger,
	}
}

func (r *deliveryItemRepository) Save(ctx context.Context, item *model.DeliveryItem) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(item).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to save delivery item", "bl_number", item.BLNumber, "error", err)
		return fmt.Errorf("failed to save delivery item: %w", err)
	}
	r.logger.InfoContext(ctx, "Delivery item saved", "bl_number", item.BLNumber, "bordereau_number", item.BordereauNumber, "status", item.Status)
	return nil
}

func (r *deliveryItemRepository) GetByBLNumber(ctx context.Context, blNumber string) (*model.DeliveryItem, error) {
	var item model.DeliveryItem
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("Client").Where("bl_number = ?", blNumber).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get delivery item: %w", err)
	}
	return &item, nil
}

func (r *deliveryItemRepository) ExistsByBLNumber(ctx context.Context, blNumber string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.DeliveryItem{}).Where("bl_number = ?", blNumber).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check bl number: %w", err)
	}
	return count > 0, nil
}

func (r *deliveryItemRepository) DeleteByBLNumber(ctx context.Context, blNumber string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("bl_number = ?", blNumber).Delete(&model.DeliveryItem{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete delivery item", "bl_number", blNumber, "error", result.Error)
		return fmt.Errorf("failed to delete delivery item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Delivery item deleted", "bl_number", blNumber)
	return nil
}

func (r *deliveryItemRepository) List(ctx context.Context, offset, limit int) ([]*model.DeliveryItem, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.DeliveryItem{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count delivery items: %w", err)
	}

	var items []*model.DeliveryItem
	if err := db.Preload("Client").Offset(offset).Limit(limit).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list delivery items: %w", err)
	}
	return items, int(total), nil
}

func (r *deliveryItemRepository) GetByBordereauNumber(ctx context.Context, bordereauNumber string) ([]*model.DeliveryItem, error) {
	var items []*model.DeliveryItem
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("Client").Where("bordereau_number = ?", bordereauNumber).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get delivery items by bordereau: %w", err)
	}
	return items, nil
}

func (r *deliveryItemRepository) GetByCurrentDriverCode(ctx context.Context, driverCode string) ([]*model.DeliveryItem, error) {
	var items []*model.DeliveryItem
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Joins("JOIN bordereaux ON bordereaux.bordereau_number = delivery_items.bordereau_number").
		Where("bordereaux.current_driver_code = ?", driverCode).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery items by driver: %w", err)
	}
	return items, nil
}

func (r *deliveryItemRepository) GetByClientCode(ctx context.Context, clientCode string) ([]*model.DeliveryItem, error) {
	var items []*model.DeliveryItem
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("client_code = ?", clientCode).Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get delivery items by client: %w", err)
	}
	return items, nil
}
