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

type transferRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewTransferRepository creates the PostgreSQL-backed custody transfer repository
func NewTransferRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Transfer {
	return &transferRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transferRepository) Create(ctx context.Context, transfer *model.BordereauTransfer) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(transfer).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to create transfer", "bordereau_number", transfer.BordereauNumber, "error", err)
		return fmt.Errorf("failed to create transfer: %w", err)
	}
	r.logger.InfoContext(ctx, "Transfer created", "id", transfer.ID, "bordereau_number", transfer.BordereauNumber)
	return nil
}

func (r *transferRepository) GetByID(ctx context.Context, id string) (*model.BordereauTransfer, error) {
	var transfer model.BordereauTransfer
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("FromDriver").Preload("ToDriver").Where("id = ?", id).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}
	return &transfer, nil
}

func (r *transferRepository) GetByBarcode(ctx context.Context, barcode string) (*model.BordereauTransfer, error) {
	var transfer model.BordereauTransfer
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("transfer_barcode = ?", barcode).First(&transfer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transfer by barcode: %w", err)
	}
	return &transfer, nil
}

func (r *transferRepository) Update(ctx context.Context, transfer *model.BordereauTransfer) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(transfer).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to update transfer", "id", transfer.ID, "error", err)
		return fmt.Errorf("failed to update transfer: %w", err)
	}
	r.logger.InfoContext(ctx, "Transfer updated", "id", transfer.ID, "status", transfer.Status)
	return nil
}

func (r *transferRepository) Delete(ctx context.Context, id string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("id = ?", id).Delete(&model.BordereauTransfer{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete transfer", "id", id, "error", result.Error)
		return fmt.Errorf("failed to delete transfer: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Transfer deleted", "id", id)
	return nil
}

func (r *transferRepository) List(ctx context.Context, offset, limit int) ([]*model.BordereauTransfer, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.BordereauTransfer{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transfers: %w", err)
	}

	var transfers []*model.BordereauTransfer
	if err := db.Offset(offset).Limit(limit).Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transfers: %w", err)
	}
	return transfers, int(total), nil
}

func (r *transferRepository) GetByBordereauNumber(ctx context.Context, bordereauNumber string) ([]*model.BordereauTransfer, error) {
	var transfers []*model.BordereauTransfer
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("bordereau_number = ?", bordereauNumber).Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, fmt.Errorf("failed to get transfers by bordereau: %w", err)
	}
	return transfers, nil
}

func (r *transferRepository) GetByFromDriverCode(ctx context.Context, driverCode string) ([]*model.BordereauTransfer, error) {
	var transfers []*model.BordereauTransfer
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("from_driver_code = ?", driverCode).Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, fmt.Errorf("failed to get transfers by source driver: %w", err)
	}
	return transfers, nil
}

func (r *transferRepository) GetByToDriverCode(ctx context.Context, driverCode string) ([]*model.BordereauTransfer, error) {
	var transfers []*model.BordereauTransfer
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("to_driver_code = ?", driverCode).Order("transferred_at DESC").Find(&transfers).Error; err != nil {
		return nil, fmt.Errorf("failed to get transfers by target driver: %w", err)
	}
	return transfers, nil
}
