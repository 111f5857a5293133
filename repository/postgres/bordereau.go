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

type bordereauRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewBordereauRepository creates the PostgreSQL-backed bordereau repository
func NewBordereauRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Bordereau {
	return &bordereauRepository{
		db:     db,
		logger: logger,
	}
}

func (r *bordereauRepository) ExecuteInTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	return dbFrom(ctx, r.db).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

func (r *bordereauRepository) Save(ctx context.Context, bordereau *model.Bordereau) error {
	// Delivery items are persisted through their own repository, never as
	// a save side effect.
	if err := dbFrom(ctx, r.db).WithContext(ctx).Omit("DeliveryItems").Save(bordereau).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to save bordereau", "bordereau_number", bordereau.BordereauNumber, "error", err)
		return fmt.Errorf("failed to save bordereau: %w", err)
	}
	r.logger.InfoContext(ctx, "Bordereau saved", "bordereau_number", bordereau.BordereauNumber, "status", bordereau.Status)
	return nil
}

func (r *bordereauRepository) GetByNumber(ctx context.Context, bordereauNumber string) (*model.Bordereau, error) {
	var bordereau model.Bordereau
	err := dbFrom(ctx, r.db).WithContext(ctx).
		Preload("DeliveryItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("delivery_items.created_at ASC")
		}).
		Preload("CurrentDriver").
		Preload("OriginalDriver").
		Preload("Secteur").
		Where("bordereau_number = ?", bordereauNumber).
		First(&bordereau).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bordereau: %w", err)
	}
	return &bordereau, nil
}

func (r *bordereauRepository) ExistsByNumber(ctx context.Context, bordereauNumber string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Bordereau{}).Where("bordereau_number = ?", bordereauNumber).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check bordereau number: %w", err)
	}
	return count > 0, nil
}

func (r *bordereauRepository) DeleteByNumber(ctx context.Context, bordereauNumber string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("bordereau_number = ?", bordereauNumber).Delete(&model.Bordereau{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete bordereau", "bordereau_number", bordereauNumber, "error", result.Error)
		return fmt.Errorf("failed to delete bordereau: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Bordereau deleted", "bordereau_number", bordereauNumber)
	return nil
}

func (r *bordereauRepository) List(ctx context.Context, offset, limit int) ([]*model.Bordereau, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.Bordereau{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bordereaux: %w", err)
	}

	var bordereaux []*model.Bordereau
	if err := db.Preload("CurrentDriver").Offset(offset).Limit(limit).Order("delivery_date DESC, bordereau_number ASC").Find(&bordereaux).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bordereaux: %w", err)
	}
	return bordereaux, int(total), nil
}

func (r *bordereauRepository) GetByCurrentDriverCode(ctx context.Context, driverCode string) ([]*model.Bordereau, error) {
	var bordereaux []*model.Bordereau
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("current_driver_code = ?", driverCode).Order("delivery_date DESC").Find(&bordereaux).Error; err != nil {
		return nil, fmt.Errorf("failed to get bordereaux by driver: %w", err)
	}
	return bordereaux, nil
}

func (r *bordereauRepository) GetBySecteurCode(ctx context.Context, secteurCode string) ([]*model.Bordereau, error) {
	var bordereaux []*model.Bordereau
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("secteur_code = ?", secteurCode).Order("delivery_date DESC").Find(&bordereaux).Error; err != nil {
		return nil, fmt.Errorf("failed to get bordereaux by secteur: %w", err)
	}
	return bordereaux, nil
}
