package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/logger"
)

// UpdateDeliveryItemInput holds the optional fields of a partial update.
// Nil fields are left untouched.
type UpdateDeliveryItemInput struct {
	NombreColis        *int
	NombreSachets      *int
	Status             *model.DeliveryItemStatus
	DeliveryNotes      *string
	RecipientSignature *string
}

// ProofInput is the proof-of-delivery payload
type ProofInput struct {
	DeliveryNotes      string
	RecipientSignature string
}

// DeliveryItemUseCase defines business operations for delivery items
type DeliveryItemUseCase interface {
	GetDeliveryItem(ctx context.Context, blNumber string) (*model.DeliveryItem, error)
	ListDeliveryItems(ctx context.Context, offset, limit int) ([]*model.DeliveryItem, int, error)
	// UpdateDeliveryItem applies a partial update. Transitioning to
	// DELIVERED stamps DeliveredAt only when it is not set yet; a
	// delivered item never gets a newer timestamp through this path.
	UpdateDeliveryItem(ctx context.Context, blNumber string, input *UpdateDeliveryItemInput) (*model.DeliveryItem, error)
	// UpdateProof records proof of delivery. Capturing proof is itself
	// the completion signal: an item not yet delivered is forced to
	// DELIVERED with a fresh timestamp. Notes and signature are always
	// overwritten with the submitted values.
	UpdateProof(ctx context.Context, blNumber string, input *ProofInput) (*model.DeliveryItem, error)
	DeleteDeliveryItem(ctx context.Context, blNumber string) error
	GetByClient(ctx context.Context, clientCode string) ([]*model.DeliveryItem, error)
	GetByDriver(ctx context.Context, driverCode string) ([]*model.DeliveryItem, error)
}

type deliveryItemUseCase struct {
	itemRepo repository.DeliveryItem
	logger   logger.LoggerInterface
}

// NewDeliveryItemUseCase creates a new instance of deliveryItemUseCase
func NewDeliveryItemUseCase(itemRepo repository.DeliveryItem, appLogger logger.LoggerInterface) DeliveryItemUseCase {
	return &deliveryItemUseCase{
		itemRepo: itemRepo,
		logger:   appLogger,
	}
}

func (uc *deliveryItemUseCase) GetDeliveryItem(ctx context.Context, blNumber string) (*model.DeliveryItem, error) {
	item, err := uc.itemRepo.GetByBLNumber(ctx, blNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("delivery item", blNumber)
		}
		return nil, fmt.Errorf("error getting delivery item: %w", err)
	}
	return item, nil
}

func (uc *deliveryItemUseCase) ListDeliveryItems(ctx context.Context, offset, limit int) ([]*model.DeliveryItem, int, error) {
	offset, limit = normalizePage(offset, limit)
	items, total, err := uc.itemRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing delivery items: %w", err)
	}
	return items, total, nil
}

func (uc *deliveryItemUseCase) UpdateDeliveryItem(ctx context.Context, blNumber string, input *UpdateDeliveryItemInput) (*model.DeliveryItem, error) {
	item, err := uc.GetDeliveryItem(ctx, blNumber)
	if err != nil {
		return nil, err
	}

	if input.NombreColis != nil {
		item.NombreColis = *input.NombreColis
	}
	if input.NombreSachets != nil {
		item.NombreSachets = *input.NombreSachets
	}
	if input.DeliveryNotes != nil {
		item.DeliveryNotes = *input.DeliveryNotes
	}
	if input.RecipientSignature != nil {
		item.RecipientSignature = *input.RecipientSignature
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.NewValidation(fmt.Sprintf("invalid delivery item status: %s", *input.Status))
		}
		item.Status = *input.Status
		if *input.Status == model.ItemDelivered && item.DeliveredAt == nil {
			now := time.Now()
			item.DeliveredAt = &now
		}
	}

	if err := uc.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	uc.logger.InfoContext(ctx, "Delivery item updated", "bl_number", blNumber, "status", item.Status)
	return item, nil
}

func (uc *deliveryItemUseCase) UpdateProof(ctx context.Context, blNumber string, input *ProofInput) (*model.DeliveryItem, error) {
	item, err := uc.GetDeliveryItem(ctx, blNumber)
	if err != nil {
		return nil, err
	}

	item.DeliveryNotes = input.DeliveryNotes
	item.RecipientSignature = input.RecipientSignature
	if item.Status != model.ItemDelivered {
		now := time.Now()
		item.Status = model.ItemDelivered
		item.DeliveredAt = &now
	}

	if err := uc.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	uc.logger.InfoContext(ctx, "Delivery proof recorded", "bl_number", blNumber)
	return item, nil
}

func (uc *deliveryItemUseCase) DeleteDeliveryItem(ctx context.Context, blNumber string) error {
	if err := uc.itemRepo.DeleteByBLNumber(ctx, blNumber); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("delivery item", blNumber)
		}
		return fmt.Errorf("error deleting delivery item: %w", err)
	}
	return nil
}

func (uc *deliveryItemUseCase) GetByClient(ctx context.Context, clientCode string) ([]*model.DeliveryItem, error) {
	return uc.itemRepo.GetByClientCode(ctx, clientCode)
}

func (uc *deliveryItemUseCase) GetByDriver(ctx context.Context, driverCode string) ([]*model.DeliveryItem, error) {
	return uc.itemRepo.GetByCurrentDriverCode(ctx, driverCode)
}
