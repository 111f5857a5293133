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

// UpdateBordereauInput holds the optional fields of a partial update.
// Nil fields are left untouched.
type UpdateBordereauInput struct {
	DeliveryDate *time.Time
	Status       *model.BordereauStatus
}

// ReassignBordereauInput names the new custody. Both fields are optional
// but at least one must be set; the referenced driver/manager must exist.
type ReassignBordereauInput struct {
	DriverCode  *string
	ManagerCode *string
}

// BordereauUseCase defines business operations for bordereaux
type BordereauUseCase interface {
	GetBordereau(ctx context.Context, number string) (*model.Bordereau, error)
	ListBordereaux(ctx context.Context, offset, limit int) ([]*model.Bordereau, int, error)
	UpdateBordereau(ctx context.Context, number string, input *UpdateBordereauInput) (*model.Bordereau, error)
	DeleteBordereau(ctx context.Context, number string) error
	// Reassign changes the current driver and/or secteur to existing
	// accounts. Unknown codes are an error; nothing is auto-created and
	// the original driver is never touched.
	Reassign(ctx context.Context, number string, input *ReassignBordereauInput) (*model.Bordereau, error)
	GetDeliveryItems(ctx context.Context, number string) ([]*model.DeliveryItem, error)
	GetByDriver(ctx context.Context, driverCode string) ([]*model.Bordereau, error)
	GetBySecteur(ctx context.Context, secteurCode string) ([]*model.Bordereau, error)
}

type bordereauUseCase struct {
	bordereauRepo repository.Bordereau
	itemRepo      repository.DeliveryItem
	driverRepo    repository.Driver
	managerRepo   repository.Manager
	logger        logger.LoggerInterface
}

// NewBordereauUseCase creates a new instance of bordereauUseCase
func NewBordereauUseCase(
	bordereauRepo repository.Bordereau,
	itemRepo repository.DeliveryItem,
	driverRepo repository.Driver,
	managerRepo repository.Manager,
	appLogger logger.LoggerInterface,
) BordereauUseCase {
	return &bordereauUseCase{
		bordereauRepo: bordereauRepo,
		itemRepo:      itemRepo,
		driverRepo:    driverRepo,
		managerRepo:   managerRepo,
		logger:        appLogger,
	}
}

func (uc *bordereauUseCase) GetBordereau(ctx context.Context, number string) (*model.Bordereau, error) {
	bordereau, err := uc.bordereauRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("bordereau", number)
		}
		return nil, fmt.Errorf("error getting bordereau: %w", err)
	}
	return bordereau, nil
}

func (uc *bordereauUseCase) ListBordereaux(ctx context.Context, offset, limit int) ([]*model.Bordereau, int, error) {
	offset, limit = normalizePage(offset, limit)
	bordereaux, total, err := uc.bordereauRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing bordereaux: %w", err)
	}
	return bordereaux, total, nil
}

func (uc *bordereauUseCase) UpdateBordereau(ctx context.Context, number string, input *UpdateBordereauInput) (*model.Bordereau, error) {
	bordereau, err := uc.GetBordereau(ctx, number)
	if err != nil {
		return nil, err
	}

	if input.DeliveryDate != nil {
		bordereau.DeliveryDate = input.DeliveryDate
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, domain.NewValidation(fmt.Sprintf("invalid bordereau status: %s", *input.Status))
		}
		bordereau.Status = *input.Status
		if *input.Status == model.BordereauCompleted && bordereau.CompletedAt == nil {
			now := time.Now()
			bordereau.CompletedAt = &now
		}
	}

	if err := uc.bordereauRepo.Save(ctx, bordereau); err != nil {
		return nil, err
	}
	uc.logger.InfoContext(ctx, "Bordereau updated", "bordereau_number", number, "status", bordereau.Status)
	return bordereau, nil
}

func (uc *bordereauUseCase) DeleteBordereau(ctx context.Context, number string) error {
	if err := uc.bordereauRepo.DeleteByNumber(ctx, number); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("bordereau", number)
		}
		return fmt.Errorf("error deleting bordereau: %w", err)
	}
	return nil
}

func (uc *bordereauUseCase) Reassign(ctx context.Context, number string, input *ReassignBordereauInput) (*model.Bordereau, error) {
	if input.DriverCode == nil && input.ManagerCode == nil {
		return nil, domain.NewValidation("at least one of driverCode or managerCode is required")
	}

	bordereau, err := uc.GetBordereau(ctx, number)
	if err != nil {
		return nil, err
	}

	if input.DriverCode != nil {
		if _, err := uc.driverRepo.GetByCode(ctx, *input.DriverCode); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewResourceNotFound("driver", *input.DriverCode)
			}
			return nil, fmt.Errorf("error checking driver: %w", err)
		}
		bordereau.CurrentDriverCode = input.DriverCode
		bordereau.CurrentDriver = nil
	}

	if input.ManagerCode != nil {
		if _, err := uc.managerRepo.GetByCode(ctx, *input.ManagerCode); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewResourceNotFound("manager", *input.ManagerCode)
			}
			return nil, fmt.Errorf("error checking manager: %w", err)
		}
		bordereau.SecteurCode = input.ManagerCode
		bordereau.Secteur = nil
	}

	if err := uc.bordereauRepo.Save(ctx, bordereau); err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Bordereau reassigned", "bordereau_number", number,
		"current_driver", bordereau.CurrentDriverCode, "secteur", bordereau.SecteurCode)
	return uc.GetBordereau(ctx, number)
}

func (uc *bordereauUseCase) GetDeliveryItems(ctx context.Context, number string) ([]*model.DeliveryItem, error) {
	exists, err := uc.bordereauRepo.ExistsByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("error checking bordereau: %w", err)
	}
	if !exists {
		return nil, domain.NewResourceNotFound("bordereau", number)
	}
	return uc.itemRepo.GetByBordereauNumber(ctx, number)
}

func (uc *bordereauUseCase) GetByDriver(ctx context.Context, driverCode string) ([]*model.Bordereau, error) {
	return uc.bordereauRepo.GetByCurrentDriverCode(ctx, driverCode)
}

func (uc *bordereauUseCase) GetBySecteur(ctx context.Context, secteurCode string) ([]*model.Bordereau, error) {
	return uc.bordereauRepo.GetBySecteurCode(ctx, secteurCode)
}

// normalizePage clamps pagination inputs to sane bounds
func normalizePage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return offset, limit
}
