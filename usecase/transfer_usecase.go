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

// CreateTransferInput starts a custody transfer of a bordereau.
// FromDriverCode is optional and defaults to the bordereau's current
// driver.
type CreateTransferInput struct {
	BordereauNumber string
	FromDriverCode  string
	ToDriverCode    string
	TransferBarcode string
	Reason          string
}

// TransferUseCase defines business operations for custody transfers
type TransferUseCase interface {
	CreateTransfer(ctx context.Context, input *CreateTransferInput) (*model.BordereauTransfer, error)
	GetTransfer(ctx context.Context, id string) (*model.BordereauTransfer, error)
	GetTransferByBarcode(ctx context.Context, barcode string) (*model.BordereauTransfer, error)
	ListTransfers(ctx context.Context, offset, limit int) ([]*model.BordereauTransfer, int, error)
	// UpdateTransferStatus moves the transfer through its lifecycle.
	// Completing a transfer hands the bordereau to the target driver;
	// the original driver stays untouched.
	UpdateTransferStatus(ctx context.Context, id string, status model.TransferStatus) (*model.BordereauTransfer, error)
	DeleteTransfer(ctx context.Context, id string) error
	GetByBordereau(ctx context.Context, bordereauNumber string) ([]*model.BordereauTransfer, error)
}

type transferUseCase struct {
	transferRepo  repository.Transfer
	bordereauRepo repository.Bordereau
	driverRepo    repository.Driver
	logger        logger.LoggerInterface
}

// NewTransferUseCase creates a new instance of transferUseCase
func NewTransferUseCase(
	transferRepo repository.Transfer,
	bordereauRepo repository.Bordereau,
	driverRepo repository.Driver,
	appLogger logger.LoggerInterface,
) TransferUseCase {
	return &transferUseCase{
		transferRepo:  transferRepo,
		bordereauRepo: bordereauRepo,
		driverRepo:    driverRepo,
		logger:        appLogger,
	}
}

func (uc *transferUseCase) CreateTransfer(ctx context.Context, input *CreateTransferInput) (*model.BordereauTransfer, error) {
	bordereau, err := uc.bordereauRepo.GetByNumber(ctx, input.BordereauNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("bordereau", input.BordereauNumber)
		}
		return nil, fmt.Errorf("error checking bordereau: %w", err)
	}

	fromCode := input.FromDriverCode
	if fromCode == "" {
		if bordereau.CurrentDriverCode == nil {
			return nil, domain.NewValidation("bordereau has no current driver and no fromDriverCode was given")
		}
		fromCode = *bordereau.CurrentDriverCode
	}

	for _, code := range []string{fromCode, input.ToDriverCode} {
		if _, err := uc.driverRepo.GetByCode(ctx, code); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.NewResourceNotFound("driver", code)
			}
			return nil, fmt.Errorf("error checking driver: %w", err)
		}
	}

	if input.TransferBarcode != "" {
		if _, err := uc.transferRepo.GetByBarcode(ctx, input.TransferBarcode); err == nil {
			return nil, domain.NewDuplicate("transfer barcode", input.TransferBarcode)
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("error checking transfer barcode: %w", err)
		}
	}

	now := time.Now()
	transfer := &model.BordereauTransfer{
		BordereauNumber: input.BordereauNumber,
		FromDriverCode:  fromCode,
		ToDriverCode:    input.ToDriverCode,
		TransferredAt:   &now,
		TransferBarcode: input.TransferBarcode,
		Reason:          input.Reason,
		Status:          model.TransferPending,
	}
	if err := uc.transferRepo.Create(ctx, transfer); err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Transfer created", "id", transfer.ID,
		"bordereau_number", input.BordereauNumber, "from", fromCode, "to", input.ToDriverCode)
	return transfer, nil
}

func (uc *transferUseCase) GetTransfer(ctx context.Context, id string) (*model.BordereauTransfer, error) {
	transfer, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("transfer", id)
		}
		return nil, fmt.Errorf("error getting transfer: %w", err)
	}
	return transfer, nil
}

func (uc *transferUseCase) GetTransferByBarcode(ctx context.Context, barcode string) (*model.BordereauTransfer, error) {
	transfer, err := uc.transferRepo.GetByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("transfer", barcode)
		}
		return nil, fmt.Errorf("error getting transfer by barcode: %w", err)
	}
	return transfer, nil
}

func (uc *transferUseCase) ListTransfers(ctx context.Context, offset, limit int) ([]*model.BordereauTransfer, int, error) {
	offset, limit = normalizePage(offset, limit)
	transfers, total, err := uc.transferRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing transfers: %w", err)
	}
	return transfers, total, nil
}

func (uc *transferUseCase) UpdateTransferStatus(ctx context.Context, id string, status model.TransferStatus) (*model.BordereauTransfer, error) {
	if !status.Valid() {
		return nil, domain.NewValidation(fmt.Sprintf("invalid transfer status: %s", status))
	}

	transfer, err := uc.GetTransfer(ctx, id)
	if err != nil {
		return nil, err
	}

	err = uc.bordereauRepo.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		transfer.Status = status
		if err := uc.transferRepo.Update(txCtx, transfer); err != nil {
			return err
		}

		if status != model.TransferCompleted {
			return nil
		}

		bordereau, err := uc.bordereauRepo.GetByNumber(txCtx, transfer.BordereauNumber)
		if err != nil {
			return fmt.Errorf("error loading transferred bordereau: %w", err)
		}
		bordereau.CurrentDriverCode = &transfer.ToDriverCode
		bordereau.CurrentDriver = nil
		return uc.bordereauRepo.Save(txCtx, bordereau)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Transfer status updated", "id", id, "status", status)
	return transfer, nil
}

func (uc *transferUseCase) DeleteTransfer(ctx context.Context, id string) error {
	if err := uc.transferRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("transfer", id)
		}
		return fmt.Errorf("error deleting transfer: %w", err)
	}
	return nil
}

func (uc *transferUseCase) GetByBordereau(ctx context.Context, bordereauNumber string) ([]*model.BordereauTransfer, error) {
	return uc.transferRepo.GetByBordereauNumber(ctx, bordereauNumber)
}
