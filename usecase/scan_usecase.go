// Package usecase contains the business logic for bordereau tracking
// and account provisioning.
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
	"pharmachain-service/pkg/metrics"
	"pharmachain-service/pkg/redis"
)

const scanLockTTL = 30 * time.Second

// ScanItemInput describes one delivery item line of a scan payload
type ScanItemInput struct {
	BLNumber      string
	ClientCode    string
	ClientName    string
	ClientAddress string
	NombreColis   int
	NombreSachets int
}

// ScanBordereauInput is the ingestion payload. DriverCode and ManagerCode
// are optional; an empty value skips that linkage step.
type ScanBordereauInput struct {
	BordereauNumber string
	DeliveryDate    *time.Time
	DriverCode      string
	ManagerCode     string
	Items           []ScanItemInput
}

// ScanUseCase ingests scanned bordereaux
type ScanUseCase interface {
	// ScanBordereau runs one idempotent scan: it creates or updates the
	// bordereau, synthesizes missing drivers/managers/clients as
	// placeholder rows, and creates or re-parents the delivery items.
	ScanBordereau(ctx context.Context, input *ScanBordereauInput) (*model.Bordereau, error)
}

type scanUseCase struct {
	bordereauRepo repository.Bordereau
	itemRepo      repository.DeliveryItem
	driverRepo    repository.Driver
	managerRepo   repository.Manager
	clientRepo    repository.Client
	locker        redis.Locker
	metrics       *metrics.Metrics
	logger        logger.LoggerInterface
}

// NewScanUseCase creates a new instance of scanUseCase
func NewScanUseCase(
	bordereauRepo repository.Bordereau,
	itemRepo repository.DeliveryItem,
	driverRepo repository.Driver,
	managerRepo repository.Manager,
	clientRepo repository.Client,
	locker redis.Locker,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
) ScanUseCase {
	return &scanUseCase{
		bordereauRepo: bordereauRepo,
		itemRepo:      itemRepo,
		driverRepo:    driverRepo,
		managerRepo:   managerRepo,
		clientRepo:    clientRepo,
		locker:        locker,
		metrics:       m,
		logger:        appLogger,
	}
}

func (uc *scanUseCase) ScanBordereau(ctx context.Context, input *ScanBordereauInput) (*model.Bordereau, error) {
	if input.BordereauNumber == "" {
		return nil, domain.NewValidation("bordereau number is required")
	}

	uc.logger.InfoContext(ctx, "Scanning bordereau", "bordereau_number", input.BordereauNumber, "items", len(input.Items))

	start := time.Now()
	defer func() {
		uc.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	}()

	// Concurrent scans of the same bordereau number would interleave their
	// read-modify-write cycles, so each number is scanned under a
	// TTL-bounded advisory lock.
	release, err := uc.locker.Acquire(ctx, "scan:"+input.BordereauNumber, scanLockTTL)
	if err != nil {
		if errors.Is(err, redis.ErrLockHeld) {
			uc.logger.WarnContext(ctx, "Bordereau is already being scanned", "bordereau_number", input.BordereauNumber)
			return nil, domain.NewConflict(fmt.Sprintf("bordereau %s is being scanned by another request", input.BordereauNumber))
		}
		return nil, fmt.Errorf("failed to acquire scan lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.WarnContext(ctx, "Failed to release scan lock", "bordereau_number", input.BordereauNumber, "error", err)
		}
	}()

	var itemsIngested int
	err = uc.bordereauRepo.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		driver, err := uc.resolveDriver(txCtx, input.DriverCode)
		if err != nil {
			return err
		}

		manager, err := uc.resolveManager(txCtx, input.ManagerCode)
		if err != nil {
			return err
		}

		bordereau, err := uc.resolveBordereau(txCtx, input.BordereauNumber)
		if err != nil {
			return err
		}

		if input.DeliveryDate != nil {
			bordereau.DeliveryDate = input.DeliveryDate
		}
		if driver != nil {
			bordereau.CurrentDriverCode = &driver.Code
			// The original driver is an audit trail: assigned on the
			// first scan that names a driver, never overwritten after.
			if bordereau.OriginalDriverCode == nil {
				bordereau.OriginalDriverCode = &driver.Code
			}
		}
		if manager != nil {
			bordereau.SecteurCode = &manager.Code
		}

		// The bordereau row must exist before the items reference it.
		if err := uc.bordereauRepo.Save(txCtx, bordereau); err != nil {
			return err
		}

		for _, itemInput := range input.Items {
			if itemInput.BLNumber == "" {
				return domain.NewValidation("bl number is required on every delivery item")
			}
			if err := uc.ingestItem(txCtx, bordereau, itemInput); err != nil {
				return err
			}
			itemsIngested++
		}
		return nil
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Bordereau scan failed", "bordereau_number", input.BordereauNumber, "error", err)
		return nil, err
	}

	uc.metrics.BordereauxScanned.Inc()
	uc.metrics.ItemsIngested.Add(float64(itemsIngested))

	result, err := uc.bordereauRepo.GetByNumber(ctx, input.BordereauNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to reload scanned bordereau: %w", err)
	}

	uc.logger.InfoContext(ctx, "Bordereau scanned", "bordereau_number", result.BordereauNumber, "items", len(result.DeliveryItems))
	return result, nil
}

// resolveDriver returns the driver for code, synthesizing a placeholder
// account when none exists. Placeholders are local-only rows with no
// remote identity; they get provisioned on their first explicit update.
func (uc *scanUseCase) resolveDriver(ctx context.Context, code string) (*model.Driver, error) {
	if code == "" {
		return nil, nil
	}

	driver, err := uc.driverRepo.GetByCode(ctx, code)
	if err == nil {
		return driver, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve driver %s: %w", code, err)
	}

	driver = &model.Driver{
		UserAccount: model.UserAccount{
			Username:    "driver_" + code,
			Code:        code,
			IsActive:    true,
			AutoCreated: true,
		},
	}
	if err := uc.driverRepo.Create(ctx, driver); err != nil {
		return nil, fmt.Errorf("failed to synthesize driver %s: %w", code, err)
	}
	uc.logger.InfoContext(ctx, "Placeholder driver synthesized", "code", code)
	return driver, nil
}

func (uc *scanUseCase) resolveManager(ctx context.Context, code string) (*model.Manager, error) {
	if code == "" {
		return nil, nil
	}

	manager, err := uc.managerRepo.GetByCode(ctx, code)
	if err == nil {
		return manager, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve manager %s: %w", code, err)
	}

	manager = &model.Manager{
		UserAccount: model.UserAccount{
			Username:    "manager_" + code,
			Code:        code,
			IsActive:    true,
			AutoCreated: true,
		},
	}
	if err := uc.managerRepo.Create(ctx, manager); err != nil {
		return nil, fmt.Errorf("failed to synthesize manager %s: %w", code, err)
	}
	uc.logger.InfoContext(ctx, "Placeholder manager synthesized", "code", code)
	return manager, nil
}

func (uc *scanUseCase) resolveBordereau(ctx context.Context, number string) (*model.Bordereau, error) {
	bordereau, err := uc.bordereauRepo.GetByNumber(ctx, number)
	if err == nil {
		return bordereau, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve bordereau %s: %w", number, err)
	}

	now := time.Now()
	return &model.Bordereau{
		BordereauNumber: number,
		Status:          model.BordereauCreated,
		ScannedAt:       &now,
		AutoCreated:     true,
	}, nil
}

// ingestItem creates or updates the delivery item for one scan line.
// Counts and the owning bordereau are always overwritten, so an existing
// item whose bl number shows up on a different bordereau is re-parented.
func (uc *scanUseCase) ingestItem(ctx context.Context, bordereau *model.Bordereau, input ScanItemInput) error {
	item, err := uc.itemRepo.GetByBLNumber(ctx, input.BLNumber)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to resolve delivery item %s: %w", input.BLNumber, err)
		}
		item = &model.DeliveryItem{
			BLNumber: input.BLNumber,
			Status:   model.ItemPending,
		}
	}

	item.BordereauNumber = bordereau.BordereauNumber
	item.NombreColis = input.NombreColis
	item.NombreSachets = input.NombreSachets
	item.Client = nil

	if input.ClientCode != "" {
		if err := uc.resolveClient(ctx, bordereau, input); err != nil {
			return err
		}
		item.ClientCode = &input.ClientCode
	}

	return uc.itemRepo.Save(ctx, item)
}

// resolveClient creates the client row when absent. Synthesized clients
// inherit the bordereau's resolved secteur, not anything on the payload.
func (uc *scanUseCase) resolveClient(ctx context.Context, bordereau *model.Bordereau, input ScanItemInput) error {
	exists, err := uc.clientRepo.ExistsByCode(ctx, input.ClientCode)
	if err != nil {
		return fmt.Errorf("failed to resolve client %s: %w", input.ClientCode, err)
	}
	if exists {
		return nil
	}

	client := &model.Client{
		ClientCode:  input.ClientCode,
		Name:        input.ClientName,
		Address:     input.ClientAddress,
		SecteurCode: bordereau.SecteurCode,
		AutoCreated: true,
	}
	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return fmt.Errorf("failed to synthesize client %s: %w", input.ClientCode, err)
	}
	uc.logger.InfoContext(ctx, "Placeholder client synthesized", "client_code", input.ClientCode)
	return nil
}
