package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/identity/keycloak"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/metrics"
)

// CreateDriverInput is the explicit driver creation payload
type CreateDriverInput struct {
	Username            string
	Email               string
	Password            string
	FirstName           string
	LastName            string
	Code                string
	LicenseNumber       string
	Phone               string
	AssignedManagerCode *string
}

// UpdateDriverInput holds the optional fields of a driver update.
// Email/FirstName/LastName live only in the identity provider.
type UpdateDriverInput struct {
	Email               *string
	FirstName           *string
	LastName            *string
	LicenseNumber       *string
	Phone               *string
	AssignedManagerCode *string
}

// DriverUseCase defines business operations for drivers
type DriverUseCase interface {
	// CreateDriver provisions the remote identity first, then persists
	// the local mirror row. A remote failure aborts before any local
	// write.
	CreateDriver(ctx context.Context, input *CreateDriverInput) (*model.Driver, error)
	GetDriver(ctx context.Context, code string) (*model.Driver, error)
	GetDriverByExternalID(ctx context.Context, externalID string) (*model.Driver, error)
	ListDrivers(ctx context.Context, offset, limit int) ([]*model.Driver, int, error)
	// UpdateDriver applies a partial update, remote side first. A
	// placeholder driver synthesized by a scan gets its remote identity
	// provisioned here, on its first explicit update.
	UpdateDriver(ctx context.Context, code string, input *UpdateDriverInput) (*model.Driver, error)
	// DeleteDriver removes the remote identity first, then the local row
	DeleteDriver(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, password string, temporary bool) error
	SetActive(ctx context.Context, code string, active bool) (*model.Driver, error)
	GetBordereaux(ctx context.Context, code string) ([]*model.Bordereau, error)
	GetDeliveryItems(ctx context.Context, code string) ([]*model.DeliveryItem, error)
}

type driverUseCase struct {
	driverRepo    repository.Driver
	managerRepo   repository.Manager
	bordereauRepo repository.Bordereau
	itemRepo      repository.DeliveryItem
	transactor    repository.Transactor
	provisioner   *identityProvisioner
	logger        logger.LoggerInterface
}

// NewDriverUseCase creates a new instance of driverUseCase
func NewDriverUseCase(
	driverRepo repository.Driver,
	managerRepo repository.Manager,
	bordereauRepo repository.Bordereau,
	itemRepo repository.DeliveryItem,
	transactor repository.Transactor,
	kc keycloak.AdminService,
	outboxRepo repository.Outbox,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
	syncTopic string,
) DriverUseCase {
	return &driverUseCase{
		driverRepo:    driverRepo,
		managerRepo:   managerRepo,
		bordereauRepo: bordereauRepo,
		itemRepo:      itemRepo,
		transactor:    transactor,
		provisioner:   newIdentityProvisioner(kc, outboxRepo, m, appLogger, syncTopic),
		logger:        appLogger,
	}
}

func (uc *driverUseCase) CreateDriver(ctx context.Context, input *CreateDriverInput) (*model.Driver, error) {
	if input.Username == "" || input.Code == "" {
		return nil, domain.NewValidation("username and code are required")
	}

	if err := uc.checkUniqueness(ctx, input.Username, input.Code, input.LicenseNumber, ""); err != nil {
		return nil, err
	}
	if input.AssignedManagerCode != nil {
		if err := uc.checkManager(ctx, *input.AssignedManagerCode); err != nil {
			return nil, err
		}
	}

	externalID, err := uc.provisioner.provision(ctx, keycloak.UserRepresentation{
		Username:    input.Username,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Enabled:     true,
		Attributes:  userAttributes(input.Code, model.RoleDriver, map[string]string{"licenseNumber": input.LicenseNumber, "phone": input.Phone}),
		Credentials: passwordCredentials(input.Password),
	}, model.RoleDriver)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	driver := &model.Driver{
		UserAccount: model.UserAccount{
			ExternalID: &externalID,
			Username:   input.Username,
			Code:       input.Code,
			IsActive:   true,
			SyncedAt:   &now,
		},
		Phone:               input.Phone,
		AssignedManagerCode: input.AssignedManagerCode,
	}
	if input.LicenseNumber != "" {
		driver.LicenseNumber = &input.LicenseNumber
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.driverRepo.Create(txCtx, driver); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserCreated, &driver.UserAccount)
	})
	if err != nil {
		// The remote identity was already created; it survives as an
		// orphan until an operator reconciles it.
		uc.logger.ErrorContext(ctx, "Local driver write failed after remote provisioning",
			"code", input.Code, "external_id", externalID, "error", err)
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Driver created", "code", driver.Code, "external_id", externalID)
	return driver, nil
}

func (uc *driverUseCase) GetDriver(ctx context.Context, code string) (*model.Driver, error) {
	driver, err := uc.driverRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("driver", code)
		}
		return nil, fmt.Errorf("error getting driver: %w", err)
	}
	return driver, nil
}

func (uc *driverUseCase) GetDriverByExternalID(ctx context.Context, externalID string) (*model.Driver, error) {
	driver, err := uc.driverRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("driver", externalID)
		}
		return nil, fmt.Errorf("error getting driver by external id: %w", err)
	}
	return driver, nil
}

func (uc *driverUseCase) ListDrivers(ctx context.Context, offset, limit int) ([]*model.Driver, int, error) {
	offset, limit = normalizePage(offset, limit)
	drivers, total, err := uc.driverRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing drivers: %w", err)
	}
	return drivers, total, nil
}

func (uc *driverUseCase) UpdateDriver(ctx context.Context, code string, input *UpdateDriverInput) (*model.Driver, error) {
	driver, err := uc.GetDriver(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.LicenseNumber != nil && (driver.LicenseNumber == nil || *driver.LicenseNumber != *input.LicenseNumber) {
		exists, err := uc.driverRepo.ExistsByLicenseNumber(ctx, *input.LicenseNumber)
		if err != nil {
			return nil, fmt.Errorf("error checking license number: %w", err)
		}
		if exists {
			return nil, domain.NewDuplicate("license number", *input.LicenseNumber)
		}
	}
	if input.AssignedManagerCode != nil {
		if err := uc.checkManager(ctx, *input.AssignedManagerCode); err != nil {
			return nil, err
		}
	}

	if input.LicenseNumber != nil {
		driver.LicenseNumber = input.LicenseNumber
	}
	if input.Phone != nil {
		driver.Phone = *input.Phone
	}
	if input.AssignedManagerCode != nil {
		driver.AssignedManagerCode = input.AssignedManagerCode
		driver.AssignedManager = nil
	}

	licenseNumber := ""
	if driver.LicenseNumber != nil {
		licenseNumber = *driver.LicenseNumber
	}
	attributes := userAttributes(driver.Code, model.RoleDriver, map[string]string{"licenseNumber": licenseNumber, "phone": driver.Phone})

	if !driver.Provisioned() {
		// Placeholder synthesized during a scan: provision it now. It
		// carries no credentials until a password reset follows.
		externalID, err := uc.provisioner.provision(ctx, keycloak.UserRepresentation{
			Username:   driver.Username,
			Email:      stringValue(input.Email),
			FirstName:  stringValue(input.FirstName),
			LastName:   stringValue(input.LastName),
			Enabled:    driver.IsActive,
			Attributes: attributes,
		}, model.RoleDriver)
		if err != nil {
			return nil, err
		}
		driver.ExternalID = &externalID
		uc.logger.InfoContext(ctx, "Placeholder driver provisioned", "code", code, "external_id", externalID)
	} else {
		remote := keycloak.UserRepresentation{
			Username:   driver.Username,
			Email:      stringValue(input.Email),
			FirstName:  stringValue(input.FirstName),
			LastName:   stringValue(input.LastName),
			Enabled:    driver.IsActive,
			Attributes: attributes,
		}
		if err := uc.provisioner.remoteUpdate(ctx, *driver.ExternalID, remote); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	driver.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.driverRepo.Update(txCtx, driver); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserUpdated, &driver.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local driver update failed after remote update, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return driver, nil
}

func (uc *driverUseCase) DeleteDriver(ctx context.Context, code string) error {
	driver, err := uc.GetDriver(ctx, code)
	if err != nil {
		return err
	}

	if driver.Provisioned() {
		if err := uc.provisioner.remoteDelete(ctx, *driver.ExternalID); err != nil {
			return err
		}
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.driverRepo.DeleteByCode(txCtx, code); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserDeleted, &driver.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local driver delete failed after remote delete, state divergent",
			"code", code, "error", err)
		return err
	}

	uc.logger.InfoContext(ctx, "Driver deleted", "code", code)
	return nil
}

func (uc *driverUseCase) ResetPassword(ctx context.Context, code, password string, temporary bool) error {
	driver, err := uc.GetDriver(ctx, code)
	if err != nil {
		return err
	}
	if !driver.Provisioned() {
		return domain.NewValidation(fmt.Sprintf("driver %s has no remote identity yet", code))
	}

	if err := uc.provisioner.remoteResetPassword(ctx, *driver.ExternalID, password, temporary); err != nil {
		return err
	}
	return uc.provisioner.journal(ctx, syncKindPasswordReset, &driver.UserAccount)
}

func (uc *driverUseCase) SetActive(ctx context.Context, code string, active bool) (*model.Driver, error) {
	driver, err := uc.GetDriver(ctx, code)
	if err != nil {
		return nil, err
	}

	if driver.Provisioned() {
		if err := uc.provisioner.remoteSetEnabled(ctx, *driver.ExternalID, active); err != nil {
			return nil, err
		}
	}

	driver.IsActive = active
	now := time.Now()
	driver.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.driverRepo.Update(txCtx, driver); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindEnabledSet, &driver.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local driver activation update failed after remote change, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return driver, nil
}

func (uc *driverUseCase) GetBordereaux(ctx context.Context, code string) ([]*model.Bordereau, error) {
	return uc.bordereauRepo.GetByCurrentDriverCode(ctx, code)
}

func (uc *driverUseCase) GetDeliveryItems(ctx context.Context, code string) ([]*model.DeliveryItem, error) {
	return uc.itemRepo.GetByCurrentDriverCode(ctx, code)
}

func (uc *driverUseCase) checkUniqueness(ctx context.Context, username, code, licenseNumber, excludeCode string) error {
	if exists, err := uc.driverRepo.ExistsByUsername(ctx, username); err != nil {
		return fmt.Errorf("error checking username: %w", err)
	} else if exists {
		return domain.NewDuplicate("username", username)
	}

	if code != excludeCode {
		if exists, err := uc.driverRepo.ExistsByCode(ctx, code); err != nil {
			return fmt.Errorf("error checking code: %w", err)
		} else if exists {
			return domain.NewDuplicate("driver code", code)
		}
	}

	if licenseNumber != "" {
		if exists, err := uc.driverRepo.ExistsByLicenseNumber(ctx, licenseNumber); err != nil {
			return fmt.Errorf("error checking license number: %w", err)
		} else if exists {
			return domain.NewDuplicate("license number", licenseNumber)
		}
	}
	return nil
}

func (uc *driverUseCase) checkManager(ctx context.Context, managerCode string) error {
	if _, err := uc.managerRepo.GetByCode(ctx, managerCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("manager", managerCode)
		}
		return fmt.Errorf("error checking manager: %w", err)
	}
	return nil
}

// stringValue dereferences s, defaulting to empty
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
