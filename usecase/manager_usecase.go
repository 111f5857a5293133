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

// CreateManagerInput is the explicit manager creation payload
type CreateManagerInput struct {
	Username          string
	Email             string
	Password          string
	FirstName         string
	LastName          string
	Code              string
	SecteurName       string
	Phone             string
	Address           string
	AssignedAdminCode *string
}

// UpdateManagerInput holds the optional fields of a manager update
type UpdateManagerInput struct {
	Email             *string
	FirstName         *string
	LastName          *string
	SecteurName       *string
	Phone             *string
	Address           *string
	AssignedAdminCode *string
}

// ManagerUseCase defines business operations for secteur managers
type ManagerUseCase interface {
	CreateManager(ctx context.Context, input *CreateManagerInput) (*model.Manager, error)
	GetManager(ctx context.Context, code string) (*model.Manager, error)
	GetManagerByExternalID(ctx context.Context, externalID string) (*model.Manager, error)
	ListManagers(ctx context.Context, offset, limit int) ([]*model.Manager, int, error)
	UpdateManager(ctx context.Context, code string, input *UpdateManagerInput) (*model.Manager, error)
	DeleteManager(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, password string, temporary bool) error
	SetActive(ctx context.Context, code string, active bool) (*model.Manager, error)
	GetDrivers(ctx context.Context, code string) ([]*model.Driver, error)
	GetClients(ctx context.Context, code string) ([]*model.Client, error)
	GetBordereaux(ctx context.Context, code string) ([]*model.Bordereau, error)
}

type managerUseCase struct {
	managerRepo   repository.Manager
	adminRepo     repository.Admin
	driverRepo    repository.Driver
	clientRepo    repository.Client
	bordereauRepo repository.Bordereau
	transactor    repository.Transactor
	provisioner   *identityProvisioner
	logger        logger.LoggerInterface
}

// NewManagerUseCase creates a new instance of managerUseCase
func NewManagerUseCase(
	managerRepo repository.Manager,
	adminRepo repository.Admin,
	driverRepo repository.Driver,
	clientRepo repository.Client,
	bordereauRepo repository.Bordereau,
	transactor repository.Transactor,
	kc keycloak.AdminService,
	outboxRepo repository.Outbox,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
	syncTopic string,
) ManagerUseCase {
	return &managerUseCase{
		managerRepo:   managerRepo,
		adminRepo:     adminRepo,
		driverRepo:    driverRepo,
		clientRepo:    clientRepo,
		bordereauRepo: bordereauRepo,
		transactor:    transactor,
		provisioner:   newIdentityProvisioner(kc, outboxRepo, m, appLogger, syncTopic),
		logger:        appLogger,
	}
}

func (uc *managerUseCase) CreateManager(ctx context.Context, input *CreateManagerInput) (*model.Manager, error) {
	if input.Username == "" || input.Code == "" {
		return nil, domain.NewValidation("username and code are required")
	}

	if exists, err := uc.managerRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	} else if exists {
		return nil, domain.NewDuplicate("username", input.Username)
	}
	if exists, err := uc.managerRepo.ExistsByCode(ctx, input.Code); err != nil {
		return nil, fmt.Errorf("error checking code: %w", err)
	} else if exists {
		return nil, domain.NewDuplicate("manager code", input.Code)
	}
	if input.SecteurName != "" {
		if exists, err := uc.managerRepo.ExistsBySecteurName(ctx, input.SecteurName); err != nil {
			return nil, fmt.Errorf("error checking secteur name: %w", err)
		} else if exists {
			return nil, domain.NewDuplicate("secteur name", input.SecteurName)
		}
	}
	if input.AssignedAdminCode != nil {
		if err := uc.checkAdmin(ctx, *input.AssignedAdminCode); err != nil {
			return nil, err
		}
	}

	externalID, err := uc.provisioner.provision(ctx, keycloak.UserRepresentation{
		Username:    input.Username,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Enabled:     true,
		Attributes:  userAttributes(input.Code, model.RoleManager, map[string]string{"secteurName": input.SecteurName, "phone": input.Phone}),
		Credentials: passwordCredentials(input.Password),
	}, model.RoleManager)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	manager := &model.Manager{
		UserAccount: model.UserAccount{
			ExternalID: &externalID,
			Username:   input.Username,
			Code:       input.Code,
			IsActive:   true,
			SyncedAt:   &now,
		},
		Phone:             input.Phone,
		Address:           input.Address,
		AssignedAdminCode: input.AssignedAdminCode,
	}
	if input.SecteurName != "" {
		manager.SecteurName = &input.SecteurName
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.managerRepo.Create(txCtx, manager); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserCreated, &manager.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local manager write failed after remote provisioning",
			"code", input.Code, "external_id", externalID, "error", err)
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Manager created", "code", manager.Code, "external_id", externalID)
	return manager, nil
}

func (uc *managerUseCase) GetManager(ctx context.Context, code string) (*model.Manager, error) {
	manager, err := uc.managerRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("manager", code)
		}
		return nil, fmt.Errorf("error getting manager: %w", err)
	}
	return manager, nil
}

func (uc *managerUseCase) GetManagerByExternalID(ctx context.Context, externalID string) (*model.Manager, error) {
	manager, err := uc.managerRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("manager", externalID)
		}
		return nil, fmt.Errorf("error getting manager by external id: %w", err)
	}
	return manager, nil
}

func (uc *managerUseCase) ListManagers(ctx context.Context, offset, limit int) ([]*model.Manager, int, error) {
	offset, limit = normalizePage(offset, limit)
	managers, total, err := uc.managerRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing managers: %w", err)
	}
	return managers, total, nil
}

func (uc *managerUseCase) UpdateManager(ctx context.Context, code string, input *UpdateManagerInput) (*model.Manager, error) {
	manager, err := uc.GetManager(ctx, code)
	if err != nil {
		return nil, err
	}

	if input.SecteurName != nil && (manager.SecteurName == nil || *manager.SecteurName != *input.SecteurName) {
		exists, err := uc.managerRepo.ExistsBySecteurName(ctx, *input.SecteurName)
		if err != nil {
			return nil, fmt.Errorf("error checking secteur name: %w", err)
		}
		if exists {
			return nil, domain.NewDuplicate("secteur name", *input.SecteurName)
		}
	}
	if input.AssignedAdminCode != nil {
		if err := uc.checkAdmin(ctx, *input.AssignedAdminCode); err != nil {
			return nil, err
		}
	}

	if input.SecteurName != nil {
		manager.SecteurName = input.SecteurName
	}
	if input.Phone != nil {
		manager.Phone = *input.Phone
	}
	if input.Address != nil {
		manager.Address = *input.Address
	}
	if input.AssignedAdminCode != nil {
		manager.AssignedAdminCode = input.AssignedAdminCode
		manager.AssignedAdmin = nil
	}

	secteurName := ""
	if manager.SecteurName != nil {
		secteurName = *manager.SecteurName
	}
	attributes := userAttributes(manager.Code, model.RoleManager, map[string]string{"secteurName": secteurName, "phone": manager.Phone})

	if !manager.Provisioned() {
		externalID, err := uc.provisioner.provision(ctx, keycloak.UserRepresentation{
			Username:   manager.Username,
			Email:      stringValue(input.Email),
			FirstName:  stringValue(input.FirstName),
			LastName:   stringValue(input.LastName),
			Enabled:    manager.IsActive,
			Attributes: attributes,
		}, model.RoleManager)
		if err != nil {
			return nil, err
		}
		manager.ExternalID = &externalID
		uc.logger.InfoContext(ctx, "Placeholder manager provisioned", "code", code, "external_id", externalID)
	} else {
		remote := keycloak.UserRepresentation{
			Username:   manager.Username,
			Email:      stringValue(input.Email),
			FirstName:  stringValue(input.FirstName),
			LastName:   stringValue(input.LastName),
			Enabled:    manager.IsActive,
			Attributes: attributes,
		}
		if err := uc.provisioner.remoteUpdate(ctx, *manager.ExternalID, remote); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	manager.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.managerRepo.Update(txCtx, manager); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserUpdated, &manager.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local manager update failed after remote update, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return manager, nil
}

func (uc *managerUseCase) DeleteManager(ctx context.Context, code string) error {
	manager, err := uc.GetManager(ctx, code)
	if err != nil {
		return err
	}

	if manager.Provisioned() {
		if err := uc.provisioner.remoteDelete(ctx, *manager.ExternalID); err != nil {
			return err
		}
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.managerRepo.DeleteByCode(txCtx, code); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserDeleted, &manager.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local manager delete failed after remote delete, state divergent",
			"code", code, "error", err)
		return err
	}

	uc.logger.InfoContext(ctx, "Manager deleted", "code", code)
	return nil
}

func (uc *managerUseCase) ResetPassword(ctx context.Context, code, password string, temporary bool) error {
	manager, err := uc.GetManager(ctx, code)
	if err != nil {
		return err
	}
	if !manager.Provisioned() {
		return domain.NewValidation(fmt.Sprintf("manager %s has no remote identity yet", code))
	}

	if err := uc.provisioner.remoteResetPassword(ctx, *manager.ExternalID, password, temporary); err != nil {
		return err
	}
	return uc.provisioner.journal(ctx, syncKindPasswordReset, &manager.UserAccount)
}

func (uc *managerUseCase) SetActive(ctx context.Context, code string, active bool) (*model.Manager, error) {
	manager, err := uc.GetManager(ctx, code)
	if err != nil {
		return nil, err
	}

	if manager.Provisioned() {
		if err := uc.provisioner.remoteSetEnabled(ctx, *manager.ExternalID, active); err != nil {
			return nil, err
		}
	}

	manager.IsActive = active
	now := time.Now()
	manager.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.managerRepo.Update(txCtx, manager); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindEnabledSet, &manager.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local manager activation update failed after remote change, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return manager, nil
}

func (uc *managerUseCase) GetDrivers(ctx context.Context, code string) ([]*model.Driver, error) {
	return uc.driverRepo.GetByAssignedManagerCode(ctx, code)
}

func (uc *managerUseCase) GetClients(ctx context.Context, code string) ([]*model.Client, error) {
	return uc.clientRepo.GetBySecteurCode(ctx, code)
}

func (uc *managerUseCase) GetBordereaux(ctx context.Context, code string) ([]*model.Bordereau, error) {
	return uc.bordereauRepo.GetBySecteurCode(ctx, code)
}

func (uc *managerUseCase) checkAdmin(ctx context.Context, adminCode string) error {
	if _, err := uc.adminRepo.GetByCode(ctx, adminCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("admin", adminCode)
		}
		return fmt.Errorf("error checking admin: %w", err)
	}
	return nil
}
