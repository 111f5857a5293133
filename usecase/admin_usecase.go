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

// CreateAdminInput is the explicit admin creation payload
type CreateAdminInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Code      string
}

// UpdateAdminInput holds the optional fields of an admin update
type UpdateAdminInput struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// AdminUseCase defines business operations for administrators
type AdminUseCase interface {
	CreateAdmin(ctx context.Context, input *CreateAdminInput) (*model.Admin, error)
	GetAdmin(ctx context.Context, code string) (*model.Admin, error)
	GetAdminByExternalID(ctx context.Context, externalID string) (*model.Admin, error)
	ListAdmins(ctx context.Context, offset, limit int) ([]*model.Admin, int, error)
	UpdateAdmin(ctx context.Context, code string, input *UpdateAdminInput) (*model.Admin, error)
	DeleteAdmin(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, password string, temporary bool) error
	SetActive(ctx context.Context, code string, active bool) (*model.Admin, error)
}

type adminUseCase struct {
	adminRepo   repository.Admin
	transactor  repository.Transactor
	provisioner *identityProvisioner
	logger      logger.LoggerInterface
}

// NewAdminUseCase creates a new instance of adminUseCase
func NewAdminUseCase(
	adminRepo repository.Admin,
	transactor repository.Transactor,
	kc keycloak.AdminService,
	outboxRepo repository.Outbox,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
	syncTopic string,
) AdminUseCase {
	return &adminUseCase{
		adminRepo:   adminRepo,
		transactor:  transactor,
		provisioner: newIdentityProvisioner(kc, outboxRepo, m, appLogger, syncTopic),
		logger:      appLogger,
	}
}

func (uc *adminUseCase) CreateAdmin(ctx context.Context, input *CreateAdminInput) (*model.Admin, error) {
	if input.Username == "" || input.Code == "" {
		return nil, domain.NewValidation("username and code are required")
	}

	if exists, err := uc.adminRepo.ExistsByUsername(ctx, input.Username); err != nil {
		return nil, fmt.Errorf("error checking username: %w", err)
	} else if exists {
		return nil, domain.NewDuplicate("username", input.Username)
	}
	if exists, err := uc.adminRepo.ExistsByCode(ctx, input.Code); err != nil {
		return nil, fmt.Errorf("error checking code: %w", err)
	} else if exists {
		return nil, domain.NewDuplicate("admin code", input.Code)
	}

	externalID, err := uc.provisioner.provision(ctx, keycloak.UserRepresentation{
		Username:    input.Username,
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		Enabled:     true,
		Attributes:  userAttributes(input.Code, model.RoleAdmin, nil),
		Credentials: passwordCredentials(input.Password),
	}, model.RoleAdmin)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	admin := &model.Admin{
		UserAccount: model.UserAccount{
			ExternalID: &externalID,
			Username:   input.Username,
			Code:       input.Code,
			IsActive:   true,
			SyncedAt:   &now,
		},
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.adminRepo.Create(txCtx, admin); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserCreated, &admin.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local admin write failed after remote provisioning",
			"code", input.Code, "external_id", externalID, "error", err)
		return nil, err
	}

	uc.logger.InfoContext(ctx, "Admin created", "code", admin.Code, "external_id", externalID)
	return admin, nil
}

func (uc *adminUseCase) GetAdmin(ctx context.Context, code string) (*model.Admin, error) {
	admin, err := uc.adminRepo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("admin", code)
		}
		return nil, fmt.Errorf("error getting admin: %w", err)
	}
	return admin, nil
}

func (uc *adminUseCase) GetAdminByExternalID(ctx context.Context, externalID string) (*model.Admin, error) {
	admin, err := uc.adminRepo.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("admin", externalID)
		}
		return nil, fmt.Errorf("error getting admin by external id: %w", err)
	}
	return admin, nil
}

func (uc *adminUseCase) ListAdmins(ctx context.Context, offset, limit int) ([]*model.Admin, int, error) {
	offset, limit = normalizePage(offset, limit)
	admins, total, err := uc.adminRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing admins: %w", err)
	}
	return admins, total, nil
}

func (uc *adminUseCase) UpdateAdmin(ctx context.Context, code string, input *UpdateAdminInput) (*model.Admin, error) {
	admin, err := uc.GetAdmin(ctx, code)
	if err != nil {
		return nil, err
	}

	remote := keycloak.UserRepresentation{
		Username:   admin.Username,
		Email:      stringValue(input.Email),
		FirstName:  stringValue(input.FirstName),
		LastName:   stringValue(input.LastName),
		Enabled:    admin.IsActive,
		Attributes: userAttributes(admin.Code, model.RoleAdmin, nil),
	}

	if !admin.Provisioned() {
		externalID, err := uc.provisioner.provision(ctx, remote, model.RoleAdmin)
		if err != nil {
			return nil, err
		}
		admin.ExternalID = &externalID
	} else if err := uc.provisioner.remoteUpdate(ctx, *admin.ExternalID, remote); err != nil {
		return nil, err
	}

	now := time.Now()
	admin.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.adminRepo.Update(txCtx, admin); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserUpdated, &admin.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local admin update failed after remote update, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return admin, nil
}

func (uc *adminUseCase) DeleteAdmin(ctx context.Context, code string) error {
	admin, err := uc.GetAdmin(ctx, code)
	if err != nil {
		return err
	}

	if admin.Provisioned() {
		if err := uc.provisioner.remoteDelete(ctx, *admin.ExternalID); err != nil {
			return err
		}
	}

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.adminRepo.DeleteByCode(txCtx, code); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindUserDeleted, &admin.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local admin delete failed after remote delete, state divergent",
			"code", code, "error", err)
		return err
	}

	uc.logger.InfoContext(ctx, "Admin deleted", "code", code)
	return nil
}

func (uc *adminUseCase) ResetPassword(ctx context.Context, code, password string, temporary bool) error {
	admin, err := uc.GetAdmin(ctx, code)
	if err != nil {
		return err
	}
	if !admin.Provisioned() {
		return domain.NewValidation(fmt.Sprintf("admin %s has no remote identity yet", code))
	}

	if err := uc.provisioner.remoteResetPassword(ctx, *admin.ExternalID, password, temporary); err != nil {
		return err
	}
	return uc.provisioner.journal(ctx, syncKindPasswordReset, &admin.UserAccount)
}

func (uc *adminUseCase) SetActive(ctx context.Context, code string, active bool) (*model.Admin, error) {
	admin, err := uc.GetAdmin(ctx, code)
	if err != nil {
		return nil, err
	}

	if admin.Provisioned() {
		if err := uc.provisioner.remoteSetEnabled(ctx, *admin.ExternalID, active); err != nil {
			return nil, err
		}
	}

	admin.IsActive = active
	now := time.Now()
	admin.SyncedAt = &now

	err = uc.transactor.ExecuteInTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.adminRepo.Update(txCtx, admin); err != nil {
			return err
		}
		return uc.provisioner.journal(txCtx, syncKindEnabledSet, &admin.UserAccount)
	})
	if err != nil {
		uc.logger.ErrorContext(ctx, "Local admin activation update failed after remote change, state divergent",
			"code", code, "error", err)
		return nil, err
	}
	return admin, nil
}
