package usecase

import (
	"context"
	"errors"
	"fmt"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/pkg/logger"
)

// UpdateClientInput holds the optional fields of a client update
type UpdateClientInput struct {
	Name        *string
	Address     *string
	Phone       *string
	Coordinates *string
	SecteurCode *string
}

// ClientUseCase defines business operations for pharmacy clients
type ClientUseCase interface {
	CreateClient(ctx context.Context, client *model.Client) error
	GetClient(ctx context.Context, clientCode string) (*model.Client, error)
	ListClients(ctx context.Context, offset, limit int) ([]*model.Client, int, error)
	UpdateClient(ctx context.Context, clientCode string, input *UpdateClientInput) (*model.Client, error)
	DeleteClient(ctx context.Context, clientCode string) error
	GetBySecteur(ctx context.Context, secteurCode string) ([]*model.Client, error)
}

type clientUseCase struct {
	clientRepo  repository.Client
	managerRepo repository.Manager
	logger      logger.LoggerInterface
}

// NewClientUseCase creates a new instance of clientUseCase
func NewClientUseCase(clientRepo repository.Client, managerRepo repository.Manager, appLogger logger.LoggerInterface) ClientUseCase {
	return &clientUseCase{
		clientRepo:  clientRepo,
		managerRepo: managerRepo,
		logger:      appLogger,
	}
}

func (uc *clientUseCase) CreateClient(ctx context.Context, client *model.Client) error {
	if client.ClientCode == "" {
		return domain.NewValidation("client code is required")
	}

	exists, err := uc.clientRepo.ExistsByCode(ctx, client.ClientCode)
	if err != nil {
		return fmt.Errorf("error checking client code: %w", err)
	}
	if exists {
		return domain.NewDuplicate("client code", client.ClientCode)
	}

	if client.SecteurCode != nil {
		if err := uc.checkSecteur(ctx, *client.SecteurCode); err != nil {
			return err
		}
	}

	client.AutoCreated = false
	if err := uc.clientRepo.Create(ctx, client); err != nil {
		return err
	}
	uc.logger.InfoContext(ctx, "Client created", "client_code", client.ClientCode)
	return nil
}

func (uc *clientUseCase) GetClient(ctx context.Context, clientCode string) (*model.Client, error) {
	client, err := uc.clientRepo.GetByCode(ctx, clientCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewResourceNotFound("client", clientCode)
		}
		return nil, fmt.Errorf("error getting client: %w", err)
	}
	return client, nil
}

func (uc *clientUseCase) ListClients(ctx context.Context, offset, limit int) ([]*model.Client, int, error) {
	offset, limit = normalizePage(offset, limit)
	clients, total, err := uc.clientRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing clients: %w", err)
	}
	return clients, total, nil
}

func (uc *clientUseCase) UpdateClient(ctx context.Context, clientCode string, input *UpdateClientInput) (*model.Client, error) {
	client, err := uc.GetClient(ctx, clientCode)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		client.Name = *input.Name
	}
	if input.Address != nil {
		client.Address = *input.Address
	}
	if input.Phone != nil {
		client.Phone = *input.Phone
	}
	if input.Coordinates != nil {
		client.Coordinates = *input.Coordinates
	}
	if input.SecteurCode != nil {
		if err := uc.checkSecteur(ctx, *input.SecteurCode); err != nil {
			return nil, err
		}
		client.SecteurCode = input.SecteurCode
		client.Secteur = nil
	}

	if err := uc.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (uc *clientUseCase) DeleteClient(ctx context.Context, clientCode string) error {
	if err := uc.clientRepo.DeleteByCode(ctx, clientCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("client", clientCode)
		}
		return fmt.Errorf("error deleting client: %w", err)
	}
	return nil
}

func (uc *clientUseCase) GetBySecteur(ctx context.Context, secteurCode string) ([]*model.Client, error) {
	return uc.clientRepo.GetBySecteurCode(ctx, secteurCode)
}

func (uc *clientUseCase) checkSecteur(ctx context.Context, secteurCode string) error {
	if _, err := uc.managerRepo.GetByCode(ctx, secteurCode); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NewResourceNotFound("manager", secteurCode)
		}
		return fmt.Errorf("error checking secteur: %w", err)
	}
	return nil
}
