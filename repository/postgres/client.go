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

type clientRepository struct {
	db     *gorm.DB
	logger logger.LoggerInterface
}

// NewClientRepository creates the PostgreSQL-backed pharmacy client repository
func NewClientRepository(db *gorm.DB, logger logger.LoggerInterface) repository.Client {
	return &clientRepository{
		db:     db,
		logger: logger,
	}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Create(client).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to create client", "client_code", client.ClientCode, "error", err)
		return fmt.Errorf("failed to create client: %w", err)
	}
	r.logger.InfoContext(ctx, "Client created", "client_code", client.ClientCode)
	return nil
}

func (r *clientRepository) GetByCode(ctx context.Context, clientCode string) (*model.Client, error) {
	var client model.Client
	if err := dbFrom(ctx, r.db).WithContext(ctx).Preload("Secteur").Where("client_code = ?", clientCode).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return &client, nil
}

func (r *clientRepository) ExistsByCode(ctx context.Context, clientCode string) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).WithContext(ctx).Model(&model.Client{}).Where("client_code = ?", clientCode).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check client code: %w", err)
	}
	return count > 0, nil
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	if err := dbFrom(ctx, r.db).WithContext(ctx).Save(client).Error; err != nil {
		r.logger.ErrorContext(ctx, "Failed to update client", "client_code", client.ClientCode, "error", err)
		return fmt.Errorf("failed to update client: %w", err)
	}
	r.logger.InfoContext(ctx, "Client updated", "client_code", client.ClientCode)
	return nil
}

func (r *clientRepository) DeleteByCode(ctx context.Context, clientCode string) error {
	result := dbFrom(ctx, r.db).WithContext(ctx).Where("client_code = ?", clientCode).Delete(&model.Client{})
	if result.Error != nil {
		r.logger.ErrorContext(ctx, "Failed to delete client", "client_code", clientCode, "error", result.Error)
		return fmt.Errorf("failed to delete client: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Client deleted", "client_code", clientCode)
	return nil
}

func (r *clientRepository) List(ctx context.Context, offset, limit int) ([]*model.Client, int, error) {
	db := dbFrom(ctx, r.db).WithContext(ctx)

	var total int64
	if err := db.Model(&model.Client{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	var clients []*model.Client
	if err := db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&clients).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, int(total), nil
}

func (r *clientRepository) GetBySecteurCode(ctx context.Context, secteurCode string) ([]*model.Client, error) {
	var clients []*model.Client
	if err := dbFrom(ctx, r.db).WithContext(ctx).Where("secteur_code = ?", secteurCode).Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("failed to get clients by secteur: %w", err)
	}
	return clients, nil
}
