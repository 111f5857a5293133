package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pharmachain-service/domain"
	"pharmachain-service/domain/model"
	"pharmachain-service/domain/repository"
	"pharmachain-service/identity/keycloak"
	"pharmachain-service/pkg/logger"
	"pharmachain-service/pkg/metrics"
)

// Journal kinds written to the identity-sync topic
const (
	syncKindUserCreated   = "user.created"
	syncKindUserUpdated   = "user.updated"
	syncKindUserDeleted   = "user.deleted"
	syncKindPasswordReset = "user.password_reset"
	syncKindEnabledSet    = "user.enabled_set"
)

// identitySyncEvent is the payload journaled for every identity provider
// mutation, giving operators a reconciliation trail for the dual-write.
type identitySyncEvent struct {
	Kind       string    `json:"kind"`
	Role       string    `json:"role"`
	Code       string    `json:"code"`
	Username   string    `json:"username"`
	ExternalID string    `json:"externalId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// identityProvisioner bundles the identity provider client with the
// outbox journal. All three account usecases share it.
type identityProvisioner struct {
	kc         keycloak.AdminService
	outboxRepo repository.Outbox
	metrics    *metrics.Metrics
	logger     logger.LoggerInterface
	topic      string
}

func newIdentityProvisioner(
	kc keycloak.AdminService,
	outboxRepo repository.Outbox,
	m *metrics.Metrics,
	appLogger logger.LoggerInterface,
	topic string,
) *identityProvisioner {
	return &identityProvisioner{
		kc:         kc,
		outboxRepo: outboxRepo,
		metrics:    m,
		logger:     appLogger,
		topic:      topic,
	}
}

// provision creates the remote identity and assigns its realm role,
// returning the new external id. Nothing local is written here; callers
// persist the mirror row only after this succeeds.
func (p *identityProvisioner) provision(ctx context.Context, user keycloak.UserRepresentation, role string) (string, error) {
	externalID, err := p.kc.CreateUser(ctx, user)
	if err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("create").Inc()
		p.logger.ErrorContext(ctx, "Identity creation failed", "username", user.Username, "error", err)
		return "", domain.NewProvisioningFailure("create", err)
	}

	if err := p.kc.AssignRealmRole(ctx, externalID, role); err != nil {
		// The remote account exists but carries no role; it is orphaned
		// until an operator reconciles it from the journal.
		p.metrics.ProvisioningFailures.WithLabelValues("assign_role").Inc()
		p.logger.ErrorContext(ctx, "Role assignment failed, remote identity orphaned",
			"username", user.Username, "external_id", externalID, "error", err)
		return "", domain.NewProvisioningFailure("assign role", err)
	}
	return externalID, nil
}

func (p *identityProvisioner) remoteUpdate(ctx context.Context, externalID string, user keycloak.UserRepresentation) error {
	if err := p.kc.UpdateUser(ctx, externalID, user); err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("update").Inc()
		return domain.NewProvisioningFailure("update", err)
	}
	return nil
}

func (p *identityProvisioner) remoteDelete(ctx context.Context, externalID string) error {
	if err := p.kc.DeleteUser(ctx, externalID); err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("delete").Inc()
		return domain.NewProvisioningFailure("delete", err)
	}
	return nil
}

func (p *identityProvisioner) remoteResetPassword(ctx context.Context, externalID, password string, temporary bool) error {
	if err := p.kc.ResetPassword(ctx, externalID, password, temporary); err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("reset_password").Inc()
		return domain.NewProvisioningFailure("reset password", err)
	}
	return nil
}

func (p *identityProvisioner) remoteSetEnabled(ctx context.Context, externalID string, enabled bool) error {
	if err := p.kc.SetEnabled(ctx, externalID, enabled); err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("set_enabled").Inc()
		return domain.NewProvisioningFailure("set enabled", err)
	}
	return nil
}

func (p *identityProvisioner) remoteUpdateAttributes(ctx context.Context, externalID string, attributes map[string][]string) error {
	if err := p.kc.UpdateAttributes(ctx, externalID, attributes); err != nil {
		p.metrics.ProvisioningFailures.WithLabelValues("update_attributes").Inc()
		return domain.NewProvisioningFailure("update attributes", err)
	}
	return nil
}

// journal enqueues an identity-sync event. It must run in the same
// transaction as the local write it describes.
func (p *identityProvisioner) journal(ctx context.Context, kind string, account *model.UserAccount) error {
	event := identitySyncEvent{
		Kind:       kind,
		Role:       account.Role,
		Code:       account.Code,
		Username:   account.Username,
		OccurredAt: time.Now(),
	}
	if account.ExternalID != nil {
		event.ExternalID = *account.ExternalID
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal identity sync event: %w", err)
	}

	return p.outboxRepo.Enqueue(ctx, &model.OutboxEntry{
		Topic:   p.topic,
		Kind:    kind,
		Key:     account.Code,
		Payload: string(payload),
		Status:  model.OutboxPending,
	})
}

// userAttributes builds the domain metadata attached to a remote identity
func userAttributes(code, userType string, extra map[string]string) map[string][]string {
	attrs := map[string][]string{
		"code":     {code},
		"userType": {userType},
	}
	for k, v := range extra {
		if v != "" {
			attrs[k] = []string{v}
		}
	}
	return attrs
}

func passwordCredentials(password string) []keycloak.Credential {
	if password == "" {
		return nil
	}
	return []keycloak.Credential{{
		Type:      "password",
		Value:     password,
		Temporary: false,
	}}
}
