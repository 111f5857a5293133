// Package keycloak implements the admin REST client used to provision
// and maintain user accounts in the external identity provider.
package keycloak

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"pharmachain-service/pkg/httpclient"
	"pharmachain-service/pkg/logger"

	"golang.org/x/oauth2/clientcredentials"
)

// UserRepresentation mirrors the subset of the Keycloak admin user
// payload this service reads and writes.
type UserRepresentation struct {
	ID            string              `json:"id,omitempty"`
	Username      string              `json:"username"`
	Email         string              `json:"email,omitempty"`
	FirstName     string              `json:"firstName,omitempty"`
	LastName      string              `json:"lastName,omitempty"`
	Enabled       bool                `json:"enabled"`
	EmailVerified bool                `json:"emailVerified"`
	Attributes    map[string][]string `json:"attributes,omitempty"`
	Credentials   []Credential        `json:"credentials,omitempty"`
}

// Credential is a Keycloak credential representation
type Credential struct {
	Type      string `json:"type"`
	Value     string `json:"value"`
	Temporary bool   `json:"temporary"`
}

type roleRepresentation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdminService defines the identity provider operations the account
// usecases depend on. Every method targets the configured realm.
type AdminService interface {
	// CreateUser registers a new user and returns its Keycloak id
	CreateUser(ctx context.Context, user UserRepresentation) (string, error)
	GetUser(ctx context.Context, externalID string) (*UserRepresentation, error)
	UpdateUser(ctx context.Context, externalID string, user UserRepresentation) error
	DeleteUser(ctx context.Context, externalID string) error
	AssignRealmRole(ctx context.Context, externalID, roleName string) error
	ResetPassword(ctx context.Context, externalID, password string, temporary bool) error
	SetEnabled(ctx context.Context, externalID string, enabled bool) error
	UpdateAttributes(ctx context.Context, externalID string, attributes map[string][]string) error
}

type adminService struct {
	http   httpclient.HTTPClient
	realm  string
	logger logger.LoggerInterface
}

// NewAdminService builds the admin client. Tokens are obtained via the
// client-credentials grant and injected on every request.
func NewAdminService(cfg Config, log logger.LoggerInterface) AdminService {
	ccCfg := &clientcredentials.Config{
		ClientID:     cfg.AdminClientID,
		ClientSecret: cfg.AdminClientSecret,
		TokenURL:     fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", strings.TrimRight(cfg.BaseURL, "/"), cfg.Realm),
	}

	client := httpclient.New(
		httpclient.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/")),
		httpclient.WithHTTPClient(ccCfg.Client(context.Background())),
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithRetryCount(cfg.RetryCount),
	)

	return &adminService{
		http:   client,
		realm:  cfg.Realm,
		logger: log,
	}
}

func (s *adminService) usersPath(parts ...string) string {
	path := fmt.Sprintf("/admin/realms/%s/users", s.realm)
	if len(parts) > 0 {
		path += "/" + strings.Join(parts, "/")
	}
	return path
}

func (s *adminService) CreateUser(ctx context.Context, user UserRepresentation) (string, error) {
	resp, err := s.http.Post(ctx, s.usersPath(), user, nil)
	if err != nil {
		return "", fmt.Errorf("keycloak create user: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode == http.StatusConflict {
		return "", fmt.Errorf("keycloak create user: username %q already exists", user.Username)
	}
	if resp.StatusCode != http.StatusCreated {
		return "", unexpectedStatus("create user", resp)
	}

	// The new user's id is only exposed through the Location header.
	location := resp.Header.Get("Location")
	idx := strings.LastIndex(location, "/")
	if idx < 0 || idx == len(location)-1 {
		return "", fmt.Errorf("keycloak create user: missing id in location header %q", location)
	}
	externalID := location[idx+1:]

	s.logger.InfoContext(ctx, "Keycloak user created", "username", user.Username, "external_id", externalID)
	return externalID, nil
}

func (s *adminService) GetUser(ctx context.Context, externalID string) (*UserRepresentation, error) {
	var user UserRepresentation
	if err := s.http.GetJSON(ctx, s.usersPath(externalID), &user, nil); err != nil {
		return nil, fmt.Errorf("keycloak get user %s: %w", externalID, err)
	}
	return &user, nil
}

func (s *adminService) UpdateUser(ctx context.Context, externalID string, user UserRepresentation) error {
	resp, err := s.http.Put(ctx, s.usersPath(externalID), user, nil)
	if err != nil {
		return fmt.Errorf("keycloak update user %s: %w", externalID, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus("update user", resp)
	}
	s.logger.InfoContext(ctx, "Keycloak user updated", "external_id", externalID)
	return nil
}

func (s *adminService) DeleteUser(ctx context.Context, externalID string) error {
	resp, err := s.http.Delete(ctx, s.usersPath(externalID), nil)
	if err != nil {
		return fmt.Errorf("keycloak delete user %s: %w", externalID, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return unexpectedStatus("delete user", resp)
	}
	s.logger.InfoContext(ctx, "Keycloak user deleted", "external_id", externalID)
	return nil
}

func (s *adminService) AssignRealmRole(ctx context.Context, externalID, roleName string) error {
	var role roleRepresentation
	rolePath := fmt.Sprintf("/admin/realms/%s/roles/%s", s.realm, roleName)
	if err := s.http.GetJSON(ctx, rolePath, &role, nil); err != nil {
		return fmt.Errorf("keycloak resolve role %s: %w", roleName, err)
	}

	resp, err := s.http.Post(ctx, s.usersPath(externalID, "role-mappings", "realm"), []roleRepresentation{role}, nil)
	if err != nil {
		return fmt.Errorf("keycloak assign role %s: %w", roleName, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus("assign role", resp)
	}
	s.logger.InfoContext(ctx, "Keycloak realm role assigned", "external_id", externalID, "role", roleName)
	return nil
}

func (s *adminService) ResetPassword(ctx context.Context, externalID, password string, temporary bool) error {
	credential := Credential{
		Type:      "password",
		Value:     password,
		Temporary: temporary,
	}
	resp, err := s.http.Put(ctx, s.usersPath(externalID, "reset-password"), credential, nil)
	if err != nil {
		return fmt.Errorf("keycloak reset password for %s: %w", externalID, err)
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusNoContent {
		return unexpectedStatus("reset password", resp)
	}
	s.logger.InfoContext(ctx, "Keycloak password reset", "external_id", externalID)
	return nil
}

func (s *adminService) SetEnabled(ctx context.Context, externalID string, enabled bool) error {
	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return err
	}
	user.Enabled = enabled
	return s.UpdateUser(ctx, externalID, *user)
}

func (s *adminService) UpdateAttributes(ctx context.Context, externalID string, attributes map[string][]string) error {
	user, err := s.GetUser(ctx, externalID)
	if err != nil {
		return err
	}
	if user.Attributes == nil {
		user.Attributes = make(map[string][]string)
	}
	for k, v := range attributes {
		user.Attributes[k] = v
	}
	return s.UpdateUser(ctx, externalID, *user)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func unexpectedStatus(operation string, resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("keycloak %s: unexpected status %d: %s", operation, resp.StatusCode, strings.TrimSpace(string(body)))
}
