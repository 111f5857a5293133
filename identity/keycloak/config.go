package keycloak

import "time"

// Config holds the connection settings for the Keycloak admin API.
// AdminClientID/AdminClientSecret identify a confidential service client
// granted the realm-management roles.
type Config struct {
	BaseURL           string
	Realm             string
	AdminClientID     string
	AdminClientSecret string
	Timeout           time.Duration
	RetryCount        int
}
