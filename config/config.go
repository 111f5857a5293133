// Package config handles application configuration loading and management
package config

import (
	"errors"
	"log"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration
// It contains nested configurations for application, server, infrastructure, and identity settings
type Config struct {
	// Application contains application-level settings
	Application ApplicationConfig `mapstructure:"application"`
	// Server contains HTTP server settings
	Server ServerConfig `mapstructure:"server"`
	// Infrastructure contains infrastructure connection settings
	Infrastructure InfrastructureConfig `mapstructure:"infrastructure"`
	// Identity contains identity provider settings
	Identity IdentityConfig `mapstructure:"identity"`
	// Outbox contains outbox dispatcher settings
	Outbox OutboxConfig `mapstructure:"outbox"`
}

// ApplicationConfig holds the application-level configuration
type ApplicationConfig struct {
	// Name specifies the name of the application
	Name string `mapstructure:"name"`
	// Version specifies the version of the application
	Version string `mapstructure:"version"`
}

// ServerConfig holds the server configuration
// It contains settings for HTTP server behavior including timeouts and port
type ServerConfig struct {
	// Port specifies the port number the server will listen on
	Port int `mapstructure:"port"`
	// ReadTimeout defines the maximum duration for reading the entire request, including the body, in seconds
	ReadTimeout int `mapstructure:"read_timeout"` // in seconds
	// WriteTimeout defines the maximum duration before timing out writes of the response, in seconds
	WriteTimeout int `mapstructure:"write_timeout"` // in seconds
	// ShutdownTimeout defines the maximum duration the server will wait for active connections to finish during shutdown, in seconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // in seconds
}

// InfrastructureConfig holds the infrastructure configuration
// It contains settings for infrastructure connections like databases and message queues
type InfrastructureConfig struct {
	// Postgres contains PostgreSQL-specific settings
	Postgres PostgresConfig `mapstructure:"postgres"`
	// Redis contains Redis configuration
	Redis RedisConfig `mapstructure:"redis"`
	// Kafka contains Kafka configuration
	Kafka KafkaConfig `mapstructure:"kafka"`
}

// IdentityConfig holds the identity provider configuration
type IdentityConfig struct {
	// Keycloak contains Keycloak admin API configuration
	Keycloak KeycloakConfig `mapstructure:"keycloak"`
}

// KeycloakConfig holds the Keycloak admin API configuration
// It contains the realm and service-account credentials used for user provisioning
type KeycloakConfig struct {
	// BaseURL specifies the Keycloak server base URL
	BaseURL string `mapstructure:"base_url"`
	// Realm specifies the realm user accounts are provisioned in
	Realm string `mapstructure:"realm"`
	// AdminClientID specifies the service-account client used for admin API calls
	AdminClientID string `mapstructure:"admin_client_id"`
	// AdminClientSecret specifies the service-account client secret
	AdminClientSecret string `mapstructure:"admin_client_secret"`
	// Timeout specifies the admin API request timeout, in seconds
	Timeout int `mapstructure:"timeout"` // in seconds
	// RetryCount specifies how many times failed admin API requests are retried
	RetryCount int `mapstructure:"retry_count"`
}

// OutboxConfig holds the outbox dispatcher configuration
type OutboxConfig struct {
	// Interval specifies how often pending entries are polled, in seconds
	Interval int `mapstructure:"interval"` // in seconds
	// BatchSize specifies the maximum number of entries fetched per poll
	BatchSize int `mapstructure:"batch_size"`
	// MaxAttempts specifies how many publish attempts are made before an entry is marked failed
	MaxAttempts int `mapstructure:"max_attempts"`
}

// RedisConfig holds the Redis configuration
// It contains settings for Redis connection and client configuration
type RedisConfig struct {
	// Addrs specifies the Redis server addresses
	Addrs []string `mapstructure:"addrs"`
	// Username specifies the Redis username
	Username string `mapstructure:"username"`
	// Password specifies the Redis password
	Password string `mapstructure:"password"`
	// DB specifies the Redis database number
	DB int `mapstructure:"db"`
	// PoolSize specifies the maximum number of socket connections
	PoolSize int `mapstructure:"pool_size"`
}

// KafkaConfig holds the Kafka configuration
// It contains settings for Kafka connection and client configuration
type KafkaConfig struct {
	// Brokers specifies the Kafka broker addresses
	Brokers []string `mapstructure:"brokers"`
	// Topics contains specific topic names for different message types
	Topics KafkaTopics `mapstructure:"topics"`
}

// KafkaTopics holds specific topic names for different message types
type KafkaTopics struct {
	// IdentitySync specifies the topic name for account lifecycle messages
	IdentitySync string `mapstructure:"identity_sync"`
}

// PostgresConfig holds the PostgreSQL database configuration
// It contains all necessary parameters to establish a PostgreSQL connection
type PostgresConfig struct {
	// Host specifies the database server host
	Host string `mapstructure:"host"`
	// Port specifies the database server port
	Port int `mapstructure:"port"`
	// User specifies the database user
	User string `mapstructure:"user"`
	// Password specifies the database password
	Password string `mapstructure:"password"`
	// DBName specifies the database name
	DBName string `mapstructure:"dbname"`
	// Schema specifies the database schema
	Schema string `mapstructure:"schema"`
	// SSLMode specifies the SSL mode for database connection
	SSLMode string `mapstructure:"sslmode"`
	// MaxIdleConns specifies the maximum number of idle connections in the pool
	MaxIdleConns int `mapstructure:"max_idle_conns"`
	// MaxOpenConns specifies the maximum number of open connections to the database
	MaxOpenConns int `mapstructure:"max_open_conns"`
	// ConnMaxIdleTime specifies the maximum amount of time a connection may be idle, in minutes
	ConnMaxIdleTime int `mapstructure:"conn_max_idle_time"` // in minutes
	// ConnMaxLifetime specifies the maximum amount of time a connection may be reused, in minutes
	ConnMaxLifetime int `mapstructure:"conn_max_lifetime"` // in minutes
	// Debug enables or disables debug mode for database operations
	Debug bool `mapstructure:"debug"`
	// IsUseMigrate specifies whether to use database migration
	IsUseMigrate bool `mapstructure:"is_use_migrate"`
}

// LoadConfig loads the application configuration from various sources
// It first looks for a pharmachain.yaml file in the current directory and config directory
// If no config file is found, it uses environment variables and default values
// Returns a Config struct and an error if loading fails
func LoadConfig() (*Config, error) {
	viper.SetConfigName("pharmachain")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("../configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("configs")

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 15)     // seconds
	viper.SetDefault("server.write_timeout", 15)    // seconds
	viper.SetDefault("server.shutdown_timeout", 30) // seconds
	viper.SetDefault("infrastructure.postgres.host", "localhost")
	viper.SetDefault("infrastructure.postgres.port", 5432)
	// No defaults for user and password - they must be provided
	viper.SetDefault("infrastructure.postgres.dbname", "pharmachain_db")
	viper.SetDefault("infrastructure.postgres.schema", "public")
	viper.SetDefault("infrastructure.postgres.sslmode", "disable")
	viper.SetDefault("infrastructure.postgres.max_idle_conns", 10)
	viper.SetDefault("infrastructure.postgres.max_open_conns", 100)
	viper.SetDefault("infrastructure.postgres.conn_max_idle_time", 5) // minutes
	viper.SetDefault("infrastructure.postgres.conn_max_lifetime", 60) // minutes
	viper.SetDefault("infrastructure.postgres.debug", false)
	viper.SetDefault("infrastructure.postgres.is_use_migrate", true)
	viper.SetDefault("application.name", "Pharmachain Service")
	viper.SetDefault("application.version", "1.0")
	viper.SetDefault("infrastructure.redis.addrs", []string{"localhost:6379"})
	viper.SetDefault("infrastructure.redis.username", "")
	viper.SetDefault("infrastructure.redis.password", "")
	viper.SetDefault("infrastructure.redis.db", 0)
	viper.SetDefault("infrastructure.redis.pool_size", 10)
	viper.SetDefault("infrastructure.kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("infrastructure.kafka.topics.identity_sync", "pharmachain.identity.sync")
	viper.SetDefault("identity.keycloak.base_url", "http://localhost:8180")
	viper.SetDefault("identity.keycloak.realm", "pharmachain")
	viper.SetDefault("identity.keycloak.admin_client_id", "pharmachain-admin")
	// No default for the admin client secret - it must be provided via config or env
	viper.SetDefault("identity.keycloak.timeout", 10) // seconds
	viper.SetDefault("identity.keycloak.retry_count", 3)
	viper.SetDefault("outbox.interval", 5) // seconds
	viper.SetDefault("outbox.batch_size", 50)
	viper.SetDefault("outbox.max_attempts", 10)

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			log.Println("Config file not found, using environment variables and defaults")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Validate required secrets
	if config.Infrastructure.Postgres.User == "" {
		return nil, errors.New("database user is required")
	}
	if config.Infrastructure.Postgres.Password == "" {
		return nil, errors.New("database password is required")
	}
	if config.Identity.Keycloak.AdminClientSecret == "" {
		return nil, errors.New("keycloak admin client secret is required")
	}

	return &config, nil
}

// GetConfigPath returns the path of the loaded config file
// If no config file was loaded, it returns an empty string
func GetConfigPath() string {
	return viper.ConfigFileUsed()
}
