package postgres

// Config holds the PostgreSQL database configuration
type Config struct {
	// Host specifies the database server host
	Host string
	// Port specifies the database server port
	Port int
	// User specifies the database user
	User string
	// Password specifies the database password
	Password string
	// DBName specifies the database name
	DBName string
	// Schema specifies the database schema
	Schema string
	// SSLMode specifies the SSL mode for the connection
	SSLMode string
	// MaxIdleConns specifies the maximum number of idle connections in the pool
	MaxIdleConns int
	// MaxOpenConns specifies the maximum number of open connections
	MaxOpenConns int
	// ConnMaxIdleTime specifies how long a connection may be idle, in minutes
	ConnMaxIdleTime int
	// ConnMaxLifetime specifies how long a connection may be reused, in minutes
	ConnMaxLifetime int
	// Debug enables SQL logging
	Debug bool
}
