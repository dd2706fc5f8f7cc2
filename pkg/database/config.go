package database

import (
	"time"

	"github.com/hospintel/hospintel_backend/config"
)

// Dialect identifies the SQL flavour behind a connection.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// Config holds database connection settings
type Config struct {
	Dialect Dialect

	// SQLite
	SQLitePath string

	// Postgres
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string

	// Connection pooling
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
}

// DSN returns the driver-specific connection string
func (c Config) DSN() string {
	if c.Dialect == DialectSQLite {
		return sqliteDSN(c.SQLitePath)
	}
	return buildDSN(c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// ConnMaxLifetime returns the connection max lifetime as a duration
func (c Config) ConnMaxLifetime() time.Duration {
	if c.ConnMaxLifetimeMin <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.ConnMaxLifetimeMin) * time.Minute
}

// DefaultConfig returns sensible defaults for database configuration
func DefaultConfig() Config {
	return Config{
		Dialect:            DialectSQLite,
		SQLitePath:         "data/hospintel.db",
		Host:               "localhost",
		Port:               5432,
		SSLMode:            "disable",
		MaxOpenConns:       10,
		MaxIdleConns:       2,
		ConnMaxLifetimeMin: 5,
	}
}

// FromCentralConfig converts central config.StorageConfig to package Config.
// Only the sqlite and postgres drivers map to a SQL database.
func FromCentralConfig(c config.StorageConfig) Config {
	cfg := DefaultConfig()
	switch c.Driver {
	case string(DialectPostgres):
		cfg.Dialect = DialectPostgres
	default:
		cfg.Dialect = DialectSQLite
	}
	if c.SQLite.Path != "" {
		cfg.SQLitePath = c.SQLite.Path
	}

	pg := c.Postgres
	if pg.Host != "" {
		cfg.Host = pg.Host
	}
	if pg.Port > 0 {
		cfg.Port = pg.Port
	}
	cfg.User = pg.User
	cfg.Password = pg.Password
	cfg.DBName = pg.DBName
	if pg.SSLMode != "" {
		cfg.SSLMode = pg.SSLMode
	}
	if pg.Pool.MaxOpenConns > 0 {
		cfg.MaxOpenConns = pg.Pool.MaxOpenConns
	}
	if pg.Pool.MaxIdleConns > 0 {
		cfg.MaxIdleConns = pg.Pool.MaxIdleConns
	}
	if pg.Pool.ConnMaxLifetimeMin > 0 {
		cfg.ConnMaxLifetimeMin = pg.Pool.ConnMaxLifetimeMin
	}
	return cfg
}
