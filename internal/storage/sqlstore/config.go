package sqlstore

import "time"

// Driver names as registered with database/sql
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds SQL connection settings
type Config struct {
	// Driver is DriverSQLite or DriverPostgres
	Driver string
	// DSN is a file path (or :memory:) for SQLite and a connection URL for Postgres
	DSN string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLiteConfig returns defaults for a SQLite database at path
func SQLiteConfig(path string) Config {
	return Config{
		Driver: DriverSQLite,
		DSN:    path,
		// SQLite serialises writers; one connection also keeps :memory: databases shared
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}
}

// PostgresConfig returns defaults for a Postgres database at url
func PostgresConfig(url string) Config {
	return Config{
		Driver:          DriverPostgres,
		DSN:             url,
		MaxOpenConns:    16,
		MaxIdleConns:    8,
		ConnMaxLifetime: 30 * time.Minute,
	}
}
