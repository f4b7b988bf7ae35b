// Package database opens the SQL connection a table source reads from.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"  // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib"  // PostgreSQL driver, registered as "pgx"
	_ "github.com/microsoft/go-mssqldb" // SQL Server driver
	_ "modernc.org/sqlite"              // SQLite driver, pure Go

	"github.com/dbsmedya/pkfinder/internal/config"
)

// driverNames maps config driver names to registered database/sql drivers.
var driverNames = map[string]string{
	"mysql":     "mysql",
	"postgres":  "pgx",
	"sqlite":    "sqlite",
	"sqlserver": "sqlserver",
}

// Manager handles the source database connection.
type Manager struct {
	DB     *sql.DB
	config *config.SourceConfig

	open       func(driverName, dsn string) (*sql.DB, error)
	maxRetries int
	backoff    time.Duration
}

// NewManager creates a new database manager from configuration.
func NewManager(cfg *config.SourceConfig) *Manager {
	return &Manager{
		config:     cfg,
		open:       sql.Open,
		maxRetries: 3,
		backoff:    time.Second,
	}
}

// Connect establishes the connection, retrying with exponential backoff.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil {
		return fmt.Errorf("no source configuration")
	}
	if m.DB != nil {
		return nil
	}

	db, err := m.connectWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", m.config.Driver, err)
	}
	m.DB = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff

	for i := 0; i < m.maxRetries; i++ {
		db, err = m.connect()
		if err == nil {
			// Verify connection
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				_ = db.Close()
				err = pingErr
			}
		}

		if i < m.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2
			}
		}
	}

	return nil, fmt.Errorf("failed after %d retries: %w", m.maxRetries, err)
}

// connect opens a connection pool for the configured driver.
func (m *Manager) connect() (*sql.DB, error) {
	name, err := DriverName(m.config.Driver)
	if err != nil {
		return nil, err
	}

	db, err := m.open(name, DSN(m.config))
	if err != nil {
		return nil, err
	}

	// A scan reads one table with a single query.
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DriverName returns the database/sql driver registered for a config
// driver name.
func DriverName(driver string) (string, error) {
	name, ok := driverNames[driver]
	if !ok {
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
	return name, nil
}

// DSN returns the configured DSN, or builds one from the host fields for
// MySQL.
func DSN(cfg *config.SourceConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver == "mysql" {
		return BuildDSN(cfg)
	}
	return ""
}

// BuildDSN constructs a MySQL DSN from configuration.
func BuildDSN(cfg *config.SourceConfig) string {
	// Format: user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	if cfg.Database != "" {
		dsn += cfg.Database
	}

	// Add TLS configuration
	params := "?parseTime=true"
	switch cfg.TLS {
	case "disable":
		params += "&tls=false"
	case "required":
		params += "&tls=true"
	case "preferred", "":
		params += "&tls=preferred"
	}

	return dsn + params
}

// Close closes the connection if one is open.
func (m *Manager) Close() error {
	if m.DB == nil {
		return nil
	}
	err := m.DB.Close()
	m.DB = nil
	if err != nil {
		return fmt.Errorf("source close: %w", err)
	}
	return nil
}
