// Package database provides catalog store connection management for breakingchanges.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver ("pgx")

	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/sqlutil"
)

// Manager handles the read-only connection to the API catalog store.
type Manager struct {
	Catalog *sql.DB
	config  *config.DatabaseConfig

	maxRetries int
	backoff    time.Duration
}

// NewManager creates a new database manager from configuration.
// A single connection attempt is made unless cfg.ConnectAttempts asks for more.
func NewManager(cfg *config.DatabaseConfig) *Manager {
	attempts := 1
	if cfg != nil && cfg.ConnectAttempts > 1 {
		attempts = cfg.ConnectAttempts
	}
	return &Manager{
		config:     cfg,
		maxRetries: attempts,
		backoff:    time.Second,
	}
}

// Dialect returns the SQL dialect of the configured driver.
func (m *Manager) Dialect() sqlutil.Dialect {
	if m.config == nil {
		return sqlutil.MySQL
	}
	return sqlutil.DialectFor(m.config.Driver)
}

// Connect establishes the catalog connection.
func (m *Manager) Connect(ctx context.Context) error {
	if m.config == nil {
		return fmt.Errorf("catalog database config is nil")
	}

	db, err := m.connectWithRetry(ctx, m.config)
	if err != nil {
		return fmt.Errorf("failed to connect to catalog database: %w", err)
	}
	m.Catalog = db
	return nil
}

// connectWithRetry attempts to connect with exponential backoff.
func (m *Manager) connectWithRetry(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	var db *sql.DB
	var err error

	backoff := m.backoff

	for i := 0; i < m.maxRetries; i++ {
		db, err = m.connect(cfg)
		if err == nil {
			// Verify connection
			if pingErr := db.PingContext(ctx); pingErr == nil {
				return db, nil
			} else {
				db.Close()
				err = pingErr
			}
		}

		if i < m.maxRetries-1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
				backoff *= 2 // Exponential backoff
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempt(s): %w", m.maxRetries, err)
}

// connect creates a database connection.
func (m *Manager) connect(cfg *config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(DriverName(cfg.Driver), BuildDSN(cfg))
	if err != nil {
		return nil, err
	}

	// Configure connection pool
	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConnections)
	}
	db.SetConnMaxLifetime(10 * time.Minute)

	return db, nil
}

// DriverName maps a configured driver to its database/sql registration name.
func DriverName(driver string) string {
	if driver == "postgres" {
		return "pgx"
	}
	return "mysql"
}

// BuildDSN constructs a DSN for the configured driver.
func BuildDSN(cfg *config.DatabaseConfig) string {
	if cfg.Driver == "postgres" {
		return buildPostgresDSN(cfg)
	}
	return buildMySQLDSN(cfg)
}

func buildMySQLDSN(cfg *config.DatabaseConfig) string {
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

func buildPostgresDSN(cfg *config.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}

	q := url.Values{}
	switch cfg.TLS {
	case "disable":
		q.Set("sslmode", "disable")
	case "required":
		q.Set("sslmode", "require")
	case "preferred", "":
		q.Set("sslmode", "prefer")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

// Close closes the catalog connection.
func (m *Manager) Close() error {
	if m.Catalog == nil {
		return nil
	}
	if err := m.Catalog.Close(); err != nil {
		return fmt.Errorf("catalog close: %w", err)
	}
	return nil
}

// Ping verifies the connection is alive.
func (m *Manager) Ping(ctx context.Context) error {
	if m.Catalog == nil {
		return fmt.Errorf("catalog database is not connected")
	}
	if err := m.Catalog.PingContext(ctx); err != nil {
		return fmt.Errorf("catalog ping failed: %w", err)
	}
	return nil
}
