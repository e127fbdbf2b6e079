package pipeline

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/database"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/progress"
	"github.com/dbsmedya/breakingchanges/internal/sqlutil"
)

// Connector opens a catalog store connection. The returned release func
// closes it.
type Connector func(ctx context.Context) (db *sql.DB, dialect sqlutil.Dialect, release func() error, err error)

// DatabaseSource loads the catalog from the configured SQL store. The
// connection is opened on Load and closed before Load returns.
type DatabaseSource struct {
	config  *config.CatalogConfig
	connect Connector
	logger  *logger.Logger
}

// NewDatabaseSource creates a source that connects through database.Manager.
func NewDatabaseSource(cfg *config.CatalogConfig, log *logger.Logger) *DatabaseSource {
	if log == nil {
		log = logger.NewDefault()
	}
	return &DatabaseSource{
		config:  cfg,
		connect: managerConnector(cfg),
		logger:  log,
	}
}

// NewDatabaseSourceWithConnector creates a source using a custom connector.
func NewDatabaseSourceWithConnector(cfg *config.CatalogConfig, connect Connector, log *logger.Logger) *DatabaseSource {
	s := NewDatabaseSource(cfg, log)
	if connect != nil {
		s.connect = connect
	}
	return s
}

func managerConnector(cfg *config.CatalogConfig) Connector {
	return func(ctx context.Context) (*sql.DB, sqlutil.Dialect, func() error, error) {
		if cfg == nil {
			return nil, sqlutil.MySQL, nil, fmt.Errorf("catalog config is nil")
		}
		mgr := database.NewManager(&cfg.DatabaseConfig)
		if err := mgr.Connect(ctx); err != nil {
			return nil, mgr.Dialect(), nil, err
		}
		return mgr.Catalog, mgr.Dialect(), mgr.Close, nil
	}
}

// Load connects, reads the catalog and disconnects. Connection failures are
// returned as *catalog.LoadError.
func (s *DatabaseSource) Load(ctx context.Context, sink progress.Sink) (*catalog.Catalog, error) {
	db, dialect, release, err := s.connect(ctx)
	if err != nil {
		return nil, &catalog.LoadError{Err: err}
	}
	defer func() {
		if cerr := release(); cerr != nil {
			s.logger.Warnw("Failed to close catalog connection", "error", cerr)
		}
	}()

	if s.config != nil {
		s.logger.Debugw("Connected to catalog store",
			"driver", s.config.Driver,
			"host", s.config.Host,
			"database", s.config.Database,
		)
	}

	loader, err := catalog.NewLoader(db, dialect, s.config, s.logger)
	if err != nil {
		return nil, &catalog.LoadError{Err: err}
	}
	return loader.Load(ctx, sink)
}
