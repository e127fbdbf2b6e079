package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/progress"
	"github.com/dbsmedya/breakingchanges/internal/sqlutil"
)

// Loader reads the API catalog from a SQL store it does not own.
type Loader struct {
	db            *sql.DB
	dialect       sqlutil.Dialect
	tables        config.CatalogTables
	nameCacheSize int
	logger        *logger.Logger

	groupsTable      string
	apisTable        string
	containmentTable string
}

// NewLoader creates a catalog loader. Table names are validated and quoted
// for the dialect up front.
func NewLoader(db *sql.DB, dialect sqlutil.Dialect, cfg *config.CatalogConfig, log *logger.Logger) (*Loader, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	l := &Loader{
		db:            db,
		dialect:       dialect,
		tables:        cfg.Tables,
		nameCacheSize: cfg.NameCacheSize,
		logger:        log,
	}

	var err error
	if l.groupsTable, err = dialect.QuoteTableSafe(cfg.Tables.AssemblyGroups); err != nil {
		return nil, err
	}
	if l.apisTable, err = dialect.QuoteTableSafe(cfg.Tables.APIs); err != nil {
		return nil, err
	}
	if l.containmentTable, err = dialect.QuoteTableSafe(cfg.Tables.Containment); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads all three catalog tables and assembles the catalog.
// Any query, scan or schema failure is returned as *LoadError.
func (l *Loader) Load(ctx context.Context, sink progress.Sink) (*Catalog, error) {
	sink = progress.OrNop(sink)
	sink.SetTask("Loading API catalog")
	sink.SetDetails(fmt.Sprintf("%s: %s, %s, %s", l.dialect, l.tables.AssemblyGroups, l.tables.APIs, l.tables.Containment))

	groups, err := l.LoadGroups(ctx)
	if err != nil {
		return nil, err
	}
	l.logger.WithTable(l.tables.AssemblyGroups).Debugf("Loaded %d assembly groups", len(groups))

	apis, err := l.loadAPIs(ctx, sink)
	if err != nil {
		return nil, &LoadError{Table: l.tables.APIs, Err: err}
	}
	l.logger.WithTable(l.tables.APIs).Debugf("Loaded %d APIs", len(apis))

	containment, err := l.loadContainment(ctx)
	if err != nil {
		return nil, &LoadError{Table: l.tables.Containment, Err: err}
	}
	l.logger.WithTable(l.tables.Containment).Debugf("Loaded %d containment rows", len(containment))

	cat, err := New(groups, apis, containment, l.nameCacheSize)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return cat, nil
}

// LoadGroups reads the assembly groups ordered by id.
func (l *Loader) LoadGroups(ctx context.Context) ([]AssemblyGroup, error) {
	query := fmt.Sprintf("SELECT id, name, area_path FROM %s ORDER BY id", l.groupsTable)
	groups, err := l.queryGroups(ctx, query)
	if err != nil {
		return nil, &LoadError{Table: l.tables.AssemblyGroups, Err: err}
	}
	return groups, nil
}

// FindGroups returns the groups whose area path or name contains filter,
// compared case-insensitively.
func (l *Loader) FindGroups(ctx context.Context, filter string) ([]AssemblyGroup, error) {
	if filter == "" {
		return l.LoadGroups(ctx)
	}

	query := fmt.Sprintf(
		"SELECT id, name, area_path FROM %s WHERE LOWER(area_path) LIKE %s OR LOWER(name) LIKE %s ORDER BY id",
		l.groupsTable, l.dialect.Placeholder(1), l.dialect.Placeholder(2))
	pattern := "%" + escapeLike(strings.ToLower(filter)) + "%"

	groups, err := l.queryGroups(ctx, query, pattern, pattern)
	if err != nil {
		return nil, &LoadError{Table: l.tables.AssemblyGroups, Err: err}
	}
	return groups, nil
}

func (l *Loader) queryGroups(ctx context.Context, query string, args ...interface{}) ([]AssemblyGroup, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assembly groups: %w", err)
	}
	defer rows.Close()

	var groups []AssemblyGroup
	for rows.Next() {
		var g AssemblyGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.AreaPath); err != nil {
			return nil, fmt.Errorf("failed to scan assembly group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (l *Loader) loadAPIs(ctx context.Context, sink progress.Sink) ([]API, error) {
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", l.apisTable)
	if err := l.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count apis: %w", err)
	}

	query := fmt.Sprintf("SELECT id, parent_id, kind, name, doc_id FROM %s ORDER BY id", l.apisTable)
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query apis: %w", err)
	}
	defer rows.Close()

	apis := make([]API, 0, total)
	for rows.Next() {
		var (
			a      API
			parent sql.NullInt64
			kind   string
		)
		if err := rows.Scan(&a.ID, &parent, &kind, &a.Name, &a.DocID); err != nil {
			return nil, fmt.Errorf("failed to scan api: %w", err)
		}
		if parent.Valid {
			a.ParentID = APIID(parent.Int64)
			a.HasParent = true
		}
		a.Kind = Kind(strings.ToLower(kind))
		apis = append(apis, a)
		sink.Report(int64(len(apis)), total)
	}
	return apis, rows.Err()
}

func (l *Loader) loadContainment(ctx context.Context) ([]Containment, error) {
	query := fmt.Sprintf("SELECT api_id, group_id FROM %s ORDER BY api_id, group_id", l.containmentTable)
	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query containment: %w", err)
	}
	defer rows.Close()

	var out []Containment
	for rows.Next() {
		var c Containment
		if err := rows.Scan(&c.API, &c.Group); err != nil {
			return nil, fmt.Errorf("failed to scan containment: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
