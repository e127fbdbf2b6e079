package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/sqlutil"
)

// PreflightError represents a preflight check failure.
type PreflightError struct {
	Check   string
	Message string
	Tables  []string
}

func (e *PreflightError) Error() string {
	if len(e.Tables) > 0 {
		return fmt.Sprintf("%s: %s (tables: %v)", e.Check, e.Message, e.Tables)
	}
	return fmt.Sprintf("%s: %s", e.Check, e.Message)
}

// TableStats holds the row count of one catalog table.
type TableStats struct {
	Table string
	Rows  int64
}

// requiredColumns lists the columns the loader selects from each table.
var requiredColumns = map[string][]string{
	"assembly_groups": {"id", "name", "area_path"},
	"apis":            {"id", "parent_id", "kind", "name", "doc_id"},
	"containment":     {"api_id", "group_id"},
}

// PreflightChecker verifies the catalog schema before a run.
type PreflightChecker struct {
	db       *sql.DB
	dialect  sqlutil.Dialect
	database string
	tables   config.CatalogTables
	logger   *logger.Logger
}

// NewPreflightChecker creates a new preflight checker.
func NewPreflightChecker(db *sql.DB, dialect sqlutil.Dialect, cfg *config.CatalogConfig, log *logger.Logger) (*PreflightChecker, error) {
	if db == nil {
		return nil, fmt.Errorf("database is nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("catalog config is nil")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("catalog database name is required")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	return &PreflightChecker{
		db:       db,
		dialect:  dialect,
		database: cfg.Database,
		tables:   cfg.Tables,
		logger:   log,
	}, nil
}

// RunAllChecks checks that every catalog table exists with the columns the
// loader reads, then counts the rows of each table.
func (p *PreflightChecker) RunAllChecks(ctx context.Context) ([]TableStats, error) {
	p.logger.Info("Running catalog preflight checks...")

	if err := p.ValidateColumns(ctx); err != nil {
		return nil, err
	}

	stats, err := p.CountRows(ctx)
	if err != nil {
		return nil, err
	}

	for _, s := range stats {
		if s.Rows == 0 {
			p.logger.Warnf("Catalog table %s is empty", s.Table)
		}
	}

	p.logger.Info("All catalog preflight checks PASSED")
	return stats, nil
}

func (p *PreflightChecker) configured() []struct{ role, table string } {
	return []struct{ role, table string }{
		{"assembly_groups", p.tables.AssemblyGroups},
		{"apis", p.tables.APIs},
		{"containment", p.tables.Containment},
	}
}

// ValidateColumns checks table existence and required columns through information_schema.
func (p *PreflightChecker) ValidateColumns(ctx context.Context) error {
	p.logger.Debug("Checking catalog tables and columns...")

	var missingTables, missingColumns []string
	for _, t := range p.configured() {
		columns, err := p.tableColumns(ctx, t.table)
		if err != nil {
			return fmt.Errorf("failed to query columns of %s: %w", t.table, err)
		}
		if len(columns) == 0 {
			missingTables = append(missingTables, t.table)
			continue
		}
		for _, col := range requiredColumns[t.role] {
			if !columns[col] {
				missingColumns = append(missingColumns, t.table+"."+col)
			}
		}
	}

	if len(missingTables) > 0 {
		return &PreflightError{
			Check:   "TABLE_EXISTENCE_CHECK",
			Message: "Tables not found in catalog database",
			Tables:  missingTables,
		}
	}
	if len(missingColumns) > 0 {
		return &PreflightError{
			Check:   "COLUMN_CHECK",
			Message: "Required catalog columns are missing",
			Tables:  missingColumns,
		}
	}

	p.logger.Debugf("Table and column check PASSED (%d tables)", len(p.configured()))
	return nil
}

// tableColumns returns the lower-cased column names of a possibly schema-qualified table.
func (p *PreflightChecker) tableColumns(ctx context.Context, table string) (map[string]bool, error) {
	schema, name := "", table
	if i := strings.IndexByte(table, '.'); i >= 0 {
		schema, name = table[:i], table[i+1:]
	}

	var (
		query string
		args  []interface{}
	)
	switch {
	case p.dialect == sqlutil.Postgres && schema == "":
		query = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = current_schema()
		AND table_name = $1`
		args = []interface{}{name}
	case p.dialect == sqlutil.Postgres:
		query = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1
		AND table_name = $2`
		args = []interface{}{schema, name}
	default:
		if schema == "" {
			schema = p.database
		}
		query = `
		SELECT COLUMN_NAME
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ?
		AND TABLE_NAME = ?`
		args = []interface{}{schema, name}
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		columns[strings.ToLower(col)] = true
	}
	return columns, rows.Err()
}

// CountRows returns the row count of each catalog table.
func (p *PreflightChecker) CountRows(ctx context.Context) ([]TableStats, error) {
	var stats []TableStats
	for _, t := range p.configured() {
		quoted, err := p.dialect.QuoteTableSafe(t.table)
		if err != nil {
			return nil, err
		}

		var n int64
		if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoted).Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to count rows of %s: %w", t.table, err)
		}
		stats = append(stats, TableStats{Table: t.table, Rows: n})
	}
	return stats, nil
}
