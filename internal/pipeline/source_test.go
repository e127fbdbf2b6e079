package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/breakingchanges/internal/catalog"
	"github.com/dbsmedya/breakingchanges/internal/config"
	"github.com/dbsmedya/breakingchanges/internal/logger"
	"github.com/dbsmedya/breakingchanges/internal/sqlutil"
)

func mockConnector(db *sql.DB, released *int) Connector {
	return func(context.Context) (*sql.DB, sqlutil.Dialect, func() error, error) {
		return db, sqlutil.MySQL, func() error {
			*released++
			return nil
		}, nil
	}
}

func TestDatabaseSource_LoadReleasesConnection(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, area_path FROM `assembly_groups` ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "area_path"}).AddRow(1, "P1", "P1"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM `apis`")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, parent_id, kind, name, doc_id FROM `apis` ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "parent_id", "kind", "name", "doc_id"}).
			AddRow(1, nil, "class", "A", "T:A"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT api_id, group_id FROM `api_assembly_groups` ORDER BY api_id, group_id")).
		WillReturnRows(sqlmock.NewRows([]string{"api_id", "group_id"}).AddRow(1, 1))

	cfg := config.DefaultConfig().Catalog
	released := 0
	source := NewDatabaseSourceWithConnector(&cfg, mockConnector(db, &released), logger.NewNop())

	cat, err := source.Load(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Len(t, cat.APIs(), 1)
	assert.Equal(t, 1, released)
}

func TestDatabaseSource_LoadFailureStillReleases(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, area_path FROM `assembly_groups` ORDER BY id")).
		WillReturnError(errors.New("table missing"))

	cfg := config.DefaultConfig().Catalog
	released := 0
	source := NewDatabaseSourceWithConnector(&cfg, mockConnector(db, &released), logger.NewNop())

	_, err = source.Load(context.Background(), nil)
	var loadErr *catalog.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "assembly_groups", loadErr.Table)
	assert.Equal(t, 1, released)
}

func TestDatabaseSource_ConnectFailure(t *testing.T) {
	cfg := config.DefaultConfig().Catalog
	refused := errors.New("connection refused")
	source := NewDatabaseSourceWithConnector(&cfg, func(context.Context) (*sql.DB, sqlutil.Dialect, func() error, error) {
		return nil, sqlutil.MySQL, nil, refused
	}, logger.NewNop())

	_, err := source.Load(context.Background(), nil)
	var loadErr *catalog.LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, refused)
}

func TestDatabaseSource_NilConfig(t *testing.T) {
	source := NewDatabaseSource(nil, logger.NewNop())

	_, err := source.Load(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog config is nil")
}
