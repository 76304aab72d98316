package db

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/salesdash/internal/config"
)

func TestDriverName(t *testing.T) {
	name, err := DriverName(config.DriverMySQL)
	require.NoError(t, err)
	assert.Equal(t, "mysql", name)

	name, err = DriverName(config.DriverPostgres)
	require.NoError(t, err)
	assert.Equal(t, "pgx", name)

	_, err = DriverName("sqlite")
	assert.Error(t, err)
}

func TestConnect_UnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.DBConfig{Driver: "mssql"})
	assert.Error(t, err)
}

func TestMigrate_UsesDialectDirectory(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir []string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = append(gotDir, dir)
		return nil
	}

	require.NoError(t, Migrate(context.Background(), nil, config.DriverMySQL))
	require.NoError(t, Migrate(context.Background(), nil, config.DriverPostgres))
	assert.Equal(t, []string{"migrations/mysql", "migrations/postgres"}, gotDir)
}

func TestMigrate_PropagatesError(t *testing.T) {
	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("locked")
	}

	err := Migrate(context.Background(), nil, config.DriverPostgres)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "locked")

	assert.Error(t, Migrate(context.Background(), nil, "oracle"))
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, dir := range []string{"migrations/mysql", "migrations/postgres"} {
		entries, err := fs.ReadDir(migrations, dir)
		require.NoError(t, err)
		require.NotEmpty(t, entries, dir)

		body, err := fs.ReadFile(migrations, dir+"/"+entries[0].Name())
		require.NoError(t, err)
		script := string(body)
		assert.True(t, strings.HasPrefix(script, "-- +goose Up"), dir)
		for _, table := range []string{"users", "products", "website_visits", "store_visits"} {
			assert.Contains(t, script, "CREATE TABLE IF NOT EXISTS "+table, dir)
		}
		assert.Contains(t, script, "uq_users_email", dir)
	}
}
