package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubGoose(t *testing.T, up func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error, version int64) {
	t.Helper()
	origUp, origVersion := gooseUp, gooseVersion
	t.Cleanup(func() { gooseUp, gooseVersion = origUp, origVersion })
	gooseUp = up
	gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) { return version, nil }
}

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "migrations/001_schema.sql", names[0])
}

func TestMigrationsCarryGooseAnnotations(t *testing.T) {
	names, err := Migrations()
	require.NoError(t, err)
	for _, name := range names {
		body, err := fs.ReadFile(migrationFS, name)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(body), "-- +goose Up"), name)
		assert.Contains(t, string(body), "-- +goose Down", name)
	}
}

func TestMigrateRunsEmbeddedDir(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	var gotDir string
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		assert.Same(t, raw, db)
		return nil
	}, 1)

	version, err := Migrate(context.Background(), sqlx.NewDb(raw, "sqlmock"), nil)
	require.NoError(t, err)
	assert.Equal(t, "migrations", gotDir)
	assert.EqualValues(t, 1, version)
}

func TestMigrateWrapsFailure(t *testing.T) {
	raw, _, err := sqlmock.New()
	require.NoError(t, err)
	defer raw.Close()

	boom := errors.New("syntax error")
	stubGoose(t, func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}, 0)

	_, err = Migrate(context.Background(), sqlx.NewDb(raw, "sqlmock"), nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "apply migrations")
}
