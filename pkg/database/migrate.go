package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

const migrationDir = "migrations"

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	gooseUp      = goose.UpContext // mockable
	gooseVersion = goose.GetDBVersionContext
)

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	names, err := fs.Glob(migrationFS, migrationDir+"/*.sql")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	return names, nil
}

// Migrate applies every pending embedded migration with goose and returns
// the schema version afterwards.
func Migrate(ctx context.Context, db *sqlx.DB, logr *zap.Logger) (int64, error) {
	if logr == nil {
		logr = zap.NewNop()
	}
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(gooseLogger{logr.Sugar()})
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set migration dialect: %w", err)
	}
	return migrate(ctx, db.DB)
}

func migrate(ctx context.Context, db *sql.DB) (int64, error) {
	if err := gooseUp(ctx, db, migrationDir); err != nil {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}
	version, err := gooseVersion(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// gooseLogger routes goose output through zap. Fatalf logs at error level
// and does not exit.
type gooseLogger struct {
	l *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, v ...interface{}) { g.l.Infof(format, v...) }
func (g gooseLogger) Fatalf(format string, v ...interface{}) { g.l.Errorf(format, v...) }
