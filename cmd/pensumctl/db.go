package main

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/pkg/config"
	"github.com/noah-isme/uniplanner-api/pkg/database"
	"github.com/noah-isme/uniplanner-api/pkg/logger"
)

// connect loads configuration and opens the database. The caller closes it.
func connect(ctx context.Context) (*sqlx.DB, *zap.Logger, error) {
	cfg, err := config.LoadFile(envFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Log.Format = "console"
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return db, logr, nil
}
