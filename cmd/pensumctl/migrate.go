package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/pkg/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, logr, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()  //nolint:errcheck
			defer logr.Sync() //nolint:errcheck

			version, err := database.Migrate(cmd.Context(), db, logr)
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logr.Info("schema up to date", zap.Int64("version", version))
			return nil
		},
	}
}
