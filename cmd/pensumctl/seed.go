package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/repository"
	"github.com/noah-isme/uniplanner-api/internal/seed"
	"github.com/noah-isme/uniplanner-api/pkg/database"
)

func newSeedCmd() *cobra.Command {
	var skipCalendar bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the systems engineering pensum and the 2025 calendar",
		Long: `Seed migrates the schema, then upserts every pensum course and inserts the
calendar events that are not already present. Running it twice is safe.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, logr, err := connect(ctx)
			if err != nil {
				return err
			}
			defer db.Close()  //nolint:errcheck
			defer logr.Sync() //nolint:errcheck

			if _, err := database.Migrate(ctx, db, logr); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			courses, err := seed.Pensum()
			if err != nil {
				return err
			}
			if err := repository.NewCourseRepository(db).Upsert(ctx, courses); err != nil {
				return err
			}
			logr.Info("pensum loaded", zap.Int("courses", len(courses)))

			if skipCalendar {
				return nil
			}
			events, err := seed.Calendar2025()
			if err != nil {
				return err
			}
			inserted, err := repository.NewCalendarRepository(db).Seed(ctx, events)
			if err != nil {
				return err
			}
			logr.Info("calendar loaded", zap.Int("events", len(events)), zap.Int("inserted", inserted))
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipCalendar, "skip-calendar", false, "only load the pensum")
	return cmd
}
