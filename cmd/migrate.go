package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"inventory-server/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the SQLite schema or the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Database.ServerSelectionTimeout+cfg.Server.ShutdownTimeout)
		defer cancel()

		// Opening a store applies its schema or indexes.
		st, err := database.Connector(cfg.Database)(ctx)
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		defer st.Close(context.Background())

		slog.Info("migration complete", "driver", cfg.Database.Driver)
		return nil
	},
}
