// Package cmd is the inventory server's command tree.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inventory-server/config"
)

var (
	cfgFile  string
	logLevel string

	// cfg is populated by PersistentPreRunE and shared with all subcommands.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Inventory management API server",
	Long: `inventory serves the inventory management REST API: items, stock
movements, warehouses, demand forecasts, reorder requests and analytics.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to config file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		initLogger(logLevel)

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		// --log-level wins over LOG_LEVEL and the config file.
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		} else if cfg.Log.Level != "" {
			initLogger(cfg.Log.Level)
		}
		return nil
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

// Execute runs the root command. With no subcommand it serves.
func Execute() {
	args := os.Args[1:]
	if len(args) == 0 {
		rootCmd.SetArgs([]string{serveCmd.Name()})
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func initLogger(level string) {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(level)})
	slog.SetDefault(slog.New(handler))
}
