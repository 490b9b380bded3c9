// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "epos-bridge/docs"
	"epos-bridge/internal/config"
	"epos-bridge/internal/database"
	"epos-bridge/internal/utils"
)

// @title ePOS Bridge API
// @version 1.0.0
// @description Accepts Epson ePOS-style print command batches and drives ESC/POS receipt printers over TCP, serial and USB.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8090
// @BasePath /api/v1
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCommand().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "epos-bridge",
		Short:         "ePOS command bridge for ESC/POS receipt printers",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			app, err := NewApplication(cfg, logger)
			if err != nil {
				logger.Error("Failed to initialize application", zap.Error(err))
				return err
			}
			defer app.Close()

			return app.Run(cmd.Context())
		},
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file (default: search ., ./config, /etc/epos-bridge)")

	cmd.AddCommand(newMigrateCommand(&configPath))
	return cmd
}

func newMigrateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.NewConnection(&cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			migrator := database.NewMigrator(db, logger)
			if args[0] == "down" {
				return migrator.Down()
			}
			return migrator.Up()
		},
	}
}

func bootstrap(configPath string) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
