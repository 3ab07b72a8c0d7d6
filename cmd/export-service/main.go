package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "eventexport/cmd/export-service/docs"

	"eventexport/internal/config"
	"eventexport/internal/constants"
	"eventexport/internal/logger"
	"eventexport/pkg/bootstrap"
	"eventexport/pkg/logging"
	"eventexport/pkg/migrations"
)

var (
	configFile string
	downSteps  int
)

// @title           Event Export Service API
// @version         1.0
// @description     Exports workspace click, lead and sale analytics events as CSV

// @host      localhost:8080
// @BasePath  /api/v1

// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization

func main() {
	rootCmd := &cobra.Command{
		Use:   constants.ServiceName,
		Short: "Analytics event CSV export service",
		Long:  "Export Service streams a workspace's click, lead and sale events as CSV files",
		RunE:  serveCmd().RunE,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (required)")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config path from the flag or CONFIG_FILE and builds
// the logger.
func loadConfig(earlyLog *logging.EarlyLog) (*config.Config, logger.Logger, error) {
	if configFile == "" {
		configFile = os.Getenv("CONFIG_FILE")
		if configFile == "" {
			earlyLog.Error("Config file is required. Use --config flag or CONFIG_FILE environment variable")
			return nil, nil, fmt.Errorf("config file is required")
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		earlyLog.Error("Failed to load config: %v", err)
		return nil, nil, err
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		earlyLog.Error("Failed to init logger: %v", err)
		return nil, nil, err
	}
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the export service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(logging.NewEarlyLog())
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			ctx = logging.WithServiceName(ctx, constants.ServiceName)

			log.InfowCtx(ctx, "Starting Export Service")

			app := NewApp(cfg, log)
			if err := app.Initialize(ctx); err != nil {
				log.ErrorwCtx(ctx, "Failed to initialize application", "error", err)
				return err
			}

			if err := app.Run(ctx); err != nil {
				log.ErrorwCtx(ctx, "Application error", "error", err)
				return err
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back PostgreSQL schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(logging.NewEarlyLog())
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx := logging.WithServiceName(cmd.Context(), constants.ServiceName)

			db, err := bootstrap.NewDatabaseConnector(cfg, log).InitPostgreSQL(ctx)
			if err != nil {
				log.ErrorwCtx(ctx, "Failed to connect to PostgreSQL", "error", err)
				return err
			}
			defer db.Close()

			if downSteps > 0 {
				if err := migrations.DownPostgres(db, downSteps); err != nil {
					log.ErrorwCtx(ctx, "Migration rollback failed", "error", err)
					return err
				}
				log.InfowCtx(ctx, "Migrations rolled back", "steps", downSteps)
				return nil
			}

			version, err := migrations.UpPostgres(db)
			if err != nil {
				log.ErrorwCtx(ctx, "Migration failed", "error", err)
				return err
			}
			log.InfowCtx(ctx, "Migrations applied", "version", version)
			return nil
		},
	}

	cmd.Flags().IntVar(&downSteps, "down", 0, "Roll back this many migrations instead of applying")
	return cmd
}
