// precapp manages precatório case data: an HTTP API, spreadsheet import,
// reference-data seeding and a sample-data populator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/precapp/precapp/internal/config"
	"github.com/precapp/precapp/internal/database"
	"github.com/precapp/precapp/pkg/logger"
)

// app bundles the pieces every subcommand needs.
type app struct {
	cfg *config.Config
	log *logger.Logger
	db  *gorm.DB
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &app{cfg: cfg, log: log, db: db}, nil
}

func (a *app) close() {
	a.log.Sync()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "precapp",
		Short:         "Precatório case management",
		Long:          "Manage precatórios, clientes, alvarás and requerimentos: serve the JSON API, import spreadsheets, seed reference data and populate sample records.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newServeCmd(),
		newImportCmd(),
		newSeedCmd(),
		newPopulateCmd(),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
