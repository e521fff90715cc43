package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/server"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the application, notes, statistics and login endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if err := cfg.JWT.Validate(); err != nil {
		return err
	}

	ctx := commandContext(cmd)

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate || cfg.Database.MigrateOnStart {
		log.Info("applying database migrations")
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	srv, err := server.New(server.Options{
		Config: cfg,
		Store:  database,
		Health: database,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
