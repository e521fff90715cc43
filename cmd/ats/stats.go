package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/observability"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-job application statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	stats, err := database.ComputeJobStats(ctx)
	if err != nil {
		return err
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintJobStats(stats)
	return nil
}
