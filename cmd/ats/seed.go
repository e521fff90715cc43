package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/fixtures"
	"github.com/jonathan/applicant-tracker/internal/logging"
	"github.com/jonathan/applicant-tracker/internal/observability"
	"github.com/jonathan/applicant-tracker/internal/server"
)

var (
	seedFile      string
	seedCheckOnly bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load initial users, applicants and jobs",
	Long: `Load a YAML fixture of users, applicant profiles and jobs in a single transaction.
Without --file the built-in data set is used: one user holding every capability,
an applicant profile for it and an open job. Existing usernames and job titles are
reused, so running the command twice is harmless.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to a YAML fixture (default: built-in data set)")
	seedCmd.Flags().BoolVar(&seedCheckOnly, "check", false, "Validate the fixture and exit without touching the database")
	rootCmd.AddCommand(seedCmd)
}

func loadFixture() (*fixtures.Fixture, error) {
	if seedFile == "" {
		return fixtures.Default()
	}
	return fixtures.Load(seedFile)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	fx, err := loadFixture()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if seedCheckOnly {
		logging.NewDefault("seed").WithField("file", seedFile).Info("fixture passed schema and input checks")
		_, _ = fmt.Fprintf(out, "Fixture is valid: %d users, %d applicants, %d jobs\n",
			len(fx.Users), len(fx.Applicants), len(fx.Jobs))
		return nil
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	var res *fixtures.Result
	err = database.WithTx(ctx, func(tx *db.DB) error {
		var applyErr error
		res, applyErr = fixtures.Apply(ctx, tx, fx, &cfg.Password)
		return applyErr
	})
	if err != nil {
		return fmt.Errorf("failed to apply fixture: %w", err)
	}
	log.WithFields(logrus.Fields{
		"users_created": res.UsersCreated,
		"jobs_created":  res.JobsCreated,
	}).Info("seed data applied")

	observability.NewPrinter(out).PrintSeedResult(res)

	if len(res.Users) == 0 {
		return nil
	}
	if err := cfg.JWT.Validate(); err != nil {
		log.WithError(err).Warn("skipping token generation")
		return nil
	}
	token, err := server.NewJWTService(&cfg.JWT).GenerateToken(res.Users[0].ID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Token for %s: %s\n", res.Users[0].Username, token)
	return nil
}
