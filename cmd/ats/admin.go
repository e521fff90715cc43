package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/observability"
	"github.com/jonathan/applicant-tracker/internal/types"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage users, capabilities, applicant profiles and jobs",
}

var (
	newUser      types.CreateUserRequest
	newApplicant types.CreateApplicantRequest
	newJob       types.CreateJobRequest
)

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create an account, optionally granting capabilities",
	Args:  cobra.NoArgs,
	RunE:  runCreateUser,
}

var createApplicantCmd = &cobra.Command{
	Use:   "create-applicant",
	Short: "Attach an applicant profile to an existing user",
	Args:  cobra.NoArgs,
	RunE:  runCreateApplicant,
}

var createJobCmd = &cobra.Command{
	Use:   "create-job",
	Short: "Post a job",
	Args:  cobra.NoArgs,
	RunE:  runCreateJob,
}

var closeJobCmd = &cobra.Command{
	Use:   "close-job <job-id>",
	Short: "Stop accepting applications for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetJobStatus(cmd, args[0], db.JobStatusClosed)
	},
}

var openJobCmd = &cobra.Command{
	Use:   "open-job <job-id>",
	Short: "Accept applications for a job again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetJobStatus(cmd, args[0], db.JobStatusOpen)
	},
}

var grantCmd = &cobra.Command{
	Use:   "grant <username> <capability>",
	Short: "Grant a capability to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangeCapability(cmd, args[0], args[1], true)
	},
}

var setPasswordCmd = &cobra.Command{
	Use:   "set-password <username> <password>",
	Short: "Replace a user's password",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetPassword(cmd, args[0], args[1])
	},
}

var revokeCmd = &cobra.Command{
	Use:   "revoke <username> <capability>",
	Short: "Revoke a capability from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChangeCapability(cmd, args[0], args[1], false)
	},
}

func init() {
	f := createUserCmd.Flags()
	f.StringVar(&newUser.Username, "username", "", "Login name (required)")
	f.StringVar(&newUser.Password, "password", "", "Password, at least 8 characters (required)")
	f.StringVar(&newUser.FirstName, "first-name", "", "First name")
	f.StringVar(&newUser.LastName, "last-name", "", "Last name")
	f.StringVar(&newUser.Email, "email", "", "Email address")
	f.StringSliceVar(&newUser.Capabilities, "capability", nil, "Capability to grant (repeatable)")

	f = createApplicantCmd.Flags()
	f.StringVar(&newApplicant.Username, "username", "", "User to attach the profile to (required)")
	f.StringVar(&newApplicant.PhoneNumber, "phone", "", "Phone number")
	f.StringVar(&newApplicant.LinkedInURL, "linkedin", "", "LinkedIn profile URL")

	f = createJobCmd.Flags()
	f.StringVar(&newJob.Title, "title", "", "Job title (required)")
	f.StringVar(&newJob.Description, "description", "", "Description")
	f.StringVar(&newJob.Location, "location", "", "Location")
	f.StringVar(&newJob.WorkModel, "work-model", db.WorkModelOnsite, "onsite, remote or hybrid")
	f.StringVar(&newJob.Status, "status", db.JobStatusOpen, "open or closed")

	adminCmd.AddCommand(createUserCmd, createApplicantCmd, createJobCmd,
		closeJobCmd, openJobCmd, grantCmd, revokeCmd, setPasswordCmd)
	rootCmd.AddCommand(adminCmd)
}

// validateInput reports the first failing field of a request by its JSON name
func validateInput(v any) error {
	err := types.NewValidator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		if fe.Tag() == "required" {
			return fmt.Errorf("%s is required", fe.Field())
		}
		return fmt.Errorf("invalid %s: failed on the '%s' rule", fe.Field(), fe.Tag())
	}
	return err
}

// withDatabase loads configuration, connects and runs fn inside a transaction
func withDatabase(cmd *cobra.Command, fn func(ctx context.Context, cfg *config.Config, tx *db.DB) error) error {
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

	return database.WithTx(ctx, func(tx *db.DB) error {
		return fn(ctx, cfg, tx)
	})
}

func lookupUser(ctx context.Context, tx *db.DB, username string) (*db.User, error) {
	user, err := tx.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %q not found", username)
	}
	return user, nil
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	if err := validateInput(&newUser); err != nil {
		return err
	}

	var created *db.User
	err := withDatabase(cmd, func(ctx context.Context, cfg *config.Config, tx *db.DB) error {
		hash, err := cfg.Password.HashPassword(newUser.Password)
		if err != nil {
			return err
		}
		user, err := tx.CreateUser(ctx, &db.UserCreateInput{
			Username:     newUser.Username,
			FirstName:    newUser.FirstName,
			LastName:     newUser.LastName,
			Email:        newUser.Email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		for _, c := range newUser.Capabilities {
			if err := tx.GrantCapability(ctx, user.ID, c); err != nil {
				return err
			}
		}
		if user.Capabilities, err = tx.ListCapabilities(ctx, user.ID); err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintUser(created)
	return nil
}

func runCreateApplicant(cmd *cobra.Command, _ []string) error {
	if err := validateInput(&newApplicant); err != nil {
		return err
	}

	return withDatabase(cmd, func(ctx context.Context, _ *config.Config, tx *db.DB) error {
		user, err := lookupUser(ctx, tx, newApplicant.Username)
		if err != nil {
			return err
		}
		applicant, err := tx.CreateApplicant(ctx, user.ID, newApplicant.PhoneNumber, newApplicant.LinkedInURL)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applicant %d created for %s\n", applicant.ID, user.Username)
		return nil
	})
}

func runCreateJob(cmd *cobra.Command, _ []string) error {
	if err := validateInput(&newJob); err != nil {
		return err
	}

	var created *db.Job
	err := withDatabase(cmd, func(ctx context.Context, _ *config.Config, tx *db.DB) error {
		job, err := tx.CreateJob(ctx, &db.JobCreateInput{
			Title:       newJob.Title,
			Description: newJob.Description,
			Location:    newJob.Location,
			WorkModel:   newJob.WorkModel,
			Status:      newJob.Status,
		})
		created = job
		return err
	})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintJob(created)
	return nil
}

func runSetJobStatus(cmd *cobra.Command, rawID, status string) error {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid job id %q", rawID)
	}

	err = withDatabase(cmd, func(ctx context.Context, _ *config.Config, tx *db.DB) error {
		return tx.SetJobStatus(ctx, id, status)
	})
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("job %d not found", id)
	}
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Job %d is now %s\n", id, status)
	return nil
}

func runChangeCapability(cmd *cobra.Command, username, name string, grant bool) error {
	capability, err := authz.ParseCapability(name)
	if err != nil {
		return err
	}

	var updated *db.User
	err = withDatabase(cmd, func(ctx context.Context, _ *config.Config, tx *db.DB) error {
		user, err := lookupUser(ctx, tx, username)
		if err != nil {
			return err
		}
		if grant {
			err = tx.GrantCapability(ctx, user.ID, string(capability))
		} else {
			err = tx.RevokeCapability(ctx, user.ID, string(capability))
		}
		if err != nil {
			return err
		}
		if user.Capabilities, err = tx.ListCapabilities(ctx, user.ID); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return err
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintUser(updated)
	return nil
}

func runSetPassword(cmd *cobra.Command, username, password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	err := withDatabase(cmd, func(ctx context.Context, cfg *config.Config, tx *db.DB) error {
		user, err := lookupUser(ctx, tx, username)
		if err != nil {
			return err
		}
		hash, err := cfg.Password.HashPassword(password)
		if err != nil {
			return err
		}
		return tx.UpdatePassword(ctx, user.ID, hash)
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Password updated for %s\n", username)
	return nil
}
