//go:build integration

package fixtures

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
)

func TestIntegration_ApplyDefault(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	defer database.Close()
	require.NoError(t, database.Migrate(ctx))

	fx, err := Default()
	require.NoError(t, err)
	passwords := &config.PasswordConfig{BcryptCost: 10}

	for range 2 {
		err = database.WithTx(ctx, func(tx *db.DB) error {
			_, err := Apply(ctx, tx, fx, passwords)
			return err
		})
		require.NoError(t, err)
	}

	user, err := database.GetUserByUsername(ctx, "petercho42")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Len(t, user.Capabilities, 4)
	assert.NotEmpty(t, user.PasswordHash)

	applicant, err := database.GetApplicantByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, applicant)

	job, err := database.GetJobByTitle(ctx, "Software Engineer")
	require.NoError(t, err)
	require.NotNil(t, job)

	var second *Result
	require.NoError(t, database.WithTx(ctx, func(tx *db.DB) error {
		second, err = Apply(ctx, tx, fx, passwords)
		return err
	}))
	assert.Equal(t, 0, second.UsersCreated)
	assert.Equal(t, 0, second.JobsCreated)
	assert.Equal(t, 0, second.ApplicantsCreated)
}
