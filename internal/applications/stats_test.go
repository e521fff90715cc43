package applications

import (
	"context"
	"testing"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStats_FollowDecisions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	stats, err := env.svc.Stats(ctx, env.nobody)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 0, stats[0].TotalApplications)

	app := env.createApplication(t)

	require.NoError(t, env.svc.Decide(ctx, env.reviewer, app.ID, db.ApplicationStatusApproved))
	stats, err = env.svc.Stats(ctx, env.nobody)
	require.NoError(t, err)
	assert.Equal(t, "Software Engineer", stats[0].Title)
	assert.Equal(t, 1, stats[0].TotalApplications)
	assert.Equal(t, 1, stats[0].ApprovedApplications)
	assert.Equal(t, 0, stats[0].RejectedApplications)

	require.NoError(t, env.svc.Decide(ctx, env.reviewer, app.ID, db.ApplicationStatusRejected))
	stats, err = env.svc.Stats(ctx, env.nobody)
	require.NoError(t, err)
	assert.Equal(t, 0, stats[0].ApprovedApplications)
	assert.Equal(t, 1, stats[0].RejectedApplications)
}

func TestStats_TotalsAddUp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	second := env.store.AddJob("Data Engineer", db.JobStatusOpen)

	statuses := []string{"", db.ApplicationStatusApproved, db.ApplicationStatusRejected, db.ApplicationStatusApproved, ""}
	for i, status := range statuses {
		u := env.store.AddUser("applicant"+string(rune('a'+i)), "", "create_application")
		env.store.AddApplicant(u.ID, "9172820312", "")
		p := authz.NewPrincipal(u.ID, u.Username, u.Capabilities)

		jobID := env.job.ID
		if i%2 == 1 {
			jobID = second.ID
		}
		app, err := env.svc.Create(ctx, p, jobID)
		require.NoError(t, err)
		if status != "" {
			require.NoError(t, env.svc.Decide(ctx, env.reviewer, app.ID, status))
		}
	}

	stats, err := env.svc.Stats(ctx, env.reviewer)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	total := 0
	for _, s := range stats {
		assert.Equal(t, s.TotalApplications, s.ApprovedApplications+s.RejectedApplications+s.Pending(), s.Title)
		total += s.TotalApplications
	}
	assert.Equal(t, len(statuses), total)
}

func TestStats_RequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Stats(context.Background(), nil)
	assert.True(t, authz.IsUnauthenticated(err))
}
