//go:build integration

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
	"github.com/jonathan/applicant-tracker/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type integrationEnv struct {
	t        *testing.T
	handler  http.Handler
	database *db.DB
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	database, err := db.Connect(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(database.Close)
	require.NoError(t, database.Migrate(ctx))

	srv, err := New(Options{
		Config:    testConfig(),
		Store:     database,
		Health:    database,
		RateLimit: &ratelimit.Config{Enabled: false},
		Logger:    quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)

	return &integrationEnv{t: t, handler: srv.Handler(), database: database}
}

// user creates an account with the test password and logs it in
func (e *integrationEnv) user(prefix string, capabilities ...string) (*db.User, string) {
	e.t.Helper()
	ctx := context.Background()

	hash, err := testConfig().Password.HashPassword(testPassword)
	require.NoError(e.t, err)
	u, err := e.database.CreateUser(ctx, &db.UserCreateInput{
		Username:     prefix + uuid.NewString()[:8],
		PasswordHash: hash,
	})
	require.NoError(e.t, err)
	for _, c := range capabilities {
		require.NoError(e.t, e.database.GrantCapability(ctx, u.ID, c))
	}

	w := e.request("", http.MethodPost, "/auth/login", types.LoginRequest{Username: u.Username, Password: testPassword})
	require.Equal(e.t, http.StatusOK, w.Code, w.Body.String())
	return u, decodeBody[types.LoginResponse](e.t, w).Token
}

func (e *integrationEnv) request(token, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(e.handler, req)
}

func TestIntegration_ApplicationLifecycle(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	applicantUser, applicantToken := env.user("applicant-", "create_application", "view_application")
	_, err := env.database.CreateApplicant(ctx, applicantUser.ID, "9172820312", "https://www.linkedin.com/in/petercho42/")
	require.NoError(t, err)
	_, reviewerToken := env.user("reviewer-", "view_application", "decide_application", "annotate_application")

	job, err := env.database.CreateJob(ctx, &db.JobCreateInput{Title: "Engineer " + uuid.NewString()[:8], Location: "NYC", WorkModel: "hybrid"})
	require.NoError(t, err)

	w := env.request(applicantToken, http.MethodPost, "/applications/", map[string]int64{"job": job.ID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decodeBody[types.ApplicationRecord](t, w)
	assert.Equal(t, db.ApplicationStatusSubmitted, created.Status)
	assert.Equal(t, job.ID, created.Job.ID)

	w = env.request(applicantToken, http.MethodPost, "/applications/", map[string]int64{"job": job.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "must make a unique set")

	appPath := fmt.Sprintf("/applications/%d/", created.ID)

	w = env.request(applicantToken, http.MethodPatch, appPath+"approval/", map[string]string{"status": "approved"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(reviewerToken, http.MethodPatch, appPath+"approval/", map[string]string{"status": "approved"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(reviewerToken, http.MethodPost, appPath+"notes/", map[string]string{"note": "Strong systems background"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = env.request(applicantToken, http.MethodGet, appPath, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeBody[types.ApplicationRecord](t, w)
	assert.Equal(t, db.ApplicationStatusApproved, got.Status)
	require.Len(t, got.ApplicationNotes, 1)
	assert.Equal(t, "Strong systems background", got.ApplicationNotes[0].Note)

	w = env.request(reviewerToken, http.MethodGet, "/applications/stats/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var found bool
	for _, s := range decodeBody[[]types.JobStatsRecord](t, w) {
		if s.Title == job.Title {
			found = true
			assert.Equal(t, 1, s.TotalApplications)
			assert.Equal(t, 1, s.ApprovedApplications)
			assert.Equal(t, 0, s.RejectedApplications)
		}
	}
	assert.True(t, found, "stats include the new job")

	w = env.request("", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIntegration_ConcurrentDuplicateApplications(t *testing.T) {
	env := newIntegrationEnv(t)
	ctx := context.Background()

	u, token := env.user("racer-", "create_application")
	_, err := env.database.CreateApplicant(ctx, u.ID, "", "")
	require.NoError(t, err)
	job, err := env.database.CreateJob(ctx, &db.JobCreateInput{Title: "Race " + uuid.NewString()[:8]})
	require.NoError(t, err)

	const attempts = 8
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = env.request(token, http.MethodPost, "/applications/", map[string]int64{"job": job.ID}).Code
		}()
	}
	wg.Wait()

	var createdCount, rejected int
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			createdCount++
		case http.StatusBadRequest:
			rejected++
		}
	}
	assert.Equal(t, 1, createdCount)
	assert.Equal(t, attempts-1, rejected)
}
