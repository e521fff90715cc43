package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/applicant-tracker/internal/applications/applicationstest"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
	"github.com/jonathan/applicant-tracker/internal/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testPassword = "correct-horse-battery"

// testEnv is a server over the in-memory store with three users:
// an applicant, a reviewer holding the three staff capabilities, and a user with none.
type testEnv struct {
	t         *testing.T
	srv       *Server
	store     *applicationstest.Store
	handler   http.Handler
	applicant *db.User
	reviewer  *db.User
	nobody    *db.User
	job       *db.Job
	closedJob *db.Job
}

type envOption func(*config.Config, *Options)

func withStrictDecisions() envOption {
	return func(c *config.Config, _ *Options) { c.Applications.StrictDecisions = true }
}

func withRateLimit(rl *ratelimit.Config) envOption {
	return func(_ *config.Config, o *Options) { o.RateLimit = rl }
}

func withHealth(h HealthChecker) envOption {
	return func(_ *config.Config, o *Options) { o.Health = h }
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.JWT.Secret = testJWTSecret
	cfg.Password.BcryptCost = 10
	return cfg
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	cfg := testConfig()
	hash, err := cfg.Password.HashPassword(testPassword)
	require.NoError(t, err)

	store := applicationstest.NewStore()
	applicant := store.AddUser("petercho42", hash, "create_application", "view_application")
	store.AddApplicant(applicant.ID, "9172820312", "https://www.linkedin.com/in/petercho42/")
	reviewer := store.AddUser("reviewer", hash, "view_application", "decide_application", "annotate_application")
	nobody := store.AddUser("nobody", hash)

	o := Options{
		Config:    cfg,
		Store:     store,
		RateLimit: &ratelimit.Config{Enabled: false},
		Logger:    quietLogger(),
	}
	for _, opt := range opts {
		opt(cfg, &o)
	}

	srv, err := New(o)
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)

	return &testEnv{
		t:         t,
		srv:       srv,
		store:     store,
		handler:   srv.Handler(),
		applicant: applicant,
		reviewer:  reviewer,
		nobody:    nobody,
		job:       store.AddJob("Software Engineer", db.JobStatusOpen),
		closedJob: store.AddJob("Data Engineer", db.JobStatusClosed),
	}
}

func (e *testEnv) token(u *db.User) string {
	e.t.Helper()
	tok, err := e.srv.jwtService.GenerateToken(u.ID)
	require.NoError(e.t, err)
	return tok
}

// do sends a request as u; a nil user sends no credentials.
func (e *testEnv) do(u *db.User, method, path string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(e.t, err)
		rdr = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if u != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(u))
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

func newAuthedRequest(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func testConfigValidator() *validator.Validate {
	return types.NewValidator()
}
