// Package server provides the HTTP REST API for the applicant tracker.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/applicant-tracker/internal/applications"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/logging"
	"github.com/jonathan/applicant-tracker/internal/metrics"
	"github.com/jonathan/applicant-tracker/internal/server/middleware"
	"github.com/jonathan/applicant-tracker/internal/server/ratelimit"
	"github.com/jonathan/applicant-tracker/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const requestIDHeader = "X-Request-ID"

// Store is everything the server reads and writes
type Store interface {
	applications.Store
	UserStore
}

// HealthChecker reports whether the backing database is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Options holds the dependencies of a Server
type Options struct {
	Config    *config.Config
	Store     Store
	Health    HealthChecker
	RateLimit *ratelimit.Config // nil loads RATE_LIMIT_* from the environment
	Logger    *logrus.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer      *http.Server
	log             *logrus.Logger
	apps            *applications.Service
	health          HealthChecker
	rateLimiter     *ratelimit.Limiter
	jwtService      *JWTService
	userService     *UserService
	authHandler     *AuthHandler
	validate        *validator.Validate
	corsOrigin      string
	shutdownTimeout time.Duration
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	if opts.Config == nil || opts.Store == nil {
		return nil, errors.New("server: config and store are required")
	}
	cfg := opts.Config
	if err := cfg.JWT.Validate(); err != nil {
		return nil, fmt.Errorf("invalid JWT config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = logging.New(cfg.Log)
	}

	var appOpts []applications.Option
	if cfg.Applications.StrictDecisions {
		appOpts = append(appOpts, applications.WithStrictTransitions())
	}

	rlConfig := opts.RateLimit
	if rlConfig == nil {
		var err error
		if rlConfig, err = ratelimit.LoadConfig(); err != nil {
			return nil, err
		}
	}

	s := &Server{
		log:             log,
		apps:            applications.NewService(opts.Store, appOpts...),
		health:          opts.Health,
		rateLimiter:     ratelimit.NewLimiter(rlConfig),
		jwtService:      NewJWTService(&cfg.JWT),
		userService:     NewUserService(opts.Store, &cfg.Password),
		validate:        types.NewValidator(),
		corsOrigin:      cfg.Server.CORSAllowedOrigin,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, log)

	authenticated := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(
			middleware.PrincipalMiddleware(opts.Store, log)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	// Authentication
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /auth/me", authenticated(s.authHandler.Me))

	// Applications
	mux.Handle("GET /applications/{$}", authenticated(s.handleListApplications))
	mux.Handle("POST /applications/{$}", authenticated(s.handleCreateApplication))
	mux.Handle("GET /applications/stats/{$}", authenticated(s.handleJobStats))
	mux.Handle("GET /applications/{id}/{$}", authenticated(s.handleGetApplication))
	mux.Handle("PATCH /applications/{id}/approval/{$}", authenticated(s.handleDecideApplication))
	mux.Handle("POST /applications/{id}/notes/{$}", authenticated(s.handleAddNote))
	mux.Handle("GET /applications/{id}/notes/{$}", authenticated(s.handleListNotes))

	// Jobs
	mux.Handle("GET /jobs/{$}", authenticated(s.handleListJobs))

	// The route label is read from the request the mux annotates, so
	// instrumentation sits directly around it.
	handler := s.withRequestID(s.withLogging(s.withRateLimit(s.withCORS(metrics.InstrumentHandler(mux)))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves requests until ctx is cancelled or the process receives
// SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer s.rateLimiter.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.WithField("addr", s.httpServer.Addr).Info("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.log.Info("server stopped")
	return err
}

// withRequestID tags each request with an id taken from X-Request-ID or generated
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logging.WithRequestID(r.Context(), id)))
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		w.Header().Set("Access-Control-Expose-Headers", "X-Error-Category, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging writes one log entry per request
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		entry := logging.FromContext(r.Context(), s.log).WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"client":      s.extractClientID(r),
		})
		if rw.status >= http.StatusInternalServerError {
			entry.Warn("request completed")
		} else {
			entry.Info("request completed")
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			logging.FromContext(r.Context(), s.log).WithError(err).Warn("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, s.log, err)
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; forwarded headers are not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"detail":    "Request was throttled.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}

	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	logging.FromContext(r.Context(), s.log).WithFields(logrus.Fields{
		"client": s.extractClientID(r),
		"path":   r.URL.Path,
		"limit":  info.Limit,
	}).Warn("rate limit exceeded")

	w.Header().Set("X-Error-Category", "throttled")
	writeJSON(w, http.StatusTooManyRequests, response)
}
