// Package middleware provides HTTP middleware for authentication.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/logging"
	"github.com/sirupsen/logrus"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	userIDKey    ContextKey = "user_id"
	principalKey ContextKey = "principal"
)

// Messages returned in the detail field of 401 responses
const (
	MsgNoCredentials = "Authentication credentials were not provided."
	MsgInvalidToken  = "Invalid or expired token."
	MsgUnknownUser   = "User not found."
)

// TokenValidator validates a bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter exposes the user id carried by validated claims
type UserIDGetter interface {
	GetUserID() int64
}

// UserLoader loads a user together with its capabilities
type UserLoader interface {
	GetUser(ctx context.Context, id int64) (*db.User, error)
}

// AuthMiddleware validates the bearer token and stores the user id in the request context.
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				Unauthorized(w, MsgNoCredentials)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
				Unauthorized(w, MsgNoCredentials)
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				Unauthorized(w, MsgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.GetUserID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalMiddleware resolves the authenticated user id into an authz.Principal.
// It must run after AuthMiddleware. A user deleted after the token was issued is
// treated as unauthenticated.
func PrincipalMiddleware(users UserLoader, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := GetUserID(r)
			if err != nil {
				Unauthorized(w, MsgNoCredentials)
				return
			}

			user, err := users.GetUser(r.Context(), userID)
			if err != nil {
				logging.FromContext(r.Context(), log).WithError(err).WithField("user_id", userID).Error("failed to load principal")
				writeJSON(w, http.StatusInternalServerError, "internal", map[string]string{"detail": "Internal server error."})
				return
			}
			if user == nil {
				Unauthorized(w, MsgUnknownUser)
				return
			}

			p := authz.NewPrincipal(user.ID, user.Username, user.Capabilities)
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// GetUserID extracts the user ID from the request context
func GetUserID(r *http.Request) (int64, error) {
	userID, ok := r.Context().Value(userIDKey).(int64)
	if !ok {
		return 0, errors.New("user ID not found in context")
	}
	return userID, nil
}

// UserIDKey returns the context key used for storing user ID
func UserIDKey() ContextKey {
	return userIDKey
}

// WithPrincipal returns a context carrying p
func WithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal resolved for the request, or nil
func GetPrincipal(r *http.Request) *authz.Principal {
	p, _ := r.Context().Value(principalKey).(*authz.Principal)
	return p
}

// Unauthorized writes a 401 response with the given detail
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
	writeJSON(w, http.StatusUnauthorized, "unauthenticated", map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, category string, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Category", category)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
