package server

import (
	"context"
	"fmt"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/config"
	"github.com/jonathan/applicant-tracker/internal/db"
	"github.com/jonathan/applicant-tracker/internal/types"
)

// UserStore is the slice of the store the authentication layer reads
type UserStore interface {
	GetUser(ctx context.Context, id int64) (*db.User, error)
	GetUserByUsername(ctx context.Context, username string) (*db.User, error)
}

// UserService provides business logic for user authentication operations
type UserService struct {
	users          UserStore
	passwordConfig *config.PasswordConfig
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(users UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		users:          users,
		passwordConfig: passwordConfig,
	}
}

// Login checks the credentials and returns the matching user.
// Unknown usernames and wrong passwords produce the same error.
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*db.User, error) {
	user, err := s.users.GetUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &ErrInvalidCredentials{}
	}
	if !s.passwordConfig.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}
	return user, nil
}

// Me describes the principal and its capabilities
func (s *UserService) Me(ctx context.Context, p *authz.Principal) (*types.MeResponse, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	user, err := s.users.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, &authz.UnauthenticatedError{}
	}

	caps := p.Capabilities()
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c))
	}
	return &types.MeResponse{User: toUser(user), Capabilities: names}, nil
}
