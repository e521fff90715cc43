// Package types provides the request and response shapes of the applicant tracker API.
package types

import (
	"time"
)

// LoginRequest represents the login request.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// User represents a user profile for API responses.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginResponse carries the issued token and the authenticated user.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// MeResponse describes the caller and the capabilities it holds.
type MeResponse struct {
	User         *User    `json:"user"`
	Capabilities []string `json:"capabilities"`
}

// CreateUserRequest is the administrative input for a new account.
type CreateUserRequest struct {
	Username     string   `json:"username" yaml:"username" validate:"required,min=3,max=150,alphanum"`
	Password     string   `json:"password" yaml:"password" validate:"required,min=8"`
	FirstName    string   `json:"first_name" yaml:"first_name" validate:"max=150"`
	LastName     string   `json:"last_name" yaml:"last_name" validate:"max=150"`
	Email        string   `json:"email" yaml:"email" validate:"omitempty,email"`
	Capabilities []string `json:"capabilities" yaml:"capabilities" validate:"dive,oneof=view_application create_application decide_application annotate_application"`
}
