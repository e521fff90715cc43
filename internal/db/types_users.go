package db

import "time"

// User represents an account that can authenticate against the API
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize to JSON
	Capabilities []string  `json:"capabilities"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreateInput contains the fields for creating a user
type UserCreateInput struct {
	Username     string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
}

// Applicant is the applying profile attached one-to-one to a user
type Applicant struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	User        *User     `json:"user,omitempty"` // joined
	PhoneNumber string    `json:"phone_number"`
	LinkedInURL string    `json:"linkedin_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
