package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, username, first_name, last_name, email, password_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName,
		&u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user. Returns ErrDuplicate when the username is taken.
func (db *DB) CreateUser(ctx context.Context, input *UserCreateInput) (*User, error) {
	user, err := scanUser(db.q.QueryRow(ctx,
		`INSERT INTO users (username, first_name, last_name, email, password_hash)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		input.Username, input.FirstName, input.LastName, input.Email, input.PasswordHash,
	))
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("username %q: %w", input.Username, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	user.Capabilities = []string{}
	return user, nil
}

// GetUser retrieves a user and its capabilities by ID. Returns nil, nil if not found.
func (db *DB) GetUser(ctx context.Context, id int64) (*User, error) {
	user, err := scanUser(db.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Capabilities, err = db.ListCapabilities(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user and its capabilities by username.
// Returns nil, nil if not found.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	if username == "" {
		return nil, nil
	}
	user, err := scanUser(db.q.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	if user.Capabilities, err = db.ListCapabilities(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash
func (db *DB) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`,
		passwordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCapabilities returns the capability names granted to a user, sorted
func (db *DB) ListCapabilities(ctx context.Context, userID int64) ([]string, error) {
	rows, err := db.q.Query(ctx,
		`SELECT capability FROM user_capabilities WHERE user_id = $1 ORDER BY capability`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list capabilities: %w", err)
	}
	defer rows.Close()

	caps := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan capability: %w", err)
		}
		caps = append(caps, c)
	}
	return caps, rows.Err()
}

// GrantCapability adds a capability to a user. Granting twice is a no-op.
func (db *DB) GrantCapability(ctx context.Context, userID int64, capability string) error {
	_, err := db.q.Exec(ctx,
		`INSERT INTO user_capabilities (user_id, capability)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id, capability) DO NOTHING`,
		userID, capability,
	)
	if err != nil {
		return fmt.Errorf("failed to grant %s: %w", capability, err)
	}
	return nil
}

// RevokeCapability removes a capability from a user
func (db *DB) RevokeCapability(ctx context.Context, userID int64, capability string) error {
	_, err := db.q.Exec(ctx,
		`DELETE FROM user_capabilities WHERE user_id = $1 AND capability = $2`,
		userID, capability,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke %s: %w", capability, err)
	}
	return nil
}
