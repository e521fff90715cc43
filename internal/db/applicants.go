package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// CreateApplicant attaches an applicant profile to a user.
// Returns ErrDuplicate when the user already has one.
func (db *DB) CreateApplicant(ctx context.Context, userID int64, phoneNumber, linkedInURL string) (*Applicant, error) {
	var a Applicant
	err := db.q.QueryRow(ctx,
		`INSERT INTO applicants (user_id, phone_number, linkedin_url)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, phone_number, linkedin_url, created_at, updated_at`,
		userID, phoneNumber, linkedInURL,
	).Scan(&a.ID, &a.UserID, &a.PhoneNumber, &a.LinkedInURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return nil, fmt.Errorf("applicant for user %d: %w", userID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create applicant: %w", err)
	}
	return &a, nil
}

// GetApplicantByUserID returns the applicant profile of a user, or nil, nil
func (db *DB) GetApplicantByUserID(ctx context.Context, userID int64) (*Applicant, error) {
	var a Applicant
	err := db.q.QueryRow(ctx,
		`SELECT id, user_id, phone_number, linkedin_url, created_at, updated_at
		 FROM applicants WHERE user_id = $1`,
		userID,
	).Scan(&a.ID, &a.UserID, &a.PhoneNumber, &a.LinkedInURL, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get applicant: %w", err)
	}
	return &a, nil
}
