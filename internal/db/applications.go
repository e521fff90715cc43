package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const applicationDetailQuery = `
SELECT a.id, a.applicant_id, a.job_id, a.status, a.created_at, a.updated_at,
       ap.id, ap.user_id, ap.phone_number, ap.linkedin_url, ap.created_at, ap.updated_at,
       u.id, u.username, u.first_name, u.last_name, u.email, u.created_at, u.updated_at,
       j.id, j.title, j.description, j.location, j.work_model, j.status, j.created_at, j.updated_at
FROM applications a
JOIN applicants ap ON ap.id = a.applicant_id
JOIN users u ON u.id = ap.user_id
JOIN jobs j ON j.id = a.job_id`

func scanApplicationDetail(row pgx.Row) (*ApplicationDetail, error) {
	var d ApplicationDetail
	var u User
	err := row.Scan(
		&d.ID, &d.ApplicantID, &d.JobID, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.Applicant.ID, &d.Applicant.UserID, &d.Applicant.PhoneNumber, &d.Applicant.LinkedInURL,
		&d.Applicant.CreatedAt, &d.Applicant.UpdatedAt,
		&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.CreatedAt, &u.UpdatedAt,
		&d.Job.ID, &d.Job.Title, &d.Job.Description, &d.Job.Location, &d.Job.WorkModel,
		&d.Job.Status, &d.Job.CreatedAt, &d.Job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Applicant.User = &u
	d.Notes = []ApplicationNote{}
	return &d, nil
}

// CreateApplication inserts a submitted application for the applicant and job.
// Returns ErrDuplicate when the applicant already applied to the job.
func (db *DB) CreateApplication(ctx context.Context, applicantID, jobID int64) (*Application, error) {
	var a Application
	err := db.q.QueryRow(ctx,
		`INSERT INTO applications (applicant_id, job_id, status)
		 VALUES ($1, $2, $3)
		 RETURNING id, applicant_id, job_id, status, created_at, updated_at`,
		applicantID, jobID, ApplicationStatusSubmitted,
	).Scan(&a.ID, &a.ApplicantID, &a.JobID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, applicationUniqueConstraint) {
			return nil, fmt.Errorf("applicant %d already applied to job %d: %w", applicantID, jobID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	return &a, nil
}

// GetApplication retrieves an application with its applicant, job and notes.
// Returns nil, nil if not found.
func (db *DB) GetApplication(ctx context.Context, id int64) (*ApplicationDetail, error) {
	d, err := scanApplicationDetail(db.q.QueryRow(ctx, applicationDetailQuery+` WHERE a.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	notes, err := db.ListApplicationNotes(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Notes = notes
	return d, nil
}

// ListApplications returns every application with relations loaded, ordered by ID
func (db *DB) ListApplications(ctx context.Context) ([]ApplicationDetail, error) {
	rows, err := db.q.Query(ctx, applicationDetailQuery+` ORDER BY a.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var details []ApplicationDetail
	for rows.Next() {
		d, err := scanApplicationDetail(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		details = append(details, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate applications: %w", err)
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]int64, len(details))
	for i := range details {
		ids[i] = details[i].ID
	}
	notes, err := db.notesByApplication(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range details {
		if n, ok := notes[details[i].ID]; ok {
			details[i].Notes = n
		}
	}
	return details, nil
}

// UpdateApplicationStatus overwrites the status of an application.
// Only status and updated_at are written.
func (db *DB) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DecideSubmittedApplication sets the status of an application that is still
// submitted. The check and the write are one statement, so of two concurrent
// decisions only one is applied; the other gets ErrStatusChanged.
func (db *DB) DecideSubmittedApplication(ctx context.Context, id int64, status string) error {
	tag, err := db.q.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		status, id, ApplicationStatusSubmitted,
	)
	if err != nil {
		return fmt.Errorf("failed to decide application: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := db.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check application: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrStatusChanged
}
