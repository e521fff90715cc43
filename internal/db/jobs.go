package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const jobColumns = `id, title, description, location, work_model, status, created_at, updated_at`

func scanJob(row pgx.Row) (*Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.Title, &j.Description, &j.Location,
		&j.WorkModel, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// CreateJob inserts a new job posting
func (db *DB) CreateJob(ctx context.Context, input *JobCreateInput) (*Job, error) {
	workModel := input.WorkModel
	if workModel == "" {
		workModel = WorkModelOnsite
	}
	status := input.Status
	if status == "" {
		status = JobStatusOpen
	}

	job, err := scanJob(db.q.QueryRow(ctx,
		`INSERT INTO jobs (title, description, location, work_model, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+jobColumns,
		input.Title, input.Description, input.Location, workModel, status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// GetJob retrieves a job by ID. Returns nil, nil when the job does not exist.
func (db *DB) GetJob(ctx context.Context, id int64) (*Job, error) {
	job, err := scanJob(db.q.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

// GetJobByTitle retrieves the oldest job with the given title, or nil, nil
func (db *DB) GetJobByTitle(ctx context.Context, title string) (*Job, error) {
	job, err := scanJob(db.q.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE title = $1 ORDER BY id LIMIT 1`, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job by title: %w", err)
	}
	return job, nil
}

// ListJobs returns every job ordered by ID
func (db *DB) ListJobs(ctx context.Context) ([]Job, error) {
	rows, err := db.q.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

// SetJobStatus opens or closes a job
func (db *DB) SetJobStatus(ctx context.Context, id int64, status string) error {
	if !IsValidJobStatus(status) {
		return fmt.Errorf("invalid job status %q", status)
	}
	tag, err := db.q.Exec(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
