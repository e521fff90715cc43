// Package applications implements the application lifecycle: creation, listing,
// decisions, reviewer notes and per-job statistics.
//
// Every operation checks the principal's capability before reading or writing the
// store, so a denied call never mutates state.
package applications

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/db"
)

// Store is the persistence the service needs. *db.DB implements it.
type Store interface {
	GetJob(ctx context.Context, id int64) (*db.Job, error)
	ListJobs(ctx context.Context) ([]db.Job, error)
	GetApplicantByUserID(ctx context.Context, userID int64) (*db.Applicant, error)
	CreateApplication(ctx context.Context, applicantID, jobID int64) (*db.Application, error)
	GetApplication(ctx context.Context, id int64) (*db.ApplicationDetail, error)
	ListApplications(ctx context.Context) ([]db.ApplicationDetail, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error
	DecideSubmittedApplication(ctx context.Context, id int64, status string) error
	CreateApplicationNote(ctx context.Context, applicationID, authorID int64, note string) (*db.ApplicationNote, error)
	ListApplicationNotes(ctx context.Context, applicationID int64) ([]db.ApplicationNote, error)
	ComputeJobStats(ctx context.Context) ([]db.JobStats, error)
}

// Service runs application operations on behalf of a principal
type Service struct {
	store  Store
	strict bool
}

// Option configures a Service
type Option func(*Service)

// WithStrictTransitions rejects decisions on applications that are no longer submitted.
// By default a decision overwrites any previous one.
func WithStrictTransitions() Option {
	return func(s *Service) {
		s.strict = true
	}
}

// NewService creates a Service backed by store
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits an application to jobID for the applicant profile of p.
func (s *Service) Create(ctx context.Context, p *authz.Principal, jobID int64) (*db.ApplicationDetail, error) {
	if err := authz.Require(p, authz.ActionCreate); err != nil {
		return nil, err
	}

	applicant, err := s.store.GetApplicantByUserID(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load applicant: %w", err)
	}
	if applicant == nil {
		return nil, &InvalidStateError{Message: MsgNoApplicantProfile}
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, &NotFoundError{Resource: "job", ID: jobID}
	}
	if !job.IsOpen() {
		return nil, &InvalidStateError{Field: "job", Message: MsgJobClosed}
	}

	app, err := s.store.CreateApplication(ctx, applicant.ID, job.ID)
	if err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, &ConflictError{ApplicantID: applicant.ID, JobID: job.ID, Cause: err}
		}
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	detail, err := s.store.GetApplication(ctx, app.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created application: %w", err)
	}
	if detail == nil {
		return nil, fmt.Errorf("created application %d disappeared", app.ID)
	}
	return detail, nil
}

// List returns every application. Holding the view capability grants visibility
// across all applicants and jobs.
func (s *Service) List(ctx context.Context, p *authz.Principal) ([]db.ApplicationDetail, error) {
	if err := authz.Require(p, authz.ActionView); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

// Get returns one application
func (s *Service) Get(ctx context.Context, p *authz.Principal, id int64) (*db.ApplicationDetail, error) {
	if err := authz.Require(p, authz.ActionView); err != nil {
		return nil, err
	}
	return s.getApplication(ctx, id)
}

// Decide sets the status of an application to approved or rejected.
func (s *Service) Decide(ctx context.Context, p *authz.Principal, id int64, status string) error {
	if err := authz.Require(p, authz.ActionDecide); err != nil {
		return err
	}

	app, err := s.getApplication(ctx, id)
	if err != nil {
		return err
	}
	if !db.IsDecisionStatus(status) {
		return &InvalidArgumentError{Message: MsgInvalidStatus}
	}

	update := s.store.UpdateApplicationStatus
	if s.strict {
		if app.Status != db.ApplicationStatusSubmitted {
			return &InvalidStateError{Field: "status", Message: MsgAlreadyDecided}
		}
		update = s.store.DecideSubmittedApplication
	}

	if err := update(ctx, id, status); err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			return &NotFoundError{Resource: "application", ID: id}
		case errors.Is(err, db.ErrStatusChanged):
			return &InvalidStateError{Field: "status", Message: MsgAlreadyDecided}
		}
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return nil
}

// ListJobs returns every job to any authenticated principal
func (s *Service) ListJobs(ctx context.Context, p *authz.Principal) ([]db.Job, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	jobs, err := s.store.ListJobs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (s *Service) getApplication(ctx context.Context, id int64) (*db.ApplicationDetail, error) {
	app, err := s.store.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, &NotFoundError{Resource: "application", ID: id}
	}
	return app, nil
}
