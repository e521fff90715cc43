// Package applicationstest provides an in-memory store for tests of code built on
// the applications service.
package applicationstest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jonathan/applicant-tracker/internal/db"
)

// Store is a concurrency-safe in-memory implementation of applications.Store.
// It enforces one application per applicant and job the way the database
// constraint does.
type Store struct {
	mu           sync.Mutex
	nextID       int64
	users        map[int64]*db.User
	applicants   map[int64]*db.Applicant
	jobs         map[int64]*db.Job
	applications map[int64]*db.Application
	notes        []db.ApplicationNote
	writes       int

	// Err, when set, is returned by every store call
	Err error
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		users:        map[int64]*db.User{},
		applicants:   map[int64]*db.Applicant{},
		jobs:         map[int64]*db.Job{},
		applications: map[int64]*db.Application{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Writes returns the number of successful mutations made through the Store interface
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// AddUser registers a user with the given capabilities and returns it
func (s *Store) AddUser(username, passwordHash string, capabilities ...string) *db.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	caps := append([]string{}, capabilities...)
	sort.Strings(caps)
	u := &db.User{
		ID:           s.id(),
		Username:     username,
		FirstName:    username,
		LastName:     "Tester",
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		Capabilities: caps,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[u.ID] = u
	return u
}

// AddApplicant attaches an applicant profile to userID
func (s *Store) AddApplicant(userID int64, phone, linkedInURL string) *db.Applicant {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	a := &db.Applicant{
		ID:          s.id(),
		UserID:      userID,
		PhoneNumber: phone,
		LinkedInURL: linkedInURL,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.applicants[a.ID] = a
	return a
}

// AddJob registers a job with the given status
func (s *Store) AddJob(title, status string) *db.Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	j := &db.Job{
		ID:        s.id(),
		Title:     title,
		Location:  "NYC",
		WorkModel: db.WorkModelHybrid,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.jobs[j.ID] = j
	return j
}

// ApplicationStatus returns the stored status of an application
func (s *Store) ApplicationStatus(id int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.applications[id]
	if !ok {
		return "", false
	}
	return a.Status, true
}

// GetUser implements the principal lookup used by the HTTP layer
func (s *Store) GetUser(_ context.Context, id int64) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

// GetUserByUsername implements the login lookup used by the HTTP layer
func (s *Store) GetUserByUsername(_ context.Context, username string) (*db.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

// GetJob implements applications.Store
func (s *Store) GetJob(_ context.Context, id int64) (*db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	j, ok := s.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

// ListJobs implements applications.Store
func (s *Store) ListJobs(_ context.Context) ([]db.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	jobs := make([]db.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, *j)
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].ID < jobs[k].ID })
	return jobs, nil
}

// GetApplicantByUserID implements applications.Store
func (s *Store) GetApplicantByUserID(_ context.Context, userID int64) (*db.Applicant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.applicants {
		if a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// CreateApplication implements applications.Store
func (s *Store) CreateApplication(_ context.Context, applicantID, jobID int64) (*db.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.applications {
		if a.ApplicantID == applicantID && a.JobID == jobID {
			return nil, fmt.Errorf("applicant %d already applied to job %d: %w", applicantID, jobID, db.ErrDuplicate)
		}
	}
	now := time.Now()
	a := &db.Application{
		ID:          s.id(),
		ApplicantID: applicantID,
		JobID:       jobID,
		Status:      db.ApplicationStatusSubmitted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.applications[a.ID] = a
	s.writes++
	cp := *a
	return &cp, nil
}

// GetApplication implements applications.Store
func (s *Store) GetApplication(_ context.Context, id int64) (*db.ApplicationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	a, ok := s.applications[id]
	if !ok {
		return nil, nil
	}
	d := s.detail(a)
	return &d, nil
}

// ListApplications implements applications.Store
func (s *Store) ListApplications(_ context.Context) ([]db.ApplicationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	details := make([]db.ApplicationDetail, 0, len(s.applications))
	for _, a := range s.applications {
		details = append(details, s.detail(a))
	}
	sort.Slice(details, func(i, k int) bool { return details[i].ID < details[k].ID })
	return details, nil
}

// UpdateApplicationStatus implements applications.Store
func (s *Store) UpdateApplicationStatus(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.applications[id]
	if !ok {
		return db.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	s.writes++
	return nil
}

// DecideSubmittedApplication implements applications.Store
func (s *Store) DecideSubmittedApplication(_ context.Context, id int64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	a, ok := s.applications[id]
	if !ok {
		return db.ErrNotFound
	}
	if a.Status != db.ApplicationStatusSubmitted {
		return db.ErrStatusChanged
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	s.writes++
	return nil
}

// CreateApplicationNote implements applications.Store
func (s *Store) CreateApplicationNote(_ context.Context, applicationID, authorID int64, note string) (*db.ApplicationNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	now := time.Now()
	n := db.ApplicationNote{
		ID:            s.id(),
		ApplicationID: applicationID,
		CreatedBy:     authorID,
		Note:          note,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.notes = append(s.notes, n)
	s.writes++
	return &n, nil
}

// ListApplicationNotes implements applications.Store
func (s *Store) ListApplicationNotes(_ context.Context, applicationID int64) ([]db.ApplicationNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	return s.notesFor(applicationID), nil
}

// ComputeJobStats implements applications.Store
func (s *Store) ComputeJobStats(_ context.Context) ([]db.JobStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	byJob := make(map[int64]*db.JobStats, len(s.jobs))
	stats := make([]db.JobStats, 0, len(s.jobs))
	for _, j := range s.jobs {
		byJob[j.ID] = &db.JobStats{
			JobID:     j.ID,
			Title:     j.Title,
			Status:    j.Status,
			Location:  j.Location,
			WorkModel: j.WorkModel,
		}
	}
	for _, a := range s.applications {
		st := byJob[a.JobID]
		st.TotalApplications++
		switch a.Status {
		case db.ApplicationStatusApproved:
			st.ApprovedApplications++
		case db.ApplicationStatusRejected:
			st.RejectedApplications++
		}
	}
	for _, st := range byJob {
		stats = append(stats, *st)
	}
	sort.Slice(stats, func(i, k int) bool { return stats[i].JobID < stats[k].JobID })
	return stats, nil
}

func (s *Store) notesFor(applicationID int64) []db.ApplicationNote {
	notes := []db.ApplicationNote{}
	for _, n := range s.notes {
		if n.ApplicationID == applicationID {
			notes = append(notes, n)
		}
	}
	return notes
}

// detail joins an application with its relations. Callers hold s.mu.
func (s *Store) detail(a *db.Application) db.ApplicationDetail {
	d := db.ApplicationDetail{Application: *a, Notes: s.notesFor(a.ID)}
	if ap, ok := s.applicants[a.ApplicantID]; ok {
		d.Applicant = *ap
		if u, ok := s.users[ap.UserID]; ok {
			cp := *u
			d.Applicant.User = &cp
		}
	}
	if j, ok := s.jobs[a.JobID]; ok {
		d.Job = *j
	}
	return d
}
