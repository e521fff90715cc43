package db

import "time"

// Job status values
const (
	JobStatusOpen   = "open"
	JobStatusClosed = "closed"
)

// Work model values
const (
	WorkModelOnsite = "onsite"
	WorkModelRemote = "remote"
	WorkModelHybrid = "hybrid"
)

// Job represents a posted role that applicants can apply to
type Job struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	WorkModel   string    `json:"work_model"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOpen reports whether the job still accepts applications.
func (j *Job) IsOpen() bool {
	return j.Status == JobStatusOpen
}

// JobCreateInput contains the fields for creating a job
type JobCreateInput struct {
	Title       string
	Description string
	Location    string
	WorkModel   string // defaults to onsite
	Status      string // defaults to open
}

// JobStats is the per-job application tally
type JobStats struct {
	JobID                int64  `json:"-"`
	Title                string `json:"title"`
	Status               string `json:"status"`
	Location             string `json:"location"`
	WorkModel            string `json:"work_model"`
	TotalApplications    int    `json:"total_applications"`
	ApprovedApplications int    `json:"approved_applications"`
	RejectedApplications int    `json:"rejected_applications"`
}

// Pending returns the number of applications that are neither approved nor rejected.
func (s JobStats) Pending() int {
	n := s.TotalApplications - s.ApprovedApplications - s.RejectedApplications
	if n < 0 {
		return 0
	}
	return n
}

// IsValidWorkModel checks if the work model is one of the known values
func IsValidWorkModel(m string) bool {
	switch m {
	case WorkModelOnsite, WorkModelRemote, WorkModelHybrid:
		return true
	}
	return false
}

// IsValidJobStatus checks if the job status is one of the known values
func IsValidJobStatus(s string) bool {
	return s == JobStatusOpen || s == JobStatusClosed
}
