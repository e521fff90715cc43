package db

import "time"

// Application status values
const (
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
)

// Application is one applicant's submission against one job
type Application struct {
	ID          int64     `json:"id"`
	ApplicantID int64     `json:"applicant_id"`
	JobID       int64     `json:"job_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ApplicationDetail is an application with its applicant (and user), job and notes joined
type ApplicationDetail struct {
	Application
	Applicant Applicant         `json:"applicant"`
	Job       Job               `json:"job"`
	Notes     []ApplicationNote `json:"notes"`
}

// ApplicationNote is a reviewer note attached to an application
type ApplicationNote struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	CreatedBy     int64     `json:"created_by"`
	Note          string    `json:"note"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsDecisionStatus reports whether status is a valid decision target
func IsDecisionStatus(status string) bool {
	return status == ApplicationStatusApproved || status == ApplicationStatusRejected
}
