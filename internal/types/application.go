package types

import (
	"encoding/json"
	"time"
)

// CreateApplicationRequest is the body of POST /applications/.
// Only the job is read; the applicant always comes from the caller.
type CreateApplicationRequest struct {
	Job *ID `json:"job" validate:"required,gt=0"`
}

// DecisionRequest is the body of PATCH /applications/{id}/approval/.
// Status is checked by the lifecycle service, not by the validator, so that
// a missing, unknown or non-string value yields the same error.
type DecisionRequest struct {
	Status json.RawMessage `json:"status"`
}

// StatusValue returns the status when it was sent as a JSON string and ""
// for anything else.
func (r DecisionRequest) StatusValue() string {
	var status string
	if err := json.Unmarshal(r.Status, &status); err != nil {
		return ""
	}
	return status
}

// DecisionResponse acknowledges a recorded decision.
type DecisionResponse struct {
	Success string `json:"Success"`
}

// CreateNoteRequest is the body of POST /applications/{id}/notes/.
// A nil Note means the field was absent.
type CreateNoteRequest struct {
	Note *string `json:"note"`
}

// ApplicationRecord is the client-facing view of an application.
type ApplicationRecord struct {
	ID               int64         `json:"id"`
	Status           string        `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Applicant        ApplicantView `json:"applicant"`
	Job              JobView       `json:"job"`
	ApplicationNotes []NoteView    `json:"application_notes"`
}

// ApplicantView is the applicant block embedded in an ApplicationRecord.
type ApplicantView struct {
	User        UserView `json:"user"`
	ApplicantID int64    `json:"applicant_id"`
	LinkedInURL string   `json:"linkedin_url"`
	PhoneNumber string   `json:"phone_number"`
}

// UserView exposes the public identity fields of an applicant's account.
type UserView struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// JobView is the job block embedded in an ApplicationRecord.
type JobView struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	Location  string `json:"location"`
	WorkModel string `json:"work_model"`
}

// NoteView is a note as listed inside an ApplicationRecord.
type NoteView struct {
	Note string `json:"note"`
}

// NoteRecord is a single note returned by the notes endpoints.
type NoteRecord struct {
	ID        int64     `json:"id"`
	Note      string    `json:"note"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// JobRecord is a job as listed by GET /jobs/.
type JobRecord struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	WorkModel   string    `json:"work_model"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobStatsRecord is one row of GET /applications/stats/.
type JobStatsRecord struct {
	Title                string `json:"title"`
	Status               string `json:"status"`
	Location             string `json:"location"`
	WorkModel            string `json:"work_model"`
	TotalApplications    int    `json:"total_applications"`
	ApprovedApplications int    `json:"approved_applications"`
	RejectedApplications int    `json:"rejected_applications"`
}

// CreateApplicantRequest is the administrative input for an applicant profile.
type CreateApplicantRequest struct {
	Username    string `json:"username" yaml:"username" validate:"required"`
	PhoneNumber string `json:"phone_number" yaml:"phone_number" validate:"omitempty,phone"`
	LinkedInURL string `json:"linkedin_url" yaml:"linkedin_url" validate:"omitempty,url"`
}

// CreateJobRequest is the administrative input for a job posting.
type CreateJobRequest struct {
	Title       string `json:"title" yaml:"title" validate:"required,max=255"`
	Description string `json:"description" yaml:"description"`
	Location    string `json:"location" yaml:"location" validate:"max=255"`
	WorkModel   string `json:"work_model" yaml:"work_model" validate:"omitempty,oneof=onsite remote hybrid"`
	Status      string `json:"status" yaml:"status" validate:"omitempty,oneof=open closed"`
}
