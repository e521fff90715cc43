package applications

import "fmt"

// Client-facing messages
const (
	MsgJobClosed            = "The job is closed. Cannot create an application."
	MsgNoApplicantProfile   = "The user has no applicant profile."
	MsgDuplicateApplication = "The fields applicant, job must make a unique set."
	MsgInvalidStatus        = "Invalid status provided."
	MsgAlreadyDecided       = "The application has already been decided."
	MsgFieldRequired        = "This field is required."
	MsgFieldBlank           = "This field may not be blank."
)

// NotFoundError is returned when a referenced job or application does not exist
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Category() string { return "not_found" }

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// InvalidStateError is returned when an action violates a business rule.
// Field names the input the rule is about and may be empty.
type InvalidStateError struct {
	Field   string
	Message string
}

func (e *InvalidStateError) Category() string { return "invalid_state" }

func (e *InvalidStateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid state: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid state: %s", e.Message)
}

// InvalidArgumentError is returned for out-of-set input values
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Category() string { return "invalid_argument" }

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

// ValidationError is a field-level input problem
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Category() string { return "validation" }

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// ConflictError is returned when the applicant already applied to the job
type ConflictError struct {
	ApplicantID int64
	JobID       int64
	Cause       error
}

func (e *ConflictError) Category() string { return "conflict" }

func (e *ConflictError) Error() string {
	return fmt.Sprintf("applicant %d already applied to job %d", e.ApplicantID, e.JobID)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}
