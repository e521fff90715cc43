package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/applicant-tracker/internal/applications"
	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/logging"
	"github.com/jonathan/applicant-tracker/internal/metrics"
	"github.com/sirupsen/logrus"
)

// Client-facing messages for errors raised by the HTTP layer itself
const (
	msgForbidden          = "You do not have permission to perform this action."
	msgNotFound           = "Not found."
	msgInternal           = "Internal server error."
	msgInvalidCredentials = "Invalid username or password."
	msgMalformedBody      = "JSON parse error."
	nonFieldErrors        = "non_field_errors"
)

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid username or password"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrMalformedBody indicates the request body is not valid JSON for the endpoint
type ErrMalformedBody struct {
	Cause error
}

func (e *ErrMalformedBody) Error() string {
	return fmt.Sprintf("JSON parse error - %v", e.Cause)
}

func (e *ErrMalformedBody) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _, _ := describeError(err)
	return status
}

// ErrorCategory returns the value of the X-Error-Category header for an error
func ErrorCategory(err error) string {
	_, category, _ := describeError(err)
	return category
}

// describeError maps an error to its status, category and response body.
func describeError(err error) (int, string, any) {
	var (
		unauthenticated *authz.UnauthenticatedError
		forbidden       *authz.ForbiddenError
		notFound        *applications.NotFoundError
		invalidState    *applications.InvalidStateError
		invalidArgument *applications.InvalidArgumentError
		validation      *applications.ValidationError
		conflict        *applications.ConflictError
		credentials     *ErrInvalidCredentials
		requestInvalid  *ErrValidation
		malformed       *ErrMalformedBody
	)

	switch {
	case err == nil:
		return http.StatusInternalServerError, "internal", detail(msgInternal)
	case errors.As(err, &unauthenticated):
		return http.StatusUnauthorized, unauthenticated.Category(), detail("Authentication credentials were not provided.")
	case errors.As(err, &credentials):
		return http.StatusUnauthorized, "unauthenticated", detail(msgInvalidCredentials)
	case errors.As(err, &forbidden):
		return http.StatusForbidden, forbidden.Category(), detail(msgForbidden)
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Category(), detail(msgNotFound)
	case errors.As(err, &conflict):
		return http.StatusBadRequest, conflict.Category(), fieldErrors(nonFieldErrors, applications.MsgDuplicateApplication)
	case errors.As(err, &invalidState):
		field := invalidState.Field
		if field == "" {
			field = nonFieldErrors
		}
		return http.StatusBadRequest, invalidState.Category(), fieldErrors(field, invalidState.Message)
	case errors.As(err, &invalidArgument):
		return http.StatusBadRequest, invalidArgument.Category(), map[string]string{"Error": invalidArgument.Message}
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Category(), fieldErrors(validation.Field, validation.Message)
	case errors.As(err, &requestInvalid):
		return http.StatusBadRequest, "validation", fieldErrors(requestInvalid.Field, requestInvalid.Message)
	case errors.As(err, &malformed):
		return http.StatusBadRequest, "invalid_argument", detail(msgMalformedBody)
	default:
		return http.StatusInternalServerError, "internal", detail(msgInternal)
	}
}

func detail(msg string) map[string]string {
	return map[string]string{"detail": msg}
}

func fieldErrors(field, msg string) map[string][]string {
	return map[string][]string{field: {msg}}
}

// writeError renders err as a JSON error response. Causes of 5xx responses are
// logged and never sent to the client.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	status, category, body := describeError(err)

	var forbidden *authz.ForbiddenError
	if errors.As(err, &forbidden) {
		metrics.RecordAuthzDenial(string(forbidden.Action))
	}

	fields := logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}
	var malformed *ErrMalformedBody
	switch {
	case status >= http.StatusInternalServerError:
		logging.FromContext(r.Context(), log).WithError(err).WithFields(fields).Error("request failed")
	case errors.As(err, &malformed):
		logging.FromContext(r.Context(), log).WithError(malformed.Cause).WithFields(fields).Warn("malformed request body")
	}

	w.Header().Set("X-Error-Category", category)
	writeJSON(w, status, body)
}

// writeJSON writes data as a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// validationError converts the first validator failure into an ErrValidation
// keyed by the field's JSON name.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	ve := verrs[0]
	msg := "This field is required."
	if ve.Tag() != "required" {
		msg = fmt.Sprintf("Failed on the '%s' rule.", ve.Tag())
	}
	return &ErrValidation{Field: ve.Field(), Message: msg}
}
