package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned by mutations that matched no row
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
	// ErrStatusChanged is returned by conditional updates whose row no longer
	// has the expected status
	ErrStatusChanged = errors.New("status changed")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// applicationUniqueConstraint guards one application per applicant per job
const applicationUniqueConstraint = "applications_applicant_id_job_id_key"

// isUniqueViolation reports whether err is a unique violation. When constraint is
// non-empty the violated constraint must match it.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	if pgErr.Code != uniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
