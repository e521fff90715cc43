package applications

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/db"
)

// AddNote appends a note authored by p to an application. A nil note means the
// field was omitted; a note that is empty after trimming is blank.
func (s *Service) AddNote(ctx context.Context, p *authz.Principal, applicationID int64, note *string) (*db.ApplicationNote, error) {
	if err := authz.Require(p, authz.ActionAnnotate); err != nil {
		return nil, err
	}
	if _, err := s.getApplication(ctx, applicationID); err != nil {
		return nil, err
	}

	if note == nil {
		return nil, &ValidationError{Field: "note", Message: MsgFieldRequired}
	}
	if strings.TrimSpace(*note) == "" {
		return nil, &ValidationError{Field: "note", Message: MsgFieldBlank}
	}

	created, err := s.store.CreateApplicationNote(ctx, applicationID, p.UserID, *note)
	if err != nil {
		return nil, fmt.Errorf("failed to add note: %w", err)
	}
	return created, nil
}

// ListNotes returns the notes of an application in creation order
func (s *Service) ListNotes(ctx context.Context, p *authz.Principal, applicationID int64) ([]db.ApplicationNote, error) {
	if err := authz.Require(p, authz.ActionView); err != nil {
		return nil, err
	}
	if _, err := s.getApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	notes, err := s.store.ListApplicationNotes(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	return notes, nil
}
