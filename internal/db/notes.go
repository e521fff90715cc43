package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const noteColumns = `id, application_id, created_by, note, created_at, updated_at`

func scanNote(row pgx.Row) (*ApplicationNote, error) {
	var n ApplicationNote
	if err := row.Scan(&n.ID, &n.ApplicationID, &n.CreatedBy, &n.Note, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

// CreateApplicationNote appends a note to an application
func (db *DB) CreateApplicationNote(ctx context.Context, applicationID, authorID int64, note string) (*ApplicationNote, error) {
	n, err := scanNote(db.q.QueryRow(ctx,
		`INSERT INTO application_notes (application_id, created_by, note)
		 VALUES ($1, $2, $3)
		 RETURNING `+noteColumns,
		applicationID, authorID, note,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create application note: %w", err)
	}
	return n, nil
}

// ListApplicationNotes returns the notes of an application in creation order
func (db *DB) ListApplicationNotes(ctx context.Context, applicationID int64) ([]ApplicationNote, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+noteColumns+` FROM application_notes
		 WHERE application_id = $1
		 ORDER BY created_at, id`,
		applicationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list application notes: %w", err)
	}
	defer rows.Close()

	notes := []ApplicationNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// notesByApplication loads the notes of several applications in one query
func (db *DB) notesByApplication(ctx context.Context, applicationIDs []int64) (map[int64][]ApplicationNote, error) {
	rows, err := db.q.Query(ctx,
		`SELECT `+noteColumns+` FROM application_notes
		 WHERE application_id = ANY($1)
		 ORDER BY created_at, id`,
		applicationIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list application notes: %w", err)
	}
	defer rows.Close()

	byApp := make(map[int64][]ApplicationNote, len(applicationIDs))
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application note: %w", err)
		}
		byApp[n.ApplicationID] = append(byApp[n.ApplicationID], *n)
	}
	return byApp, rows.Err()
}
