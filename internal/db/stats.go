package db

import (
	"context"
	"fmt"
)

// ComputeJobStats tallies applications per job from the current committed state.
// Jobs without applications are included with zero counts.
func (db *DB) ComputeJobStats(ctx context.Context) ([]JobStats, error) {
	rows, err := db.q.Query(ctx, `
		SELECT j.id, j.title, j.status, j.location, j.work_model,
		       COUNT(a.id),
		       COUNT(a.id) FILTER (WHERE a.status = 'approved'),
		       COUNT(a.id) FILTER (WHERE a.status = 'rejected')
		FROM jobs j
		LEFT JOIN applications a ON a.job_id = j.id
		GROUP BY j.id
		ORDER BY j.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to compute job stats: %w", err)
	}
	defer rows.Close()

	stats := []JobStats{}
	for rows.Next() {
		var s JobStats
		if err := rows.Scan(&s.JobID, &s.Title, &s.Status, &s.Location, &s.WorkModel,
			&s.TotalApplications, &s.ApprovedApplications, &s.RejectedApplications); err != nil {
			return nil, fmt.Errorf("failed to scan job stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
