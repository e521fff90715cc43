package applications

import (
	"context"
	"fmt"

	"github.com/jonathan/applicant-tracker/internal/authz"
	"github.com/jonathan/applicant-tracker/internal/db"
)

// Stats computes per-job application counts. The result is recomputed from the
// store on every call.
func (s *Service) Stats(ctx context.Context, p *authz.Principal) ([]db.JobStats, error) {
	if err := authz.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	stats, err := s.store.ComputeJobStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}
