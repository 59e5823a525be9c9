package booking

import (
	"context"
	"time"
)

// ReapStale cancels bookings still waiting on a checkout session past the
// grace window. No gateway call is made: the session expires there on its
// own, and a later "expired" webhook finds nothing left to do.
func (s *Service) ReapStale(ctx context.Context, graceWindow time.Duration) (int64, error) {
	if graceWindow <= 0 {
		graceWindow = s.cfg.ReapGraceWindow
	}
	cutoff := time.Now().Add(-graceWindow)
	n, err := s.bookings.SweepStalePending(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.loggerf("level=info msg=stale bookings reaped count=%d cutoff=%s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
