package notification

import (
	"context"
	"log"
	"time"
)

// LogSender is the fire-and-forget notification dispatch used until a
// real email/SMS provider is wired in. Failures are the caller's to log;
// this implementation never fails.
type LogSender struct{}

func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) NotifyBookingPending(ctx context.Context, leadID int64, bookingID string, start time.Time) error {
	log.Printf("notify=booking_pending lead_id=%d booking_id=%s start=%s",
		leadID, bookingID, start.Format(time.RFC3339))
	return nil
}
