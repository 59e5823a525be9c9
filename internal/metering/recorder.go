package metering

import (
	"context"
	"log"
)

// LogRecorder records tenant-scoped usage events to the process log.
type LogRecorder struct {
	tenant string
}

func NewLogRecorder(tenant string) *LogRecorder {
	if tenant == "" {
		tenant = "default"
	}
	return &LogRecorder{tenant: tenant}
}

func (r *LogRecorder) RecordBookingCreated(ctx context.Context, leadID int64, bookingID string) error {
	log.Printf("usage=booking_created tenant=%s lead_id=%d booking_id=%s", r.tenant, leadID, bookingID)
	return nil
}
