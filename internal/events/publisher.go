package events

import (
	"context"
	"encoding/json"
	"log"

	"cleansched/internal/domain"
)

// LogPublisher writes domain events to the process log. It stands in for
// a broker-backed publisher; consumers tail the log in dev and the
// interface keeps the saga decoupled from the transport.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher { return &LogPublisher{} }

func (p *LogPublisher) PublishBookingCreated(ctx context.Context, b *domain.Booking) error {
	payload, err := json.Marshal(map[string]interface{}{
		"booking_id":       b.ID,
		"lead_id":          b.LeadID,
		"service_type":     b.ServiceType,
		"start_time":       b.StartTime,
		"deposit_required": b.DepositRequired,
		"deposit_policy":   b.DepositPolicy,
	})
	if err != nil {
		return err
	}
	log.Printf("event=booking.created payload=%s", payload)
	return nil
}
