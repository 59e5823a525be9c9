package domain

import "time"

// CheckoutEventOutcome is what the reconciliation run decided to do with
// a delivered gateway event.
type CheckoutEventOutcome string

const (
	EventApplied   CheckoutEventOutcome = "applied"
	EventNoop      CheckoutEventOutcome = "noop"
	EventIgnored   CheckoutEventOutcome = "ignored"
	EventDuplicate CheckoutEventOutcome = "duplicate"
)

// CheckoutEvent stores every delivered gateway webhook with its provider
// event id so redelivery can be detected regardless of payload contents.
// The raw payload is kept for audit and manual reconciliation.
type CheckoutEvent struct {
	ID              int64                `json:"id"`
	Provider        string               `json:"provider"`
	ProviderEventID string               `json:"provider_event_id"`
	EventType       string               `json:"event_type"`
	SessionID       string               `json:"session_id"`
	Payload         string               `json:"payload,omitempty"`
	Outcome         CheckoutEventOutcome `json:"outcome"`
	ReceivedAt      time.Time            `json:"received_at"`
}
