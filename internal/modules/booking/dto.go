package booking

import "time"

type CreateBookingRequest struct {
	LeadID       int64     `json:"lead_id" binding:"required"`
	ServiceType  string    `json:"service_type" binding:"required"`
	StartTime    time.Time `json:"start_time" binding:"required"`
	DurationMin  int       `json:"duration_min" binding:"required,gt=0"`
	PostalCode   string    `json:"postal_code"`
	ForceDeposit bool      `json:"force_deposit"`
	Notes        string    `json:"notes"`
}

// CreateBookingResponse mirrors the booking plus the checkout redirect the
// client should send the customer to when a deposit is due.
type CreateBookingResponse struct {
	ID              string     `json:"id"`
	Status          string     `json:"status"`
	StartTime       time.Time  `json:"start_time"`
	DurationMin     int        `json:"duration_min"`
	DepositRequired bool       `json:"deposit_required"`
	DepositCents    *int64     `json:"deposit_cents,omitempty"`
	DepositPolicy   []string   `json:"deposit_policy,omitempty"`
	CheckoutURL     string     `json:"checkout_url,omitempty"`
}
