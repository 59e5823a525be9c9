package domain

import "time"

type BookingStatus string

const (
	BookingNew       BookingStatus = "new"
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingDone      BookingStatus = "done"
	BookingCancelled BookingStatus = "cancelled"
)

// DepositStatus tracks the hosted-checkout deposit separately from the
// booking lifecycle. It is nil when no deposit was ever required.
type DepositStatus string

const (
	DepositPending DepositStatus = "pending"
	DepositPaid    DepositStatus = "paid"
	DepositExpired DepositStatus = "expired"
	DepositFailed  DepositStatus = "failed"
)

type Booking struct {
	ID            string        `json:"id"`
	LeadID        int64         `json:"lead_id" validate:"required"`
	ServiceType   string        `json:"service_type" validate:"required"`
	StartTime     time.Time     `json:"start_time" validate:"required"`
	DurationMin   int           `json:"duration_min" validate:"required,gt=0"`
	PostalCode    string        `json:"postal_code,omitempty"`
	EstimateCents int64         `json:"estimate_cents,omitempty"`
	Status        BookingStatus `json:"status"`

	DepositRequired bool           `json:"deposit_required"`
	DepositCents    *int64         `json:"deposit_cents,omitempty"`
	DepositPolicy   []string       `json:"deposit_policy,omitempty"`
	DepositStatus   *DepositStatus `json:"deposit_status,omitempty"`

	// References into the payment gateway. Session is set when a hosted
	// checkout was opened for this booking, PaymentRef once the webhook
	// reports the instrument that settled it.
	CheckoutSessionID string `json:"checkout_session_id,omitempty"`
	PaymentRef        string `json:"payment_ref,omitempty"`

	// Redirect target for the hosted checkout page. Not persisted; only
	// meaningful on the response of the creating request.
	CheckoutURL string `json:"checkout_url,omitempty"`

	// Snapshot of the deposit/cancellation rules as evaluated at creation.
	// Written once, never recomputed.
	PolicySnapshot *PolicySnapshot `json:"policy_snapshot,omitempty"`

	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
}

func (b *Booking) EndTime() time.Time {
	return b.StartTime.Add(time.Duration(b.DurationMin) * time.Minute)
}

// PolicySnapshot records why the deposit decision came out the way it did.
type PolicySnapshot struct {
	Deposit       DepositSnapshot      `json:"deposit"`
	Cancellation  CancellationSnapshot `json:"cancellation"`
	RiskBand      string               `json:"risk_band,omitempty"`
	LeadTimeHours int64                `json:"lead_time_hours"`
}

type DepositSnapshot struct {
	Basis            string `json:"basis"`
	AmountCents      int64  `json:"amount_cents"`
	DowngradedReason string `json:"downgraded_reason,omitempty"`
}

type CancellationSnapshot struct {
	Windows []CancellationWindow `json:"windows"`
	Rules   []string             `json:"rules,omitempty"`
}

type CancellationWindow struct {
	Label            string `json:"label"`
	StartHoursBefore int64  `json:"start_hours_before"`
	RefundPercent    int    `json:"refund_percent"`
}
