package webhook

// Event types and payment statuses as the gateway delivers them.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventCheckoutExpired   = "checkout.session.expired"

	PaymentStatusPaid = "paid"

	defaultProvider = "checkout"
)

// Event is a verified, parsed gateway webhook. Signature checking and
// transport concerns happen upstream; this is what reaches the state
// machine.
type Event struct {
	ID            string            `json:"id" binding:"required"`
	Type          string            `json:"type" binding:"required"`
	SessionID     string            `json:"session_id" binding:"required"`
	PaymentStatus string            `json:"payment_status"`
	PaymentRef    string            `json:"payment_ref"`
	Metadata      map[string]string `json:"metadata"`
	Raw           string            `json:"-"`
}
