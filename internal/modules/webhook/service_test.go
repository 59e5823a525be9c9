package webhook

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cleansched/internal/database"
	"cleansched/internal/domain"
	"cleansched/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The reconciliation tests run against real repositories on an in-memory
// database: the guarded updates and the dedupe index are the behavior
// under test, and mocks would hide both.

type webhookFixture struct {
	bookings *repository.BookingRepository
	events   *repository.CheckoutEventRepository
	service  *Service
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	bookings := repository.NewBookingRepository(db)
	events := repository.NewCheckoutEventRepository(db)
	return &webhookFixture{
		bookings: bookings,
		events:   events,
		service:  NewService(bookings, events, nil),
	}
}

func (f *webhookFixture) seedPendingBooking(t *testing.T, sessionID string) *domain.Booking {
	t.Helper()
	ds := domain.DepositPending
	amount := int64(4400)
	b := &domain.Booking{
		ID:                "b-" + sessionID,
		LeadID:            7,
		ServiceType:       "deep",
		StartTime:         time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second),
		DurationMin:       240,
		Status:            domain.BookingPending,
		DepositRequired:   true,
		DepositCents:      &amount,
		DepositStatus:     &ds,
		CheckoutSessionID: sessionID,
	}
	require.NoError(t, f.bookings.Create(context.Background(), nil, b))
	return b
}

func completedEvent(id, sessionID string) Event {
	return Event{
		ID:            id,
		Type:          EventCheckoutCompleted,
		SessionID:     sessionID,
		PaymentStatus: PaymentStatusPaid,
		PaymentRef:    "pm_" + id,
		Raw:           `{"id":"` + id + `"}`,
	}
}

func expiredEvent(id, sessionID string) Event {
	return Event{
		ID:        id,
		Type:      EventCheckoutExpired,
		SessionID: sessionID,
		Raw:       `{"id":"` + id + `"}`,
	}
}

func TestApply_CompletedConfirmsBooking(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	outcome, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_1"))

	require.NoError(t, err)
	assert.Equal(t, domain.EventApplied, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	require.NotNil(t, got.DepositStatus)
	assert.Equal(t, domain.DepositPaid, *got.DepositStatus)
	assert.Equal(t, "pm_evt_1", got.PaymentRef)
}

func TestApply_RedeliveryIsDuplicate(t *testing.T) {
	f := newWebhookFixture(t)
	f.seedPendingBooking(t, "cs_1")

	first, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_1"))
	require.NoError(t, err)
	assert.Equal(t, domain.EventApplied, first)

	second, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_1"))
	require.NoError(t, err)
	assert.Equal(t, domain.EventDuplicate, second)
}

func TestApply_ExpiredAfterCompletedStaysConfirmed(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	_, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_1"))
	require.NoError(t, err)

	// The expired event for the same session arrives late: the guarded
	// update matches nothing and the delivery is acknowledged as a no-op.
	outcome, err := f.service.Apply(context.Background(), expiredEvent("evt_2", "cs_1"))
	require.NoError(t, err)
	assert.Equal(t, domain.EventNoop, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, domain.DepositPaid, *got.DepositStatus)
	assert.Nil(t, got.CancelledAt)
}

func TestApply_ExpiredCancelsPendingBooking(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	outcome, err := f.service.Apply(context.Background(), expiredEvent("evt_1", "cs_1"))

	require.NoError(t, err)
	assert.Equal(t, domain.EventApplied, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, got.Status)
	assert.Equal(t, domain.DepositExpired, *got.DepositStatus)
	require.NotNil(t, got.CancelledAt)
}

func TestApply_LateCompletedAfterLocalExpiryStillConfirms(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	_, err := f.service.Apply(context.Background(), expiredEvent("evt_1", "cs_1"))
	require.NoError(t, err)

	// The payment actually went through; the money wins over the local
	// cancellation however late the event shows up.
	outcome, err := f.service.Apply(context.Background(), completedEvent("evt_2", "cs_1"))
	require.NoError(t, err)
	assert.Equal(t, domain.EventApplied, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)
	assert.Equal(t, domain.DepositPaid, *got.DepositStatus)
	assert.Equal(t, "pm_evt_2", got.PaymentRef)
	assert.Nil(t, got.CancelledAt)
}

func TestApply_CompletedWithoutPaymentIsNoop(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	ev := completedEvent("evt_1", "cs_1")
	ev.PaymentStatus = "unpaid"

	outcome, err := f.service.Apply(context.Background(), ev)

	require.NoError(t, err)
	assert.Equal(t, domain.EventNoop, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, domain.DepositPending, *got.DepositStatus)
}

func TestApply_UnresolvableSessionIsAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	outcome, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_unknown"))

	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, outcome)

	// Recorded for follow-up even though nothing matched.
	rec, err := f.events.GetByProviderEventID(context.Background(), "checkout", "evt_1")
	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, rec.Outcome)
}

func TestApply_UnknownEventTypeIgnored(t *testing.T) {
	f := newWebhookFixture(t)
	b := f.seedPendingBooking(t, "cs_1")

	ev := Event{
		ID:        "evt_1",
		Type:      "checkout.session.async_payment_failed",
		SessionID: "cs_1",
		Raw:       `{}`,
	}

	outcome, err := f.service.Apply(context.Background(), ev)

	require.NoError(t, err)
	assert.Equal(t, domain.EventIgnored, outcome)

	got, err := f.bookings.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
}

func TestApply_OutcomeRecordedOnEvent(t *testing.T) {
	f := newWebhookFixture(t)
	f.seedPendingBooking(t, "cs_1")

	_, err := f.service.Apply(context.Background(), completedEvent("evt_1", "cs_1"))
	require.NoError(t, err)

	rec, err := f.events.GetByProviderEventID(context.Background(), "checkout", "evt_1")
	require.NoError(t, err)
	assert.Equal(t, domain.EventApplied, rec.Outcome)
	assert.Equal(t, EventCheckoutCompleted, rec.EventType)
	assert.Equal(t, "cs_1", rec.SessionID)
	assert.JSONEq(t, `{"id":"evt_1"}`, rec.Payload)
}
