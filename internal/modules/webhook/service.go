package webhook

import (
	"context"
	"errors"

	"cleansched/internal/domain"
	"cleansched/internal/repository"

	"gorm.io/gorm"
)

type bookingRepo interface {
	Transact(ctx context.Context, tx repository.Tx, fn func(tx repository.Tx) error) error
	GetBySessionID(ctx context.Context, tx repository.Tx, sessionID string) (*domain.Booking, error)
	ConfirmDepositPaid(ctx context.Context, tx repository.Tx, bookingID, paymentRef string) (bool, error)
	ExpirePending(ctx context.Context, tx repository.Tx, bookingID string) (bool, error)
}

type eventRepo interface {
	InsertIfNew(ctx context.Context, tx repository.Tx, ev *domain.CheckoutEvent) (bool, error)
	SetOutcome(ctx context.Context, tx repository.Tx, provider, providerEventID string, outcome domain.CheckoutEventOutcome) error
}

// Service reconciles asynchronous gateway events onto booking state.
// It assumes at-least-once, possibly reordered delivery: every transition
// is guarded by the booking's current state, and every provider event id
// is recorded so a redelivery is a guaranteed no-op.
type Service struct {
	bookings bookingRepo
	events   eventRepo
	loggerf  func(format string, args ...interface{})
}

func NewService(bookings bookingRepo, events eventRepo, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{bookings: bookings, events: events, loggerf: loggerf}
}

// Apply consumes one delivered event. The returned outcome is never an
// error for replayed, out-of-order or unresolvable events; those are
// acknowledged so the sender stops retrying.
func (s *Service) Apply(ctx context.Context, ev Event) (domain.CheckoutEventOutcome, error) {
	rec := &domain.CheckoutEvent{
		Provider:        defaultProvider,
		ProviderEventID: ev.ID,
		EventType:       ev.Type,
		SessionID:       ev.SessionID,
		Payload:         ev.Raw,
		Outcome:         domain.EventIgnored,
	}

	outcome := domain.EventIgnored
	err := s.bookings.Transact(ctx, nil, func(tx repository.Tx) error {
		fresh, err := s.events.InsertIfNew(ctx, tx, rec)
		if err != nil {
			return err
		}
		if !fresh {
			outcome = domain.EventDuplicate
			s.loggerf("level=info msg=webhook redelivery ignored event_id=%s", ev.ID)
			return nil
		}

		b, err := s.bookings.GetBySessionID(ctx, tx, ev.SessionID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Acknowledged so the sender stops retrying, but recorded
				// as unresolvable for manual follow-up.
				outcome = domain.EventIgnored
				s.loggerf("level=warn msg=webhook session unresolved event_id=%s session_id=%s", ev.ID, ev.SessionID)
				return s.events.SetOutcome(ctx, tx, rec.Provider, rec.ProviderEventID, outcome)
			}
			return err
		}

		outcome, err = s.transition(ctx, tx, b, ev)
		if err != nil {
			return err
		}
		return s.events.SetOutcome(ctx, tx, rec.Provider, rec.ProviderEventID, outcome)
	})
	if err != nil {
		return domain.EventIgnored, err
	}
	return outcome, nil
}

func (s *Service) transition(ctx context.Context, tx repository.Tx, b *domain.Booking, ev Event) (domain.CheckoutEventOutcome, error) {
	switch ev.Type {
	case EventCheckoutCompleted:
		if ev.PaymentStatus != PaymentStatusPaid {
			// Intermediate "completed but unpaid" event: not yet.
			s.loggerf("level=info msg=checkout completed without payment booking_id=%s payment_status=%s",
				b.ID, ev.PaymentStatus)
			return domain.EventNoop, nil
		}
		if b.DepositStatus != nil && *b.DepositStatus == domain.DepositPaid {
			return domain.EventNoop, nil
		}
		changed, err := s.bookings.ConfirmDepositPaid(ctx, tx, b.ID, ev.PaymentRef)
		if err != nil {
			return domain.EventIgnored, err
		}
		if !changed {
			return domain.EventNoop, nil
		}
		s.loggerf("level=info msg=deposit paid booking_id=%s session_id=%s", b.ID, ev.SessionID)
		return domain.EventApplied, nil

	case EventCheckoutExpired:
		// Only a booking still waiting on its deposit may expire. A
		// booking confirmed by an earlier completed event stays confirmed
		// however late this arrives.
		changed, err := s.bookings.ExpirePending(ctx, tx, b.ID)
		if err != nil {
			return domain.EventIgnored, err
		}
		if !changed {
			return domain.EventNoop, nil
		}
		s.loggerf("level=info msg=booking cancelled on checkout expiry booking_id=%s", b.ID)
		return domain.EventApplied, nil

	default:
		s.loggerf("level=info msg=unhandled webhook type event_type=%s", ev.Type)
		return domain.EventIgnored, nil
	}
}
