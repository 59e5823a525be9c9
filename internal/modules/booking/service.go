package booking

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"cleansched/internal/config"
	"cleansched/internal/domain"
	"cleansched/internal/modules/checkout"
	"cleansched/internal/modules/policy"
	"cleansched/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	bookings BookingRepository
	leads    LeadRepository
	policy   PolicyEngine
	gateway  checkout.Client
	events   EventPublisher
	notifs   NotificationSender
	meter    UsageRecorder
	cfg      config.Config
	loggerf  func(format string, args ...interface{})
}

func NewService(
	bookings BookingRepository,
	leads LeadRepository,
	policyEngine PolicyEngine,
	gateway checkout.Client,
	events EventPublisher,
	notifs NotificationSender,
	meter UsageRecorder,
	cfg config.Config,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		leads:    leads,
		policy:   policyEngine,
		gateway:  gateway,
		events:   events,
		notifs:   notifs,
		meter:    meter,
		cfg:      cfg,
		loggerf:  loggerf,
	}
}

// reserveOutcome is the typed result of the external reservation phase.
// Exactly one of session or failureReason is set when a deposit was
// attempted; both are empty when no deposit was needed.
type reserveOutcome struct {
	session       *checkout.Session
	failureReason string
}

// CreateBooking runs the two-phase creation saga: reserve the checkout
// session with the gateway first, then persist the booking locally, and
// cancel the session if the local phase fails. A gateway failure never
// fails the request; the deposit is downgraded and the booking is still
// created. tx may carry an enclosing transaction; nil opens a fresh one.
func (s *Service) CreateBooking(ctx context.Context, tx repository.Tx, req CreateBookingRequest) (*domain.Booking, error) {
	if req.DurationMin <= 0 || req.StartTime.Before(time.Now()) {
		return nil, ErrValidation
	}

	lead, err := s.leads.GetByID(ctx, req.LeadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	if !lead.HasContactDetails() {
		return nil, ErrMissingContact
	}

	postalCode := req.PostalCode
	if postalCode == "" {
		postalCode = lead.PostalCode
	}

	// Generated locally so it can ride in the gateway metadata before any
	// local row exists.
	bookingID := uuid.NewString()

	risk, err := s.policy.AssessRisk(ctx, lead, req.StartTime, postalCode)
	if err != nil {
		return nil, err
	}

	estimate := s.estimateCents(req.ServiceType, req.DurationMin)

	decision, err := s.policy.Evaluate(ctx, policy.EvaluateInput{
		Lead:          lead,
		StartsAt:      req.StartTime,
		ServiceType:   req.ServiceType,
		EstimateCents: estimate,
		ForceDeposit:  req.ForceDeposit,
		Risk:          risk,
	})
	if err != nil {
		return nil, err
	}

	outcome := s.reserveDeposit(ctx, bookingID, lead.ID, decision)
	if outcome.failureReason != "" {
		policy.Downgrade(decision, outcome.failureReason)
		s.loggerf("level=warn msg=deposit downgraded booking_id=%s reason=%s", bookingID, outcome.failureReason)
	}

	b := &domain.Booking{
		ID:              bookingID,
		LeadID:          lead.ID,
		ServiceType:     req.ServiceType,
		StartTime:       req.StartTime,
		DurationMin:     req.DurationMin,
		PostalCode:      postalCode,
		EstimateCents:   estimate,
		Status:          domain.BookingPending,
		DepositRequired: decision.Required,
		DepositPolicy:   decision.Policy,
		PolicySnapshot:  &decision.Snapshot,
		Notes:           req.Notes,
	}
	if outcome.session != nil {
		ds := domain.DepositPending
		b.DepositStatus = &ds
		b.DepositCents = decision.DepositCents
		b.CheckoutSessionID = outcome.session.ID
	}

	txErr := s.bookings.Transact(ctx, tx, func(inner repository.Tx) error {
		if err := s.bookings.Create(ctx, inner, b); err != nil {
			return err
		}
		// Downstream consumers only; a publish failure must not fail the
		// booking write.
		if err := s.events.PublishBookingCreated(ctx, b); err != nil {
			s.loggerf("level=error msg=failed to publish booking created event booking_id=%s err=%v", b.ID, err)
		}
		return nil
	})
	if txErr != nil {
		if outcome.session != nil {
			s.compensate(b.ID, outcome.session.ID)
		}
		return nil, s.mapCreateError(txErr)
	}
	if outcome.session != nil {
		b.CheckoutURL = outcome.session.URL
	}

	// Side effects after commit: best-effort only.
	if err := s.notifs.NotifyBookingPending(ctx, b.LeadID, b.ID, b.StartTime); err != nil {
		s.loggerf("level=error msg=pending booking notice failed booking_id=%s err=%v", b.ID, err)
	}
	if err := s.meter.RecordBookingCreated(ctx, b.LeadID, b.ID); err != nil {
		s.loggerf("level=error msg=usage metering failed booking_id=%s err=%v", b.ID, err)
	}

	return b, nil
}

// reserveDeposit runs the external phase. Nothing local is persisted yet,
// so a failure needs no compensation, only a downgrade reason.
func (s *Service) reserveDeposit(ctx context.Context, bookingID string, leadID int64, decision *policy.DepositDecision) reserveOutcome {
	if !decision.Required {
		return reserveOutcome{}
	}
	if decision.DepositCents == nil {
		return reserveOutcome{failureReason: policy.ReasonEstimateUnavailable}
	}
	if !s.cfg.CheckoutConfigured() {
		return reserveOutcome{failureReason: policy.ReasonCheckoutNotConfigured}
	}

	cctx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	sess, err := s.gateway.CreateSession(cctx, checkout.CreateSessionParams{
		AmountCents: *decision.DepositCents,
		Currency:    s.cfg.Currency,
		Description: "Cleaning deposit",
		SuccessURL:  expandURL(s.cfg.CheckoutSuccessURL, bookingID),
		CancelURL:   expandURL(s.cfg.CheckoutCancelURL, bookingID),
		Metadata: map[string]string{
			"booking_id": bookingID,
			"lead_id":    strconv.FormatInt(leadID, 10),
		},
		IdempotencyKey: checkout.DepositCheckoutKey(bookingID, *decision.DepositCents, s.cfg.Currency),
	})
	if err != nil {
		s.loggerf("level=error msg=checkout session create failed booking_id=%s err=%v", bookingID, err)
		if errors.Is(err, checkout.ErrNotConfigured) {
			return reserveOutcome{failureReason: policy.ReasonCheckoutNotConfigured}
		}
		return reserveOutcome{failureReason: policy.ReasonCheckoutUnavailable}
	}
	return reserveOutcome{session: sess}
}

// compensate cancels the external session after a failed local phase.
// Best-effort: a cancel failure is logged with correlation ids and left
// to the reaper or manual reconciliation; the original error propagates
// to the caller untouched.
func (s *Service) compensate(bookingID, sessionID string) {
	cctx, cancel := context.WithTimeout(context.Background(), s.cfg.CheckoutTimeout)
	defer cancel()
	if err := s.gateway.CancelSession(cctx, sessionID); err != nil {
		s.loggerf("level=error msg=checkout session cancel failed booking_id=%s session_id=%s err=%v",
			bookingID, sessionID, err)
	}
}

func (s *Service) mapCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 23505 unique_violation, 23P01 exclusion_violation
		if pgErr.Code == "23505" || pgErr.Code == "23P01" {
			return ErrSchedulingConflict
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrSchedulingConflict
	}
	return err
}

func (s *Service) estimateCents(serviceType string, durationMin int) int64 {
	rate, ok := s.cfg.ServiceRates[serviceType]
	if !ok || rate <= 0 {
		return 0
	}
	return rate * int64(durationMin) / 60
}

func expandURL(tmpl, bookingID string) string {
	return strings.ReplaceAll(tmpl, "{booking_id}", bookingID)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) ListByLead(ctx context.Context, leadID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.ListByLead(ctx, leadID, limit, offset)
}
