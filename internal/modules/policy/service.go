package policy

import (
	"context"
	"time"

	"cleansched/internal/config"
	"cleansched/internal/domain"
)

// Reason tags recorded on a booking's deposit policy. Downgrade reasons
// are distinct per cause so "we chose not to collect" can be told apart
// from "we tried and the gateway was down".
const (
	ReasonFirstTimeClient       = "first_time_client"
	ReasonShortNotice           = "short_notice"
	ReasonEstimateUnavailable   = "estimate_unavailable"
	ReasonCheckoutNotConfigured = "checkout_not_configured"
	ReasonCheckoutUnavailable   = "checkout_unavailable"

	serviceTypeReasonPrefix = "service_type_"
)

const (
	basisPercentOfEstimate = "percent_of_estimate"
	basisNone              = "none"
)

type historyReader interface {
	HasPriorCompletedBooking(ctx context.Context, leadID int64) (bool, error)
	CountCancellations(ctx context.Context, leadID int64) (int64, error)
}

// Service is the deposit policy engine. Configuration comes in as an
// explicit value; nothing here reads ambient state or writes anywhere.
type Service struct {
	cfg     config.Config
	history historyReader
}

func NewService(cfg config.Config, history historyReader) *Service {
	return &Service{cfg: cfg, history: history}
}

// DepositDecision is produced per request and persisted only through the
// booking's policy snapshot.
type DepositDecision struct {
	Required     bool
	DepositCents *int64
	Policy       []string
	Snapshot     domain.PolicySnapshot
}

type EvaluateInput struct {
	Lead          *domain.Lead
	StartsAt      time.Time
	ServiceType   string
	EstimateCents int64 // 0 when the total could not be estimated
	ForceDeposit  bool
	ExtraReasons  []string
	Risk          RiskAssessment
}

// Evaluate decides whether a deposit is required and how much, and builds
// the policy snapshot that will be written on the booking.
func (s *Service) Evaluate(ctx context.Context, in EvaluateInput) (*DepositDecision, error) {
	leadTimeHours := int64(time.Until(in.StartsAt).Hours())
	shortNotice := leadTimeHours < int64(s.cfg.ShortNoticeHours)

	snapshot := domain.PolicySnapshot{
		Deposit:       domain.DepositSnapshot{Basis: basisNone},
		Cancellation:  s.cancellationSnapshot(shortNotice),
		RiskBand:      in.Risk.Band.String(),
		LeadTimeHours: leadTimeHours,
	}

	// A high risk band or an explicit force overrides every waiver below.
	force := in.ForceDeposit || in.Risk.RequiresDeposit

	// Returning clients are trusted with no deposit. Checked before any
	// new-client or short-notice logic.
	if !force {
		returning, err := s.history.HasPriorCompletedBooking(ctx, in.Lead.ID)
		if err != nil {
			return nil, err
		}
		if returning {
			return &DepositDecision{Required: false, Policy: []string{}, Snapshot: snapshot}, nil
		}
	}

	if !s.cfg.DepositsEnabled && !force {
		return &DepositDecision{Required: false, Policy: []string{}, Snapshot: snapshot}, nil
	}

	reasons := make([]string, 0, 4)
	reasons = append(reasons, in.Risk.Reasons...)

	required := force
	if !force {
		// Reaching here means the lead has no completed booking on file.
		reasons = append(reasons, ReasonFirstTimeClient)
		required = true
	}
	if shortNotice {
		reasons = append(reasons, ReasonShortNotice)
		required = true
	}
	for _, st := range s.cfg.DepositServiceTypes {
		if st == in.ServiceType {
			reasons = append(reasons, serviceTypeReasonPrefix+in.ServiceType)
			required = true
			break
		}
	}
	reasons = append(reasons, in.ExtraReasons...)

	d := &DepositDecision{Required: required, Policy: reasons, Snapshot: snapshot}
	if !required {
		return d, nil
	}

	if in.EstimateCents > 0 {
		amount := s.clampDeposit(in.EstimateCents * int64(s.cfg.DepositPercent) / 100)
		d.DepositCents = &amount
		d.Snapshot.Deposit = domain.DepositSnapshot{
			Basis:       basisPercentOfEstimate,
			AmountCents: amount,
		}
	} else {
		// Required but no amount: the caller downgrades with
		// ReasonEstimateUnavailable before persisting.
		d.Snapshot.Deposit = domain.DepositSnapshot{Basis: basisPercentOfEstimate}
	}
	return d, nil
}

// Downgrade turns a required deposit into a waived one, recording why.
// Idempotent: a decision that is already not required is returned as is,
// so the first downgrade reason wins.
func Downgrade(d *DepositDecision, reason string) *DepositDecision {
	if !d.Required {
		return d
	}
	d.Required = false
	d.DepositCents = nil
	d.Policy = append(d.Policy, reason)
	d.Snapshot.Deposit.DowngradedReason = reason
	return d
}

func (s *Service) clampDeposit(amount int64) int64 {
	if amount < s.cfg.DepositMinCents {
		return s.cfg.DepositMinCents
	}
	if amount > s.cfg.DepositMaxCents {
		return s.cfg.DepositMaxCents
	}
	return amount
}

func (s *Service) cancellationSnapshot(shortNotice bool) domain.CancellationSnapshot {
	partialRefund := 50
	if shortNotice {
		partialRefund = 25
	}
	return domain.CancellationSnapshot{
		Windows: []domain.CancellationWindow{
			{Label: "full", StartHoursBefore: 48, RefundPercent: 100},
			{Label: "partial", StartHoursBefore: 24, RefundPercent: partialRefund},
			{Label: "none", StartHoursBefore: 0, RefundPercent: 0},
		},
		Rules: []string{
			"deposit refunded per window of cancellation time",
			"no-show forfeits deposit",
		},
	}
}
