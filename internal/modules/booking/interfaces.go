package booking

import (
	"context"
	"time"

	"cleansched/internal/domain"
	"cleansched/internal/modules/policy"
	"cleansched/internal/repository"
)

// BookingRepository is the persistence surface the saga needs. The tx
// parameter keeps the local phase composable with caller transactions.
type BookingRepository interface {
	Transact(ctx context.Context, tx repository.Tx, fn func(tx repository.Tx) error) error
	Create(ctx context.Context, tx repository.Tx, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByLead(ctx context.Context, leadID int64, limit, offset int) ([]domain.Booking, error)
	SweepStalePending(ctx context.Context, cutoff time.Time) (int64, error)
}

type LeadRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Lead, error)
}

type PolicyEngine interface {
	AssessRisk(ctx context.Context, lead *domain.Lead, startsAt time.Time, postalCode string) (policy.RiskAssessment, error)
	Evaluate(ctx context.Context, in policy.EvaluateInput) (*policy.DepositDecision, error)
}

type NotificationSender interface {
	NotifyBookingPending(ctx context.Context, leadID int64, bookingID string, start time.Time) error
}

type UsageRecorder interface {
	RecordBookingCreated(ctx context.Context, leadID int64, bookingID string) error
}

type EventPublisher interface {
	PublishBookingCreated(ctx context.Context, b *domain.Booking) error
}
