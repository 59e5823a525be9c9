package repository

import (
	"context"
	"encoding/json"
	"time"

	"cleansched/internal/domain"

	"gorm.io/gorm"
)

// Tx is an open transaction handle. Passing nil means "no enclosing
// transaction": the repository opens its own. Passing a non-nil handle
// makes the call composable with a caller-side transaction (gorm turns
// the nested call into a savepoint).
type Tx = *gorm.DB

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID            string     `gorm:"column:id;primaryKey"`
	LeadID        int64      `gorm:"column:lead_id;uniqueIndex:idx_no_double_booking"`
	ServiceType   string     `gorm:"column:service_type"`
	StartTime     time.Time  `gorm:"column:start_time;uniqueIndex:idx_no_double_booking"`
	DurationMin   int        `gorm:"column:duration_min"`
	PostalCode    string     `gorm:"column:postal_code"`
	EstimateCents int64      `gorm:"column:estimate_cents"`
	Status        string     `gorm:"column:status;index"`

	DepositRequired bool    `gorm:"column:deposit_required"`
	DepositCents    *int64  `gorm:"column:deposit_cents"`
	DepositPolicy   string  `gorm:"column:deposit_policy;type:text"`
	DepositStatus   *string `gorm:"column:deposit_status;index"`

	CheckoutSessionID string `gorm:"column:checkout_session_id;index"`
	PaymentRef        string `gorm:"column:payment_ref"`
	PolicySnapshot    string `gorm:"column:policy_snapshot;type:text"`

	Notes       string     `gorm:"column:notes;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	b := &domain.Booking{
		ID:                m.ID,
		LeadID:            m.LeadID,
		ServiceType:       m.ServiceType,
		StartTime:         m.StartTime,
		DurationMin:       m.DurationMin,
		PostalCode:        m.PostalCode,
		EstimateCents:     m.EstimateCents,
		Status:            domain.BookingStatus(m.Status),
		DepositRequired:   m.DepositRequired,
		DepositCents:      m.DepositCents,
		CheckoutSessionID: m.CheckoutSessionID,
		PaymentRef:        m.PaymentRef,
		Notes:             m.Notes,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		CancelledAt:       m.CancelledAt,
	}
	if m.DepositStatus != nil {
		ds := domain.DepositStatus(*m.DepositStatus)
		b.DepositStatus = &ds
	}
	if m.DepositPolicy != "" {
		_ = json.Unmarshal([]byte(m.DepositPolicy), &b.DepositPolicy)
	}
	if m.PolicySnapshot != "" {
		var snap domain.PolicySnapshot
		if err := json.Unmarshal([]byte(m.PolicySnapshot), &snap); err == nil {
			b.PolicySnapshot = &snap
		}
	}
	return b
}

func toBookingModel(b *domain.Booking) bookingModel {
	m := bookingModel{
		ID:                b.ID,
		LeadID:            b.LeadID,
		ServiceType:       b.ServiceType,
		StartTime:         b.StartTime,
		DurationMin:       b.DurationMin,
		PostalCode:        b.PostalCode,
		EstimateCents:     b.EstimateCents,
		Status:            string(b.Status),
		DepositRequired:   b.DepositRequired,
		DepositCents:      b.DepositCents,
		CheckoutSessionID: b.CheckoutSessionID,
		PaymentRef:        b.PaymentRef,
		Notes:             b.Notes,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
		CancelledAt:       b.CancelledAt,
	}
	if b.DepositStatus != nil {
		s := string(*b.DepositStatus)
		m.DepositStatus = &s
	}
	if len(b.DepositPolicy) > 0 {
		raw, _ := json.Marshal(b.DepositPolicy)
		m.DepositPolicy = string(raw)
	}
	if b.PolicySnapshot != nil {
		raw, _ := json.Marshal(b.PolicySnapshot)
		m.PolicySnapshot = string(raw)
	}
	return m
}

func (r *BookingRepository) conn(ctx context.Context, tx Tx) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// Transact runs fn inside a transaction. With a non-nil enclosing handle
// gorm opens a savepoint instead of a second top-level transaction.
func (r *BookingRepository) Transact(ctx context.Context, tx Tx, fn func(tx Tx) error) error {
	return r.conn(ctx, tx).Transaction(func(inner *gorm.DB) error {
		return fn(inner)
	})
}

func (r *BookingRepository) Create(ctx context.Context, tx Tx, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.conn(ctx, tx).Create(&m).Error; err != nil {
		return err
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// GetBySessionID resolves the gateway's correlation key back to the local
// booking. This is the only lookup the webhook path uses.
func (r *BookingRepository) GetBySessionID(ctx context.Context, tx Tx, sessionID string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.conn(ctx, tx).First(&m, "checkout_session_id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) ListByLead(ctx context.Context, leadID int64, limit, offset int) ([]domain.Booking, error) {
	var ms []bookingModel
	q := r.db.WithContext(ctx).Where("lead_id = ?", leadID).Order("start_time DESC")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	if err := q.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ConfirmDepositPaid flips the deposit to paid and the booking to
// confirmed in one guarded update. The WHERE clause is the concurrency
// guard: a replayed event matches zero rows. A booking already expired
// locally is still confirmed, since the money was in fact collected; only
// an already-paid deposit is left alone.
func (r *BookingRepository) ConfirmDepositPaid(ctx context.Context, tx Tx, bookingID, paymentRef string) (bool, error) {
	res := r.conn(ctx, tx).Model(&bookingModel{}).
		Where("id = ? AND deposit_status IN ?", bookingID,
			[]string{string(domain.DepositPending), string(domain.DepositExpired)}).
		Updates(map[string]interface{}{
			"status":         string(domain.BookingConfirmed),
			"deposit_status": string(domain.DepositPaid),
			"payment_ref":    paymentRef,
			"cancelled_at":   nil,
			"updated_at":     time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ExpirePending cancels a booking whose checkout ran out, but only while
// it is still (pending, pending). A booking confirmed by an earlier paid
// event is left untouched.
func (r *BookingRepository) ExpirePending(ctx context.Context, tx Tx, bookingID string) (bool, error) {
	now := time.Now().UTC()
	res := r.conn(ctx, tx).Model(&bookingModel{}).
		Where("id = ? AND status = ? AND deposit_status = ?",
			bookingID, string(domain.BookingPending), string(domain.DepositPending)).
		Updates(map[string]interface{}{
			"status":         string(domain.BookingCancelled),
			"deposit_status": string(domain.DepositExpired),
			"cancelled_at":   &now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SweepStalePending cancels bookings still waiting on a checkout session
// past the grace window. The gateway session expires on its own; a later
// "expired" webhook will find nothing left to do.
func (r *BookingRepository) SweepStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("status = ? AND deposit_status = ? AND created_at < ?",
			string(domain.BookingPending), string(domain.DepositPending), cutoff).
		Updates(map[string]interface{}{
			"status":         string(domain.BookingCancelled),
			"deposit_status": string(domain.DepositExpired),
			"cancelled_at":   &now,
			"updated_at":     now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *BookingRepository) HasPriorCompletedBooking(ctx context.Context, leadID int64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("lead_id = ? AND status IN ?", leadID,
			[]string{string(domain.BookingConfirmed), string(domain.BookingDone)}).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *BookingRepository) CountCancellations(ctx context.Context, leadID int64) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("lead_id = ? AND status = ?", leadID, string(domain.BookingCancelled)).
		Count(&cnt).Error
	return cnt, err
}
