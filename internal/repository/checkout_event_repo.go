package repository

import (
	"context"
	"time"

	"cleansched/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutEventRepository struct {
	db *gorm.DB
}

func NewCheckoutEventRepository(db *gorm.DB) *CheckoutEventRepository {
	return &CheckoutEventRepository{db: db}
}

type checkoutEventModel struct {
	ID              int64     `gorm:"column:id;primaryKey"`
	Provider        string    `gorm:"column:provider;uniqueIndex:ux_checkout_events_provider_event"`
	ProviderEventID string    `gorm:"column:provider_event_id;uniqueIndex:ux_checkout_events_provider_event"`
	EventType       string    `gorm:"column:event_type;index"`
	SessionID       string    `gorm:"column:session_id;index"`
	Payload         string    `gorm:"column:payload;type:text"`
	Outcome         string    `gorm:"column:outcome"`
	ReceivedAt      time.Time `gorm:"column:received_at"`
}

func (checkoutEventModel) TableName() string { return "checkout_events" }

// InsertIfNew claims the (provider, event id) pair. A false return means the
// event was already recorded and this delivery is a redelivery.
func (r *CheckoutEventRepository) InsertIfNew(ctx context.Context, tx Tx, ev *domain.CheckoutEvent) (bool, error) {
	conn := r.db.WithContext(ctx)
	if tx != nil {
		conn = tx
	}
	m := checkoutEventModel{
		Provider:        ev.Provider,
		ProviderEventID: ev.ProviderEventID,
		EventType:       ev.EventType,
		SessionID:       ev.SessionID,
		Payload:         ev.Payload,
		Outcome:         string(ev.Outcome),
		ReceivedAt:      time.Now().UTC(),
	}
	res := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_event_id"}},
		DoNothing: true,
	}).Create(&m)
	if res.Error != nil {
		return false, res.Error
	}
	ev.ID = m.ID
	ev.ReceivedAt = m.ReceivedAt
	return res.RowsAffected > 0, nil
}

// SetOutcome records what the reconciliation run did with the event.
func (r *CheckoutEventRepository) SetOutcome(ctx context.Context, tx Tx, provider, providerEventID string, outcome domain.CheckoutEventOutcome) error {
	conn := r.db.WithContext(ctx)
	if tx != nil {
		conn = tx
	}
	return conn.Model(&checkoutEventModel{}).
		Where("provider = ? AND provider_event_id = ?", provider, providerEventID).
		Update("outcome", string(outcome)).Error
}

func (r *CheckoutEventRepository) GetByProviderEventID(ctx context.Context, provider, providerEventID string) (*domain.CheckoutEvent, error) {
	var m checkoutEventModel
	err := r.db.WithContext(ctx).
		First(&m, "provider = ? AND provider_event_id = ?", provider, providerEventID).Error
	if err != nil {
		return nil, err
	}
	return &domain.CheckoutEvent{
		ID:              m.ID,
		Provider:        m.Provider,
		ProviderEventID: m.ProviderEventID,
		EventType:       m.EventType,
		SessionID:       m.SessionID,
		Payload:         m.Payload,
		Outcome:         domain.CheckoutEventOutcome(m.Outcome),
		ReceivedAt:      m.ReceivedAt,
	}, nil
}
