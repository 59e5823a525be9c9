package repository

import (
	"context"
	"time"

	"cleansched/internal/domain"

	"gorm.io/gorm"
)

type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

type leadModel struct {
	ID           int64     `gorm:"column:id;primaryKey"`
	Name         string    `gorm:"column:name"`
	Email        string    `gorm:"column:email;index"`
	Phone        string    `gorm:"column:phone"`
	AddressLine1 string    `gorm:"column:address_line1"`
	City         string    `gorm:"column:city"`
	PostalCode   string    `gorm:"column:postal_code"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (leadModel) TableName() string { return "leads" }

func toDomainLead(m leadModel) *domain.Lead {
	return &domain.Lead{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		Phone:        m.Phone,
		AddressLine1: m.AddressLine1,
		City:         m.City,
		PostalCode:   m.PostalCode,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *LeadRepository) GetByID(ctx context.Context, id int64) (*domain.Lead, error) {
	var m leadModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, err
	}
	return toDomainLead(m), nil
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	m := leadModel{
		Name:         l.Name,
		Email:        l.Email,
		Phone:        l.Phone,
		AddressLine1: l.AddressLine1,
		City:         l.City,
		PostalCode:   l.PostalCode,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	*l = *toDomainLead(m)
	return nil
}
