package domain

import "time"

// Lead is the client/contact record a booking is created for. It is owned
// by the CRM side of the system; bookings only read it.
type Lead struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email,omitempty"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"address_line1"`
	City         string    `json:"city,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasContactDetails reports whether the lead carries the fields a crew
// needs to actually show up: a name, a phone and an address.
func (l *Lead) HasContactDetails() bool {
	return l.Name != "" && l.Phone != "" && l.AddressLine1 != ""
}
