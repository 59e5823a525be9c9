package main

import (
	"context"
	"log"
	"time"

	"cleansched/internal/database"
	"cleansched/internal/domain"
	"cleansched/internal/repository"
)

func main() {
	db, err := database.Connect("cleansched.db")
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}

	log.Println("Running AutoMigrate...")
	if err := repository.Migrate(db); err != nil {
		log.Fatal("AutoMigrate failed:", err)
	}

	log.Println("Cleaning old data...")
	db.Exec("DELETE FROM checkout_events")
	db.Exec("DELETE FROM bookings")
	db.Exec("DELETE FROM leads")

	ctx := context.Background()
	leads := repository.NewLeadRepository(db)
	bookings := repository.NewBookingRepository(db)

	log.Println("Creating leads...")
	anna := &domain.Lead{
		Name:         "Anna Weber",
		Email:        "anna.weber@example.com",
		Phone:        "+49 170 1111111",
		AddressLine1: "Hauptstrasse 12",
		City:         "Berlin",
		PostalCode:   "10115",
	}
	marco := &domain.Lead{
		Name:         "Marco Lindt",
		Email:        "marco.lindt@example.com",
		Phone:        "+49 170 2222222",
		AddressLine1: "Ringweg 4",
		City:         "Hamburg",
		PostalCode:   "20095",
	}
	incomplete := &domain.Lead{
		Name:  "No Address",
		Phone: "+49 170 3333333",
	}
	for _, l := range []*domain.Lead{anna, marco, incomplete} {
		if err := leads.Create(ctx, l); err != nil {
			log.Fatal("lead create failed:", err)
		}
	}

	log.Println("Creating bookings...")
	// Anna has a completed booking on file, so she is a returning client.
	done := &domain.Booking{
		ID:          "seed-booking-done",
		LeadID:      anna.ID,
		ServiceType: "standard",
		StartTime:   time.Now().Add(-14 * 24 * time.Hour),
		DurationMin: 120,
		Status:      domain.BookingDone,
	}
	if err := bookings.Create(ctx, nil, done); err != nil {
		log.Fatal("booking create failed:", err)
	}

	pendingDeposit := domain.DepositPending
	depositCents := int64(4400)
	pending := &domain.Booking{
		ID:              "seed-booking-pending",
		LeadID:          marco.ID,
		ServiceType:     "deep",
		StartTime:       time.Now().Add(72 * time.Hour),
		DurationMin:     240,
		Status:          domain.BookingPending,
		DepositRequired: true,
		DepositCents:    &depositCents,
		DepositPolicy:   []string{"first_time_client", "service_type_deep"},
		DepositStatus:   &pendingDeposit,

		CheckoutSessionID: "cs_seed_0001",
	}
	if err := bookings.Create(ctx, nil, pending); err != nil {
		log.Fatal("booking create failed:", err)
	}

	log.Println("Seed completed")
}
