package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"cleansched/internal/config"
	"cleansched/internal/database"
	"cleansched/internal/repository"
)

// Cancels bookings whose checkout session never completed within the
// grace window. Run on an operational schedule (cron).
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	bookings := repository.NewBookingRepository(db)
	cutoff := time.Now().Add(-cfg.ReapGraceWindow)
	n, err := bookings.SweepStalePending(ctx, cutoff)
	if err != nil {
		log.Fatalf("stale booking sweep failed: %v", err)
	}

	log.Printf("stale booking sweep completed: cancelled=%d grace_window=%s", n, cfg.ReapGraceWindow)
}
