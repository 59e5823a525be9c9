package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"cleansched/internal/config"
	"cleansched/internal/database"
	"cleansched/internal/events"
	"cleansched/internal/metering"
	"cleansched/internal/middleware"
	"cleansched/internal/modules/booking"
	"cleansched/internal/modules/checkout"
	"cleansched/internal/modules/policy"
	"cleansched/internal/modules/webhook"
	"cleansched/internal/notification"
	jwtsvc "cleansched/internal/pkg/jwt"
	"cleansched/internal/repository"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is empty")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is empty")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal(err)
	}

	leadRepo := repository.NewLeadRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	eventRepo := repository.NewCheckoutEventRepository(db)

	j := jwtsvc.New(secret, 24*time.Hour)

	gateway := checkout.NewHTTPClient(cfg.CheckoutBaseURL, cfg.CheckoutAPIKey, cfg.CheckoutTimeout, log.Printf)
	policyEngine := policy.NewService(*cfg, bookingRepo)

	bookingService := booking.NewService(
		bookingRepo,
		leadRepo,
		policyEngine,
		gateway,
		events.NewLogPublisher(),
		notification.NewLogSender(),
		metering.NewLogRecorder(os.Getenv("TENANT_ID")),
		*cfg,
		log.Printf,
	)
	bookingHandler := booking.NewHandler(bookingService)

	webhookService := webhook.NewService(bookingRepo, eventRepo, log.Printf)
	webhookHandler := webhook.NewHandler(webhookService, log.Printf)

	r := gin.Default()
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// Gateway events: signature verification happens at the edge
		// proxy before requests reach this process.
		webhookHandler.RegisterRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(j))
		{
			bookingHandler.RegisterRoutes(protected)

			staff := protected.Group("/")
			staff.Use(middleware.StaffOnly())
			bookingHandler.RegisterAdminRoutes(staff)
		}
	}

	addr := ":8080"
	if p := os.Getenv("PORT"); p != "" {
		addr = ":" + p
	}
	if err := r.Run(addr); err != nil {
		log.Fatal(err)
	}
}
