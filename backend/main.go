package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lessons/backend/config"
	"lessons/backend/identity"
	"lessons/backend/metrics"
	"lessons/backend/middleware"
	"lessons/backend/models"
	"lessons/backend/payment"
	"lessons/backend/routes"
	"lessons/backend/store"
	"lessons/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	st := store.New(db)

	verifier, err := newVerifier(cfg)
	if err != nil {
		logger.Fatal("Error initializing auth provider", "provider", cfg.AuthProvider, "error", err)
	}

	stripeGateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	gate := payment.NewGate(stripeGateway, st.Payments, payment.Options{
		Plans: map[string]payment.Plan{
			models.PlanPremium: {
				Name:        models.PlanPremium,
				Title:       "Premium lifetime",
				AmountCents: cfg.PremiumPriceCents,
				Currency:    cfg.PaymentCurrency,
			},
		},
		ClientURL: cfg.ClientURL,
		Webhooks:  stripeGateway,
	})

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "lessons",
		ErrorHandler: utils.Fail,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Middleware
	m := metrics.New()
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderRequestID,
	}))
	app.Use(middleware.RequestID())
	app.Use(middleware.Metrics(m))
	app.Use(middleware.LoggingMiddleware(logger))
	app.Use(recover.New())

	// Setup routes
	routes.SetupRoutes(app, routes.Dependencies{
		Cfg:      cfg,
		Log:      logger,
		Store:    st,
		Resolver: identity.NewResolver(verifier, st.Users),
		Payments: gate,
		Metrics:  m,
	})

	// Start server
	go func() {
		logger.Info("server started", "port", cfg.ServerPort, "auth", cfg.AuthProvider)
		if err := app.Listen(":" + cfg.ServerPort); err != nil {
			logger.Fatal("server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
	if err := utils.CloseDB(db); err != nil {
		logger.Error("closing database failed", "error", err)
	}
}

func newVerifier(cfg *config.Config) (identity.Verifier, error) {
	if cfg.AuthProvider == config.AuthProviderFirebase {
		// The client keeps this context for token refreshes.
		return identity.NewFirebaseVerifier(context.Background(), cfg.FirebaseServiceKey)
	}
	return identity.NewJWTVerifier(cfg.JWTSecret), nil
}
