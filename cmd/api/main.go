// cmd/api/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/evermore-storefront/internal/config"
	"github.com/your-org/evermore-storefront/internal/domain/cart"
	"github.com/your-org/evermore-storefront/internal/domain/catalog"
	"github.com/your-org/evermore-storefront/internal/domain/checkout"
	"github.com/your-org/evermore-storefront/internal/domain/order"
	"github.com/your-org/evermore-storefront/internal/domain/payment"
	"github.com/your-org/evermore-storefront/internal/domain/pricing"
	"github.com/your-org/evermore-storefront/internal/domain/user"
	"github.com/your-org/evermore-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/evermore-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/evermore-storefront/internal/infrastructure/messaging/rabbitmq"
	"github.com/your-org/evermore-storefront/internal/interfaces/http"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/evermore-storefront/internal/interfaces/http/routes"
	"github.com/your-org/evermore-storefront/internal/pkg/auth"
	"github.com/your-org/evermore-storefront/internal/pkg/logger"
	"github.com/your-org/evermore-storefront/internal/pkg/pdf"
)

const checkoutNamespace = "evermoreCheckout"

type eventPublisher interface {
	checkout.EventPublisher
	Close() error
}

func main() {
	resetDB := flag.Bool("reset-db", false, "drop all tables before migrating (development only)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg)
	log.WithFields(logrus.Fields{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Infof("Starting %s", cfg.App.Name)

	// Connect to database
	db, err := postgres.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	// Connect to Redis
	redisClient, err := redis.NewConnection(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisClient.Close()

	// Run database migrations
	migration := postgres.NewMigration(db.GetDB(), log)

	if *resetDB {
		if !cfg.IsDevelopment() {
			log.Fatal("-reset-db is only allowed in development")
		}
		if err := migration.DropAllTables(); err != nil {
			log.WithError(err).Fatal("Failed to reset database")
		}
	}

	if err := migration.RunAutoMigrations(); err != nil {
		log.WithError(err).Fatal("Database migration failed")
	}

	if err := migration.CreateIndexes(); err != nil {
		log.WithError(err).Warn("Index creation failed")
	}

	if cfg.IsDevelopment() {
		if _, err := migration.GetTableInfo(); err != nil {
			log.WithError(err).Warn("Failed to read table info")
		}
	}

	// Order events
	var events eventPublisher = rabbitmq.NewNoopPublisher(log)
	if cfg.Messaging.Enabled {
		publisher, err := rabbitmq.NewPublisher(cfg, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		events = publisher
	}
	defer events.Close()

	// Domain services
	rules, err := pricing.NewRulesFromConfig(cfg.Pricing)
	if err != nil {
		log.WithError(err).Fatal("Invalid pricing configuration")
	}
	engine := pricing.NewEngine(rules)

	kv := redis.NewStore(redisClient.GetClient(), cfg.Cart.TTL)
	locker := redis.NewLocker(redisClient.GetClient(), log)
	carts := cart.NewManager(kv, locker, cfg.Cart, log)
	catalogService := catalog.NewService()
	orderRepo := order.NewGormRepository(db.GetDB())
	jwtManager := auth.NewJWTManager(cfg)

	checkoutService := checkout.NewService(checkout.Dependencies{
		Carts:     carts,
		Sessions:  checkout.NewSessionStore(kv, checkoutNamespace, log),
		Engine:    engine,
		Validator: checkout.NewValidator(),
		Gateway:   payment.NewSimulatedGateway(cfg.Payment, log),
		Orders:    orderRepo,
		Events:    events,
		Locker:    locker,
	}, cfg, log)

	server := http.NewServer(cfg, http.Dependencies{
		Handlers: routes.Handlers{
			Auth:     handlers.NewAuthHandler(user.NewService(cfg, log)),
			Catalog:  handlers.NewCatalogHandler(catalogService),
			Cart:     handlers.NewCartHandler(carts, catalogService, engine, log),
			Checkout: handlers.NewCheckoutHandler(checkoutService),
			Order:    handlers.NewOrderHandler(order.NewService(orderRepo, log), pdf.NewService(cfg), log),
		},
		JWTManager:  jwtManager,
		RateLimiter: redisClient.GetClient(),
		Checks: map[string]http.HealthChecker{
			"database": db,
			"redis":    redisClient,
		},
	}, log)

	log.Info("All systems operational")

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start HTTP server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(ctx); err != nil {
		log.WithError(err).Error("Failed to shutdown HTTP server gracefully")
	}

	log.Info("Server shutdown completed")
}
