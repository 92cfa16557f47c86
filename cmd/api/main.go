package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/brewline-api/internal/application/service"
	"github.com/sangkips/brewline-api/internal/config"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/infrastructure/cache"
	"github.com/sangkips/brewline-api/internal/infrastructure/database"
	"github.com/sangkips/brewline-api/internal/infrastructure/gateway"
	"github.com/sangkips/brewline-api/internal/infrastructure/queue"
	"github.com/sangkips/brewline-api/internal/infrastructure/realtime"
	"github.com/sangkips/brewline-api/internal/infrastructure/repository"
	"github.com/sangkips/brewline-api/internal/presentation/http/handler"
	"github.com/sangkips/brewline-api/internal/presentation/http/routes"
	"github.com/sangkips/brewline-api/pkg/email"
	"github.com/sangkips/brewline-api/pkg/logger"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log := logger.New(cfg.App.Env, cfg.App.Debug)

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}

	if err := database.AutoMigrate(db, log); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	if cfg.Database.Seed {
		if err := database.SeedDemoCatalog(db, log); err != nil {
			log.WithError(err).Warn("Failed to seed demo catalog")
		}
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis backs the expiry queue and catalog cache; without it both run in-process.
	var (
		delayQueue   service.DelayQueue = queue.NewMemoryDelayQueue()
		catalogStore cache.Store        = cache.NoopStore{}
		redisClient  *redis.Client
	)
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(rootCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to redis")
		}
		delayQueue = queue.NewRedisDelayQueue(redisClient, cfg.Redis.QueueKey, log)
		catalogStore = cache.NewRedisStore(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set, using in-process expiry queue and no catalog cache")
	}

	// Initialize repositories
	tx := repository.NewTransactor(db)
	orderRepo := repository.NewOrderRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	catalog := cache.NewCatalogCache(repository.NewCatalogRepository(db), catalogStore, cfg.Redis.CacheTTL, log)

	// Order events go to connected boards and, when enabled, to Kafka
	hub := realtime.NewHub(log)
	events := realtime.FanOut{hub}
	var kafkaPublisher *realtime.KafkaPublisher
	if cfg.Kafka.Enabled {
		producer, err := realtime.NewKafkaProducer(cfg.Kafka.Brokers)
		if err != nil {
			log.WithError(err).Fatal("Failed to create kafka producer")
		}
		kafkaPublisher = realtime.NewKafkaPublisher(producer, cfg.Kafka.OrderTopic, log)
		events = append(events, kafkaPublisher)
	}

	var invoices service.InvoiceSender
	if cfg.Email.Enabled() {
		invoices = service.NewEmailInvoiceSender(email.NewEmailService(email.EmailConfig{
			SMTPHost:     cfg.Email.SMTPHost,
			SMTPPort:     cfg.Email.SMTPPort,
			SMTPUsername: cfg.Email.SMTPUsername,
			SMTPPassword: cfg.Email.SMTPPassword,
			FromName:     cfg.Email.FromName,
			FromEmail:    cfg.Email.FromEmail,
		}))
	} else {
		log.Warn("SMTP not configured, invoices will not be sent")
	}

	// Initialize services
	midtrans := gateway.NewMidtransGateway(cfg.Midtrans.ServerKey, cfg.Midtrans.IsProduction(), log)
	pricing := service.NewPricingEngine(catalog)
	bom := service.NewBOMExpander(recipeRepo, log)
	ledger := service.NewInventoryLedger(tx, materialRepo, log)
	expiry := service.NewExpiryService(tx, paymentRepo, orderRepo, delayQueue, service.ExpiryOptions{
		Window:        cfg.Payment.ExpiryWindow,
		PollInterval:  cfg.Payment.PollInterval,
		SweepInterval: cfg.Payment.SweepInterval,
		BatchSize:     cfg.Payment.SweepBatch,
		MaxRetries:    cfg.Payment.JobMaxRetries,
	}, log)
	payments := service.NewPaymentOrchestrator(tx, paymentRepo, orderRepo, bom, ledger, midtrans, expiry, cfg.Payment.ExpiryWindow, log)
	webhook := service.NewWebhookProcessor(cfg.Midtrans.ServerKey, tx, paymentRepo, orderRepo, bom, ledger, invoices, events, log)
	orderService := service.NewOrderService(tx, orderRepo, paymentRepo, pricing, ledger, payments, log)

	// Initialize handlers
	handlers := &routes.Handlers{
		Order:    handler.NewOrderHandler(orderService),
		Payment:  handler.NewPaymentHandler(webhook, log),
		Realtime: handler.NewRealtimeHandler(hub, cfg.CORS.AllowedOrigins, log),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.ExpiryHours),
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		Log:             log,
		Health: func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Ping()
		},
	})

	var workers sync.WaitGroup
	workers.Add(2)
	go func() {
		defer workers.Done()
		expiry.Run(rootCtx)
	}()
	go func() {
		defer workers.Done()
		purgeIdempotencyKeys(rootCtx, idempotencyRepo, log)
	}()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": port, "env": cfg.App.Env}).Infof("Starting %s server", cfg.App.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-rootCtx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
	}
	workers.Wait()

	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			log.WithError(err).Error("Failed to close kafka producer")
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.WithError(err).Error("Failed to close redis client")
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Server stopped")
}

// purgeIdempotencyKeys drops expired replay entries once an hour.
func purgeIdempotencyKeys(ctx context.Context, repo domainRepo.IdempotencyRepository, log logrus.FieldLogger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge idempotency keys")
				continue
			}
			if n > 0 {
				log.WithField("deleted", n).Info("Purged expired idempotency keys")
			}
		}
	}
}
