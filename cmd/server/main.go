package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/bernardev/good-trip-api/internal/carrier"
	"github.com/bernardev/good-trip-api/internal/config"
	"github.com/bernardev/good-trip-api/internal/database"
	"github.com/bernardev/good-trip-api/internal/handler"
	"github.com/bernardev/good-trip-api/internal/notify"
	"github.com/bernardev/good-trip-api/internal/payment"
	"github.com/bernardev/good-trip-api/internal/queue"
	"github.com/bernardev/good-trip-api/internal/repository"
	"github.com/bernardev/good-trip-api/internal/router"
	"github.com/bernardev/good-trip-api/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if cfg.Env == "dev" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("mysql connect: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("mysql migrate: %v", err)
	}
	cancel()

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}

	reservations := repository.NewReservationStore(rdb)
	tickets := repository.NewTicketStore(rdb)
	refunds := repository.NewRefundStore(rdb)
	audit := repository.NewAuditRepo(db)

	httpClient := &http.Client{Timeout: 30 * time.Second}
	carrierClient := carrier.NewClient(carrier.Config{
		BaseURL:   cfg.CarrierBaseURL,
		TenantID:  cfg.CarrierTenantID,
		AuthToken: cfg.CarrierAuthToken,
	}, httpClient)
	processor := payment.NewClient(payment.Config{
		BaseURL:   cfg.ProcessorBaseURL,
		SecretKey: cfg.ProcessorSecretKey,
	}, httpClient)

	publisher := queue.NewPublisher(cfg.RabbitURL, logger)
	refunder := service.NewRefundIssuer(service.RefundConfig{
		AutoApprovalCeiling: cfg.RefundAutoApprovalCeiling,
		ProcessingTTL:       cfg.RefundProcessingTTL,
		TerminalTTL:         cfg.RefundTerminalTTL,
		ApprovalTTL:         cfg.RefundApprovalTTL,
	}, reservations, refunds, processor, audit, publisher, logger)
	issuer := service.NewTicketIssuer(reservations, tickets, carrierClient, refunder, publisher, logger, cfg.BundleTTL)

	// background notification worker (WhatsApp delivery + admin log)
	wa := notify.NewWhatsAppClient(notify.WhatsAppConfig{
		BaseURL: cfg.WhatsAppBaseURL,
		Token:   cfg.WhatsAppToken,
	}, httpClient)
	go queue.StartNotificationConsumer(cfg.RabbitURL, wa, logger)

	e := echo.New()
	router.RegisterRoutes(e,
		handler.NewTicketHandler(issuer, tickets),
		handler.NewPaymentHandler(processor, reservations, cfg.ReservationTTL),
		handler.NewPDFHandler(tickets),
	)
	router.RegisterAdmin(e, handler.NewAdminHandler(
		cfg.AdminUser, cfg.AdminPasswordHash, cfg.JWTSecret, cfg.AccessTTLMin, refunds,
	), cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
