package main

import (
	"github.com/tixora/payments/internal/application/authservice"
	"github.com/tixora/payments/internal/application/paymentservice"
	"github.com/tixora/payments/internal/application/settingsservice"
	"github.com/tixora/payments/internal/application/webhookservice"
	"github.com/tixora/payments/internal/infrastructure/database"
	"github.com/tixora/payments/internal/infrastructure/http/clients"
	"github.com/tixora/payments/internal/infrastructure/kvstore"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/internal/repositories/settingsrepo"
	"github.com/tixora/payments/internal/repositories/transactionrepo"
	"github.com/tixora/payments/internal/security"
	"github.com/tixora/payments/internal/server"
	"github.com/tixora/payments/internal/server/handlers"
	"github.com/tixora/payments/internal/server/middleware"
	"github.com/tixora/payments/internal/server/websocket"
	"github.com/tixora/payments/pkg/config"
	"github.com/tixora/payments/pkg/logger"
)

func main() {
	logger := logger.New()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.ShutDown()

	store, err := kvstore.NewRedis(cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to redis")
	}

	transactionRepo := transactionrepo.New(db, logger)
	settingsRepo := settingsrepo.New(db, logger)
	sessionRepo := sessionrepo.New(store, cfg.Payments.SessionTTL, logger)

	resolver := settingsservice.New(settingsRepo, cfg.Gateway, logger)
	limiter := ratelimit.New(store, cfg.Payments.RateLimits, logger)
	events := security.NewEventLogger(logger)
	gateway := clients.NewUniPaymentClient(cfg.Gateway, logger)
	wsManager := websocket.NewManager(cfg.WebSocket)

	paymentService := paymentservice.NewPaymentService(
		transactionRepo,
		sessionRepo,
		gateway,
		resolver,
		limiter,
		events,
		wsManager,
		cfg.Payments,
		cfg.Server,
		logger,
	)
	webhookService := webhookservice.NewWebhookService(
		transactionRepo,
		sessionRepo,
		resolver,
		store,
		limiter,
		events,
		wsManager,
		logger,
	)
	authService := authservice.NewAuthService(cfg, logger)

	h := handlers.New(
		paymentService,
		webhookService,
		authService,
		sessionRepo,
		settingsRepo,
		transactionRepo,
		gateway,
		resolver,
		limiter,
		events,
		wsManager,
		cfg,
		logger,
	)
	mw := middleware.NewMiddleware(authService, events, cfg, logger)

	srv := server.New(cfg, h, mw, logger)
	srv.Start()
}
