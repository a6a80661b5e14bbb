package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/application/authservice"
	"github.com/tixora/payments/internal/application/paymentservice"
	"github.com/tixora/payments/internal/application/webhookservice"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/internal/repositories/settingsrepo"
	"github.com/tixora/payments/internal/repositories/transactionrepo"
	"github.com/tixora/payments/internal/security"
	"github.com/tixora/payments/internal/server/middleware"
	"github.com/tixora/payments/pkg/config"
)

type Handlers struct {
	PaymentSvc   paymentservice.IPaymentService
	WebhookSvc   webhookservice.IWebhookService
	AuthSvc      authservice.IAuthService
	Sessions     sessionrepo.ISessionRepository
	Settings     settingsrepo.ISettingsRepository
	Transactions transactionrepo.ITransactionRepository
	Gateway      interfaces.PaymentGateway
	Resolver     interfaces.SettingsResolver
	Limiter      *ratelimit.Limiter
	Events       *security.EventLogger
	WsManager    interfaces.WebSocketManager
	Config       *config.Config
	Logger       zerolog.Logger
}

func New(
	paymentSvc paymentservice.IPaymentService,
	webhookSvc webhookservice.IWebhookService,
	authSvc authservice.IAuthService,
	sessions sessionrepo.ISessionRepository,
	settings settingsrepo.ISettingsRepository,
	transactions transactionrepo.ITransactionRepository,
	gateway interfaces.PaymentGateway,
	resolver interfaces.SettingsResolver,
	limiter *ratelimit.Limiter,
	events *security.EventLogger,
	wsManager interfaces.WebSocketManager,
	cfg *config.Config,
	logger zerolog.Logger,
) *Handlers {
	return &Handlers{
		PaymentSvc:   paymentSvc,
		WebhookSvc:   webhookSvc,
		AuthSvc:      authSvc,
		Sessions:     sessions,
		Settings:     settings,
		Transactions: transactions,
		Gateway:      gateway,
		Resolver:     resolver,
		Limiter:      limiter,
		Events:       events,
		WsManager:    wsManager,
		Config:       cfg,
		Logger:       logger,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine, mw *middleware.Middleware) {
	paymentHandler := NewPaymentHandler(h.PaymentSvc, h.Logger)
	registrationHandler := NewRegistrationHandler(h.Sessions, h.Logger)
	webhookHandler := NewWebhookHandler(h.WebhookSvc, h.Config.Security, h.Logger)
	adminHandler := NewAdminHandler(h.AuthSvc, h.Settings, h.Transactions, h.Gateway, h.Resolver, h.Limiter, h.Events, h.WsManager, h.Logger)
	wsHandler := NewWebSocketHandler(h.WsManager, h.Config.WebSocket)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// WebSocket status stream
	router.GET("/status", wsHandler.HandleConnection)

	v1 := router.Group("/v1")
	{
		registrations := v1.Group("/registrations")
		{
			registrations.POST("", registrationHandler.Create)
			registrations.DELETE("/:id", registrationHandler.Cancel)
		}

		payments := v1.Group("/payments")
		{
			payments.POST("", paymentHandler.Submit)
			payments.POST("/:session_id/confirm", paymentHandler.Confirm)
			payments.POST("/:session_id/retry", paymentHandler.Retry)
			payments.POST("/:session_id/switch", paymentHandler.Switch)
			payments.GET("/callback", paymentHandler.Callback)
		}

		transactions := v1.Group("/transactions")
		{
			transactions.GET("/:id", paymentHandler.GetTransaction)
		}

		v1.POST("/webhooks/unipayment", webhookHandler.HandleUniPayment)

		admin := v1.Group("/admin")
		{
			admin.POST("/login", adminHandler.Login)

			authorized := admin.Group("")
			authorized.Use(mw.AuthMiddleware())
			{
				authorized.GET("/settings", adminHandler.GetSettings)
				authorized.PUT("/settings", adminHandler.UpdateSettings)
				authorized.POST("/settings/test", adminHandler.TestConnection)
				authorized.GET("/status", adminHandler.Status)
			}
		}
	}
}

// clientInfo captures the request attributes the security log and rate
// limiter key on.
func clientInfo(c *gin.Context) models.ClientInfo {
	return models.ClientInfo{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Route:     c.FullPath(),
	}
}
