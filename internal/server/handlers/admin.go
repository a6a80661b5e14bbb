package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/application/authservice"
	"github.com/tixora/payments/internal/application/settingsservice"
	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/interfaces"
	"github.com/tixora/payments/internal/ratelimit"
	"github.com/tixora/payments/internal/repositories/settingsrepo"
	"github.com/tixora/payments/internal/repositories/transactionrepo"
	"github.com/tixora/payments/internal/security"
)

// AdminHandler exposes the operator surface: login, gateway settings,
// connectivity testing, and service status.
type AdminHandler struct {
	authSvc      authservice.IAuthService
	settings     settingsrepo.ISettingsRepository
	transactions transactionrepo.ITransactionRepository
	gateway      interfaces.PaymentGateway
	resolver     interfaces.SettingsResolver
	limiter      *ratelimit.Limiter
	events       *security.EventLogger
	wsManager    interfaces.WebSocketManager
	logger       zerolog.Logger
}

func NewAdminHandler(
	authSvc authservice.IAuthService,
	settings settingsrepo.ISettingsRepository,
	transactions transactionrepo.ITransactionRepository,
	gateway interfaces.PaymentGateway,
	resolver interfaces.SettingsResolver,
	limiter *ratelimit.Limiter,
	events *security.EventLogger,
	wsManager interfaces.WebSocketManager,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		authSvc:      authSvc,
		settings:     settings,
		transactions: transactions,
		gateway:      gateway,
		resolver:     resolver,
		limiter:      limiter,
		events:       events,
		wsManager:    wsManager,
		logger:       logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if err := h.authSvc.Authenticate(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error().Err(err).Msg("Admin authentication failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	token, err := h.authSvc.IssueSession(ctx, req.Email)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to issue admin session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"redirect": h.authSvc.RedirectTarget(&domain.Claim{Email: req.Email, Role: "admin"}),
	})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	if !h.allow(c, "admin_config") {
		return
	}

	settings, err := h.settings.Get(c.Request.Context(), settingsservice.ProviderUniPayment)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load provider settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	if settings == nil {
		c.JSON(http.StatusOK, gin.H{
			"provider": settingsservice.ProviderUniPayment,
			"enabled":  false,
		})
		return
	}

	// Credentials are json-hidden on the model; only metadata goes out.
	c.JSON(http.StatusOK, settings)
}

type updateSettingsRequest struct {
	AppID         string `json:"app_id" binding:"required"`
	APIKey        string `json:"api_key" binding:"required"`
	WebhookSecret string `json:"webhook_secret" binding:"required"`
	Environment   string `json:"environment" binding:"required,oneof=sandbox production"`
	Enabled       bool   `json:"enabled"`
}

func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	if !h.allow(c, "admin_config") {
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	settings := &domain.ProviderSettings{
		Provider:      settingsservice.ProviderUniPayment,
		AppID:         req.AppID,
		APIKey:        req.APIKey,
		WebhookSecret: req.WebhookSecret,
		Environment:   req.Environment,
		Enabled:       req.Enabled,
	}

	if err := h.settings.Upsert(c.Request.Context(), settings); err != nil {
		h.logger.Error().Err(err).Msg("Failed to save provider settings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.logger.Info().
		Str("provider", settings.Provider).
		Str("environment", settings.Environment).
		Bool("enabled", settings.Enabled).
		Str("admin", c.GetString("admin_email")).
		Msg("Provider settings updated")

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// TestConnection checks gateway connectivity with whatever credentials
// the resolver currently yields, so the operator verifies the effective
// configuration rather than the form contents.
func (h *AdminHandler) TestConnection(c *gin.Context) {
	if !h.allow(c, "admin_test") {
		return
	}

	ctx := c.Request.Context()
	creds, err := h.resolver.Resolve(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve gateway credentials"})
		return
	}

	if err := h.gateway.Ping(ctx, creds); err != nil {
		c.JSON(http.StatusOK, gin.H{
			"reachable":   false,
			"environment": creds.Environment,
			"error":       err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reachable":   true,
		"environment": creds.Environment,
	})
}

func (h *AdminHandler) Status(c *gin.Context) {
	if !h.allow(c, "admin_status") {
		return
	}

	stats, err := h.transactions.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to load transaction stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions":      stats,
		"connected_clients": h.wsManager.GetClientCount(),
	})
}

func (h *AdminHandler) allow(c *gin.Context, operation string) bool {
	if err := h.limiter.Check(c.Request.Context(), operation, c.ClientIP()); err != nil {
		h.events.RateLimitHit(clientInfo(c), operation)
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		c.Abort()
		return false
	}
	return true
}
