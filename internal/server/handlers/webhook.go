package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/application/webhookservice"
	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
	"github.com/tixora/payments/pkg/config"
)

const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandler receives gateway notifications. The raw body is read
// before any parsing so the signature covers exactly the bytes sent.
type WebhookHandler struct {
	webhookSvc webhookservice.IWebhookService
	security   config.SecurityConfig
	logger     zerolog.Logger
}

func NewWebhookHandler(webhookSvc webhookservice.IWebhookService, security config.SecurityConfig, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		webhookSvc: webhookSvc,
		security:   security,
		logger:     logger,
	}
}

func (h *WebhookHandler) HandleUniPayment(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	event := &models.WebhookEvent{
		RawBody:   body,
		Signature: c.GetHeader(h.security.WebhookSignatureHeader),
		Client:    clientInfo(c),
	}

	if err := h.webhookSvc.HandleNotification(c.Request.Context(), event); err != nil {
		switch {
		case errors.Is(err, domain.ErrSignatureMismatch):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		case errors.Is(err, domain.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		case errors.Is(err, domain.ErrTransactionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown invoice"})
		default:
			h.logger.Error().Err(err).Msg("Webhook processing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
