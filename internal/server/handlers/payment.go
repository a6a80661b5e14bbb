package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/application/paymentservice"
	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/domain/models"
)

// PaymentHandler exposes the payment intake pipeline over HTTP.
type PaymentHandler struct {
	paymentSvc paymentservice.IPaymentService
	logger     zerolog.Logger
}

func NewPaymentHandler(paymentSvc paymentservice.IPaymentService, logger zerolog.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentSvc: paymentSvc,
		logger:     logger,
	}
}

func (h *PaymentHandler) Submit(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.paymentSvc.Submit(c.Request.Context(), &req, clientInfo(c))
	h.respond(c, resp, err)
}

func (h *PaymentHandler) Retry(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.SessionID = c.Param("session_id")

	resp, err := h.paymentSvc.Retry(c.Request.Context(), &req, clientInfo(c))
	h.respond(c, resp, err)
}

func (h *PaymentHandler) Switch(c *gin.Context) {
	var req models.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.SessionID = c.Param("session_id")

	resp, err := h.paymentSvc.Switch(c.Request.Context(), &req, clientInfo(c))
	h.respond(c, resp, err)
}

func (h *PaymentHandler) Confirm(c *gin.Context) {
	sessionID := c.Param("session_id")

	resp, err := h.paymentSvc.Confirm(c.Request.Context(), sessionID, clientInfo(c))
	h.respond(c, resp, err)
}

// Callback handles the browser's return from the gateway checkout page
// and redirects to the outcome page for the invoice's current state.
func (h *PaymentHandler) Callback(c *gin.Context) {
	invoiceID := c.Query("invoice_id")
	if invoiceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invoice_id query parameter is required"})
		return
	}

	resp, err := h.paymentSvc.Callback(c.Request.Context(), invoiceID, clientInfo(c))
	if err != nil {
		h.respond(c, resp, err)
		return
	}

	c.Redirect(http.StatusFound, resp.RedirectURL)
}

func (h *PaymentHandler) GetTransaction(c *gin.Context) {
	transaction, err := h.paymentSvc.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrTransactionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
			return
		}
		h.logger.Error().Err(err).Msg("Failed to fetch transaction")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, transaction)
}

// respond maps pipeline outcomes onto HTTP statuses. Failed responses
// still carry the response body so the client sees field errors and the
// failure message.
func (h *PaymentHandler) respond(c *gin.Context, resp *models.PaymentResponse, err error) {
	if err == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusUnprocessableEntity, resp)
	case errors.Is(err, domain.ErrSessionExpired):
		c.JSON(http.StatusGone, resp)
	case errors.Is(err, domain.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, resp)
	case errors.Is(err, domain.ErrGatewayUnavailable):
		c.JSON(http.StatusBadGateway, resp)
	case errors.Is(err, domain.ErrTransactionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	default:
		h.logger.Error().Err(err).Msg("Payment request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
