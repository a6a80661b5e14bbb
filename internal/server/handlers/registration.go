package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tixora/payments/internal/domain"
	"github.com/tixora/payments/internal/repositories/sessionrepo"
	"github.com/tixora/payments/pkg/sanitize"
)

// RegistrationHandler manages the short-lived registration sessions that
// carry attendee identity into the payment step.
type RegistrationHandler struct {
	sessions sessionrepo.ISessionRepository
	logger   zerolog.Logger
}

func NewRegistrationHandler(sessions sessionrepo.ISessionRepository, logger zerolog.Logger) *RegistrationHandler {
	return &RegistrationHandler{
		sessions: sessions,
		logger:   logger,
	}
}

type createRegistrationRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	TicketID string `json:"ticket_id"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
}

func (h *RegistrationHandler) Create(c *gin.Context) {
	var req createRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session := &domain.RegistrationSession{
		EventID:  req.EventID,
		TicketID: req.TicketID,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	}

	if err := h.sessions.Create(c.Request.Context(), session); err != nil {
		h.logger.Error().Err(err).Msg("Failed to create registration session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	h.logger.Info().
		Str("session_id", session.ID).
		Str("event_id", session.EventID).
		Str("email", sanitize.Email(session.Email)).
		Msg("Registration session created")

	c.JSON(http.StatusCreated, gin.H{
		"session_id": session.ID,
		"expires_in": "30m",
	})
}

// Cancel destroys a session before its TTL elapses. Cancelling a session
// that is already gone is not an error.
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	id := c.Param("id")

	if err := h.sessions.Delete(c.Request.Context(), id); err != nil && !errors.Is(err, domain.ErrSessionExpired) {
		h.logger.Error().Err(err).Str("session_id", id).Msg("Failed to cancel registration session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "cancelled"})
}
