package webhookservice

import (
	"context"

	"github.com/tixora/payments/internal/domain/models"
)

// IWebhookService verifies and applies gateway webhook deliveries.
// Processing is idempotent: redelivering the same signed event changes
// nothing after its first successful application.
type IWebhookService interface {
	HandleNotification(ctx context.Context, event *models.WebhookEvent) error
}
