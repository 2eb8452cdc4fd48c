package handlers

import (
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"gorm.io/gorm"

	"acp_checkout_echo/internal/models"
)

type WebhookHandler struct {
	db            *gorm.DB
	signingSecret string
}

func NewWebhookHandler(db *gorm.DB, signingSecret string) *WebhookHandler {
	return &WebhookHandler{db: db, signingSecret: signingSecret}
}

// HandleGatewayEvent handles POST /webhooks/gateway. Events are verified,
// logged and archived; no session state is driven from here.
func (h *WebhookHandler) HandleGatewayEvent(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read request body")
	}

	event, err := webhook.ConstructEvent(payload, c.Request().Header.Get("Stripe-Signature"), h.signingSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Webhook signature verification failed")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		log.Printf("[WEBHOOK] PaymentIntent succeeded: %s", event.ID)
	case "payment_intent.payment_failed":
		log.Printf("[WEBHOOK] PaymentIntent failed: %s", event.ID)
	default:
		log.Printf("[WEBHOOK] Unhandled event type: %s", event.Type)
	}

	history := models.GatewayEventHistory{
		EventID:   event.ID,
		EventType: string(event.Type),
		Payload:   event.Data.Raw,
	}
	if err := h.db.WithContext(c.Request().Context()).Create(&history).Error; err != nil {
		// Intake is fire-and-forget; an archiving failure is not the
		// gateway's problem.
		log.Printf("failed to record gateway event %s: %v", event.ID, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
