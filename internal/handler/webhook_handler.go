package handler

import (
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/suburbmates/suburbmates-api/internal/service"
)

// WebhookHandler handles incoming Stripe webhooks.
type WebhookHandler struct {
	featuredService *service.FeaturedService
	webhookSecret   string
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(featuredService *service.FeaturedService, webhookSecret string) *WebhookHandler {
	return &WebhookHandler{featuredService: featuredService, webhookSecret: webhookSecret}
}

// HandleStripeWebhook handles POST /webhook/stripe
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	// 1. Read body
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 65536))
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid body"})
		return
	}

	// 2. Verify signature
	event, err := webhook.ConstructEvent(body, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Stripe webhook signature verification failed")
		c.JSON(400, gin.H{"error": "Invalid signature"})
		return
	}

	// 3. Dispatch by event type
	switch event.Type {
	case "checkout.session.completed":
		h.handleCheckoutCompleted(c, event)
	case "checkout.session.expired":
		h.handleCheckoutExpired(c, event)
	default:
		// Unhandled event types are acknowledged so Stripe stops retrying.
		c.JSON(200, gin.H{"received": true})
	}
}

func (h *WebhookHandler) handleCheckoutCompleted(c *gin.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		c.JSON(400, gin.H{"error": "Invalid JSON"})
		return
	}

	reservationID := sess.Metadata["reservation_id"]
	if reservationID == "" {
		// Product purchase sessions have no reservation; nothing to do here.
		c.JSON(200, gin.H{"received": true})
		return
	}

	if err := h.featuredService.FinalizeReservation(c.Request.Context(), reservationID); err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).
			Msg("Failed to finalize reservation from webhook")
		c.JSON(500, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(200, gin.H{"received": true})
}

func (h *WebhookHandler) handleCheckoutExpired(c *gin.Context, event stripe.Event) {
	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		c.JSON(400, gin.H{"error": "Invalid JSON"})
		return
	}

	reservationID := sess.Metadata["reservation_id"]
	if reservationID == "" {
		c.JSON(200, gin.H{"received": true})
		return
	}

	if err := h.featuredService.ReleaseReservation(c.Request.Context(), reservationID); err != nil {
		log.Error().Err(err).Str("reservation_id", reservationID).
			Msg("Failed to release expired reservation from webhook")
		c.JSON(500, gin.H{"error": "Processing failed"})
		return
	}

	c.JSON(200, gin.H{"received": true})
}
