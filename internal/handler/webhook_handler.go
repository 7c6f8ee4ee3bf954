package handler

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
	"github.com/openmatchhq/open-match/server/internal/service"
	"github.com/openmatchhq/open-match/server/internal/webhook"
)

// WebhookHandler wires the GitHub webhook endpoint to the sync controller.
type WebhookHandler struct {
	secret string
	sync   *service.SyncService
	notif  notify.Notifier
}

// NewWebhookHandler returns a handler instance.
func NewWebhookHandler(secret string, sync *service.SyncService, notif notify.Notifier) *WebhookHandler {
	return &WebhookHandler{
		secret: secret,
		sync:   sync,
		notif:  notif,
	}
}

// Register mounts POST /webhook/github on the app.
func (h *WebhookHandler) Register(app *fiber.App) {
	app.Post("/webhook/github", h.handle)
}

// handle verifies, parses and dispatches one delivery. Unknown actions are
// answered 2xx so the provider does not build a redelivery storm; anything
// the controller throws is caught here and converted to a generic failure.
func (h *WebhookHandler) handle(c *fiber.Ctx) error {
	body := c.Body()

	if err := webhook.VerifySignature(h.secret, body, c.Get(webhook.SignatureHeader)); err != nil {
		h.notif.Severe(fmt.Sprintf("webhook signature verification failed: %v", err))
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "signatures did not match",
		})
	}

	var payload models.WebhookPayload
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "failure",
			"message": "no payload found",
		})
	}

	message, err := h.sync.HandleEvent(c.UserContext(), payload)
	if err != nil {
		// Keep the offending payload in the log for diagnosis.
		log.Printf("webhook processing failed: %v; payload: %s", err, body)
		h.notif.Severe(fmt.Sprintf("webhook processing failed: %v", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "failure",
			"message": "event processing failed",
		})
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": message,
	})
}
