package handler

import (
	"context"
	"log"

	"easyticket/database"
	"easyticket/helper"
	"easyticket/model"
	"easyticket/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// StripeWebhook is the gateway's ingress. The signature is verified against
// the raw body before anything is parsed; an unverifiable envelope is never
// processed. A missing webhook secret is a server misconfiguration, not a
// client error.
func StripeWebhook(stripe *Stripe) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if stripe.Config.WebhookSecret == "" {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "webhook secret not configured", nil)
		}

		payload := c.Body()
		if err := stripe.VerifySignature(payload, c.Get("Stripe-Signature")); err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "invalid webhook signature", err)
		}

		envelope, err := model.ParseWebhookEnvelope(payload)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "malformed event payload", err)
		}
		if envelope.ID == "" {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "event id missing", nil)
		}

		if err := helper.ProcessWebhookEvent(database.DB, Gateway, envelope, payload); err != nil {
			if _, ok := err.(*helper.ConflictError); ok {
				// Duplicate delivery; already applied.
				return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"received": true, "duplicate": true})
			}
			// Non-2xx tells the gateway to redeliver; the rolled-back claim
			// lets the retry apply cleanly.
			log.Printf("webhook %s (%s) failed: %v", envelope.ID, envelope.Type, err)
			return respondError(c, err)
		}

		notifyAfterEvent(database.DB, envelope)
		return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"received": true})
	}
}

// notifyAfterEvent sends buyer emails once the event's transaction has
// committed. Failures are logged, never surfaced to the gateway.
func notifyAfterEvent(db *gorm.DB, envelope *model.WebhookEnvelope) {
	if envelope.Type != "payment_intent.succeeded" && envelope.Type != "charge.refunded" {
		return
	}
	intentID := envelope.Data.Object.ID
	if envelope.Type == "charge.refunded" {
		intentID = envelope.Data.Object.PaymentIntent
	}

	var order model.Order
	if err := db.Preload("Event").Preload("Tickets").
		Where("payment_id = ?", intentID).First(&order).Error; err != nil {
		log.Printf("notify: no order for intent %s: %v", intentID, err)
		return
	}

	// Availability changed; cached catalog listings are stale.
	utils.CacheInvalidate(context.Background(), utils.CatalogKey(order.EventID))

	switch order.Status {
	case model.OrderConfirmed:
		lines := make([]utils.TicketLine, 0, len(order.Tickets))
		for _, t := range order.Tickets {
			lines = append(lines, utils.TicketLine{
				TicketNumber: t.TicketNumber,
				Name:         t.FullTicketName(),
				EventDate:    t.EventDate.Format("Mon, 02 Jan 2006 15:04"),
				Price:        t.Price.StringFixed(2),
				QRCodeBase64: utils.EmbedQRCode(t.QRCodeData),
			})
		}
		utils.SendOrderConfirmationEmail(order.BuyerEmail, utils.OrderConfirmationData{
			OrderNumber: order.OrderNumber,
			BuyerName:   order.BuyerName,
			EventTitle:  order.Event.Title,
			VenueName:   order.Event.VenueName,
			TotalAmount: order.TotalAmount.StringFixed(2),
			Currency:    order.Currency,
			Tickets:     lines,
		})
	case model.OrderRefunded:
		utils.SendOrderCancellationEmail(order.BuyerEmail, utils.OrderCancellationData{
			OrderNumber: order.OrderNumber,
			BuyerName:   order.BuyerName,
			EventTitle:  order.Event.Title,
			Reason:      order.CancellationReason,
			Refunded:    true,
			TotalAmount: order.TotalAmount.StringFixed(2),
			Currency:    order.Currency,
		})
	}
}
